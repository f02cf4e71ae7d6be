package domain

import (
	"encoding/json"

	"golang.org/x/text/language"
)

// Language selects the report language for generated infographics.
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

// Orientation selects the infographic layout.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationSquare    Orientation = "square"
)

// DetailLevel controls how many key points the analysis extracts.
type DetailLevel string

const (
	DetailConcise  DetailLevel = "concise"
	DetailStandard DetailLevel = "standard"
	DetailDetailed DetailLevel = "detailed"
)

// InfographicOptions customizes a generation request. CustomDescription is
// free text appended verbatim to the design instruction.
type InfographicOptions struct {
	Language          Language    `json:"language"`
	Orientation       Orientation `json:"orientation"`
	DetailLevel       DetailLevel `json:"detailLevel"`
	CustomDescription string      `json:"customDescription,omitempty"`
}

// Arabic first: it is the fallback when nothing matches.
var localeMatcher = language.NewMatcher([]language.Tag{language.Arabic, language.English})

// MatchLanguage maps an arbitrary locale string (possibly with region
// subtags, e.g. "en-US" or "ar-SA") onto one of the supported languages.
// Anything unparseable or without a confident match falls back to Arabic;
// the matcher alone is not enough because it resolves unsupported tags like
// "fr" to an arbitrary list entry at No confidence.
func MatchLanguage(locale string) Language {
	tag, err := language.Parse(locale)
	if err != nil {
		return LanguageArabic
	}
	_, idx, conf := localeMatcher.Match(tag)
	if idx == 1 && conf > language.Low {
		return LanguageEnglish
	}
	return LanguageArabic
}

// Normalize fills defaults so downstream instruction building never sees an
// unset field. preferredLocale comes from the request context (header or
// GeoIP detection) and only applies when the caller left Language empty.
func (o *InfographicOptions) Normalize(preferredLocale string) {
	if o == nil {
		return
	}
	switch o.Language {
	case LanguageArabic, LanguageEnglish:
	case "":
		if preferredLocale != "" {
			o.Language = MatchLanguage(preferredLocale)
		} else {
			o.Language = LanguageArabic
		}
	default:
		o.Language = MatchLanguage(string(o.Language))
	}
	switch o.Orientation {
	case OrientationLandscape, OrientationPortrait, OrientationSquare:
	default:
		o.Orientation = OrientationLandscape
	}
	switch o.DetailLevel {
	case DetailConcise, DetailStandard, DetailDetailed:
	default:
		o.DetailLevel = DetailStandard
	}
}

// MarshalOptions serializes options for job storage; nil stays nil.
func MarshalOptions(o *InfographicOptions) []byte {
	if o == nil {
		return nil
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return nil
	}
	return raw
}
