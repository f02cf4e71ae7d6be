package credentials

import (
	"fmt"
	"sort"
	"strings"

	"server/internal/domain"
)

// Keys holds the provider credentials one pipeline run operates with.
type Keys struct {
	ApifyAPIToken    string
	GeminiAPIKey     string
	AtlasCloudAPIKey string
}

// IsZero reports whether no key is set at all.
func (k Keys) IsZero() bool {
	return k.ApifyAPIToken == "" && k.GeminiAPIKey == "" && k.AtlasCloudAPIKey == ""
}

// Capability names a set of required credentials.
type Capability string

const (
	// CapabilityExtract covers playlist extraction (scraper token only).
	CapabilityExtract Capability = "playlist-extract"
	// CapabilityGenerate covers infographic generation (scraper, language
	// model and image API keys).
	CapabilityGenerate Capability = "infographic-generate"
)

// JSON field names used in the missing-keys response, matching what clients
// store in their settings form.
const (
	FieldApifyAPIToken    = "apifyApiToken"
	FieldGeminiAPIKey     = "geminiApiKey"
	FieldAtlasCloudAPIKey = "atlasCloudApiKey"
)

// MissingKeysError reports which self-supplied keys a free-plan user still
// needs to configure before the requested capability can run.
type MissingKeysError struct {
	Missing map[string]bool
}

func (e *MissingKeysError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for name, missing := range e.Missing {
		if missing {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return fmt.Sprintf("api keys required: %s", strings.Join(names, ", "))
}

// Resolver decides which credentials apply to a request: system-wide keys
// for paid users, the user's own stored keys otherwise. Resolution happens
// once per request, before any pipeline work.
type Resolver struct {
	system Keys
}

// NewResolver creates a resolver around the system-wide key set.
func NewResolver(system Keys) *Resolver {
	return &Resolver{system: system}
}

// Resolve returns the keys to use for the given user and capability, or a
// *MissingKeysError when a free-plan user has not supplied every required key.
func (r *Resolver) Resolve(user *domain.User, capability Capability) (Keys, error) {
	if user == nil {
		return Keys{}, domain.ErrUnauthorized
	}

	if !user.IsFree() {
		return r.system, nil
	}

	keys := Keys{
		ApifyAPIToken:    strings.TrimSpace(user.ApifyAPIToken),
		GeminiAPIKey:     strings.TrimSpace(user.GeminiAPIKey),
		AtlasCloudAPIKey: strings.TrimSpace(user.AtlasCloudAPIKey),
	}

	missing := map[string]bool{}
	switch capability {
	case CapabilityExtract:
		missing[FieldApifyAPIToken] = keys.ApifyAPIToken == ""
	case CapabilityGenerate:
		missing[FieldApifyAPIToken] = keys.ApifyAPIToken == ""
		missing[FieldGeminiAPIKey] = keys.GeminiAPIKey == ""
		missing[FieldAtlasCloudAPIKey] = keys.AtlasCloudAPIKey == ""
	default:
		return Keys{}, fmt.Errorf("unknown capability %q", capability)
	}

	for _, m := range missing {
		if m {
			return Keys{}, &MissingKeysError{Missing: missing}
		}
	}
	return keys, nil
}
