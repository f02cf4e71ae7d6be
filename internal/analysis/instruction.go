package analysis

import (
	"fmt"
	"strings"

	"server/internal/domain"
)

// pointsRange maps the requested detail level onto how many key points the
// report should extract.
func pointsRange(level domain.DetailLevel) string {
	switch level {
	case domain.DetailConcise:
		return "2-3"
	case domain.DetailDetailed:
		return "5-7"
	default:
		return "3-5"
	}
}

func orientationText(o domain.Orientation) string {
	switch o {
	case domain.OrientationPortrait:
		return "vertical (9:16 aspect ratio)"
	case domain.OrientationSquare:
		return "square (1:1 aspect ratio)"
	default:
		return "horizontal (16:9 aspect ratio)"
	}
}

// BuildAnalysisInstruction produces the instruction asking the language
// model for a structured report of the transcript's key points, in the
// requested report language.
func BuildAnalysisInstruction(transcript string, opts domain.InfographicOptions) string {
	points := pointsRange(opts.DetailLevel)
	if opts.Language == domain.LanguageArabic {
		return fmt.Sprintf(`قم بإعطائي تقرير مفصل لنقاط الإفادة التي تم ذكرها في هذا النص:

%s

أريد:
1. النقاط الرئيسية (%s نقاط)
2. الإحصائيات أو الأرقام المذكورة (إن وجدت)
3. الاقتباسات المهمة (إن وجدت)
4. الخلاصة في سطر واحد

اجعل التقرير موجزًا ومفيدًا للاستخدام في تصميم Infographic.`, transcript, points)
	}
	return fmt.Sprintf(`Provide a detailed report of the key points mentioned in this text:

%s

I want:
1. Main points (%s points)
2. Statistics or numbers mentioned (if any)
3. Important quotes (if any)
4. Summary in one line

Make the report concise and useful for designing an Infographic.`, transcript, points)
}

// BuildDesignInstruction produces the instruction asking the language model
// for an image-generation prompt based on the analysis report. The design
// prompt itself is always requested in English; the language option only
// selects the language of the text inside the infographic. A custom
// description, when present, is appended verbatim.
func BuildDesignInstruction(report string, opts domain.InfographicOptions) string {
	languageNote := "The text in the infographic should be in English."
	if opts.Language == domain.LanguageArabic {
		languageNote = "The text in the infographic should be in Arabic (right-to-left)."
	}

	sb := &strings.Builder{}
	fmt.Fprintf(sb, `Based on this analysis report, generate a detailed infographic design prompt in English that can be used with an AI image generator.

Analysis Report:
%s

Generate a visual design prompt that includes:
1. Layout structure (%s infographic)
2. Color scheme (suggest specific colors)
3. Visual elements (icons, shapes)
4. Text placement
5. Overall style (modern, professional, etc.)

%s`, report, orientationText(opts.Orientation), languageNote)
	if custom := strings.TrimSpace(opts.CustomDescription); custom != "" {
		fmt.Fprintf(sb, "\n\nUser's custom instructions: %s", custom)
	}
	sb.WriteString(`

The prompt should be detailed enough to generate a beautiful, informative infographic.
Start directly with the design description, no introduction needed.
Keep it under 500 words.`)
	return sb.String()
}
