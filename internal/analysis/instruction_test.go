package analysis

import (
	"strings"
	"testing"

	"server/internal/domain"
)

func TestBuildAnalysisInstructionLanguage(t *testing.T) {
	arabic := BuildAnalysisInstruction("some transcript", domain.InfographicOptions{Language: domain.LanguageArabic})
	if !strings.Contains(arabic, "some transcript") {
		t.Error("arabic instruction missing transcript")
	}
	if !strings.Contains(arabic, "النقاط الرئيسية") {
		t.Error("arabic instruction not in Arabic")
	}

	english := BuildAnalysisInstruction("some transcript", domain.InfographicOptions{Language: domain.LanguageEnglish})
	if !strings.Contains(english, "Main points") {
		t.Error("english instruction not in English")
	}
}

func TestBuildAnalysisInstructionDetailLevel(t *testing.T) {
	tests := []struct {
		level domain.DetailLevel
		want  string
	}{
		{domain.DetailConcise, "2-3"},
		{domain.DetailStandard, "3-5"},
		{domain.DetailDetailed, "5-7"},
		{"", "3-5"},
	}
	for _, tt := range tests {
		got := BuildAnalysisInstruction("t", domain.InfographicOptions{
			Language:    domain.LanguageEnglish,
			DetailLevel: tt.level,
		})
		if !strings.Contains(got, tt.want+" points") {
			t.Errorf("level %q: instruction missing %q points range", tt.level, tt.want)
		}
	}
}

func TestBuildDesignInstructionOrientation(t *testing.T) {
	tests := []struct {
		orientation domain.Orientation
		want        string
	}{
		{domain.OrientationLandscape, "16:9"},
		{domain.OrientationPortrait, "9:16"},
		{domain.OrientationSquare, "1:1"},
		{"", "16:9"},
	}
	for _, tt := range tests {
		got := BuildDesignInstruction("report", domain.InfographicOptions{Orientation: tt.orientation})
		if !strings.Contains(got, tt.want) {
			t.Errorf("orientation %q: instruction missing %q", tt.orientation, tt.want)
		}
	}
}

func TestBuildDesignInstructionLanguageNote(t *testing.T) {
	arabic := BuildDesignInstruction("report", domain.InfographicOptions{Language: domain.LanguageArabic})
	if !strings.Contains(arabic, "Arabic (right-to-left)") {
		t.Error("missing Arabic language note")
	}
	english := BuildDesignInstruction("report", domain.InfographicOptions{Language: domain.LanguageEnglish})
	if !strings.Contains(english, "should be in English") {
		t.Error("missing English language note")
	}
}

func TestBuildDesignInstructionCustomDescription(t *testing.T) {
	withCustom := BuildDesignInstruction("report", domain.InfographicOptions{
		CustomDescription: "use a dark theme",
	})
	if !strings.Contains(withCustom, "User's custom instructions: use a dark theme") {
		t.Error("custom description not appended")
	}

	without := BuildDesignInstruction("report", domain.InfographicOptions{CustomDescription: "   "})
	if strings.Contains(without, "custom instructions") {
		t.Error("blank custom description should be omitted")
	}
	if !strings.Contains(without, "Keep it under 500 words.") {
		t.Error("instruction missing length cap")
	}
}
