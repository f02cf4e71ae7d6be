package analysis

import (
	"context"
	"fmt"

	"server/internal/domain"
	"server/internal/providers/llm"
)

// Analyzer turns transcripts into analysis reports and reports into
// image-generation prompts. Both operations run through the same generator,
// which is normally a failover pair (Gemini primary, OpenAI secondary).
type Analyzer struct {
	gen llm.Generator
}

// NewAnalyzer wraps a text generator.
func NewAnalyzer(gen llm.Generator) *Analyzer {
	return &Analyzer{gen: gen}
}

// AnalyzeContent extracts a structured key-point report from a transcript.
func (a *Analyzer) AnalyzeContent(ctx context.Context, transcript, apiKey string, opts domain.InfographicOptions) (string, error) {
	text, err := a.gen.Generate(ctx, llm.Request{
		APIKey:      apiKey,
		Instruction: BuildAnalysisInstruction(transcript, opts),
	})
	if err != nil {
		return "", fmt.Errorf("analyze content: %w", err)
	}
	return text, nil
}

// GenerateDesignPrompt derives an image-generation prompt from a report.
func (a *Analyzer) GenerateDesignPrompt(ctx context.Context, report, apiKey string, opts domain.InfographicOptions) (string, error) {
	text, err := a.gen.Generate(ctx, llm.Request{
		APIKey:      apiKey,
		Instruction: BuildDesignInstruction(report, opts),
	})
	if err != nil {
		return "", fmt.Errorf("generate design prompt: %w", err)
	}
	return text, nil
}
