package llm

import "context"

// Request carries one text-generation call. APIKey overrides the client's
// configured key when set; generation keys are resolved per job, not per
// process.
type Request struct {
	APIKey      string
	Instruction string
}

// Generator is the contract implemented by all language-model providers.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
