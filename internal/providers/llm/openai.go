package llm

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const openAIDefaultModel = "gpt-4o-mini"

// OpenAIOptions controls how the OpenAI client is configured.
type OpenAIOptions struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAI is the secondary text generator. Unlike Gemini it runs on a single
// service-level credential, so per-request keys are ignored.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI chat-completion generator.
func NewOpenAI(opts OpenAIOptions) (*OpenAI, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimRight(opts.BaseURL, "/"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = openAIDefaultModel
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Generate sends the instruction as a single user message.
func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Instruction},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("openai: empty response")
	}
	return text, nil
}

var _ Generator = (*OpenAI)(nil)
