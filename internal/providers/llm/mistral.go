package llm

import (
	"context"
	"errors"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/mistral"
)

// DefaultModel is used whenever neither the agent nor its tenant config
// resolves a model name.
const DefaultModel = "mistral-small-latest"

type Mistral struct {
	model *mistral.Model
}

func NewMistral(apiKey string) (*Mistral, error) {
	m, err := mistral.New(
		mistral.WithAPIKey(apiKey),
		mistral.WithModel(DefaultModel),
	)
	if err != nil {
		return nil, err
	}
	return &Mistral{model: m}, nil
}

func (p *Mistral) Close() error { return nil }

func (p *Mistral) Complete(ctx context.Context, messages []Message, model string) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(chatMessageType(m.Role), m.Content))
	}

	opts := []llms.CallOption{}
	if model != "" {
		opts = append(opts, llms.WithModel(model))
	}

	resp, err := p.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Content, nil
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
