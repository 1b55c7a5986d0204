package llm

import (
	"context"
	"errors"
	"strings"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

// VertexGemini is the alternative Provider for deployments that run on
// Google Cloud instead of the Mistral API.
type VertexGemini struct {
	client       *vertexgenai.Client
	defaultModel string
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, defaultModel: modelName}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Complete(ctx context.Context, messages []Message, model string) (string, error) {
	name := model
	if name == "" || strings.HasPrefix(name, "mistral") {
		// mistral model ids mean nothing to Vertex
		name = v.defaultModel
	}
	m := v.client.GenerativeModel(name)

	resp, err := m.GenerateContent(ctx, vertexgenai.Text(flatten(messages)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	if b.Len() == 0 {
		return "", errors.New("empty completion response")
	}
	return b.String(), nil
}

// flatten renders the chat transcript as a single prompt; the Vertex
// text API has no per-message roles in this codepath.
func flatten(messages []Message) string {
	var b strings.Builder
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			b.WriteString(m.Content)
		case RoleAssistant:
			b.WriteString("Assistant: " + m.Content)
		default:
			b.WriteString("User: " + m.Content)
		}
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}
