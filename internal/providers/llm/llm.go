package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

type Provider interface {
	// Complete runs one chat completion over the ordered message list.
	// Single attempt, no retries: a failure here is the caller's only
	// fatal upstream error.
	Complete(ctx context.Context, messages []Message, model string) (string, error)
	Close() error
}
