package core

import "ai-chat-service/internal/store"

const (
	defaultHistoryWindow = 15

	chatSystemInstruction = "You are a helpful AI assistant. Answer the user's questions " +
		"clearly and concisely, and stay on the topic of the conversation."
)

// Prompt is one role-tagged turn handed to the completion gateway.
type Prompt struct {
	Role    string
	Content string
}

// WindowHistory bounds the context sent downstream: the last limit messages of
// the history, unchanged in order, preceded by exactly one system prompt.
// A non-positive limit falls back to the default window size.
func WindowHistory(history []store.Message, limit int) []Prompt {
	if limit <= 0 {
		limit = defaultHistoryWindow
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}

	prompts := make([]Prompt, 0, len(history)+1)
	prompts = append(prompts, Prompt{Role: store.RoleSystem, Content: chatSystemInstruction})
	for _, msg := range history {
		prompts = append(prompts, Prompt{Role: msg.Role, Content: msg.Content})
	}
	return prompts
}
