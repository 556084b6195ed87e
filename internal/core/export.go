package core

import (
	"strings"
	"time"

	"ai-chat-service/internal/store"
)

const exportSeparator = "----------------------------------------"

// FormatTranscript renders a session as a plain-text document: a header with
// the title and export time, a separator, then one "<Role>: <content>" block
// per message.
func FormatTranscript(title string, messages []store.Message, exportedAt time.Time) string {
	var b strings.Builder
	b.WriteString("Chat Transcript\n")
	b.WriteString("Title: " + title + "\n")
	b.WriteString("Exported: " + exportedAt.Format(time.RFC1123) + "\n")
	b.WriteString(exportSeparator + "\n\n")

	for _, msg := range messages {
		b.WriteString(displayRole(msg.Role) + ": " + msg.Content + "\n\n")
	}
	return b.String()
}

func displayRole(role string) string {
	if role == store.RoleUser {
		return "You"
	}
	return "AI Assistant"
}
