package model

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single conversation turn. Content holds the display text;
// for assistant turns produced by a routed strategy the structured payload
// is already flattened to its text before it is appended to history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Window returns the most recent n messages of history, oldest first.
func Window(history []Message, n int) []Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}
