package ai

// Role tags a chat message with its speaker.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// SystemUser builds the system/user pair every planner call sends.
func SystemUser(system, user string) []Message {
	return []Message{
		{Role: RoleSystem, Content: system},
		{Role: RoleUser, Content: user},
	}
}
