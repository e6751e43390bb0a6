package bimrag

// Message is one turn of the conversation history sent with a search
// request.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage returns a Message from the user with the given content.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
