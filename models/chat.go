package models

// ChatPostRequest holds the whole conversation. The last message is the
// question being asked, and must have the user role.
type ChatPostRequest struct {
	Messages []ChatMessage `json:"messages"`
}

// ChatRole is "user" or "assistant". "model" is accepted as "assistant".
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleModel     ChatRole = "model"
)

type ChatMessage struct {
	Role  ChatRole   `json:"role"`
	Parts []ChatPart `json:"parts"`
}

type ChatPart struct {
	Text string `json:"text"`
}

type ChatPostResponse struct {
	Message string `json:"message"`
}

type ChatOptionsResponse struct {
	Status string `json:"status"`
}
