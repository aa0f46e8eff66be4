package rag

import "fmt"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole maps a wire role to a Role. "model" is accepted as an alias for
// the assistant, since that is what Gemini-style clients send.
func ParseRole(s string) (Role, error) {
	switch s {
	case "user":
		return RoleUser, nil
	case "assistant", "model":
		return RoleAssistant, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
}

// Turn is one message in a conversation.
type Turn struct {
	Role Role
	Text string
}
