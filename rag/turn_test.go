package rag

import (
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		input    string
		expected Role
		err      error
	}{
		{input: "user", expected: RoleUser},
		{input: "assistant", expected: RoleAssistant},
		{input: "model", expected: RoleAssistant},
		{input: "system", err: ErrValidation},
		{input: "", err: ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			actual, err := ParseRole(tt.input)
			if tt.err != nil {
				if !errors.Is(err, tt.err) {
					t.Fatalf("expected error %v, got %v", tt.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
		})
	}
}
