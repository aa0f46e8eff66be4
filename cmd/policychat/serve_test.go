package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/a-h/policychat/conversation"
)

func TestServeCommandPipelineConfig(t *testing.T) {
	t.Run("defaults are used when no prompt files are given", func(t *testing.T) {
		cmd := ServeCommand{TopK: 3, Timeout: time.Second, Condense: true}
		config, err := cmd.pipelineConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.TopK != 3 || config.Timeout != time.Second || !config.Condense {
			t.Errorf("unexpected config %#v", config)
		}
		if config.SystemPrompt != conversation.DefaultSystemPrompt || config.UserPrompt != conversation.DefaultUserPrompt {
			t.Error("expected default prompts")
		}
	})
	t.Run("prompts are read from files", func(t *testing.T) {
		name := filepath.Join(t.TempDir(), "system.txt")
		if err := os.WriteFile(name, []byte("Answer in French."), 0o644); err != nil {
			t.Fatal(err)
		}
		config, err := ServeCommand{TopK: 4, Timeout: time.Second, SystemPrompt: name}.pipelineConfig()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.SystemPrompt != "Answer in French." {
			t.Errorf("unexpected system prompt %q", config.SystemPrompt)
		}
	})
	t.Run("missing prompt files are an error", func(t *testing.T) {
		_, err := ServeCommand{UserPrompt: filepath.Join(t.TempDir(), "missing.txt")}.pipelineConfig()
		if err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestServeCommandAPIKey(t *testing.T) {
	cmd := ServeCommand{GeminiAPIKey: "gemini", OpenAIAPIKey: "openai"}
	tests := []struct {
		provider string
		expected string
	}{
		{provider: "googleai", expected: "gemini"},
		{provider: "openai", expected: "openai"},
		{provider: "ollama", expected: ""},
	}
	for _, tt := range tests {
		cmd.Provider = tt.provider
		if actual := cmd.apiKey(); actual != tt.expected {
			t.Errorf("%s: expected %q, got %q", tt.provider, tt.expected, actual)
		}
	}
}
