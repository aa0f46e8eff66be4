// Package provider creates the language model and embedder clients.
package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/a-h/policychat/rag"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	GoogleAI = "googleai"
	OpenAI   = "openai"
	Ollama   = "ollama"
)

// Names lists the supported providers.
var Names = []string{GoogleAI, OpenAI, Ollama}

type Models struct {
	Chat      string
	Embedding string
}

// Defaults are the models used when none are configured.
var Defaults = map[string]Models{
	GoogleAI: {Chat: "gemini-2.5-flash", Embedding: "embedding-001"},
	OpenAI:   {Chat: "gpt-4o-mini", Embedding: "text-embedding-3-small"},
	Ollama:   {Chat: "mistral-nemo", Embedding: "nomic-embed-text"},
}

const DefaultOllamaURL = "http://127.0.0.1:11434/"

type Config struct {
	Name           string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	// ServerURL is only used by Ollama.
	ServerURL  string
	HTTPClient *http.Client
}

// New returns the chat model and embedder for the configured provider.
// Hosted providers require an API key.
func New(ctx context.Context, config Config) (llm llms.Model, embedder embeddings.Embedder, err error) {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	defaults, ok := Defaults[config.Name]
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown provider %q, expected one of %v", rag.ErrConfiguration, config.Name, Names)
	}
	if config.ChatModel == "" {
		config.ChatModel = defaults.Chat
	}
	if config.EmbeddingModel == "" {
		config.EmbeddingModel = defaults.Embedding
	}
	if config.ServerURL == "" {
		config.ServerURL = DefaultOllamaURL
	}
	switch config.Name {
	case GoogleAI:
		if config.APIKey == "" {
			return nil, nil, fmt.Errorf("%w: an API key is required for %s, set GEMINI_API_KEY", rag.ErrConfiguration, config.Name)
		}
		c, err := googleai.New(ctx,
			googleai.WithAPIKey(config.APIKey),
			googleai.WithDefaultModel(config.ChatModel),
			googleai.WithDefaultEmbeddingModel(config.EmbeddingModel))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Google AI client: %w", err)
		}
		embedder, err = embeddings.NewEmbedder(c)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		return c, embedder, nil
	case OpenAI:
		if config.APIKey == "" {
			return nil, nil, fmt.Errorf("%w: an API key is required for %s, set OPENAI_API_KEY", rag.ErrConfiguration, config.Name)
		}
		c, err := openai.New(
			openai.WithToken(config.APIKey),
			openai.WithModel(config.ChatModel),
			openai.WithEmbeddingModel(config.EmbeddingModel),
			openai.WithHTTPClient(httpClient))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OpenAI client: %w", err)
		}
		embedder, err = embeddings.NewEmbedder(c)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		return c, embedder, nil
	case Ollama:
		ec, err := ollama.New(
			ollama.WithModel(config.EmbeddingModel),
			ollama.WithHTTPClient(httpClient),
			ollama.WithServerURL(config.ServerURL))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		embedder, err = embeddings.NewEmbedder(ec)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		llmc, err := ollama.New(
			ollama.WithModel(config.ChatModel),
			ollama.WithHTTPClient(httpClient),
			ollama.WithServerURL(config.ServerURL))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create LLM: %w", err)
		}
		return llmc, embedder, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown provider %q, expected one of %v", rag.ErrConfiguration, config.Name, Names)
}
