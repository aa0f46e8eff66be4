package main

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/a-h/policychat/chunker"
	"github.com/a-h/policychat/conversation"
	"github.com/a-h/policychat/knowledge"
	"github.com/a-h/policychat/provider"
	"github.com/a-h/policychat/server"
)

type ServeCommand struct {
	Document       string        `help:"The policy document to answer questions about." env:"DOCUMENT" default:"policy.pdf"`
	Watch          bool          `help:"Rebuild the index when the document changes." env:"WATCH" default:"false"`
	Provider       string        `help:"The model provider: googleai, openai or ollama." env:"PROVIDER" default:"googleai" enum:"googleai,openai,ollama"`
	GeminiAPIKey   string        `help:"The API key for the googleai provider." env:"GEMINI_API_KEY" default:""`
	OpenAIAPIKey   string        `help:"The API key for the openai provider." env:"OPENAI_API_KEY" default:""`
	OllamaURL      string        `help:"The URL of the Ollama server." env:"OLLAMA_URL" default:"http://127.0.0.1:11434/"`
	EmbeddingModel string        `help:"The model to use for embeddings. Defaults to the provider's default." env:"EMBEDDING_MODEL" default:""`
	ChatModel      string        `help:"The model to chat with. Defaults to the provider's default." env:"CHAT_MODEL" default:""`
	ChunkSize      int           `help:"The maximum number of characters in a segment." env:"CHUNK_SIZE" default:"1500"`
	ChunkOverlap   int           `help:"The number of characters shared by consecutive segments." env:"CHUNK_OVERLAP" default:"300"`
	TopK           int           `help:"The number of segments used to answer each question." env:"TOP_K" default:"4"`
	Timeout        time.Duration `help:"The maximum time to spend answering a question." env:"TIMEOUT" default:"30s"`
	Condense       bool          `help:"Rewrite follow up questions as standalone questions before retrieval." env:"CONDENSE" default:"true" negatable:""`
	SystemPrompt   string        `help:"A file containing the system prompt to use." env:"SYSTEM_PROMPT" default:""`
	UserPrompt     string        `help:"A file containing the user prompt template to use." env:"USER_PROMPT" default:""`
	CondensePrompt string        `help:"A file containing the condense prompt template to use." env:"CONDENSE_PROMPT" default:""`
	ListenAddr     string        `help:"The address to listen on." env:"LISTEN_ADDR" default:"localhost:5000"`
	TLSCertFile    string        `help:"The TLS certificate file." env:"TLS_CERT_FILE" default:""`
	TLSKeyFile     string        `help:"The TLS key file." env:"TLS_KEY_FILE" default:""`
	LogLevel       string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
	LogFormat      string        `help:"The log format to use: json or pretty." env:"LOG_FORMAT" default:"json" enum:"json,pretty"`
}

func readFileOrDefault(filename, defaultContent string) (string, error) {
	if filename == "" {
		return defaultContent, nil
	}
	contents, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(contents), nil
}

func (c ServeCommand) apiKey() string {
	switch c.Provider {
	case provider.GoogleAI:
		return c.GeminiAPIKey
	case provider.OpenAI:
		return c.OpenAIAPIKey
	}
	return ""
}

func (c ServeCommand) pipelineConfig() (config conversation.Config, err error) {
	config = conversation.DefaultConfig()
	config.TopK = c.TopK
	config.Timeout = c.Timeout
	config.Condense = c.Condense
	if config.SystemPrompt, err = readFileOrDefault(c.SystemPrompt, conversation.DefaultSystemPrompt); err != nil {
		return config, fmt.Errorf("failed to read system prompt: %w", err)
	}
	if config.UserPrompt, err = readFileOrDefault(c.UserPrompt, conversation.DefaultUserPrompt); err != nil {
		return config, fmt.Errorf("failed to read user prompt: %w", err)
	}
	if config.CondensePrompt, err = readFileOrDefault(c.CondensePrompt, conversation.DefaultCondensePrompt); err != nil {
		return config, fmt.Errorf("failed to read condense prompt: %w", err)
	}
	return config, nil
}

func (c ServeCommand) Run(ctx context.Context) (err error) {
	log := getLogger(c.LogLevel, c.LogFormat)

	config, err := c.pipelineConfig()
	if err != nil {
		return err
	}
	chunks, err := chunker.New(c.ChunkSize, c.ChunkOverlap)
	if err != nil {
		return err
	}

	log.Info("creating model clients", slog.String("provider", c.Provider))
	llm, emb, err := provider.New(ctx, provider.Config{
		Name:           c.Provider,
		APIKey:         c.apiKey(),
		ChatModel:      c.ChatModel,
		EmbeddingModel: c.EmbeddingModel,
		ServerURL:      c.OllamaURL,
	})
	if err != nil {
		return err
	}

	kb := knowledge.New(log, c.Document, chunks, emb)
	log.Info("building knowledge base", slog.String("document", c.Document))
	if err = kb.Load(ctx); err != nil {
		// Keep serving, so that clients get a clear error rather than no answer.
		log.Error("failed to build knowledge base, questions will not be answered", slog.Any("error", err))
	}
	if c.Watch {
		go func() {
			if err := kb.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("stopped watching document", slog.Any("error", err))
			}
		}()
	}

	pipeline, err := conversation.New(log, kb, emb, llm, config)
	if err != nil {
		return err
	}

	log.Info("Listening", slog.String("addr", c.ListenAddr))
	s := &http.Server{
		Addr:    c.ListenAddr,
		Handler: server.New(log, kb, pipeline, emb, c.TopK),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down server", slog.Any("error", err))
		}
	}()
	if c.TLSCertFile != "" && c.TLSKeyFile != "" {
		log.Info("Enabling TLS mode")
		var cert tls.Certificate
		cert, err = tls.LoadX509KeyPair(c.TLSCertFile, c.TLSKeyFile)
		if err != nil {
			return fmt.Errorf("failed to load cert: %w", err)
		}
		s.TLSConfig = &tls.Config{
			MinVersion:   tls.VersionTLS12,
			Certificates: []tls.Certificate{cert},
		}
		err = s.ListenAndServeTLS(c.TLSCertFile, c.TLSKeyFile)
	} else {
		err = s.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
