// Package conversation answers questions about the policy document using
// retrieved segments and the conversation so far.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/policychat/index"
	"github.com/a-h/policychat/rag"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
)

const (
	DefaultTopK    = 4
	DefaultTimeout = 30 * time.Second
)

// IndexSource provides the current index, or nil if there isn't one.
type IndexSource interface {
	Index() *index.Index
}

type Config struct {
	// TopK is the number of segments retrieved for each question.
	TopK    int
	Timeout time.Duration
	// Condense rewrites follow up questions into standalone questions
	// before retrieval.
	Condense       bool
	SystemPrompt   string
	UserPrompt     string
	CondensePrompt string
}

func DefaultConfig() Config {
	return Config{
		TopK:           DefaultTopK,
		Timeout:        DefaultTimeout,
		Condense:       true,
		SystemPrompt:   DefaultSystemPrompt,
		UserPrompt:     DefaultUserPrompt,
		CondensePrompt: DefaultCondensePrompt,
	}
}

func New(log *slog.Logger, source IndexSource, embedder embeddings.Embedder, model llms.Model, config Config) (*Pipeline, error) {
	if config.TopK <= 0 {
		return nil, fmt.Errorf("%w: top k must be positive, got %d", rag.ErrConfiguration, config.TopK)
	}
	if config.Timeout <= 0 {
		return nil, fmt.Errorf("%w: timeout must be positive, got %v", rag.ErrConfiguration, config.Timeout)
	}
	if config.UserPrompt == "" {
		config.UserPrompt = DefaultUserPrompt
	}
	if config.CondensePrompt == "" {
		config.CondensePrompt = DefaultCondensePrompt
	}
	return &Pipeline{
		log:      log,
		source:   source,
		embedder: embedder,
		model:    model,
		config:   config,
	}, nil
}

type Pipeline struct {
	log      *slog.Logger
	source   IndexSource
	embedder embeddings.Embedder
	model    llms.Model
	config   Config
}

type Answer struct {
	Text    string
	Sources []index.Result
}

// Answer answers question, given the turns of the conversation that came
// before it in chronological order.
func (p *Pipeline) Answer(ctx context.Context, question string, history []rag.Turn) (a Answer, err error) {
	if strings.TrimSpace(question) == "" {
		return a, fmt.Errorf("%w: question is empty", rag.ErrValidation)
	}
	for i, t := range history {
		if t.Role != rag.RoleUser && t.Role != rag.RoleAssistant {
			return a, fmt.Errorf("%w: turn %d has unknown role %q", rag.ErrValidation, i, t.Role)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	idx := p.source.Index()
	if idx == nil {
		return a, fmt.Errorf("%w: the index has not been built", rag.ErrRetrievalUnavailable)
	}

	query := question
	if p.config.Condense && len(history) > 0 {
		query, err = p.standalone(ctx, question, history)
		if err != nil {
			return a, p.generationError(ctx, "failed to condense question", err)
		}
		p.log.Debug("condensed question", slog.String("question", question), slog.String("query", query))
	}

	vector, err := p.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return a, p.generationError(ctx, "failed to embed question", err)
	}
	a.Sources, err = idx.Query(ctx, vector, p.config.TopK)
	if err != nil {
		return a, p.generationError(ctx, "failed to query index", err)
	}
	if len(a.Sources) == 0 {
		return a, fmt.Errorf("%w: no segments were retrieved", rag.ErrRetrievalUnavailable)
	}
	segmentIndexes := make([]int, len(a.Sources))
	for i, r := range a.Sources {
		segmentIndexes[i] = r.Segment.Index
	}
	p.log.Debug("retrieved context", slog.Any("segments", segmentIndexes))

	resp, err := p.model.GenerateContent(ctx, p.messages(question, history, a.Sources))
	if err != nil {
		return a, p.generationError(ctx, "failed to generate content", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return a, fmt.Errorf("%w: the model returned no content", rag.ErrGeneration)
	}
	a.Text = resp.Choices[0].Content
	return a, nil
}

// messages returns the system prompt, each turn of history under its own
// role, and finally the question with its context.
func (p *Pipeline) messages(question string, history []rag.Turn, sources []index.Result) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history)+2)
	if p.config.SystemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, p.config.SystemPrompt))
	}
	for _, t := range history {
		messages = append(messages, llms.TextParts(messageType(t.Role), t.Text))
	}
	prompt := fmt.Sprintf(p.config.UserPrompt, contextBlock(sources), question)
	return append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))
}

func messageType(r rag.Role) llms.ChatMessageType {
	if r == rag.RoleAssistant {
		return llms.ChatMessageTypeAI
	}
	return llms.ChatMessageTypeHuman
}

func contextBlock(sources []index.Result) string {
	var sb strings.Builder
	for _, r := range sources {
		sb.WriteString("Extract ")
		sb.WriteString(strconv.Itoa(r.Segment.Index + 1))
		if r.Segment.Page > 0 {
			sb.WriteString(" from page ")
			sb.WriteString(strconv.Itoa(r.Segment.Page))
		}
		sb.WriteString("\n")
		sb.WriteString(r.Segment.Text)
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func (p *Pipeline) standalone(ctx context.Context, question string, history []rag.Turn) (string, error) {
	var sb strings.Builder
	for _, t := range history {
		if t.Role == rag.RoleAssistant {
			sb.WriteString("Assistant: ")
		} else {
			sb.WriteString("Human: ")
		}
		sb.WriteString(t.Text)
		sb.WriteString("\n")
	}
	prompt := fmt.Sprintf(p.config.CondensePrompt, sb.String(), question)
	query, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt)
	if err != nil {
		return "", err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return question, nil
	}
	return query, nil
}

func (p *Pipeline) generationError(ctx context.Context, msg string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: timed out after %v: %w", rag.ErrGeneration, msg, p.config.Timeout, err)
	}
	return fmt.Errorf("%w: %s: %w", rag.ErrGeneration, msg, err)
}
