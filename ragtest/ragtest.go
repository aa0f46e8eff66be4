// Package ragtest provides embedders and models with predictable output for tests.
package ragtest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
)

// MockEmbedder returns the configured embedding for known texts and Default
// for anything else.
type MockEmbedder struct {
	Embeddings map[string][]float32
	Default    []float32

	// FailOn causes embedding to fail when the input text matches.
	FailOn string

	mu      sync.Mutex
	queries []string
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Default:    []float32{0.1, 0.2, 0.3},
	}
}

func (m *MockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.embed(text)
		if err != nil {
			return nil, err
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.queries = append(m.queries, text)
	m.mu.Unlock()
	return m.embed(text)
}

func (m *MockEmbedder) embed(text string) ([]float32, error) {
	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}
	if v, ok := m.Embeddings[text]; ok {
		return v, nil
	}
	return m.Default, nil
}

// Queries returns the texts passed to EmbedQuery.
func (m *MockEmbedder) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

var _ embeddings.Embedder = (*MockEmbedder)(nil)

// MockModel records the messages it is sent and replies with Responses in
// order, repeating the last one.
type MockModel struct {
	Responses []string
	Err       error
	// Delay holds each call until it elapses or the context is done.
	Delay time.Duration

	mu    sync.Mutex
	calls [][]llms.MessageContent
}

func NewMockModel(responses ...string) *MockModel {
	return &MockModel{Responses: responses}
}

func (m *MockModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	n := len(m.calls)
	m.calls = append(m.calls, messages)
	m.mu.Unlock()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return nil, errors.New("mock model has no responses")
	}
	text := m.Responses[min(n, len(m.Responses)-1)]
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: text}},
	}, nil
}

func (m *MockModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

// Calls returns the messages of each GenerateContent call.
func (m *MockModel) Calls() [][]llms.MessageContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]llms.MessageContent(nil), m.calls...)
}

var _ llms.Model = (*MockModel)(nil)

// Text returns the text parts of a message joined together.
func Text(m llms.MessageContent) (s string) {
	for _, p := range m.Parts {
		if tc, ok := p.(llms.TextContent); ok {
			s += tc.Text
		}
	}
	return s
}
