package integration

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/a-h/policychat/chunker"
	"github.com/a-h/policychat/client"
	"github.com/a-h/policychat/conversation"
	"github.com/a-h/policychat/knowledge"
	"github.com/a-h/policychat/models"
	"github.com/a-h/policychat/ragtest"
	"github.com/a-h/policychat/server"
)

const policy = `Annual leave

Staff receive 25 days of annual leave per year, plus public holidays. Up to 5 days may be carried over into the next year with the approval of a manager.

Sickness

Sickness absence must be reported to a manager by 9am on the first day of absence. A fit note is required for absences longer than 7 days.

Expenses

Expenses are reimbursed monthly. Receipts must be submitted within 30 days.`

type testServer struct {
	client   client.Client
	url      string
	model    *ragtest.MockModel
	embedder *ragtest.MockEmbedder
}

func newTestServer(t *testing.T, document string) testServer {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))

	dir := t.TempDir()
	path := filepath.Join(dir, "policy.txt")
	if document != "" {
		if err := os.WriteFile(path, []byte(document), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	chunks, err := chunker.New(200, 40)
	if err != nil {
		t.Fatal(err)
	}
	embedder := ragtest.NewMockEmbedder()
	model := ragtest.NewMockModel("Staff receive 25 days of annual leave.")

	kb := knowledge.New(log, path, chunks, embedder)
	if err := kb.Load(context.Background()); err != nil && document != "" {
		t.Fatalf("failed to load knowledge base: %v", err)
	}
	config := conversation.DefaultConfig()
	config.Condense = false
	pipeline, err := conversation.New(log, kb, embedder, model, config)
	if err != nil {
		t.Fatal(err)
	}

	s := httptest.NewServer(server.New(log, kb, pipeline, embedder, config.TopK))
	t.Cleanup(s.Close)
	return testServer{
		client:   client.New(s.URL),
		url:      s.URL,
		model:    model,
		embedder: embedder,
	}
}

func question(text string) models.ChatPostRequest {
	return models.ChatPostRequest{
		Messages: []models.ChatMessage{{Role: models.ChatRoleUser, Parts: []models.ChatPart{{Text: text}}}},
	}
}

func TestChatPost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ts := newTestServer(t, policy)

	resp, err := ts.client.ChatPost(context.Background(), question("How much annual leave do I get?"))
	if err != nil {
		t.Fatalf("failed to post chat: %v", err)
	}
	if resp.Message == "" {
		t.Error("expected a message")
	}
	if len(ts.model.Calls()) != 1 {
		t.Errorf("expected 1 call to the model, got %d", len(ts.model.Calls()))
	}
}

func TestChatPostEmptyMessages(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ts := newTestServer(t, policy)

	_, err := ts.client.ChatPost(context.Background(), models.ChatPostRequest{Messages: []models.ChatMessage{}})
	var ce client.Error
	if !errors.As(err, &ce) || ce.Status != http.StatusBadRequest {
		t.Fatalf("expected a 400 error, got %v", err)
	}
	if len(ts.model.Calls()) != 0 {
		t.Errorf("expected the model not to be called, got %d calls", len(ts.model.Calls()))
	}
}

func TestChatPostWithoutKnowledgeBase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ts := newTestServer(t, "")

	_, err := ts.client.ChatPost(context.Background(), question("How much annual leave do I get?"))
	var ce client.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected an error response, got %v", err)
	}
	if ce.Status != http.StatusInternalServerError || ce.Message != models.ErrorUnavailable {
		t.Errorf("unexpected error %v", ce)
	}
	if len(ts.model.Calls()) != 0 {
		t.Errorf("expected the model not to be called, got %d calls", len(ts.model.Calls()))
	}

	health, err := ts.client.Health(context.Background())
	if err != nil {
		t.Fatalf("failed to get health: %v", err)
	}
	if health.Ready {
		t.Error("expected the knowledge base not to be ready")
	}
}

func TestChatOptions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ts := newTestServer(t, policy)

	t.Run("plain OPTIONS requests get a status", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, ts.url+"/chat", nil)
		if err != nil {
			t.Fatal(err)
		}
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Body.Close()
		if res.StatusCode != http.StatusOK {
			t.Fatalf("expected status 200, got %d", res.StatusCode)
		}
		var actual models.ChatOptionsResponse
		if err := json.NewDecoder(res.Body).Decode(&actual); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if actual.Status != "OK" {
			t.Errorf("expected status OK, got %q", actual.Status)
		}
	})
	t.Run("CORS preflights are allowed", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodOptions, ts.url+"/chat", nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		res, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Body.Close()
		if res.StatusCode < 200 || res.StatusCode > 299 {
			t.Errorf("expected success, got %d", res.StatusCode)
		}
		if res.Header.Get("Access-Control-Allow-Origin") == "" {
			t.Error("expected the origin to be allowed")
		}
	})
}

func TestContextPost(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	ts := newTestServer(t, policy)

	resp, err := ts.client.ContextPost(context.Background(), models.ContextPostRequest{Text: "sickness", K: 2})
	if err != nil {
		t.Fatalf("failed to post context: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}

	health, err := ts.client.Health(context.Background())
	if err != nil {
		t.Fatalf("failed to get health: %v", err)
	}
	if !health.Ready || health.Segments < 2 {
		t.Errorf("unexpected health %#v", health)
	}
}
