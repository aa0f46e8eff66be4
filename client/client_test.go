package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/policychat/models"
	"github.com/google/go-cmp/cmp"
)

func TestClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", func(w http.ResponseWriter, r *http.Request) {
		var req models.ChatPostRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(models.ErrorResponse{Error: "Invalid request format."})
			return
		}
		json.NewEncoder(w).Encode(models.ChatPostResponse{Message: "You asked: " + req.Messages[0].Parts[0].Text})
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(models.HealthGetResponse{})
	})
	s := httptest.NewServer(mux)
	defer s.Close()
	c := New(s.URL)
	ctx := context.Background()

	t.Run("chat returns the answer", func(t *testing.T) {
		resp, err := c.ChatPost(ctx, models.ChatPostRequest{
			Messages: []models.ChatMessage{{Role: models.ChatRoleUser, Parts: []models.ChatPart{{Text: "Hi"}}}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(models.ChatPostResponse{Message: "You asked: Hi"}, resp); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("error envelopes are returned as errors", func(t *testing.T) {
		_, err := c.ChatPost(ctx, models.ChatPostRequest{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		var ce Error
		if errors.As(err, &ce) && ce.Message != "Invalid request format." {
			t.Errorf("unexpected message %q", ce.Message)
		}
	})
	t.Run("an unready server is not an error", func(t *testing.T) {
		resp, err := c.Health(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.Ready {
			t.Error("expected not ready")
		}
	})
}
