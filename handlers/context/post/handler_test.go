package post

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/a-h/policychat/index"
	"github.com/a-h/policychat/models"
	"github.com/a-h/policychat/rag"
	"github.com/a-h/policychat/ragtest"
	"github.com/google/go-cmp/cmp"
)

type staticSource struct {
	idx *index.Index
}

func (s staticSource) Index() *index.Index { return s.idx }

func TestHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	embedder := ragtest.NewMockEmbedder()
	embedder.Embeddings["Annual leave is 25 days."] = []float32{1, 0}
	embedder.Embeddings["Expenses are paid monthly."] = []float32{0, 1}
	embedder.Embeddings["leave"] = []float32{1, 0.2}
	idx, err := index.Build(context.Background(), []rag.Segment{
		{Index: 0, Page: 1, Text: "Annual leave is 25 days."},
		{Index: 1, Offset: 30, Page: 2, Text: "Expenses are paid monthly."},
	}, embedder)
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}

	post := func(h Handler, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/context", strings.NewReader(body))
		h.ServeHTTP(w, r)
		return w
	}

	t.Run("the nearest segments are returned", func(t *testing.T) {
		w := post(New(log, staticSource{idx}, embedder, 4), `{"text":"leave","k":1}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var actual models.ContextPostResponse
		if err := json.Unmarshal(w.Body.Bytes(), &actual); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(actual.Results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(actual.Results))
		}
		actual.Results[0].Similarity = 0
		expected := models.ContextSegment{Index: 0, Page: 1, Text: "Annual leave is 25 days."}
		if diff := cmp.Diff(expected, actual.Results[0]); diff != "" {
			t.Error(diff)
		}
	})
	t.Run("the default k is used when none is given", func(t *testing.T) {
		w := post(New(log, staticSource{idx}, embedder, 4), `{"text":"leave"}`)
		var actual models.ContextPostResponse
		if err := json.Unmarshal(w.Body.Bytes(), &actual); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(actual.Results) != 2 {
			t.Errorf("expected 2 results, got %d", len(actual.Results))
		}
	})
	t.Run("empty text is rejected", func(t *testing.T) {
		w := post(New(log, staticSource{idx}, embedder, 4), `{"text":""}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})
	t.Run("a missing index is reported", func(t *testing.T) {
		w := post(New(log, staticSource{}, embedder, 4), `{"text":"leave"}`)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", w.Code)
		}
		var actual models.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &actual); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if actual.Error != models.ErrorUnavailable {
			t.Errorf("unexpected error %q", actual.Error)
		}
	})
}
