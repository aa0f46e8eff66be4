package get

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a-h/policychat/index"
	"github.com/a-h/policychat/models"
	"github.com/a-h/policychat/rag"
	"github.com/a-h/policychat/ragtest"
)

type staticSource struct {
	idx *index.Index
}

func (s staticSource) Index() *index.Index { return s.idx }

func TestHandler(t *testing.T) {
	get := func(h Handler) (resp models.HealthGetResponse, status int) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		return resp, w.Code
	}

	t.Run("not ready without an index", func(t *testing.T) {
		resp, status := get(New(staticSource{}))
		if status != http.StatusServiceUnavailable {
			t.Errorf("expected status 503, got %d", status)
		}
		if resp.Ready || resp.Segments != 0 {
			t.Errorf("unexpected response %#v", resp)
		}
	})
	t.Run("ready with an index", func(t *testing.T) {
		idx, err := index.Build(context.Background(), []rag.Segment{{Text: "a"}, {Index: 1, Text: "b"}}, ragtest.NewMockEmbedder())
		if err != nil {
			t.Fatalf("failed to build index: %v", err)
		}
		resp, status := get(New(staticSource{idx}))
		if status != http.StatusOK {
			t.Errorf("expected status 200, got %d", status)
		}
		if !resp.Ready || resp.Segments != 2 || resp.BuiltAt.IsZero() {
			t.Errorf("unexpected response %#v", resp)
		}
	})
}
