package post

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/a-h/policychat/conversation"
	"github.com/a-h/policychat/models"
	"github.com/a-h/respond"
	"github.com/tmc/langchaingo/embeddings"
)

// MaxK is the largest number of segments that can be requested.
const MaxK = 50

func New(log *slog.Logger, source conversation.IndexSource, embedder embeddings.Embedder, defaultK int) Handler {
	return Handler{
		log:      log,
		source:   source,
		embedder: embedder,
		defaultK: defaultK,
	}
}

// Handler returns the segments nearest to the text, without calling the
// language model.
type Handler struct {
	log      *slog.Logger
	source   conversation.IndexSource
	embedder embeddings.Embedder
	defaultK int
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req models.ContextPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		h.log.Warn("failed to decode body", slog.Any("error", err))
		respondWithError(w, "Invalid request format.", http.StatusBadRequest)
		return
	}
	if req.Text == "" {
		respondWithError(w, "Invalid request format: text must not be empty.", http.StatusBadRequest)
		return
	}
	k := req.K
	if k == 0 {
		k = h.defaultK
	}
	if k < 0 || k > MaxK {
		respondWithError(w, "Invalid request format: k must be between 1 and 50.", http.StatusBadRequest)
		return
	}

	idx := h.source.Index()
	if idx == nil {
		respondWithError(w, models.ErrorUnavailable, http.StatusInternalServerError)
		return
	}
	embedding, err := h.embedder.EmbedQuery(r.Context(), req.Text)
	if err != nil {
		h.log.Error("failed to embed query", slog.Any("error", err))
		respondWithError(w, "Failed to embed query.", http.StatusInternalServerError)
		return
	}
	results, err := idx.Query(r.Context(), embedding, k)
	if err != nil {
		h.log.Error("failed to query index", slog.Any("error", err))
		respondWithError(w, "Failed to query index.", http.StatusInternalServerError)
		return
	}

	resp := models.ContextPostResponse{
		Results: make([]models.ContextSegment, len(results)),
	}
	for i, result := range results {
		resp.Results[i] = models.ContextSegment{
			Index:      result.Segment.Index,
			Page:       result.Segment.Page,
			Text:       result.Segment.Text,
			Similarity: result.Similarity,
		}
	}
	respond.WithJSON(w, resp, http.StatusOK)
}

func respondWithError(w http.ResponseWriter, msg string, status int) {
	respond.WithJSON(w, models.ErrorResponse{Error: msg}, status)
}
