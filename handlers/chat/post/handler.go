package post

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/policychat/conversation"
	"github.com/a-h/policychat/models"
	"github.com/a-h/policychat/rag"
	"github.com/a-h/respond"
	"github.com/google/uuid"
)

type Answerer interface {
	Answer(ctx context.Context, question string, history []rag.Turn) (conversation.Answer, error)
}

func New(log *slog.Logger, answerer Answerer) Handler {
	return Handler{
		log:      log,
		answerer: answerer,
	}
}

type Handler struct {
	log      *slog.Logger
	answerer Answerer
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-Id", requestID)
	log := h.log.With(slog.String("requestId", requestID))

	var req models.ChatPostRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		log.Warn("failed to decode body", slog.Any("error", err))
		respondWithError(w, "Invalid request format.", http.StatusBadRequest)
		return
	}
	question, history, err := parse(req)
	if err != nil {
		log.Warn("invalid request", slog.Any("error", err))
		respondWithError(w, fmt.Sprintf("Invalid request format: %v.", err), http.StatusBadRequest)
		return
	}

	start := time.Now()
	answer, err := h.answerer.Answer(r.Context(), question, history)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrValidation):
			log.Warn("invalid question", slog.Any("error", err))
			respondWithError(w, "Invalid request format.", http.StatusBadRequest)
		case errors.Is(err, rag.ErrRetrievalUnavailable):
			log.Error("knowledge base unavailable", slog.Any("error", err))
			respondWithError(w, models.ErrorUnavailable, http.StatusInternalServerError)
		default:
			log.Error("failed to answer question", slog.Any("error", err))
			respondWithError(w, models.ErrorGeneration, http.StatusInternalServerError)
		}
		return
	}
	log.Info("answered question",
		slog.Int("turns", len(history)),
		slog.Int("sources", len(answer.Sources)),
		slog.Duration("duration", time.Since(start)))

	respond.WithJSON(w, models.ChatPostResponse{Message: answer.Text}, http.StatusOK)
}

// parse splits the conversation into the question, which is the last
// message, and the history before it.
func parse(req models.ChatPostRequest) (question string, history []rag.Turn, err error) {
	if len(req.Messages) == 0 {
		return "", nil, errors.New("messages must not be empty")
	}
	turns := make([]rag.Turn, len(req.Messages))
	for i, m := range req.Messages {
		if len(m.Parts) == 0 {
			return "", nil, fmt.Errorf("message %d has no parts", i)
		}
		var sb strings.Builder
		for _, p := range m.Parts {
			sb.WriteString(p.Text)
		}
		if strings.TrimSpace(sb.String()) == "" {
			return "", nil, fmt.Errorf("message %d has no text", i)
		}
		role, err := rag.ParseRole(string(m.Role))
		if err != nil {
			return "", nil, fmt.Errorf("message %d has unknown role %q", i, m.Role)
		}
		turns[i] = rag.Turn{Role: role, Text: sb.String()}
	}
	last := turns[len(turns)-1]
	if last.Role != rag.RoleUser {
		return "", nil, fmt.Errorf("the last message must have the %q role", rag.RoleUser)
	}
	return last.Text, turns[:len(turns)-1], nil
}

func respondWithError(w http.ResponseWriter, msg string, status int) {
	respond.WithJSON(w, models.ErrorResponse{Error: msg}, status)
}
