package get

import (
	"net/http"

	"github.com/a-h/policychat/conversation"
	"github.com/a-h/policychat/models"
	"github.com/a-h/respond"
)

func New(source conversation.IndexSource) Handler {
	return Handler{source: source}
}

// Handler reports whether the knowledge base is ready to answer questions.
type Handler struct {
	source conversation.IndexSource
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	idx := h.source.Index()
	resp := models.HealthGetResponse{
		Ready:    idx != nil,
		Segments: idx.Len(),
		BuiltAt:  idx.BuiltAt(),
	}
	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	respond.WithJSON(w, resp, status)
}
