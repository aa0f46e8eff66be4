package options

import (
	"net/http"

	"github.com/a-h/policychat/models"
	"github.com/a-h/respond"
)

// Handler answers OPTIONS probes that are not CORS preflights.
type Handler struct{}

func (Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	respond.WithJSON(w, models.ChatOptionsResponse{Status: "OK"}, http.StatusOK)
}
