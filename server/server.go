// Package server routes HTTP requests to the handlers.
package server

import (
	"log/slog"
	"net/http"

	"github.com/a-h/policychat/conversation"
	chatoptions "github.com/a-h/policychat/handlers/chat/options"
	chatpost "github.com/a-h/policychat/handlers/chat/post"
	contextpost "github.com/a-h/policychat/handlers/context/post"
	healthget "github.com/a-h/policychat/handlers/health/get"
	"github.com/rs/cors"
	"github.com/tmc/langchaingo/embeddings"
)

// New returns the routes, with CORS allowed from any origin.
func New(log *slog.Logger, source conversation.IndexSource, answerer chatpost.Answerer, embedder embeddings.Embedder, topK int) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /chat", chatpost.New(log, answerer))
	mux.Handle("OPTIONS /chat", chatoptions.Handler{})
	mux.Handle("POST /context", contextpost.New(log, source, embedder, topK))
	mux.Handle("GET /health", healthget.New(source))
	return cors.AllowAll().Handler(mux)
}
