package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/astrarise/astrarise-backend/internal/hub"
	"github.com/astrarise/astrarise-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger, originPatterns []string) http.Handler {
	r := chi.NewRouter()

	r.Get("/", Banner)
	r.Get("/health", Health)
	r.Get("/ws", ws.Handler(h, log, originPatterns))
	return r
}
