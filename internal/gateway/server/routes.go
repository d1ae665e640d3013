package server

import (
	"net/http"

	"go.uber.org/zap"

	"dualcore/internal/gateway/handler"
	"dualcore/internal/gateway/middleware"
)

func NewMux(
	simulateHandler *handler.SimulateHandler,
	sessionHandler *handler.SessionHandler,
	logger *zap.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/catalog", simulateHandler.HandleCatalog)
	mux.HandleFunc("/api/simulate", simulateHandler.HandleSimulate)
	mux.HandleFunc("/ws/session", sessionHandler.HandleSessionWS)
	mux.HandleFunc("/healthz", simulateHandler.HandleHealth)

	if logger == nil {
		logger = zap.NewNop()
	}
	return middleware.CORS(middleware.AccessLog(logger, mux))
}
