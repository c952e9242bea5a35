package api

import (
	"log/slog"
	"net/http"
)

// healthHandler reports liveness plus whether the Telegram bot is
// running alongside the HTTP server.
func healthHandler(botActive bool, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"bot_active": botActive,
		}, logger)
	}
}
