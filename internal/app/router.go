package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// updateHandler consumes updates delivered to the webhook
type updateHandler interface {
	HandleWebhookUpdate(ctx context.Context, update tgbotapi.Update)
}

// newRouter serves health checks and the Telegram webhook. Updates are
// handled on ctx, not on the request context.
func newRouter(ctx context.Context, h updateHandler, webhookMode bool, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		mode := "polling"
		if webhookMode {
			mode = "webhook"
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Channel publisher bot is running (mode: %s)", mode)
	})

	r.Post("/telegram-webhook", func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			logger.Warn("Error decoding webhook update", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		// Process update in background to respond quickly to Telegram
		go h.HandleWebhookUpdate(ctx, update)

		w.WriteHeader(http.StatusOK)
	})

	return r
}
