// Package router assembles the HTTP surface of the booking assistant.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medibot-ai/hospital-agent/internal/conversation"
	httpmiddleware "github.com/medibot-ai/hospital-agent/internal/http/middleware"
	"github.com/medibot-ai/hospital-agent/internal/webchat"
	"github.com/medibot-ai/hospital-agent/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *conversation.Handler
	WebchatHandler     *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// ChatRatePerSecond/ChatBurst limit POST /chat per client IP. Zero
	// disables the limiter.
	ChatRatePerSecond float64
	ChatBurst         int
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.ChatHandler != nil {
		r.Group(func(chat chi.Router) {
			if cfg.ChatRatePerSecond > 0 {
				chat.Use(httpmiddleware.RateLimit(cfg.ChatRatePerSecond, cfg.ChatBurst))
			}
			chat.Post("/chat", cfg.ChatHandler.Chat)
		})
	}

	if cfg.WebchatHandler != nil {
		r.Get("/chat-ui", cfg.WebchatHandler.HandleWidget)
		r.Get("/ws", cfg.WebchatHandler.HandleWebSocket)
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
