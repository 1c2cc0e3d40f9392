// Package webchat serves the browser chat widget and its WebSocket transport.
package webchat

import (
	"context"
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/medibot-ai/hospital-agent/internal/conversation"
	"github.com/medibot-ai/hospital-agent/pkg/logging"
)

//go:embed widget.html
var widgetHTML []byte

// Responder produces one assistant reply per user message.
type Responder interface {
	Respond(ctx context.Context, sessionID, userText string) (string, error)
}

// InboundMessage is what the widget sends.
type InboundMessage struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text,omitempty"`
}

// OutboundMessage is what we send to the widget.
type OutboundMessage struct {
	Type      string `json:"type"` // "session", "message", "typing", "pong", "error"
	Role      string `json:"role,omitempty"`
	Text      string `json:"text,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Handler manages widget page delivery and WebSocket chat sessions.
type Handler struct {
	responder Responder
	logger    *logging.Logger
}

// NewHandler creates a web chat handler.
func NewHandler(responder Responder, logger *logging.Logger) *Handler {
	if responder == nil {
		panic("webchat: responder required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{responder: responder, logger: logger}
}

// HandleWidget serves the single-page chat widget.
func (h *Handler) HandleWidget(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(widgetHTML)
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	resumed := sessionID != ""
	if sessionID == "" {
		sessionID = generateSessionID()
	}

	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "session", SessionID: sessionID})
	if !resumed {
		h.send(conn, conversation.WelcomeMessage)
	}
	h.logger.Info("webchat: connection opened", "session_id", sessionID, "resumed", resumed)

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if msg.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
			continue
		}
		if msg.Type != "message" || strings.TrimSpace(msg.Text) == "" {
			continue
		}

		_ = websocket.JSON.Send(conn, OutboundMessage{Type: "typing"})

		reply, err := h.responder.Respond(r.Context(), sessionID, msg.Text)
		if err != nil {
			h.logger.Error("webchat: turn failed", "session_id", sessionID, "error", err)
			_ = websocket.JSON.Send(conn, OutboundMessage{
				Type: "error",
				Text: "Sorry, something went wrong. Please try again.",
			})
			continue
		}
		h.send(conn, reply)
	}
}

func (h *Handler) send(conn *websocket.Conn, text string) {
	_ = websocket.JSON.Send(conn, OutboundMessage{
		Type:      "message",
		Role:      "assistant",
		Text:      text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}
