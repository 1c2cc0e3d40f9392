package webchat

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/medibot-ai/hospital-agent/internal/conversation"
	"github.com/medibot-ai/hospital-agent/pkg/logging"
)

type stubResponder struct {
	reply string
	err   error
	seen  []string
}

func (s *stubResponder) Respond(_ context.Context, sessionID, text string) (string, error) {
	s.seen = append(s.seen, sessionID+"|"+text)
	return s.reply, s.err
}

func newWSServer(t *testing.T, responder Responder) (*httptest.Server, string) {
	t.Helper()
	h := NewHandler(responder, logging.NewWithWriter("error", io.Discard))
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, err := websocket.Dial(wsURL, "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func receive(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	var msg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	return msg
}

func TestWebSocketChatTurn(t *testing.T) {
	responder := &stubResponder{reply: "We have Dr. Asha Rao available."}
	_, wsURL := newWSServer(t, responder)
	conn := dial(t, wsURL)

	session := receive(t, conn)
	require.Equal(t, "session", session.Type)
	assert.NotEmpty(t, session.SessionID)

	welcome := receive(t, conn)
	require.Equal(t, "message", welcome.Type)
	assert.Equal(t, conversation.WelcomeMessage, welcome.Text)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "show me cardiologists"}))

	typing := receive(t, conn)
	assert.Equal(t, "typing", typing.Type)

	reply := receive(t, conn)
	assert.Equal(t, "message", reply.Type)
	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "We have Dr. Asha Rao available.", reply.Text)

	require.Len(t, responder.seen, 1)
	assert.Equal(t, session.SessionID+"|show me cardiologists", responder.seen[0])
}

func TestWebSocketResumedSessionSkipsWelcome(t *testing.T) {
	responder := &stubResponder{reply: "ok"}
	_, wsURL := newWSServer(t, responder)
	conn := dial(t, wsURL+"?session=sess-42")

	session := receive(t, conn)
	require.Equal(t, "session", session.Type)
	assert.Equal(t, "sess-42", session.SessionID)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	pong := receive(t, conn)
	assert.Equal(t, "pong", pong.Type)
}

func TestWebSocketTurnFailure(t *testing.T) {
	responder := &stubResponder{err: errors.New("llm down")}
	_, wsURL := newWSServer(t, responder)
	conn := dial(t, wsURL+"?session=sess-42")

	receive(t, conn) // session

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "hello"}))
	receive(t, conn) // typing

	errMsg := receive(t, conn)
	assert.Equal(t, "error", errMsg.Type)
	assert.Equal(t, "Sorry, something went wrong. Please try again.", errMsg.Text)
}

func TestWebSocketIgnoresBlankMessages(t *testing.T) {
	responder := &stubResponder{reply: "ok"}
	_, wsURL := newWSServer(t, responder)
	conn := dial(t, wsURL+"?session=sess-42")

	receive(t, conn) // session

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "   "}))
	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))

	pong := receive(t, conn)
	assert.Equal(t, "pong", pong.Type)
	assert.Empty(t, responder.seen)
}

func TestHandleWidget(t *testing.T) {
	h := NewHandler(&stubResponder{}, logging.NewWithWriter("error", io.Discard))

	rec := httptest.NewRecorder()
	h.HandleWidget(rec, httptest.NewRequest(http.MethodGet, "/chat-ui", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "MediBot")
}
