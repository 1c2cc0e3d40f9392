package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrUnknownSession is returned when a session id has no stored history.
var ErrUnknownSession = errors.New("conversation: unknown session")

// HistoryStore persists per-session message history, tool exchanges included.
type HistoryStore interface {
	Load(ctx context.Context, sessionID string) ([]openai.ChatCompletionMessage, error)
	Save(ctx context.Context, sessionID string, history []openai.ChatCompletionMessage) error
}

type redisHistoryStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisHistoryStore keeps session history in Redis with a sliding TTL.
// Every Save refreshes the expiry, so sessions die only after going idle.
func NewRedisHistoryStore(client *redis.Client, ttl time.Duration) HistoryStore {
	if client == nil {
		panic("conversation: redis client required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisHistoryStore{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("hospitalagent.internal.conversation.history"),
	}
}

func (s *redisHistoryStore) Save(ctx context.Context, sessionID string, history []openai.ChatCompletionMessage) error {
	ctx, span := s.tracer.Start(ctx, "conversation.save_history")
	defer span.End()

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: marshal history: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: persist history: %w", err)
	}
	return nil
}

func (s *redisHistoryStore) Load(ctx context.Context, sessionID string) ([]openai.ChatCompletionMessage, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_history")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUnknownSession
		}
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: load history: %w", err)
	}

	var history []openai.ChatCompletionMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: decode history: %w", err)
	}
	return history, nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

type memoryHistoryStore struct {
	mu       sync.Mutex
	sessions map[string][]openai.ChatCompletionMessage
}

// NewMemoryHistoryStore keeps history in process memory. The CLI uses it; the
// API server uses Redis so sessions survive restarts.
func NewMemoryHistoryStore() HistoryStore {
	return &memoryHistoryStore{sessions: make(map[string][]openai.ChatCompletionMessage)}
}

func (s *memoryHistoryStore) Save(_ context.Context, sessionID string, history []openai.ChatCompletionMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]openai.ChatCompletionMessage, len(history))
	copy(cp, history)
	s.sessions[sessionID] = cp
	return nil
}

func (s *memoryHistoryStore) Load(_ context.Context, sessionID string) ([]openai.ChatCompletionMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrUnknownSession
	}
	cp := make([]openai.ChatCompletionMessage, len(history))
	copy(cp, history)
	return cp, nil
}
