// Package bootstrap wires shared runtime dependencies for the binaries.
package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/medibot-ai/hospital-agent/internal/appointments"
	appconfig "github.com/medibot-ai/hospital-agent/internal/config"
	"github.com/medibot-ai/hospital-agent/internal/conversation"
	"github.com/medibot-ai/hospital-agent/internal/doctors"
	"github.com/medibot-ai/hospital-agent/internal/knowledge"
	"github.com/medibot-ai/hospital-agent/internal/llm"
	"github.com/medibot-ai/hospital-agent/internal/observability/metrics"
	"github.com/medibot-ai/hospital-agent/internal/patients"
	"github.com/medibot-ai/hospital-agent/internal/tools"
	"github.com/medibot-ai/hospital-agent/internal/triage"
	"github.com/medibot-ai/hospital-agent/pkg/logging"
)

// BuildPool opens and pings the Postgres connection pool.
func BuildPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("bootstrap: DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: ping db: %w", err)
	}
	return pool, nil
}

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}

	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildHistoryStore prefers Redis-backed sessions and falls back to process
// memory when Redis is absent.
func BuildHistoryStore(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) conversation.HistoryStore {
	if client := BuildRedisClient(ctx, cfg, logger, true); client != nil {
		return conversation.NewRedisHistoryStore(client, cfg.SessionTTL)
	}
	logger.Warn("session history is in-memory; sessions will not survive restarts")
	return conversation.NewMemoryHistoryStore()
}

// BuildAgent assembles the full planner stack: triage with its knowledge base,
// the booking tools over Postgres, and the conversational agent on top.
func BuildAgent(ctx context.Context, cfg *appconfig.Config, pool *pgxpool.Pool, history conversation.HistoryStore, m *metrics.AgentMetrics, logger *logging.Logger) (*conversation.Agent, error) {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		return nil, fmt.Errorf("bootstrap: OPENAI_API_KEY is required")
	}
	openAIClient := openai.NewClient(cfg.OpenAIAPIKey)

	store := knowledge.NewMemoryStore(openAIClient, cfg.EmbeddingModel, logger)
	if cfg.KnowledgeBasePath != "" {
		chunks, err := knowledge.IngestFile(ctx, store, cfg.KnowledgeBasePath)
		if err != nil {
			logger.Warn("knowledge base not loaded; triage runs without retrieval context",
				"path", cfg.KnowledgeBasePath, "error", err)
		} else {
			logger.Info("knowledge base loaded", "path", cfg.KnowledgeBasePath, "chunks", chunks)
		}
	}

	triageClient, err := buildTriageClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	router := triage.NewRouter(store, triageClient, logger)

	toolset := tools.NewToolset(
		router,
		doctors.NewRepository(pool),
		patients.NewRepository(pool),
		appointments.NewRepository(pool),
		logger,
	)
	registry := tools.NewRegistry(toolset, m)

	agent := conversation.NewAgent(openAIClient, registry, history, conversation.Options{
		Model:         cfg.OpenAIModel,
		MaxToolRounds: cfg.MaxToolRounds,
		TurnTimeout:   cfg.TurnTimeout,
	}, logger, m)
	return agent, nil
}

// buildTriageClient prefers OpenAI with a Gemini fallback when both keys are
// configured.
func buildTriageClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (llm.Client, error) {
	primary, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: openai client: %w", err)
	}
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return primary, nil
	}
	fallback, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Warn("gemini fallback unavailable", "error", err)
		return primary, nil
	}
	return llm.NewFallbackClient(primary, fallback, logger), nil
}
