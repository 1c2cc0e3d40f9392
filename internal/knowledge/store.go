// Package knowledge holds the hospital guide used to route symptoms to a
// specialty. Passages are embedded once at startup and retrieved by cosine
// similarity.
package knowledge

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/medibot-ai/hospital-agent/pkg/logging"
)

type embeddingClient interface {
	CreateEmbeddings(ctx context.Context, request openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Retriever exposes the query capability needed by the specialty router.
type Retriever interface {
	Query(ctx context.Context, query string, topK int) ([]string, error)
}

// MemoryStore keeps embedded passages in memory and supports cosine retrieval.
type MemoryStore struct {
	client embeddingClient
	model  string
	logger *logging.Logger

	mu       sync.RWMutex
	passages []passage
}

type passage struct {
	content   string
	embedding []float32
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(client embeddingClient, model string, logger *logging.Logger) *MemoryStore {
	if client == nil {
		panic("knowledge: embedding client cannot be nil")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryStore{
		client: client,
		model:  model,
		logger: logger,
	}
}

// AddPassages embeds and stores the provided contents.
func (s *MemoryStore) AddPassages(ctx context.Context, contents []string) error {
	if len(contents) == 0 {
		return nil
	}

	req := &openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(s.model),
		Input: contents,
	}
	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Data) != len(contents) {
		return errors.New("knowledge: embedding response size mismatch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range resp.Data {
		s.passages = append(s.passages, passage{
			content:   contents[i],
			embedding: item.Embedding,
		})
	}
	return nil
}

// Query returns the topK most similar passages for the query text.
func (s *MemoryStore) Query(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 3
	}
	req := &openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(s.model),
		Input: []string{query},
	}
	resp, err := s.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	queryVec := resp.Data[0].Embedding

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.passages) == 0 {
		return nil, nil
	}

	type scored struct {
		score   float64
		content string
	}
	results := make([]scored, 0, len(s.passages))
	for _, p := range s.passages {
		results = append(results, scored{
			score:   cosineSimilarity(queryVec, p.embedding),
			content: p.content,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	limit := topK
	if len(results) < limit {
		limit = len(results)
	}
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = results[i].content
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	var normA float64
	var normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
