package knowledge

import (
	"context"
	"fmt"
	"os"
	"strings"
)

const (
	// Small chunks suit the short hospital guide the router retrieves from.
	chunkWords   = 256
	overlapWords = 50
)

// SplitDocument breaks a document into overlapping word-window chunks.
func SplitDocument(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= chunkWords {
		return []string{strings.Join(words, " ")}
	}

	step := chunkWords - overlapWords
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}

// IngestFile loads the knowledge-base document, chunks it, and embeds the
// chunks into the store. One-time startup side effect.
func IngestFile(ctx context.Context, store *MemoryStore, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("knowledge: read %s: %w", path, err)
	}
	chunks := SplitDocument(string(data))
	if len(chunks) == 0 {
		return 0, fmt.Errorf("knowledge: %s contains no text", path)
	}
	if err := store.AddPassages(ctx, chunks); err != nil {
		return 0, fmt.Errorf("knowledge: embed %s: %w", path, err)
	}
	return len(chunks), nil
}
