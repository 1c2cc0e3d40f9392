// Command chat runs the booking assistant as an interactive terminal session.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/medibot-ai/hospital-agent/internal/app/bootstrap"
	appconfig "github.com/medibot-ai/hospital-agent/internal/config"
	"github.com/medibot-ai/hospital-agent/internal/conversation"
	"github.com/medibot-ai/hospital-agent/pkg/logging"
)

var exitWords = map[string]struct{}{
	"quit":    {},
	"exit":    {},
	"bye":     {},
	"goodbye": {},
}

func main() {
	cfg := appconfig.Load()

	// Keep structured logs off the chat transcript.
	logger := logging.NewWithWriter(cfg.LogLevel, os.Stderr)

	ctx := context.Background()

	pool, err := bootstrap.BuildPool(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database unavailable: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	history := conversation.NewMemoryHistoryStore()
	agent, err := bootstrap.BuildAgent(ctx, cfg, pool, history, nil, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build agent: %v\n", err)
		os.Exit(1)
	}

	sessionID := uuid.NewString()
	fmt.Println(conversation.WelcomeMessage)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if _, done := exitWords[strings.ToLower(input)]; done {
			break
		}

		reply, err := agent.Respond(ctx, sessionID, input)
		if err != nil {
			logger.Error("turn failed", "error", err)
			fmt.Println("MediBot: I'm sorry, something went wrong. Please try again.")
			continue
		}
		fmt.Printf("MediBot: %s\n\n", reply)
	}

	fmt.Println(conversation.FarewellMessage)
}
