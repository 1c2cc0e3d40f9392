// Package conversation runs the planner loop: it carries session history,
// lets the model call booking tools, and returns the assistant's reply.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/medibot-ai/hospital-agent/internal/observability/metrics"
	"github.com/medibot-ai/hospital-agent/pkg/logging"
)

var agentTracer = otel.Tracer("hospitalagent.internal.conversation")

// fallbackReply goes out when the tool-round cap is reached without the model
// producing text.
const fallbackReply ="I'm sorry, I'm having trouble completing that right now. Could you rephrase, or tell me again what you'd like to do?"

type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ToolInvoker executes named tools and advertises their schemas.
type ToolInvoker interface {
	Invoke(ctx context.Context, name, argsJSON string) string
	Definitions() []openai.Tool
}

// Options tune the agent loop.
type Options struct {
	Model         string
	MaxToolRounds int
	TurnTimeout   time.Duration
}

// Agent drives one conversational turn at a time over a persisted session.
type Agent struct {
	client  chatClient
	tools   ToolInvoker
	history HistoryStore
	opts    Options
	logger  *logging.Logger
	metrics *metrics.AgentMetrics
}

// NewAgent wires the planner to its tools and session store.
func NewAgent(client chatClient, tools ToolInvoker, history HistoryStore, opts Options, logger *logging.Logger, m *metrics.AgentMetrics) *Agent {
	if client == nil {
		panic("conversation: chat client required")
	}
	if tools == nil {
		panic("conversation: tool invoker required")
	}
	if history == nil {
		panic("conversation: history store required")
	}
	if opts.Model == "" {
		opts.Model = "gpt-4o-mini"
	}
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = 6
	}
	if opts.TurnTimeout <= 0 {
		opts.TurnTimeout = 60 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Agent{client: client, tools: tools, history: history, opts: opts, logger: logger, metrics: m}
}

// Respond appends the user's message to the session, runs the tool-calling
// loop until the model produces text, persists the updated history, and
// returns the reply. Tool results are fed back verbatim; the model decides how
// to phrase them for the patient.
func (a *Agent) Respond(ctx context.Context, sessionID, userText string) (string, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", errors.New("conversation: empty message")
	}
	if strings.TrimSpace(sessionID) == "" {
		return "", errors.New("conversation: sessionID required")
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.TurnTimeout)
	defer cancel()

	ctx, span := agentTracer.Start(ctx, "conversation.respond")
	defer span.End()
	span.SetAttributes(attribute.String("hospitalagent.session_id", sessionID))

	history, err := a.history.Load(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrUnknownSession) {
			span.RecordError(err)
			return "", err
		}
		history = []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		}
	}
	history = append(history, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	reply := fallbackReply
	for round := 0; round < a.opts.MaxToolRounds; round++ {
		resp, err := a.complete(ctx, history)
		if err != nil {
			span.RecordError(err)
			return "", err
		}

		msg := resp.Choices[0].Message
		history = append(history, msg)

		if len(msg.ToolCalls) == 0 {
			reply = strings.TrimSpace(msg.Content)
			break
		}

		for _, call := range msg.ToolCalls {
			result := a.tools.Invoke(ctx, call.Function.Name, call.Function.Arguments)
			history = append(history, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}

	if err := a.history.Save(ctx, sessionID, history); err != nil {
		span.RecordError(err)
		return "", err
	}

	a.metrics.ObserveTurn()
	return reply, nil
}

func (a *Agent) complete(ctx context.Context, history []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	ctx, span := agentTracer.Start(ctx, "conversation.openai")
	defer span.End()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.opts.Model,
		Messages: history,
		Tools:    a.tools.Definitions(),
	})
	if err != nil {
		a.metrics.ObserveLLMRequest("error")
		span.RecordError(err)
		return openai.ChatCompletionResponse{}, fmt.Errorf("conversation: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		a.metrics.ObserveLLMRequest("error")
		err := errors.New("conversation: openai returned no choices")
		span.RecordError(err)
		return openai.ChatCompletionResponse{}, err
	}
	a.metrics.ObserveLLMRequest("ok")
	return resp, nil
}
