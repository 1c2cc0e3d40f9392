package conversation

import (
	"context"
	"io"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibot-ai/hospital-agent/pkg/logging"
)

func quietTestLogger() *logging.Logger {
	return logging.NewWithWriter("error", io.Discard)
}

type scriptedChat struct {
	responses []openai.ChatCompletionResponse
	requests  []openai.ChatCompletionRequest
}

func (s *scriptedChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return textResponse("out of script"), nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	}
}

func toolCallResponse(callID, name, args string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:   callID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: name, Arguments: args},
				}},
			},
		}},
	}
}

type recordingInvoker struct {
	results map[string]string
	calls   []string
}

func (r *recordingInvoker) Invoke(_ context.Context, name, _ string) string {
	r.calls = append(r.calls, name)
	if result, ok := r.results[name]; ok {
		return result
	}
	return "ok"
}

func (r *recordingInvoker) Definitions() []openai.Tool {
	return []openai.Tool{{Type: openai.ToolTypeFunction, Function: &openai.FunctionDefinition{Name: "stub"}}}
}

func newTestAgent(chat *scriptedChat, invoker *recordingInvoker) (*Agent, HistoryStore) {
	history := NewMemoryHistoryStore()
	agent := NewAgent(chat, invoker, history, Options{Model: "gpt-4o-mini", MaxToolRounds: 6}, quietTestLogger(), nil)
	return agent, history
}

func TestAgentPlainReply(t *testing.T) {
	chat := &scriptedChat{responses: []openai.ChatCompletionResponse{
		textResponse("Hello! How can I help you today?"),
	}}
	invoker := &recordingInvoker{}
	agent, history := newTestAgent(chat, invoker)

	reply, err := agent.Respond(context.Background(), "sess-1", "hi")
	require.NoError(t, err)

	assert.Equal(t, "Hello! How can I help you today?", reply)
	assert.Empty(t, invoker.calls)

	saved, err := history.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, saved, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, saved[0].Role)
	assert.Equal(t, "hi", saved[1].Content)
	assert.Equal(t, "Hello! How can I help you today?", saved[2].Content)
}

func TestAgentToolRound(t *testing.T) {
	chat := &scriptedChat{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call_1", "get_available_doctors", `{"specialty":"Cardiology"}`),
		textResponse("We have Dr. Asha Rao available. Would you like to book with her?"),
	}}
	invoker := &recordingInvoker{results: map[string]string{
		"get_available_doctors": "1. Dr. Asha Rao (ID: 7)",
	}}
	agent, history := newTestAgent(chat, invoker)

	reply, err := agent.Respond(context.Background(), "sess-1", "show me cardiologists")
	require.NoError(t, err)

	assert.Contains(t, reply, "Dr. Asha Rao")
	assert.Equal(t, []string{"get_available_doctors"}, invoker.calls)

	// Second completion sees the tool result.
	require.Len(t, chat.requests, 2)
	msgs := chat.requests[1].Messages
	last := msgs[len(msgs)-1]
	assert.Equal(t, openai.ChatMessageRoleTool, last.Role)
	assert.Equal(t, "call_1", last.ToolCallID)
	assert.Equal(t, "1. Dr. Asha Rao (ID: 7)", last.Content)

	saved, err := history.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Len(t, saved, 5)
}

func TestAgentEmergencyStopsBookingFlow(t *testing.T) {
	chat := &scriptedChat{responses: []openai.ChatCompletionResponse{
		toolCallResponse("call_1", "get_doctor_recommendations", `{"symptoms":"severe chest pain and shortness of breath"}`),
		textResponse("This sounds like an emergency. Please call emergency services or go to the nearest emergency room right now."),
	}}
	invoker := &recordingInvoker{results: map[string]string{
		"get_doctor_recommendations": "EMERGENCY",
	}}
	agent, _ := newTestAgent(chat, invoker)

	reply, err := agent.Respond(context.Background(), "sess-1", "I have severe chest pain")
	require.NoError(t, err)

	assert.Contains(t, reply, "emergency")
	assert.Equal(t, []string{"get_doctor_recommendations"}, invoker.calls)
	assert.NotContains(t, invoker.calls, "get_available_doctors")
}

func TestAgentToolRoundCap(t *testing.T) {
	looping := toolCallResponse("call_x", "check_appointment_slots", `{"doctor_id":"4","date":"2026-09-01"}`)
	chat := &scriptedChat{responses: []openai.ChatCompletionResponse{
		looping, looping, looping, looping,
	}}
	invoker := &recordingInvoker{}
	history := NewMemoryHistoryStore()
	agent := NewAgent(chat, invoker, history, Options{MaxToolRounds: 3}, quietTestLogger(), nil)

	reply, err := agent.Respond(context.Background(), "sess-1", "book something")
	require.NoError(t, err)

	assert.Equal(t, fallbackReply, reply)
	assert.Len(t, invoker.calls, 3)
}

func TestAgentContinuesExistingSession(t *testing.T) {
	chat := &scriptedChat{responses: []openai.ChatCompletionResponse{
		textResponse("first"),
		textResponse("second"),
	}}
	agent, _ := newTestAgent(chat, &recordingInvoker{})
	ctx := context.Background()

	_, err := agent.Respond(ctx, "sess-1", "one")
	require.NoError(t, err)
	_, err = agent.Respond(ctx, "sess-1", "two")
	require.NoError(t, err)

	require.Len(t, chat.requests, 2)
	msgs := chat.requests[1].Messages
	// system + user + assistant + user: the system prompt is not re-added.
	require.Len(t, msgs, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	assert.Equal(t, "two", msgs[3].Content)
}

func TestAgentRejectsEmptyInput(t *testing.T) {
	agent, _ := newTestAgent(&scriptedChat{}, &recordingInvoker{})

	_, err := agent.Respond(context.Background(), "sess-1", "   ")
	assert.Error(t, err)

	_, err = agent.Respond(context.Background(), "", "hello")
	assert.Error(t, err)
}
