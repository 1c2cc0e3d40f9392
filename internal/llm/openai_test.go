package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCompletionAPI struct {
	gotReq openai.ChatCompletionRequest
	resp   openai.ChatCompletionResponse
	err    error
}

func (s *stubCompletionAPI) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	s.gotReq = request
	return s.resp, s.err
}

func TestOpenAICompleteMapsMessages(t *testing.T) {
	api := &stubCompletionAPI{
		resp: openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Content: "  General Physician \n"},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 12, CompletionTokens: 3, TotalTokens: 15},
		},
	}
	client := newOpenAIClientWithAPI(api, "gpt-4o-mini")

	resp, err := client.Complete(context.Background(), Request{
		System: []string{"You are a medical router."},
		Messages: []ChatMessage{
			{Role: RoleUser, Content: "I feel sick"},
			{Role: RoleAssistant, Content: "Can you tell me more?"},
			{Role: RoleUser, Content: "just a checkup"},
		},
		MaxTokens: 32,
	})
	require.NoError(t, err)

	assert.Equal(t, "General Physician", resp.Text, "output is trimmed")
	assert.Equal(t, int32(15), resp.Usage.TotalTokens)

	require.Len(t, api.gotReq.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, api.gotReq.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, api.gotReq.Messages[2].Role)
	assert.Equal(t, "gpt-4o-mini", api.gotReq.Model)
	assert.Equal(t, 32, api.gotReq.MaxTokens)
}

func TestOpenAICompleteErrors(t *testing.T) {
	api := &stubCompletionAPI{err: errors.New("timeout")}
	client := newOpenAIClientWithAPI(api, "gpt-4o-mini")

	_, err := client.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)

	api = &stubCompletionAPI{resp: openai.ChatCompletionResponse{}}
	client = newOpenAIClientWithAPI(api, "gpt-4o-mini")
	_, err = client.Complete(context.Background(), Request{
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err, "empty choices is an error")

	_, err = client.Complete(context.Background(), Request{})
	require.Error(t, err, "no messages is an error")
}
