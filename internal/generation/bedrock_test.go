package generation

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverse struct {
	in  *bedrockruntime.ConverseInput
	out *bedrockruntime.ConverseOutput
	err error
}

func (f *fakeConverse) Converse(_ context.Context, in *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.in = in
	return f.out, f.err
}

func textOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{Value: brtypes.Message{
			Role:    brtypes.ConversationRoleAssistant,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: text}},
		}},
		StopReason: brtypes.StopReasonEndTurn,
		Usage: &brtypes.TokenUsage{
			InputTokens:  aws.Int32(12),
			OutputTokens: aws.Int32(8),
			TotalTokens:  aws.Int32(20),
		},
	}
}

func TestBedrockCompleteMapsRequest(t *testing.T) {
	api := &fakeConverse{out: textOutput("  Which time suits you?  ")}
	client := NewBedrockClient(api, "anthropic.test-model")

	resp, err := client.Complete(context.Background(), Request{
		System: []string{"persona", " "},
		Messages: []Message{
			{Role: RoleAssistant, Content: "Hello"},
			{Role: RoleUser, Content: "I have fever"},
			{Role: RoleSystem, Content: "extra rule"},
		},
		MaxTokens:   200,
		Temperature: 0.3,
		TopP:        0.8,
	})
	require.NoError(t, err)
	assert.Equal(t, "Which time suits you?", resp.Text)
	assert.Equal(t, int32(20), resp.Usage.TotalTokens)
	assert.Equal(t, string(brtypes.StopReasonEndTurn), resp.StopReason)

	require.NotNil(t, api.in)
	assert.Equal(t, "anthropic.test-model", aws.ToString(api.in.ModelId))
	assert.Len(t, api.in.System, 2)
	assert.Len(t, api.in.Messages, 2)
	require.NotNil(t, api.in.InferenceConfig)
	assert.Equal(t, int32(200), aws.ToInt32(api.in.InferenceConfig.MaxTokens))
}

func TestBedrockCompleteRejectsUnknownRole(t *testing.T) {
	client := NewBedrockClient(&fakeConverse{out: textOutput("x")}, "m")
	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: "tool", Content: "x"}}})
	require.Error(t, err)
}

func TestBedrockCompleteEmptyOutput(t *testing.T) {
	client := NewBedrockClient(&fakeConverse{out: textOutput("   ")}, "m")
	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestBedrockCompleteWrapsAPIError(t *testing.T) {
	boom := errors.New("throttled")
	client := NewBedrockClient(&fakeConverse{err: boom}, "m")
	_, err := client.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
	assert.ErrorIs(t, err, boom)
}

func TestInferenceConfigOmittedWhenUnset(t *testing.T) {
	assert.Nil(t, inferenceConfig(Request{Temperature: -1}))
}

func TestGeminiRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), " ", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestGeminiHistoryRoles(t *testing.T) {
	h := geminiHistory([]Message{
		{Role: RoleSystem, Content: "rules"},
		{Role: RoleAssistant, Content: "Hello"},
		{Role: RoleUser, Content: ""},
		{Role: RoleUser, Content: "fever"},
	})
	require.Len(t, h, 2)
	assert.Equal(t, "model", h[0].Role)
	assert.Equal(t, "user", h[1].Role)
}

func TestClientFunc(t *testing.T) {
	var c Client = ClientFunc(func(context.Context, Request) (Response, error) {
		return Response{Text: "ok"}, nil
	})
	resp, err := c.Complete(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
}
