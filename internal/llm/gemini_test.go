package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/aswin0605itsme-droid/Eggai/internal/common"
	"github.com/aswin0605itsme-droid/Eggai/internal/model"
)

func TestToGenaiSchema(t *testing.T) {
	s := toGenaiSchema(frameSchema)
	require.NotNil(t, s)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"prediction", "analysis_text"}, s.Required)
	require.Contains(t, s.Properties, "prediction")
	assert.Equal(t, genai.TypeString, s.Properties["prediction"].Type)
	assert.Equal(t, []string{"Male", "Female", "Unknown"}, s.Properties["prediction"].Enum)

	align := toGenaiSchema(alignmentSchema)
	assert.Equal(t, genai.TypeNumber, align.Properties["confidence"].Type)
	assert.Equal(t, genai.TypeBoolean, align.Properties["is_aligned"].Type)

	assert.Nil(t, toGenaiSchema(nil))
}

func TestToGenaiParts(t *testing.T) {
	parts := toGenaiParts([]Part{
		ImagePart(model.Image{MIMEType: "image/png", Data: []byte{1, 2}}),
		TextPart("describe"),
	})
	require.Len(t, parts, 2)

	blob, ok := parts[0].(genai.Blob)
	require.True(t, ok)
	assert.Equal(t, "image/png", blob.MIMEType)
	assert.Equal(t, genai.Text("describe"), parts[1])
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	assert.Equal(t, `{"a":1}`, responseText(resp))
	assert.Empty(t, responseText(nil))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{}))
}

func TestClassifySDKError(t *testing.T) {
	err := classifySDKError(status.Error(codes.ResourceExhausted, "quota"))
	assert.ErrorIs(t, err, common.ErrRateLimit)
	assert.True(t, common.IsRetryable(err))

	err = classifySDKError(status.Error(codes.Unavailable, "down"))
	assert.ErrorIs(t, err, common.ErrProviderFailure)
	assert.True(t, common.IsRetryable(err))

	err = classifySDKError(status.Error(codes.InvalidArgument, "bad"))
	assert.ErrorIs(t, err, common.ErrProviderFailure)
	assert.False(t, common.IsRetryable(err))

	assert.ErrorIs(t, classifySDKError(context.Canceled), context.Canceled)
	assert.False(t, errors.Is(classifySDKError(context.Canceled), common.ErrProviderFailure))
}

func TestNewProviderRequiresKey(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Provider: "gemini"}, nil)
	require.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = NewProvider(context.Background(), Config{Provider: "carrier-pigeon"}, nil)
	require.Error(t, err)

	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MockProvider{}, p)
}
