package gemini

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/bobmcallan/carfeed/internal/common"
)

func TestReplyText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: `{"is_translatable": true,`},
				nil,
				{Text: ` "language": "French"}`},
			}},
		}},
	}
	assert.Equal(t, `{"is_translatable": true, "language": "French"}`, replyText(resp))
}

func TestReplyText_Empty(t *testing.T) {
	assert.Empty(t, replyText(nil))
	assert.Empty(t, replyText(&genai.GenerateContentResponse{}))
	assert.Empty(t, replyText(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: ""}}}}},
	}))
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), common.GeminiConfig{}, nil)
	assert.Error(t, err)
}

func TestNewClient_Config(t *testing.T) {
	c, err := NewClient(context.Background(), common.GeminiConfig{
		APIKey:    "test-key",
		Model:     "gemini-test",
		Timeout:   "5s",
		RateLimit: 2,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "gemini-test", c.model)
	assert.Equal(t, 5*time.Second, c.timeout)
	assert.Equal(t, 2, c.limiter.Burst())
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(context.Background(), common.GeminiConfig{APIKey: "test-key"}, common.NewSilentLogger())
	require.NoError(t, err)

	assert.Equal(t, defaultModel, c.model)
	assert.Equal(t, defaultTimeout, c.timeout)
	assert.Equal(t, defaultRateLimit, c.limiter.Burst())
}
