package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planeats/internal/core/ai/provider"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureModel(t *testing.T) {
	model := &genai.GenerativeModel{}
	configureModel(model, provider.Config{MaxTokens: 4000, Temperature: 0.7})

	require.NotNil(t, model.MaxOutputTokens)
	assert.Equal(t, int32(4000), *model.MaxOutputTokens)
	require.NotNil(t, model.Temperature)
	assert.InDelta(t, 0.7, *model.Temperature, 1e-6)

	model = &genai.GenerativeModel{}
	configureModel(model, provider.Config{})
	assert.Nil(t, model.MaxOutputTokens)
}

func TestGenerate_SendsConfiguredMaxTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)

		var body struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
			GenerationConfig struct {
				MaxOutputTokens int `json:"maxOutputTokens"`
			} `json:"generationConfig"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 4000, body.GenerationConfig.MaxOutputTokens)
		require.Len(t, body.Contents, 1)
		require.Len(t, body.Contents[0].Parts, 1)
		assert.Equal(t, "sys\n\nuser", body.Contents[0].Parts[0].Text)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"meals\":[]}"}],"role":"model"},"finishReason":1}],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}}`))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), provider.Config{
		APIKey:      "gm-test",
		Model:       "gemini-test",
		BaseURL:     srv.URL,
		MaxTokens:   4000,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	defer c.Close()

	resp, err := c.Generate(context.Background(), provider.NewRequest("sys", "user"))
	require.NoError(t, err)
	assert.Equal(t, `{"meals":[]}`, resp.Content)
	assert.Equal(t, provider.NameGemini, resp.Provider)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
	assert.Equal(t, 10, resp.Usage.PromptTokens)
}
