package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"planeats/internal/core/ai/provider"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client Google Gemini 客戶端
type Client struct {
	config provider.Config
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient 創建 Gemini 客戶端
func NewClient(ctx context.Context, cfg provider.Config) (*Client, error) {
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	configureModel(model, cfg)

	return &Client{config: cfg, client: client, model: model}, nil
}

// configureModel 套用生成參數，MaxTokens 未設定時沿用模型預設上限
func configureModel(model *genai.GenerativeModel, cfg provider.Config) {
	model.SetTemperature(float32(cfg.Temperature))
	model.SetTopK(40)
	model.SetTopP(0.95)
	if cfg.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.MaxTokens))
	}
}

// Name 提供者名稱
func (c *Client) Name() string { return provider.NameGemini }

// GetModel 模型名稱
func (c *Client) GetModel() string { return c.config.Model }

// GetTimeout 請求超時
func (c *Client) GetTimeout() time.Duration { return c.config.Timeout }

// Close 關閉底層連線
func (c *Client) Close() error { return c.client.Close() }

// Generate 將所有訊息合併成單一 prompt 後送出
func (c *Client) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	parts := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		parts = append(parts, m.Content)
	}

	resp, err := c.model.GenerateContent(ctx, genai.Text(strings.Join(parts, "\n\n")))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("invalid response format from Gemini API")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("generated content is not text")
	}

	out := &provider.Response{
		Content:  sb.String(),
		Model:    c.config.Model,
		Provider: provider.NameGemini,
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = provider.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return out, nil
}
