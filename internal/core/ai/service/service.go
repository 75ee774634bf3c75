package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"planeats/internal/core/ai/cache"
	"planeats/internal/core/ai/gemini"
	"planeats/internal/core/ai/openai"
	"planeats/internal/core/ai/provider"
	"planeats/internal/infrastructure/config"
	"planeats/internal/pkg/common"

	"go.uber.org/zap"
)

// ErrNoProviders 沒有任何提供者設定了 API key
var ErrNoProviders = common.NewError("AI_NOT_CONFIGURED", "No AI API keys configured", http.StatusServiceUnavailable, nil)

// Service 依序嘗試各提供者，第一個成功者的回應即為結果。
// 不重試同一提供者，每次呼叫各自套用提供者的超時。
type Service struct {
	providers []provider.Provider
	cache     cache.Cache
}

// NewService 以已排序的提供者建立服務，cache 可為 nil
func NewService(providers []provider.Provider, c cache.Cache) *Service {
	return &Service{providers: providers, cache: c}
}

// NewFromConfig 依設定建立提供者：只有設定了 key 的提供者會參與，偏好的提供者排第一
func NewFromConfig(ctx context.Context, cfg config.AIConfig, c cache.Cache) (*Service, error) {
	byName := make(map[string]provider.Provider)

	if cfg.GeminiAPIKey != "" {
		g, err := gemini.NewClient(ctx, provider.Config{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.GeminiModel,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
		if err != nil {
			common.LogWarn("Gemini 初始化失敗", zap.Error(err))
		} else {
			byName[provider.NameGemini] = g
		}
	}
	if cfg.OpenAIAPIKey != "" {
		byName[provider.NameOpenAI] = openai.NewClient(provider.Config{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			BaseURL:     cfg.OpenAIBaseURL,
			MaxTokens:   cfg.MaxTokens,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	}

	providers := OrderProviders(cfg.Provider, byName)
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	common.LogInfo("AI 服務已初始化",
		zap.Strings("providers", names),
		zap.String("gemini_key", config.MaskAPIKey(cfg.GeminiAPIKey)),
		zap.String("openai_key", config.MaskAPIKey(cfg.OpenAIAPIKey)),
	)

	return NewService(providers, c), nil
}

// OrderProviders 偏好者在前，其餘依名稱固定順序
func OrderProviders(preferred string, available map[string]provider.Provider) []provider.Provider {
	order := []string{provider.NameGemini, provider.NameOpenAI}
	if preferred == provider.NameOpenAI {
		order = []string{provider.NameOpenAI, provider.NameGemini}
	}

	out := make([]provider.Provider, 0, len(available))
	for _, name := range order {
		if p, ok := available[name]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Configured 是否至少有一個提供者
func (s *Service) Configured() bool {
	return len(s.providers) > 0
}

// Providers 目前的提供者名稱（依嘗試順序）
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// Generate 以系統提示與使用者提示呼叫 LLM
func (s *Service) Generate(ctx context.Context, systemPrompt, userPrompt string) (*provider.Response, error) {
	if len(s.providers) == 0 {
		return nil, ErrNoProviders
	}

	key := cache.Key("completion", systemPrompt, userPrompt)
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, key); err == nil && val != "" {
			var cached provider.Response
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				cached.CacheHit = true
				return &cached, nil
			}
		}
	}

	req := provider.NewRequest(systemPrompt, userPrompt)
	requestID := common.RequestIDFromContext(ctx)

	var errs []error
	for _, p := range s.providers {
		resp, err := s.call(ctx, p, req)
		common.LogAICall(p.Name(), resp.duration, err, requestID)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}

		if s.cache != nil {
			if data, err := json.Marshal(resp.Response); err == nil {
				if err := s.cache.Set(ctx, key, string(data)); err != nil {
					common.LogWarn("AI 回應快取寫入失敗", zap.Error(err))
				}
			}
		}
		return resp.Response, nil
	}

	joined := errors.Join(errs...)
	return nil, common.ErrAIServiceError.
		WithMessage("All AI providers failed: " + strings.ReplaceAll(joined.Error(), "\n", "; ")).
		Wrap(joined)
}

// Invalidate 移除某組 prompt 的快取回應，呼叫端無法使用該回應時呼叫
func (s *Service) Invalidate(ctx context.Context, systemPrompt, userPrompt string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cache.Key("completion", systemPrompt, userPrompt))
}

type timedResponse struct {
	*provider.Response
	duration time.Duration
}

func (s *Service) call(ctx context.Context, p provider.Provider, req *provider.Request) (timedResponse, error) {
	if timeout := p.GetTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := p.Generate(ctx, req)
	out := timedResponse{Response: resp, duration: time.Since(start)}
	if err != nil {
		return out, err
	}
	if resp == nil || resp.Content == "" {
		return out, errors.New("empty response")
	}
	if resp.Provider == "" {
		resp.Provider = p.Name()
	}
	if resp.Model == "" {
		resp.Model = p.GetModel()
	}
	return out, nil
}

// Close 關閉所有提供者與快取
func (s *Service) Close() error {
	var errs []error
	for _, p := range s.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
