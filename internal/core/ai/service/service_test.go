package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"planeats/internal/core/ai/cache"
	"planeats/internal/core/ai/provider"
	"planeats/internal/infrastructure/config"
	"planeats/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name    string
	content string
	err     error
	calls   int
	timeout time.Duration
	block   bool
}

func (f *fakeProvider) Name() string              { return f.name }
func (f *fakeProvider) GetModel() string          { return f.name + "-model" }
func (f *fakeProvider) GetTimeout() time.Duration { return f.timeout }
func (f *fakeProvider) Close() error              { return nil }

func (f *fakeProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Content: f.content}, nil
}

func TestGenerate_NoProviders(t *testing.T) {
	svc := NewService(nil, nil)

	_, err := svc.Generate(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoProviders)
	assert.Equal(t, "No AI API keys configured", ErrNoProviders.Message)
	assert.False(t, svc.Configured())
}

func TestGenerate_PreferredSucceeds(t *testing.T) {
	primary := &fakeProvider{name: provider.NameGemini, content: "from gemini"}
	fallback := &fakeProvider{name: provider.NameOpenAI, content: "from openai"}
	svc := NewService([]provider.Provider{primary, fallback}, nil)

	resp, err := svc.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "from gemini", resp.Content)
	assert.Equal(t, "gemini-model", resp.Model)
	assert.Equal(t, provider.NameGemini, resp.Provider)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestGenerate_FallsBackOnce(t *testing.T) {
	primary := &fakeProvider{name: provider.NameGemini, err: errors.New("quota exceeded")}
	fallback := &fakeProvider{name: provider.NameOpenAI, content: "from openai"}
	svc := NewService([]provider.Provider{primary, fallback}, nil)

	resp, err := svc.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "from openai", resp.Content)
	assert.Equal(t, 1, primary.calls, "no retry on the failed provider")
	assert.Equal(t, 1, fallback.calls)
}

func TestGenerate_AllFail(t *testing.T) {
	primary := &fakeProvider{name: provider.NameGemini, err: errors.New("bad key")}
	fallback := &fakeProvider{name: provider.NameOpenAI, err: errors.New("network down")}
	svc := NewService([]provider.Provider{primary, fallback}, nil)

	_, err := svc.Generate(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrAIServiceError)
	assert.Contains(t, err.Error(), "bad key")
	assert.Contains(t, err.Error(), "network down")
}

func TestGenerate_EmptyContentCountsAsFailure(t *testing.T) {
	primary := &fakeProvider{name: provider.NameGemini, content: ""}
	fallback := &fakeProvider{name: provider.NameOpenAI, content: "ok"}
	svc := NewService([]provider.Provider{primary, fallback}, nil)

	resp, err := svc.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
}

func TestGenerate_TimeoutMovesToNextProvider(t *testing.T) {
	slow := &fakeProvider{name: provider.NameGemini, block: true, timeout: 20 * time.Millisecond}
	fast := &fakeProvider{name: provider.NameOpenAI, content: "fast"}
	svc := NewService([]provider.Provider{slow, fast}, nil)

	resp, err := svc.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "fast", resp.Content)
}

func TestGenerate_UsesCache(t *testing.T) {
	p := &fakeProvider{name: provider.NameGemini, content: "cached body"}
	c := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer c.Close()
	svc := NewService([]provider.Provider{p}, c)

	first, err := svc.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, err := svc.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, "cached body", second.Content)
	assert.Equal(t, 1, p.calls)

	_, err = svc.Generate(context.Background(), "sys", "other user prompt")
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestInvalidate_NextCallReachesProvider(t *testing.T) {
	p := &fakeProvider{name: provider.NameGemini, content: "unusable"}
	c := cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer c.Close()
	svc := NewService([]provider.Provider{p}, c)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "sys", "user")
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(ctx, "sys", "user"))

	p.content = "usable"
	resp, err := svc.Generate(ctx, "sys", "user")
	require.NoError(t, err)
	assert.False(t, resp.CacheHit)
	assert.Equal(t, "usable", resp.Content)
	assert.Equal(t, 2, p.calls)

	assert.NoError(t, NewService([]provider.Provider{p}, nil).Invalidate(ctx, "sys", "user"))
}

func TestOrderProviders(t *testing.T) {
	g := &fakeProvider{name: provider.NameGemini}
	o := &fakeProvider{name: provider.NameOpenAI}
	both := map[string]provider.Provider{provider.NameGemini: g, provider.NameOpenAI: o}

	tests := []struct {
		name      string
		preferred string
		available map[string]provider.Provider
		want      []string
	}{
		{"gemini preferred", "gemini", both, []string{"gemini", "openai"}},
		{"openai preferred", "openai", both, []string{"openai", "gemini"}},
		{"unknown defaults to gemini first", "", both, []string{"gemini", "openai"}},
		{"preferred without key is skipped", "openai", map[string]provider.Provider{provider.NameGemini: g}, []string{"gemini"}},
		{"none configured", "gemini", map[string]provider.Provider{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OrderProviders(tt.preferred, tt.available)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name())
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestNewFromConfig_NoKeys(t *testing.T) {
	svc, err := NewFromConfig(context.Background(), config.AIConfig{Provider: "gemini"}, nil)
	require.NoError(t, err)
	assert.False(t, svc.Configured())
}

func TestNewFromConfig_OpenAIOnly(t *testing.T) {
	svc, err := NewFromConfig(context.Background(), config.AIConfig{
		Provider:      "gemini",
		OpenAIAPIKey:  "sk-test-key-123456",
		OpenAIModel:   "gpt-3.5-turbo",
		OpenAIBaseURL: "http://localhost",
		Timeout:       time.Second,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"openai"}, svc.Providers())
}
