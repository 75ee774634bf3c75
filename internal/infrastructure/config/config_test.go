package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Server.Port)
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, 168*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, "planeats-dev-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 2*time.Second, cfg.DedupWindow)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("JWT_EXPIRE", "7d")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AI_MODEL", "openai")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("APP_CACHE_TTL", "30m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.JWTExpiry)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"production without secret", map[string]string{"NODE_ENV": "production"}},
		{"unknown driver", map[string]string{"DATABASE_DRIVER": "sqlite"}},
		{"unknown provider", map[string]string{"AI_MODEL": "claude"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestDayDurationHook(t *testing.T) {
	durationType := reflect.TypeOf(time.Duration(0))
	cases := map[string]time.Duration{
		"3d":  72 * time.Hour,
		"1d":  24 * time.Hour,
		"90m": 0,
	}
	for in, want := range cases {
		out, err := dayDurationHook(reflect.TypeOf(in), durationType, in)
		require.NoError(t, err)
		if want == 0 {
			assert.Equal(t, in, out)
			continue
		}
		assert.Equal(t, want, out)
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", MaskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}
