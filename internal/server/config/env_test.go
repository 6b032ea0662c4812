package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("FRONTEND_ORIGINS", "http://a,http://b")
	t.Setenv("PRODUCTION", "true")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.FrontendOrigins)
	assert.True(t, cfg.Production)
	assert.Equal(t, ":50051", cfg.GRPCAddr, "unset variables keep their value")
}

func Test_parseEnv_BadDuration(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")

	cfg := &Config{}
	require.Error(t, parseEnv(cfg))
}
