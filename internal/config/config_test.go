package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), cfg.Cutoff())
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "Kore", cfg.GeminiVoice)
	assert.False(t, cfg.AssistantEnabled())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("AUDIT_CUTOFF_DATE", "2024-06-30")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("DB_PATH", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "fallback-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), cfg.Cutoff())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, "", cfg.DBPath)
	assert.Equal(t, "fallback-key", cfg.GeminiAPIKey)
	assert.True(t, cfg.AssistantEnabled())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &Config{
		AuditCutoffDate:   "31/12/2023",
		MaxUploadBytes:    0,
		SessionTTL:        time.Hour,
		SessionCapacity:   -1,
		AnalysisCacheSize: 1,
		RateLimitPerMin:   1,
		LogFormat:         "xml",
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIT_CUTOFF_DATE")
	assert.Contains(t, err.Error(), "MAX_UPLOAD_BYTES")
	assert.Contains(t, err.Error(), "SESSION_CAPACITY")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
	assert.NotContains(t, err.Error(), "SESSION_TTL")
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&Config{AppEnv: "production"}).IsProduction())
	assert.False(t, (&Config{AppEnv: "development"}).IsProduction())
	var nilCfg *Config
	assert.False(t, nilCfg.IsProduction())
}
