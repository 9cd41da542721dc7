package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const cutoffLayout = "2006-01-02"

// Config holds runtime configuration for the service and the CLI.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	// DBPath enables the sqlite upload log. Empty keeps everything in memory.
	DBPath string `envconfig:"DB_PATH" default:"auditguard.db"`

	AuditCutoffDate   string        `envconfig:"AUDIT_CUTOFF_DATE" default:"2023-12-31"`
	MaxUploadBytes    int64         `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`
	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"2h"`
	SessionCapacity   int           `envconfig:"SESSION_CAPACITY" default:"256"`
	AnalysisCacheSize int           `envconfig:"ANALYSIS_CACHE_SIZE" default:"64"`
	RateLimitPerMin   int           `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	GeminiModel     string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	GeminiLiveModel string `envconfig:"GEMINI_LIVE_MODEL" default:"gemini-2.5-flash-native-audio-preview-09-2025"`
	GeminiVoice     string `envconfig:"GEMINI_VOICE" default:"Kore"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("API_KEY")
	}
	return &cfg, nil
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if _, err := time.Parse(cutoffLayout, c.AuditCutoffDate); err != nil {
		errs = append(errs, fmt.Sprintf("invalid AUDIT_CUTOFF_DATE '%s': must be YYYY-MM-DD", c.AuditCutoffDate))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Sprintf("invalid MAX_UPLOAD_BYTES %d: must be positive", c.MaxUploadBytes))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Sprintf("invalid SESSION_TTL %s: must be positive", c.SessionTTL))
	}
	if c.SessionCapacity <= 0 {
		errs = append(errs, fmt.Sprintf("invalid SESSION_CAPACITY %d: must be positive", c.SessionCapacity))
	}
	if c.AnalysisCacheSize <= 0 {
		errs = append(errs, fmt.Sprintf("invalid ANALYSIS_CACHE_SIZE %d: must be positive", c.AnalysisCacheSize))
	}
	if c.RateLimitPerMin <= 0 {
		errs = append(errs, fmt.Sprintf("invalid RATE_LIMIT_PER_MINUTE %d: must be positive", c.RateLimitPerMin))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("invalid LOG_FORMAT '%s': must be json or console", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// Cutoff returns the audit period-end as midnight UTC. Call Validate first.
func (c *Config) Cutoff() time.Time {
	t, err := time.Parse(cutoffLayout, c.AuditCutoffDate)
	if err != nil {
		return time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// AssistantEnabled reports whether an API key for the hosted model is set.
func (c *Config) AssistantEnabled() bool {
	return c.GeminiAPIKey != ""
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
