package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spacesedan/sentilens/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"SENTIMENT_MODEL_NAME", "SENTIMENT_BACKEND", "SENTIMENT_CACHE_DIR",
	"SENTIMENT_MAX_PROCESSING_TIME_MS", "SENTIMENT_LOG_LEVEL",
	"SENTIMENT_ENABLE_PERFORMANCE_LOGGING", "SENTIMENT_HIGH_CONFIDENCE",
	"SENTIMENT_LOW_CONFIDENCE", "SENTIMENT_HEALTH_INTERVAL_SECONDS",
	"ONNXRUNTIME_LIBRARY_PATH", "SENTIMENT_ATTENTION_MODEL",
	"SENTIMENT_ATTENTION_OUTPUTS", "OPENAI_API_KEY", "OPENAI_MODEL", "METRICS_ADDR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SENTIMENT_CACHE_DIR", "/tmp/sentilens-cache")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultModelName, cfg.ModelName)
	assert.Equal(t, BackendHugot, cfg.Backend)
	assert.Equal(t, "/tmp/sentilens-cache", cfg.CacheDir)
	assert.Equal(t, 2*time.Second, cfg.MaxProcessingTime)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.True(t, cfg.PerformanceLogging)
	assert.Equal(t, models.DefaultConfidenceThresholds, cfg.Confidence)
	assert.Nil(t, cfg.AttentionOutputs)
	assert.Equal(t, ":9090", cfg.MetricsAddr)
	assert.Equal(t, 30*time.Second, cfg.HealthCheckInterval)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SENTIMENT_MODEL_NAME", "org/model")
	t.Setenv("SENTIMENT_BACKEND", "VADER")
	t.Setenv("SENTIMENT_MAX_PROCESSING_TIME_MS", "500")
	t.Setenv("SENTIMENT_ENABLE_PERFORMANCE_LOGGING", "false")
	t.Setenv("SENTIMENT_HIGH_CONFIDENCE", "0.9")
	t.Setenv("SENTIMENT_LOW_CONFIDENCE", "0.5")
	t.Setenv("SENTIMENT_ATTENTION_OUTPUTS", "attn.0, attn.1,,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "org/model", cfg.ModelName)
	assert.Equal(t, BackendVader, cfg.Backend)
	assert.Equal(t, 500*time.Millisecond, cfg.MaxProcessingTime)
	assert.False(t, cfg.PerformanceLogging)
	assert.Equal(t, models.ConfidenceThresholds{High: 0.9, Low: 0.5}, cfg.Confidence)
	assert.Equal(t, []string{"attn.0", "attn.1"}, cfg.AttentionOutputs)
}

func TestLoad_MalformedValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SENTIMENT_MAX_PROCESSING_TIME_MS", "fast"},
		{"SENTIMENT_ENABLE_PERFORMANCE_LOGGING", "maybe"},
		{"SENTIMENT_HIGH_CONFIDENCE", "high"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.ErrorContains(t, err, tt.key)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ModelName:         DefaultModelName,
			Backend:           BackendHugot,
			MaxProcessingTime: time.Second,
			Confidence:        models.DefaultConfidenceThresholds,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"empty model", func(c *Config) { c.ModelName = "" }, "non-empty"},
		{"unknown backend", func(c *Config) { c.Backend = "bert" }, "unknown backend"},
		{"openai without key", func(c *Config) { c.Backend = BackendOpenAI }, "OPENAI_API_KEY"},
		{"openai with key", func(c *Config) { c.Backend = BackendOpenAI; c.OpenAIAPIKey = "sk-test" }, ""},
		{"zero processing time", func(c *Config) { c.MaxProcessingTime = 0 }, "max processing time"},
		{"high out of range", func(c *Config) { c.Confidence.High = 1.5 }, "high confidence"},
		{"low out of range", func(c *Config) { c.Confidence.Low = -0.1 }, "low confidence"},
		{"low not below high", func(c *Config) { c.Confidence.Low = 0.8 }, "less than"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateModelName(t *testing.T) {
	assert.NoError(t, ValidateModelName("distilbert-base-uncased-finetuned-sst-2-english"))
	assert.NoError(t, ValidateModelName("cardiffnlp/twitter-roberta-base-sentiment"))
	assert.NoError(t, ValidateModelName("./models/local_model"))

	assert.ErrorContains(t, ValidateModelName(""), "non-empty")
	assert.ErrorContains(t, ValidateModelName(strings.Repeat("a", 201)), "too long")
	assert.ErrorContains(t, ValidateModelName("model; rm -rf"), "invalid characters")
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/.cache/models")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache/models"), got)

	got, err = ExpandHome("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)

	got, err = ExpandHome("~other/path")
	require.NoError(t, err)
	assert.Equal(t, "~other/path", got)
}

func TestEnsureCacheDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	cfg := &Config{CacheDir: dir}

	require.NoError(t, cfg.EnsureCacheDir())
	assert.DirExists(t, dir)
	require.NoError(t, cfg.EnsureCacheDir())
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env.test")
	require.NoError(t, os.WriteFile(path, []byte("SENTILENS_LOADENV_CHECK=from-file\n"), 0o644))

	t.Setenv("SENTIMENT_ENV_DIR", dir)
	t.Setenv("SENTILENS_LOADENV_CHECK", "")
	require.NoError(t, os.Unsetenv("SENTILENS_LOADENV_CHECK"))

	assert.Equal(t, path, LoadEnv("test"))
	assert.Equal(t, "from-file", os.Getenv("SENTILENS_LOADENV_CHECK"))
}

func TestLoadEnv_KeepsProcessEnvironment(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("SENTILENS_LOADENV_CHECK=from-file\n"), 0o644))

	t.Setenv("SENTIMENT_ENV_DIR", dir)
	t.Setenv("SENTILENS_LOADENV_CHECK", "from-process")

	LoadEnv("test")
	assert.Equal(t, "from-process", os.Getenv("SENTILENS_LOADENV_CHECK"))
}

func TestLoadEnv_Missing(t *testing.T) {
	t.Setenv("SENTIMENT_ENV_DIR", t.TempDir())

	assert.Empty(t, LoadEnv("nope"))
}
