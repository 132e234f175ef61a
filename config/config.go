package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/sentilens/internal/models"
)

const (
	BackendHugot  = "hugot"
	BackendVader  = "vader"
	BackendOpenAI = "openai"

	DefaultModelName = "distilbert-base-uncased-finetuned-sst-2-english"
	DefaultCacheDir  = "~/.cache/sentilens/models"

	maxModelNameLength = 200
)

var modelNamePattern = regexp.MustCompile(`^[a-zA-Z0-9\-_/.]+$`)

type Config struct {
	ModelName          string
	Backend            string
	CacheDir           string
	MaxProcessingTime  time.Duration
	LogLevel           string
	PerformanceLogging bool
	Confidence         models.ConfidenceThresholds

	OnnxLibraryPath    string
	AttentionModelPath string
	AttentionOutputs   []string

	OpenAIAPIKey string
	OpenAIModel  string

	MetricsAddr         string
	HealthCheckInterval time.Duration
}

// Load reads the environment. Malformed numbers and booleans are errors;
// absent values fall back to defaults.
func Load() (*Config, error) {
	maxMS, err := getEnvInt("SENTIMENT_MAX_PROCESSING_TIME_MS", 2000)
	if err != nil {
		return nil, err
	}
	perfLogging, err := getEnvBool("SENTIMENT_ENABLE_PERFORMANCE_LOGGING", true)
	if err != nil {
		return nil, err
	}
	high, err := getEnvFloat("SENTIMENT_HIGH_CONFIDENCE", models.DefaultConfidenceThresholds.High)
	if err != nil {
		return nil, err
	}
	low, err := getEnvFloat("SENTIMENT_LOW_CONFIDENCE", models.DefaultConfidenceThresholds.Low)
	if err != nil {
		return nil, err
	}
	healthSeconds, err := getEnvInt("SENTIMENT_HEALTH_INTERVAL_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	cacheDir, err := ExpandHome(getEnv("SENTIMENT_CACHE_DIR", DefaultCacheDir))
	if err != nil {
		return nil, err
	}

	return &Config{
		ModelName:          getEnv("SENTIMENT_MODEL_NAME", DefaultModelName),
		Backend:            strings.ToLower(getEnv("SENTIMENT_BACKEND", BackendHugot)),
		CacheDir:           cacheDir,
		MaxProcessingTime:  time.Duration(maxMS) * time.Millisecond,
		LogLevel:           getEnv("SENTIMENT_LOG_LEVEL", "INFO"),
		PerformanceLogging: perfLogging,
		Confidence:         models.ConfidenceThresholds{High: high, Low: low},

		OnnxLibraryPath:    getEnv("ONNXRUNTIME_LIBRARY_PATH", ""),
		AttentionModelPath: getEnv("SENTIMENT_ATTENTION_MODEL", ""),
		AttentionOutputs:   getEnvList("SENTIMENT_ATTENTION_OUTPUTS"),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", ""),

		MetricsAddr:         getEnv("METRICS_ADDR", ":9090"),
		HealthCheckInterval: time.Duration(healthSeconds) * time.Second,
	}, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := ValidateModelName(c.ModelName); err != nil {
		return err
	}
	switch c.Backend {
	case BackendHugot, BackendVader:
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			return errors.New("OPENAI_API_KEY is required for the openai backend")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.MaxProcessingTime <= 0 {
		return errors.New("max processing time must be positive")
	}
	if c.Confidence.High < 0 || c.Confidence.High > 1 {
		return errors.New("high confidence threshold must be between 0.0 and 1.0")
	}
	if c.Confidence.Low < 0 || c.Confidence.Low > 1 {
		return errors.New("low confidence threshold must be between 0.0 and 1.0")
	}
	if c.Confidence.Low >= c.Confidence.High {
		return errors.New("low confidence threshold must be less than high confidence threshold")
	}
	return nil
}

func ValidateModelName(name string) error {
	if name == "" {
		return errors.New("model name must be a non-empty string")
	}
	if len(name) > maxModelNameLength {
		return errors.New("model name too long")
	}
	if !modelNamePattern.MatchString(name) {
		return errors.New("model name contains invalid characters")
	}
	return nil
}

// EnsureCacheDir creates the model cache directory when missing.
func (c *Config) EnsureCacheDir() error {
	if _, err := os.Stat(c.CacheDir); err == nil {
		return nil
	}
	if err := os.MkdirAll(c.CacheDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	slog.Info("[Config] Created cache directory", slog.String("path", c.CacheDir))
	return nil
}

func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, ""), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
