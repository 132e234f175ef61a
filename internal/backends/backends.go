// Package backends picks an InferenceBackend implementation by name.
package backends

import (
	"fmt"

	"github.com/spacesedan/sentilens/config"
	"github.com/spacesedan/sentilens/internal/backends/lexicon"
	"github.com/spacesedan/sentilens/internal/backends/llm"
	"github.com/spacesedan/sentilens/internal/backends/transformer"
	"github.com/spacesedan/sentilens/internal/sentiment"
)

func Names() []string {
	return []string{config.BackendHugot, config.BackendVader, config.BackendOpenAI}
}

// NewLoader returns the loader for cfg.Backend. Nothing is loaded until the
// service calls it.
func NewLoader(cfg *config.Config) (sentiment.BackendLoader, error) {
	switch cfg.Backend {
	case config.BackendHugot:
		return transformer.NewLoader(transformer.Config{
			CacheDir:           cfg.CacheDir,
			OnnxLibraryPath:    cfg.OnnxLibraryPath,
			AttentionModelPath: cfg.AttentionModelPath,
			AttentionOutputs:   cfg.AttentionOutputs,
		}), nil
	case config.BackendVader:
		return lexicon.Load, nil
	case config.BackendOpenAI:
		return llm.NewLoader(cfg.OpenAIAPIKey, cfg.OpenAIModel), nil
	default:
		return nil, fmt.Errorf("unknown backend %q, expected one of %v", cfg.Backend, Names())
	}
}

// NewService wires the configured backend into a sentiment service.
func NewService(cfg *config.Config, opts ...sentiment.Option) (*sentiment.Service, error) {
	loader, err := NewLoader(cfg)
	if err != nil {
		return nil, err
	}
	base := []sentiment.Option{
		sentiment.WithBackendName(cfg.Backend),
		sentiment.WithMaxProcessingTime(cfg.MaxProcessingTime),
		sentiment.WithPerformanceLogging(cfg.PerformanceLogging),
	}
	return sentiment.NewService(cfg.ModelName, loader, append(base, opts...)...), nil
}
