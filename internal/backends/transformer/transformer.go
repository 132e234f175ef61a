// Package transformer runs a Hugging Face sequence classification model
// through hugot, with an optional attention-exporting ONNX graph for
// attribution.
package transformer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/daulet/tokenizers"
	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/sentiment"
)

const tokenizerFile = "tokenizer.json"

type Config struct {
	CacheDir string
	// OnnxLibraryPath overrides where the ONNX Runtime shared library is
	// loaded from. Empty uses hugot's default lookup.
	OnnxLibraryPath string
	// AttentionModelPath points at an ONNX export of the same model that
	// emits attention tensors. Empty disables attention.
	AttentionModelPath string
	AttentionOutputs   []string
}

type Backend struct {
	session   *hugot.Session
	pipeline  *pipelines.TextClassificationPipeline
	tokenizer *tokenizers.Tokenizer
	attention *attentionSession
}

func NewLoader(cfg Config) sentiment.BackendLoader {
	return func(ctx context.Context, modelID string) (sentiment.InferenceBackend, error) {
		return Load(ctx, modelID, cfg)
	}
}

func Load(ctx context.Context, modelID string, cfg Config) (*Backend, error) {
	start := time.Now()

	modelDir, err := resolveModelDir(modelID, cfg.CacheDir, downloadModel)
	if err != nil {
		return nil, err
	}

	session, err := newSession(cfg.OnnxLibraryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hugot session: %w", err)
	}

	b := &Backend{session: session}
	if err := b.init(modelID, modelDir, cfg); err != nil {
		if cerr := b.Close(); cerr != nil {
			slog.Warn("[TransformerBackend] Cleanup after failed load",
				slog.String("error", cerr.Error()))
		}
		return nil, err
	}

	slog.Info("[TransformerBackend] Model loaded",
		slog.String("model", modelID),
		slog.String("path", modelDir),
		slog.Bool("attention", b.attention != nil),
		slog.Duration("elapsed", time.Since(start)))
	return b, nil
}

func (b *Backend) init(modelID, modelDir string, cfg Config) error {
	config := hugot.TextClassificationConfig{
		ModelPath: modelDir,
		Name:      "sentimentClassificationPipeline",
		Options: []hugot.TextClassificationOption{
			pipelines.WithSoftmax(),
			pipelines.WithMultiLabel(),
		},
	}
	pipeline, err := hugot.NewPipeline(b.session, config)
	if err != nil {
		return fmt.Errorf("failed to initialize classification pipeline for %s: %w", modelID, err)
	}
	b.pipeline = pipeline

	tk, err := tokenizers.FromFile(filepath.Join(modelDir, tokenizerFile))
	if err != nil {
		return fmt.Errorf("failed to load tokenizer: %w", err)
	}
	b.tokenizer = tk

	if cfg.AttentionModelPath != "" {
		att, err := newAttentionSession(cfg.AttentionModelPath, cfg.AttentionOutputs, cfg.OnnxLibraryPath)
		if err != nil {
			return fmt.Errorf("failed to initialize attention session: %w", err)
		}
		b.attention = att
	}
	return nil
}

func (b *Backend) Classify(ctx context.Context, text string) ([]models.RawClassScore, error) {
	output, err := b.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("classification pipeline failed: %w", err)
	}
	if len(output.ClassificationOutputs) == 0 {
		return nil, errors.New("classification pipeline returned no outputs")
	}

	classes := output.ClassificationOutputs[0]
	scores := make([]models.RawClassScore, len(classes))
	for i, c := range classes {
		scores[i] = models.RawClassScore{Label: c.Label, Score: float64(c.Score)}
	}
	return scores, nil
}

func (b *Backend) Tokenize(ctx context.Context, text string) ([]int64, []string, error) {
	rawIDs, tokens := b.tokenizer.Encode(text, true)
	ids, tokens := truncate(rawIDs, tokens, sentiment.MaxSequenceTokens)
	return ids, tokens, nil
}

func (b *Backend) Attend(ctx context.Context, text string) ([][][][]float64, error) {
	if b.attention == nil {
		return nil, sentiment.ErrAttentionUnavailable
	}
	ids, _, err := b.Tokenize(ctx, text)
	if err != nil {
		return nil, err
	}
	return b.attention.run(ids)
}

// Close releases the native session, tokenizer and attention graph.
func (b *Backend) Close() error {
	var errs []error
	if b.attention != nil {
		errs = append(errs, b.attention.destroy())
		b.attention = nil
	}
	if b.tokenizer != nil {
		errs = append(errs, b.tokenizer.Close())
		b.tokenizer = nil
	}
	if b.session != nil {
		errs = append(errs, b.session.Destroy())
		b.session = nil
	}
	return errors.Join(errs...)
}

// truncate keeps the first max-1 tokens and the final special token, the
// same shape a truncating tokenizer produces.
func truncate(rawIDs []uint32, tokens []string, max int) ([]int64, []string) {
	n := len(rawIDs)
	if len(tokens) < n {
		n = len(tokens)
	}
	keep := n
	if keep > max {
		keep = max
	}

	ids := make([]int64, keep)
	out := make([]string, keep)
	for i := 0; i < keep; i++ {
		ids[i] = int64(rawIDs[i])
		out[i] = tokens[i]
	}
	if n > max && max > 0 {
		ids[max-1] = int64(rawIDs[n-1])
		out[max-1] = tokens[n-1]
	}
	return ids, out
}
