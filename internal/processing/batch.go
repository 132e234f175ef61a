package processing

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/sentiment"
	"golang.org/x/sync/errgroup"
)

const DefaultDelimiter = "\n"

type Predictor interface {
	Predict(ctx context.Context, text string, includeAttention bool) (*models.PredictionResult, error)
}

type BatchOptions struct {
	IncludeAttention bool
	// Workers bounds concurrent predictions. Values below 1 run sequentially.
	Workers int
}

// SplitTexts splits content on delimiter, trims each piece and drops the
// empty ones.
func SplitTexts(content, delimiter string) []string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	var texts []string
	for _, part := range strings.Split(content, delimiter) {
		if part = strings.TrimSpace(part); part != "" {
			texts = append(texts, part)
		}
	}
	return texts
}

// ProcessBatch predicts every text. A failing item is recorded and skipped;
// it never stops the batch. Indexes are 1-based positions in texts.
func ProcessBatch(ctx context.Context, predictor Predictor, texts []string, opts BatchOptions) models.BatchReport {
	start := time.Now()
	items := make([]models.BatchItem, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	for i, text := range texts {
		items[i] = models.BatchItem{
			Index:     i + 1,
			ContentID: uuid.NewString(),
			InputText: text,
		}
		g.Go(func() error {
			result, err := predictor.Predict(gctx, text, opts.IncludeAttention)
			if err != nil {
				items[i].Error = err.Error()
				items[i].ErrorKind = sentiment.ErrorKind(err)
				slog.Warn("[BatchProcessor] Failed to process text",
					slog.Int("text_index", i+1),
					slog.String("error", err.Error()))
				return nil
			}
			items[i].Result = result
			return nil
		})
	}
	_ = g.Wait()

	report := models.BatchReport{Results: []models.BatchItem{}}
	for _, item := range items {
		if item.Result == nil {
			report.Failures = append(report.Failures, item)
			continue
		}
		report.Results = append(report.Results, item)
		switch item.Result.SentimentLabel {
		case models.SentimentPositive:
			report.Summary.Positive++
		case models.SentimentNegative:
			report.Summary.Negative++
		default:
			report.Summary.Neutral++
		}
	}
	report.TotalProcessed = len(report.Results)
	report.Failed = len(report.Failures)

	slog.Info("[BatchProcessor] Batch completed",
		slog.Int("total", len(texts)),
		slog.Int("processed", report.TotalProcessed),
		slog.Int("failed", report.Failed),
		slog.Duration("elapsed", time.Since(start)))
	return report
}
