package processing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPredictor struct {
	mu       sync.Mutex
	seen     []string
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (m *mockPredictor) Predict(ctx context.Context, text string, includeAttention bool) (*models.PredictionResult, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	m.mu.Lock()
	m.seen = append(m.seen, text)
	m.mu.Unlock()

	switch {
	case strings.HasPrefix(text, "bad"):
		return nil, &sentiment.ValidationError{Kind: sentiment.SuspiciousContent, Message: "nope"}
	case strings.Contains(text, "love"):
		return &models.PredictionResult{SentimentLabel: models.SentimentPositive, ConfidenceScore: 0.9}, nil
	case strings.Contains(text, "hate"):
		return &models.PredictionResult{SentimentLabel: models.SentimentNegative, ConfidenceScore: 0.8}, nil
	default:
		return &models.PredictionResult{SentimentLabel: models.SentimentNeutral, ConfidenceScore: 0.5}, nil
	}
}

func TestSplitTexts(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		delimiter string
		want      []string
	}{
		{"newlines", "I love it\nI hate it\n", "\n", []string{"I love it", "I hate it"}},
		{"default delimiter", "a\nb", "", []string{"a", "b"}},
		{"trims and drops empties", "  one  \n\n   \ntwo", "\n", []string{"one", "two"}},
		{"custom delimiter", "x|y||z", "|", []string{"x", "y", "z"}},
		{"only blanks", "\n \n", "\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTexts(tt.content, tt.delimiter))
		})
	}
}

func TestProcessBatch_SkipsFailuresAndKeepsOrder(t *testing.T) {
	p := &mockPredictor{}
	texts := []string{"I love it", "bad input", "I hate it", "it is fine"}

	report := ProcessBatch(context.Background(), p, texts, BatchOptions{})

	assert.Equal(t, 3, report.TotalProcessed)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Results, 3)
	assert.Equal(t, []int{1, 3, 4}, []int{report.Results[0].Index, report.Results[1].Index, report.Results[2].Index})
	assert.Equal(t, "I hate it", report.Results[1].InputText)
	assert.NotEmpty(t, report.Results[0].ContentID)

	require.Len(t, report.Failures, 1)
	assert.Equal(t, 2, report.Failures[0].Index)
	assert.Equal(t, string(sentiment.SuspiciousContent), report.Failures[0].ErrorKind)
	assert.Nil(t, report.Failures[0].Result)

	assert.Equal(t, models.BatchSummary{Positive: 1, Negative: 1, Neutral: 1}, report.Summary)
	assert.Equal(t, texts, p.seen)
}

func TestProcessBatch_Empty(t *testing.T) {
	report := ProcessBatch(context.Background(), &mockPredictor{}, nil, BatchOptions{})
	assert.Equal(t, 0, report.TotalProcessed)
	assert.NotNil(t, report.Results)
	assert.Empty(t, report.Failures)
}

func TestProcessBatch_Workers(t *testing.T) {
	p := &mockPredictor{}
	texts := make([]string, 40)
	for i := range texts {
		texts[i] = fmt.Sprintf("text %d love", i)
	}

	report := ProcessBatch(context.Background(), p, texts, BatchOptions{Workers: 4})

	assert.Equal(t, 40, report.TotalProcessed)
	assert.LessOrEqual(t, p.peak.Load(), int32(4))
	for i, item := range report.Results {
		assert.Equal(t, i+1, item.Index)
		assert.Equal(t, texts[i], item.InputText)
	}
}
