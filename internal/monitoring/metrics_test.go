package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ sentiment.Observer = (*PredictionMetrics)(nil)

func TestPredictionMetrics(t *testing.T) {
	m := NewPredictionMetrics(prometheus.NewRegistry())

	m.ObservePrediction("positive", 0.01)
	m.ObservePrediction("positive", 0.02)
	m.ObservePrediction("negative", 0.03)
	m.ObserveFailure("TooLong")
	m.ObserveInitialization(true, 1.5)
	m.ObserveAttributionDegraded()
	m.ObserveSlowPrediction()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Predictions.WithLabelValues("positive")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("negative")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("TooLong")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Initializations.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttributionDegraded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SlowPredictions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PredictionDuration))
}

type stubLoader struct {
	backend sentiment.InferenceBackend
	err     error
}

func (s stubLoader) load(ctx context.Context, modelID string) (sentiment.InferenceBackend, error) {
	return s.backend, s.err
}

type fixedBackend struct{}

func (fixedBackend) Tokenize(ctx context.Context, text string) ([]int64, []string, error) {
	return nil, nil, errors.New("no tokenizer")
}

func (fixedBackend) Classify(ctx context.Context, text string) ([]models.RawClassScore, error) {
	return []models.RawClassScore{{Label: "NEGATIVE", Score: 0.7}, {Label: "POSITIVE", Score: 0.3}}, nil
}

func (fixedBackend) Attend(ctx context.Context, text string) ([][][][]float64, error) {
	return nil, sentiment.ErrAttentionUnavailable
}

func TestPredictionMetrics_AsServiceObserver(t *testing.T) {
	m := NewPredictionMetrics(prometheus.NewRegistry())
	svc := sentiment.NewService("m", stubLoader{backend: fixedBackend{}}.load, sentiment.WithObserver(m))
	ctx := context.Background()

	_, err := svc.Predict(ctx, "not great", true)
	require.NoError(t, err)
	_, err = svc.Predict(ctx, "", false)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Predictions.WithLabelValues("negative")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("EmptyInput")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Initializations.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AttributionDegraded))
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	m := NewPredictionMetrics(reg)
	m.ObservePrediction("neutral", 0.1)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sentilens_predictions_total{label="neutral"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
