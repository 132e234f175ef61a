package sentiment

import (
	"context"
	"errors"

	"github.com/spacesedan/sentilens/internal/models"
)

// MaxSequenceTokens is the tokenizer truncation length backends must honor.
const MaxSequenceTokens = 512

// ErrAttentionUnavailable is returned by Attend when the loaded model cannot
// expose attention weights.
var ErrAttentionUnavailable = errors.New("attention weights are not available for this backend")

// InferenceBackend is the only boundary to the model. Implementations must be
// safe for concurrent use once loaded; the service never mutates them.
type InferenceBackend interface {
	// Tokenize returns token ids and token strings, special tokens included,
	// truncated to MaxSequenceTokens.
	Tokenize(ctx context.Context, text string) ([]int64, []string, error)
	// Classify returns one score per class label in backend order.
	Classify(ctx context.Context, text string) ([]models.RawClassScore, error)
	// Attend returns attention as [layer][head][seq][seq], aligned with the
	// tokens produced by Tokenize.
	Attend(ctx context.Context, text string) ([][][][]float64, error)
}

// BackendLoader builds a backend for the given model identifier. It is called
// at most once per Service.
type BackendLoader func(ctx context.Context, modelID string) (InferenceBackend, error)

// Observer receives prediction telemetry. All methods must be cheap and safe
// for concurrent use.
type Observer interface {
	ObservePrediction(label string, seconds float64)
	ObserveFailure(kind string)
	ObserveInitialization(success bool, seconds float64)
	ObserveAttributionDegraded()
	ObserveSlowPrediction()
}

type nopObserver struct{}

func (nopObserver) ObservePrediction(string, float64) {}
func (nopObserver) ObserveFailure(string) {}
func (nopObserver) ObserveInitialization(bool, float64) {}
func (nopObserver) ObserveAttributionDegraded() {}
func (nopObserver) ObserveSlowPrediction() {}
