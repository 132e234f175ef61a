package sentiment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/spacesedan/sentilens/internal/models"
	"golang.org/x/sync/singleflight"
)

type BackendState int32

const (
	StateUninitialized BackendState = iota
	StateInitializing
	StateReady
	StateFailed
)

func (s BackendState) String() string {
	switch s {
	case StateUninitialized:
		return "not_initialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type Option func(*Service)

func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

func WithObserver(observer Observer) Option {
	return func(s *Service) { s.observer = observer }
}

// WithMaxProcessingTime sets the advisory processing budget. Slower
// predictions are logged and counted but never interrupted.
func WithMaxProcessingTime(d time.Duration) Option {
	return func(s *Service) { s.maxProcessingTime = d }
}

// WithBackendName labels the backend in Info output.
func WithBackendName(name string) Option {
	return func(s *Service) { s.backendName = name }
}

func WithPerformanceLogging(enabled bool) Option {
	return func(s *Service) { s.performanceLogging = enabled }
}

// Service runs validate -> classify -> canonicalize -> attribute -> assemble.
// Construct one per process and share it; the backend is loaded on the first
// Predict and never reloaded, even after a failed load.
type Service struct {
	modelID            string
	backendName        string
	loader             BackendLoader
	validator          *TextValidator
	extractor          *AttributionExtractor
	clock              clockwork.Clock
	observer           Observer
	maxProcessingTime  time.Duration
	performanceLogging bool

	initGroup singleflight.Group
	mu        sync.RWMutex
	state     BackendState
	backend   InferenceBackend
	initErr   error

	predictions  atomic.Int64
	errorCount   atomic.Int64
	totalMicros  atomic.Int64
	lastActivity atomic.Int64
}

func NewService(modelID string, loader BackendLoader, opts ...Option) *Service {
	s := &Service{
		modelID:            modelID,
		loader:             loader,
		validator:          NewTextValidator(),
		extractor:          NewAttributionExtractor(),
		clock:              clockwork.NewRealClock(),
		observer:           nopObserver{},
		performanceLogging: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	slog.Info("[SentimentService] Initializing sentiment pipeline",
		slog.String("model", modelID),
		slog.String("backend", s.backendName))
	return s
}

func (s *Service) ModelID() string {
	return s.modelID
}

func (s *Service) Validate(text string) (models.ValidatedText, error) {
	return s.validator.Validate(text)
}

func (s *Service) State() BackendState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Predict classifies text. Validation failures come back as
// *ValidationError before the backend is touched; backend problems as
// *InitializationError or *InferenceError. Attribution, when requested, is
// best effort and never fails the call.
func (s *Service) Predict(ctx context.Context, text string, includeAttention bool) (*models.PredictionResult, error) {
	start := s.clock.Now()
	s.lastActivity.Store(start.UnixNano())

	if _, err := s.validator.Validate(text); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			vErr.ElapsedMS = roundTo(s.elapsedMS(start), 2)
			s.observer.ObserveFailure(string(vErr.Kind))
			slog.Warn("[SentimentService] Input rejected",
				slog.String("kind", string(vErr.Kind)),
				slog.String("reason", vErr.Message),
				slog.Float64("elapsed_ms", vErr.ElapsedMS))
		}
		return nil, err
	}

	backend, err := s.ensureBackend(ctx)
	if err != nil {
		s.errorCount.Add(1)
		s.observer.ObserveFailure("InitializationError")
		slog.Error("[SentimentService] Prediction failed, backend unavailable",
			slog.Float64("elapsed_ms", roundTo(s.elapsedMS(start), 2)),
			slog.String("error", err.Error()))
		return nil, err
	}

	// Validation is a gate only; the backend sees the caller's text.
	input := text
	inputLen := utf8.RuneCountInString(input)
	if strings.TrimSpace(input) == "" {
		return nil, s.inferenceFailure(start, InputEmpty, errors.New("input text cannot be empty"))
	}
	if inputLen > MaxTextLength {
		return nil, s.inferenceFailure(start, InputTooLong, fmt.Errorf("input text too long (max %d characters)", MaxTextLength))
	}

	scores, err := backend.Classify(ctx, input)
	if err != nil {
		return nil, s.inferenceFailure(start, BackendFailure, err)
	}

	best, ok := topScore(scores)
	if !ok {
		return nil, s.inferenceFailure(start, NoScores, errors.New("backend returned no class scores"))
	}
	label := Canonicalize(best.Label)

	var attribution *models.AttentionAttribution
	if includeAttention {
		attribution = s.attribute(ctx, backend, input, label)
	}

	elapsed := s.elapsedMS(start)
	result := Assemble(label, best.Score, elapsed, inputLen, scores, attribution)

	s.predictions.Add(1)
	s.totalMicros.Add(int64(elapsed * 1000))
	s.observer.ObservePrediction(string(label), elapsed/1000)

	if s.maxProcessingTime > 0 && elapsed > float64(s.maxProcessingTime.Milliseconds()) {
		s.observer.ObserveSlowPrediction()
		slog.Warn("[SentimentService] Prediction exceeded processing budget",
			slog.Float64("elapsed_ms", result.ProcessingTimeMS),
			slog.Duration("budget", s.maxProcessingTime))
	}
	if s.performanceLogging {
		slog.Info("[SentimentService] Sentiment prediction completed",
			slog.String("label", string(label)),
			slog.Float64("confidence", result.ConfidenceScore),
			slog.Float64("elapsed_ms", result.ProcessingTimeMS))
	}

	return result, nil
}

// ensureBackend walks Uninitialized -> Initializing -> Ready|Failed. Callers
// arriving while a load is in flight share its outcome.
func (s *Service) ensureBackend(ctx context.Context) (InferenceBackend, error) {
	s.mu.RLock()
	state, backend, initErr := s.state, s.backend, s.initErr
	s.mu.RUnlock()

	switch state {
	case StateReady:
		return backend, nil
	case StateFailed:
		return nil, initErr
	}

	v, err, _ := s.initGroup.Do("backend", func() (any, error) {
		return s.initialize(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	return v.(InferenceBackend), nil
}

func (s *Service) initialize(ctx context.Context) (backend InferenceBackend, err error) {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		backend = s.backend
		s.mu.Unlock()
		return backend, nil
	case StateFailed:
		err = s.initErr
		s.mu.Unlock()
		return nil, err
	}
	s.state = StateInitializing
	s.mu.Unlock()

	slog.Info("[SentimentService] Loading sentiment classification pipeline",
		slog.String("model", s.modelID))
	start := s.clock.Now()

	defer func() {
		if r := recover(); r != nil {
			backend, err = nil, fmt.Errorf("loader panicked: %v", r)
		}
		if err == nil && backend == nil {
			err = errors.New("loader returned no backend")
		}

		s.mu.Lock()
		if err != nil {
			err = &InitializationError{ModelID: s.modelID, Cause: err}
			s.state = StateFailed
			s.initErr = err
		} else {
			s.state = StateReady
			s.backend = backend
		}
		s.mu.Unlock()

		elapsed := s.clock.Since(start)
		s.observer.ObserveInitialization(err == nil, elapsed.Seconds())
		if err != nil {
			slog.Error("[SentimentService] Failed to initialize pipeline",
				slog.String("model", s.modelID),
				slog.String("error", err.Error()))
			return
		}
		slog.Info("[SentimentService] Pipeline initialized successfully",
			slog.String("model", s.modelID),
			slog.Duration("elapsed", elapsed))
	}()

	return s.loader(ctx, s.modelID)
}

func (s *Service) attribute(ctx context.Context, backend InferenceBackend, text string, label models.SentimentLabel) (attribution *models.AttentionAttribution) {
	defer func() {
		if r := recover(); r != nil {
			attribution = s.degrade(fmt.Errorf("panic: %v", r))
		}
	}()

	_, tokens, err := backend.Tokenize(ctx, text)
	if err != nil {
		return s.degrade(fmt.Errorf("tokenize: %w", err))
	}
	layers, err := backend.Attend(ctx, text)
	if err != nil {
		return s.degrade(fmt.Errorf("attend: %w", err))
	}
	if len(layers) == 0 {
		return s.degrade(errors.New("attend returned no layers"))
	}

	attribution = s.extractor.Extract(tokens, layers[len(layers)-1], label)
	if len(attribution.Tokens) == 0 {
		s.observer.ObserveAttributionDegraded()
	}
	return attribution
}

func (s *Service) degrade(err error) *models.AttentionAttribution {
	s.observer.ObserveAttributionDegraded()
	slog.Warn("[SentimentService] Attention attribution unavailable",
		slog.String("error", err.Error()))
	return models.EmptyAttribution()
}

func (s *Service) inferenceFailure(start time.Time, kind InferenceKind, cause error) error {
	err := &InferenceError{Kind: kind, ElapsedMS: roundTo(s.elapsedMS(start), 2), Cause: cause}
	s.errorCount.Add(1)
	s.observer.ObserveFailure(string(kind))
	slog.Error("[SentimentService] Prediction failed",
		slog.String("kind", string(kind)),
		slog.Float64("elapsed_ms", err.ElapsedMS),
		slog.String("error", cause.Error()))
	return err
}

func (s *Service) elapsedMS(start time.Time) float64 {
	return float64(s.clock.Since(start).Microseconds()) / 1000
}

// topScore picks the highest score; the first entry wins ties.
func topScore(scores []models.RawClassScore) (models.RawClassScore, bool) {
	if len(scores) == 0 {
		return models.RawClassScore{}, false
	}
	best := scores[0]
	for _, sc := range scores[1:] {
		if sc.Score > best.Score {
			best = sc
		}
	}
	return best, true
}

func (s *Service) Info() models.ModelInfo {
	return models.ModelInfo{
		ModelName: s.modelID,
		Backend:   s.backendName,
		Status:    s.State().String(),
	}
}

func (s *Service) Health() models.PipelineHealth {
	state := s.State()
	errCount := s.errorCount.Load()

	status := "healthy"
	switch {
	case state == StateFailed:
		status = "error"
	case errCount > 0:
		status = "degraded"
	}

	var lastActivity time.Time
	if ns := s.lastActivity.Load(); ns != 0 {
		lastActivity = time.Unix(0, ns).UTC()
	}

	predictions := s.predictions.Load()
	var avg float64
	if predictions > 0 {
		avg = roundTo(float64(s.totalMicros.Load())/1000/float64(predictions), 2)
	}

	return models.PipelineHealth{
		Status:       status,
		ModelLoaded:  state == StateReady,
		LastActivity: lastActivity,
		PerformanceStats: models.PerformanceStats{
			Predictions:             predictions,
			AverageProcessingTimeMS: avg,
		},
		ErrorCount: errCount,
	}
}

// Close releases the backend if it holds native resources.
func (s *Service) Close() error {
	s.mu.RLock()
	backend := s.backend
	s.mu.RUnlock()

	if closer, ok := backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
