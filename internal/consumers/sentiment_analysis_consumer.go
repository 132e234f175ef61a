package consumers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentilens/internal/clients/kafka_client"
	kafkautils "github.com/spacesedan/sentilens/internal/clients/kafka_client/utils"
	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/sentiment"
	"github.com/spacesedan/sentilens/internal/utils"
)

type Predictor interface {
	Predict(ctx context.Context, text string, includeAttention bool) (*models.PredictionResult, error)
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

type Committer interface {
	Commit(msg *kafka.Message) error
}

// stateReporter is implemented by predictors with a lifecycle, such as
// *sentiment.Service.
type stateReporter interface {
	State() sentiment.BackendState
}

// ErrBackendFailed is reported by Err once the consumer has stopped because
// its predictor reached the terminal Failed state.
var ErrBackendFailed = errors.New("sentiment backend failed permanently")

type messageSource interface {
	Next() (*kafka.Message, error)
}

// SentimentAnalysisConsumer predicts every request it reads, buffers the
// responses and publishes them as one batch. Offsets are committed only after
// the batch is published.
type SentimentAnalysisConsumer struct {
	predictor    Predictor
	publisher    Publisher
	resultsTopic string

	buffer  *utils.BatchBuffer[models.SentimentResponse]
	tracker *utils.MessageTracker
	flushMu sync.Mutex

	publishRetries int
	retryDelay     time.Duration
	flushInterval  time.Duration

	errMu sync.Mutex
	err   error
}

func NewSentimentAnalysisConsumer(predictor Predictor, publisher Publisher, resultsTopic string) *SentimentAnalysisConsumer {
	return &SentimentAnalysisConsumer{
		predictor:      predictor,
		publisher:      publisher,
		resultsTopic:   resultsTopic,
		buffer:         utils.NewBatchBuffer[models.SentimentResponse](kafka_client.BATCH_SIZE),
		tracker:        utils.NewMessageTracker(),
		publishRetries: kafka_client.PUBLISH_RETRIES,
		retryDelay:     kafka_client.RETRY_DELAY,
		flushInterval:  kafka_client.BATCH_TIMEOUT,
	}
}

// Start matches the signature WrapConsumer expects.
func (c *SentimentAnalysisConsumer) Start(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool) {
	iterator := kafka_client.NewKafkaMessageIterator(ctx, consumer)
	committer := kafka_client.NewCommitHandler(context.WithoutCancel(ctx), consumer)
	c.run(ctx, iterator, committer, health)
}

func (c *SentimentAnalysisConsumer) run(ctx context.Context, source messageSource, committer Committer, health []*atomic.Bool) {
	slog.Info("[SentimentAnalysisConsumer] Listening for sentiment requests",
		slog.String("results_topic", c.resultsTopic))

	ticker := time.NewTicker(c.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Warn("[SentimentAnalysisConsumer] Consumer shutting down...")
			c.flushAndLog(context.WithoutCancel(ctx), committer)
			return
		case <-ticker.C:
			c.flushAndLog(ctx, committer)
		default:
			if !HealthGate(health).Healthy() {
				if c.backendFailed() {
					slog.Error("[SentimentAnalysisConsumer] Backend failed permanently, stopping consumer")
					c.flushAndLog(context.WithoutCancel(ctx), committer)
					c.setErr(ErrBackendFailed)
					return
				}
				// hold messages on the broker until the backend recovers
				select {
				case <-ctx.Done():
				case <-time.After(c.flushInterval):
				}
				continue
			}

			msg, err := source.Next()
			if err != nil {
				if !kafkautils.HandleConsumerError(err) && ctx.Err() == nil {
					slog.Error("[SentimentAnalysisConsumer] Unrecoverable read error, stopping consumer")
					c.flushAndLog(context.WithoutCancel(ctx), committer)
					c.setErr(fmt.Errorf("read request: %w", err))
					return
				}
				if ctx.Err() == nil {
					time.Sleep(c.retryDelay)
				}
				continue
			}
			if msg == nil {
				continue
			}

			c.HandleMessage(ctx, msg)
			if c.buffer.Full() {
				c.flushAndLog(ctx, committer)
			}
		}
	}
}

// Err reports why the consumer stopped on its own, or nil after a normal
// shutdown.
func (c *SentimentAnalysisConsumer) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

func (c *SentimentAnalysisConsumer) setErr(err error) {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	c.err = err
}

func (c *SentimentAnalysisConsumer) backendFailed() bool {
	sr, ok := c.predictor.(stateReporter)
	return ok && sr.State() == sentiment.StateFailed
}

// HandleMessage predicts every request in msg and buffers the responses.
// Undecodable messages are tracked too so they are committed and skipped.
func (c *SentimentAnalysisConsumer) HandleMessage(ctx context.Context, msg *kafka.Message) {
	defer c.tracker.Track(msg)

	requests, err := utils.DecodeSentimentRequests(msg.Value)
	if err != nil {
		slog.Warn("[SentimentAnalysisConsumer] Skipping undecodable message",
			slog.String("error", err.Error()),
			slog.Int("bytes", len(msg.Value)))
		return
	}

	responses := make([]models.SentimentResponse, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, c.analyze(ctx, req))
	}
	c.buffer.Add(responses...)
}

func (c *SentimentAnalysisConsumer) analyze(ctx context.Context, req models.SentimentRequest) models.SentimentResponse {
	resp := models.SentimentResponse{ContentID: req.ContentID}

	result, err := c.predictor.Predict(ctx, req.Text, req.IncludeAttention)
	if err != nil {
		resp.Error = err.Error()
		resp.ErrorKind = sentiment.ErrorKind(err)
		slog.Warn("[SentimentAnalysisConsumer] Prediction failed",
			slog.String("content_id", req.ContentID),
			slog.String("kind", resp.ErrorKind),
			slog.String("error", err.Error()))
		return resp
	}

	resp.Result = result
	return resp
}

// Flush publishes buffered responses and then commits the messages they came
// from. A failed publish puts everything back for the next attempt.
func (c *SentimentAnalysisConsumer) Flush(ctx context.Context, committer Committer) error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	batch := c.buffer.GetAndClear()
	msgs := c.tracker.Drain()
	if len(batch) == 0 && len(msgs) == 0 {
		return nil
	}

	if len(batch) > 0 {
		if err := c.publish(ctx, batch); err != nil {
			c.buffer.Add(batch...)
			for _, msg := range msgs {
				c.tracker.Track(msg)
			}
			return err
		}
	}

	var commitErrs []error
	for _, msg := range msgs {
		if err := committer.Commit(msg); err != nil {
			commitErrs = append(commitErrs, err)
		}
	}
	return errors.Join(commitErrs...)
}

func (c *SentimentAnalysisConsumer) publish(ctx context.Context, batch []models.SentimentResponse) error {
	key := batch[0].ContentID

	var err error
	for i := 0; i < c.publishRetries; i++ {
		if i > 0 {
			time.Sleep(c.retryDelay)
		}
		err = c.publisher.Publish(ctx, c.resultsTopic, key, batch)
		if err == nil {
			slog.Info("[SentimentAnalysisConsumer] Results published to Kafka successfully",
				slog.Int("batch_size", len(batch)))
			return nil
		}
		slog.Warn("[SentimentAnalysisConsumer] Batch publishing failed",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	return fmt.Errorf("publishing %d results failed: %w", len(batch), err)
}

func (c *SentimentAnalysisConsumer) flushAndLog(ctx context.Context, committer Committer) {
	if err := c.Flush(ctx, committer); err != nil {
		slog.Error("[SentimentAnalysisConsumer] Failed to flush results",
			slog.String("error", err.Error()))
	}
}
