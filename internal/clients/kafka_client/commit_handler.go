package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type offsetCommitter interface {
	CommitMessage(msg *kafka.Message) ([]kafka.TopicPartition, error)
}

// KafkaCommitHandler commits one message offset at a time. It keeps its own
// context so commits can outlive the consumer's polling context during
// shutdown.
type KafkaCommitHandler struct {
	consumer   offsetCommitter
	ctx        context.Context
	retryDelay time.Duration
}

func NewCommitHandler(ctx context.Context, consumer offsetCommitter) *KafkaCommitHandler {
	return &KafkaCommitHandler{
		consumer:   consumer,
		ctx:        ctx,
		retryDelay: RETRY_DELAY,
	}
}

// Commit retries up to MAX_RETRIES times. It gives up at once when every
// broker is down.
func (ch *KafkaCommitHandler) Commit(msg *kafka.Message) error {
	if ch.consumer == nil {
		return errors.New("[KafkaCommitHandler] Kafka consumer has not been initialized")
	}
	attrs := []any{
		slog.Int("partition", int(msg.TopicPartition.Partition)),
		slog.Int64("offset", int64(msg.TopicPartition.Offset)),
	}

	var lastErr error
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		if attempt > 1 {
			select {
			case <-ch.ctx.Done():
				slog.Warn("[KafkaCommitHandler] Context canceled, stopping commit", attrs...)
				return ch.ctx.Err()
			case <-time.After(ch.retryDelay):
			}
		}

		if _, lastErr = ch.consumer.CommitMessage(msg); lastErr == nil {
			slog.Debug("[KafkaCommitHandler] Committed offset", attrs...)
			return nil
		}

		var kafkaErr kafka.Error
		if errors.As(lastErr, &kafkaErr) && kafkaErr.Code() == kafka.ErrAllBrokersDown {
			slog.Error("[KafkaCommitHandler] All Kafka brokers are down. Aborting commit", attrs...)
			return lastErr
		}
		slog.Warn("[KafkaCommitHandler] Commit failed",
			append(attrs, slog.Int("attempt", attempt), slog.String("error", lastErr.Error()))...)
	}

	return fmt.Errorf("[KafkaCommitHandler] commit failed after %d attempts: %w", MAX_RETRIES, lastErr)
}
