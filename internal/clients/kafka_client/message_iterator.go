package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

type messageReader interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
}

// KafkaMessageIterator reads one message per Next call, absorbing transient
// read errors.
type KafkaMessageIterator struct {
	consumer   messageReader
	ctx        context.Context
	timeout    time.Duration
	retryDelay time.Duration
}

func NewKafkaMessageIterator(ctx context.Context, consumer messageReader) *KafkaMessageIterator {
	return &KafkaMessageIterator{
		consumer:   consumer,
		ctx:        ctx,
		timeout:    POLL_TIMEOUT,
		retryDelay: RETRY_DELAY,
	}
}

type readOutcome int

const (
	readOK readOutcome = iota
	readIdle
	readRetry
	readAbort
)

func classifyRead(err error) readOutcome {
	if err == nil {
		return readOK
	}
	var kafkaErr kafka.Error
	if !errors.As(err, &kafkaErr) {
		return readRetry
	}
	switch {
	case kafkaErr.Code() == kafka.ErrTimedOut:
		return readIdle
	case kafkaErr.Code() == kafka.ErrAllBrokersDown, kafkaErr.IsFatal():
		return readAbort
	default:
		return readRetry
	}
}

// Next returns (nil, nil) when the poll timed out so callers can service
// timers between polls. It fails after MAX_RETRIES transient errors in a row.
func (it *KafkaMessageIterator) Next() (*kafka.Message, error) {
	if it.consumer == nil {
		return nil, errors.New("[KafkaIterator] Kafka consumer has not been initialized")
	}

	var lastErr error
	for attempt := 1; attempt <= MAX_RETRIES; attempt++ {
		if err := it.ctx.Err(); err != nil {
			slog.Warn("[KafkaIterator] Context cancelled, stopping iterator")
			return nil, err
		}

		msg, err := it.consumer.ReadMessage(it.timeout)
		switch classifyRead(err) {
		case readOK:
			return msg, nil
		case readIdle:
			return nil, nil
		case readAbort:
			slog.Error("[KafkaIterator] Unrecoverable Kafka error, aborting", slog.String("error", err.Error()))
			return nil, err
		}

		lastErr = err
		slog.Warn("[KafkaIterator] Failed to read message, retrying...",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", MAX_RETRIES),
			slog.String("error", err.Error()))
		select {
		case <-it.ctx.Done():
		case <-time.After(it.retryDelay):
		}
	}
	return nil, fmt.Errorf("[KafkaIterator] failed to read message after retries: %w", lastErr)
}
