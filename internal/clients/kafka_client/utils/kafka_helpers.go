package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// SerializeToJSON encodes a message payload. The error names the payload
// type so a failed publish can be traced to its producer.
func SerializeToJSON(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("[KafkaUtils] Failed to serialize payload",
			slog.String("type", fmt.Sprintf("%T", value)),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("serialize %T: %w", value, err)
	}
	return data, nil
}

// HandleConsumerError logs a read error at a level matching its severity and
// reports whether the consumer can keep polling.
func HandleConsumerError(err error) (recoverable bool) {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.Debug("[KafkaUtils] Consumer stopped", slog.String("reason", err.Error()))
		return false
	}

	var kafkaErr kafka.Error
	if errors.As(err, &kafkaErr) && kafkaErr.IsFatal() {
		slog.Error("[KafkaUtils] Fatal Kafka consumer error",
			slog.String("code", kafkaErr.Code().String()),
			slog.String("error", err.Error()))
		return false
	}

	slog.Error("[KafkaUtils] Kafka consumer error", slog.String("error", err.Error()))
	return true
}
