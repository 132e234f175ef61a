package kafka_client

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// ConsumerFunc owns a subscribed consumer until ctx is done.
type ConsumerFunc func(context.Context, *kafka.Consumer)

var registry = struct {
	mu        sync.RWMutex
	consumers map[string]ConsumerFunc
}{consumers: make(map[string]ConsumerFunc)}

// RegisterConsumer binds fn to topic. A later registration for the same topic
// replaces the earlier one.
func RegisterConsumer(topic string, fn ConsumerFunc) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.consumers[topic]; exists {
		slog.Warn("[ConsumerFactory] Replacing registered consumer", slog.String("topic", topic))
	}
	registry.consumers[topic] = fn
}

func lookupConsumer(topic string) (ConsumerFunc, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	fn, exists := registry.consumers[topic]
	if !exists {
		return nil, fmt.Errorf("[ConsumerFactory] no consumer registered for topic %q", topic)
	}
	return fn, nil
}

// StartConsumer subscribes to cfg.RequestTopic and blocks in the registered
// ConsumerFunc. The consumer is closed when it returns.
func StartConsumer(ctx context.Context, cfg KafkaConfig) error {
	fn, err := lookupConsumer(cfg.RequestTopic)
	if err != nil {
		return err
	}

	consumer, err := NewConsumer(cfg)
	if err != nil {
		return fmt.Errorf("[ConsumerFactory] consumer init: %w", err)
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			slog.Warn("[ConsumerFactory] Failed to close consumer", slog.String("error", err.Error()))
		}
	}()

	slog.Info("[ConsumerFactory] Consumer started", slog.String("topic", cfg.RequestTopic))
	fn(ctx, consumer)
	slog.Info("[ConsumerFactory] Consumer stopped", slog.String("topic", cfg.RequestTopic))
	return nil
}
