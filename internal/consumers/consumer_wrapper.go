package consumers

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/sentilens/internal/clients/kafka_client"
)

// StartFunc runs a consumer loop until ctx is done. Polling pauses while any
// health flag reads false.
type StartFunc func(ctx context.Context, consumer *kafka.Consumer, health ...*atomic.Bool)

// HealthGate is open only when every non-nil flag is set.
type HealthGate []*atomic.Bool

func (g HealthGate) Healthy() bool {
	for _, h := range g {
		if h != nil && !h.Load() {
			return false
		}
	}
	return true
}

// ConsumerWrapper binds a StartFunc to its health flags so it can be
// registered with the consumer factory.
type ConsumerWrapper struct {
	start StartFunc
	gate  HealthGate
}

func WrapConsumer(start StartFunc, health ...*atomic.Bool) ConsumerWrapper {
	return ConsumerWrapper{start: start, gate: health}
}

func (cw ConsumerWrapper) WithHealthCheck(health *atomic.Bool) ConsumerWrapper {
	gate := make(HealthGate, 0, len(cw.gate)+1)
	cw.gate = append(append(gate, cw.gate...), health)
	return cw
}

func (cw ConsumerWrapper) Handler() kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) {
		slog.Debug("[ConsumerWrapper] Starting consumer", slog.Int("health_checks", len(cw.gate)))
		cw.start(ctx, consumer, cw.gate...)
	}
}
