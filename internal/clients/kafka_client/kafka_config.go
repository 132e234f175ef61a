package kafka_client

import (
	"errors"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// KafkaConfig holds the connection and topic settings shared by the worker's
// consumer and producer.
type KafkaConfig struct {
	Broker           string
	GroupID          string
	RequestTopic     string
	ResultsTopic     string
	TransactionalID  string
	SecurityProtocol string
	OffsetReset      string
}

func GetKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Broker:           envOr("KAFKA_BROKER", "localhost:29092"),
		GroupID:          envOr("KAFKA_CONSUMER_GROUP_ID", "sentilens-consumer-group"),
		RequestTopic:     envOr("KAFKA_REQUEST_TOPIC", KAFKA_TOPIC_SENTIMENT_REQUEST),
		ResultsTopic:     envOr("KAFKA_RESULTS_TOPIC", KAFKA_TOPIC_SENTIMENT_RESULTS),
		TransactionalID:  envOr("KAFKA_TRANSACTIONAL_ID", "sentilens-producer-1"),
		SecurityProtocol: envOr("KAFKA_SECURITY_PROTOCOL", "PLAINTEXT"),
		OffsetReset:      envOr("KAFKA_AUTO_OFFSET_RESET", "earliest"),
	}
}

func (c KafkaConfig) Validate() error {
	var errs []error
	if c.Broker == "" {
		errs = append(errs, errors.New("kafka broker is required"))
	}
	if c.RequestTopic == "" || c.ResultsTopic == "" {
		errs = append(errs, errors.New("request and results topics are required"))
	}
	if c.RequestTopic != "" && c.RequestTopic == c.ResultsTopic {
		errs = append(errs, errors.New("request and results topics must differ"))
	}
	return errors.Join(errs...)
}

// consumerConfigMap reads only committed transactions and leaves offset
// commits to the caller.
func (c KafkaConfig) consumerConfigMap() *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":  c.Broker,
		"security.protocol":  c.SecurityProtocol,
		"group.id":           c.GroupID,
		"auto.offset.reset":  c.OffsetReset,
		"enable.auto.commit": false,
		"isolation.level":    "read_committed",
	}
}

func (c KafkaConfig) producerConfigMap() *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":                     c.Broker,
		"security.protocol":                     c.SecurityProtocol,
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
		"transactional.id":                      c.TransactionalID,
	}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
