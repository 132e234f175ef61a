package kafka_client

import "time"

// Default topics; KAFKA_REQUEST_TOPIC and KAFKA_RESULTS_TOPIC override them.
const (
	KAFKA_TOPIC_SENTIMENT_REQUEST = "sentiment-request"
	KAFKA_TOPIC_SENTIMENT_RESULTS = "sentiment-results"
)

const (
	// buffered responses published together
	BATCH_SIZE    = 50
	BATCH_TIMEOUT = 5 * time.Second

	MAX_RETRIES     = 5
	PUBLISH_RETRIES = 3
	RETRY_DELAY     = 2 * time.Second

	POLL_TIMEOUT  = 100 * time.Millisecond
	FLUSH_TIMEOUT = 5 * time.Second
)
