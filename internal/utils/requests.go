package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spacesedan/sentilens/internal/models"
)

// DecodeSentimentRequests accepts a single request object or an array of
// them. Requests without a content id get a fresh UUID.
func DecodeSentimentRequests(data []byte) ([]models.SentimentRequest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty message")
	}

	var requests []models.SentimentRequest
	if data[0] == '[' {
		if err := json.Unmarshal(data, &requests); err != nil {
			return nil, fmt.Errorf("failed to decode request batch: %w", err)
		}
	} else {
		var single models.SentimentRequest
		if err := json.Unmarshal(data, &single); err != nil {
			return nil, fmt.Errorf("failed to decode request: %w", err)
		}
		requests = []models.SentimentRequest{single}
	}

	for i := range requests {
		if requests[i].ContentID == "" {
			requests[i].ContentID = uuid.NewString()
		}
	}
	return requests, nil
}
