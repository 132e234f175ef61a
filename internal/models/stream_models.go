package models

type SentimentRequest struct {
	ContentID        string `json:"content_id"`
	Text             string `json:"text"`
	IncludeAttention bool   `json:"include_attention,omitempty"`
}

type SentimentResponse struct {
	ContentID string            `json:"content_id"`
	Result    *PredictionResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	ErrorKind string            `json:"error_kind,omitempty"`
}
