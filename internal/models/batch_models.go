package models

type BatchItem struct {
	Index     int               `json:"text_index"`
	ContentID string            `json:"content_id"`
	InputText string            `json:"input_text"`
	Result    *PredictionResult `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
	ErrorKind string            `json:"error_kind,omitempty"`
}

type BatchSummary struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// BatchReport lists successful items in Results and skipped ones in Failures,
// both in input order.
type BatchReport struct {
	TotalProcessed int          `json:"total_processed"`
	Failed         int          `json:"failed"`
	Results        []BatchItem  `json:"results"`
	Failures       []BatchItem  `json:"failures,omitempty"`
	Summary        BatchSummary `json:"summary"`
}
