package models

import "time"

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

func (l SentimentLabel) String() string {
	return string(l)
}

// RawClassScore is one label/score pair exactly as the backend returned it.
type RawClassScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type TokenAttribution struct {
	Token             string  `json:"token"`
	AttentionScore    float64 `json:"attention_score"`
	ContributionScore float64 `json:"contribution_score"`
}

// AttentionAttribution holds per-token scores in token order and the ten
// strongest contributors ordered by absolute contribution.
type AttentionAttribution struct {
	Tokens           []TokenAttribution `json:"tokens"`
	TopContributions []TokenAttribution `json:"top_contributions"`
}

// EmptyAttribution is what callers receive when attribution was requested
// but could not be computed.
func EmptyAttribution() *AttentionAttribution {
	return &AttentionAttribution{
		Tokens:           []TokenAttribution{},
		TopContributions: []TokenAttribution{},
	}
}

// PredictionResult is created once per prediction and never mutated.
type PredictionResult struct {
	SentimentLabel   SentimentLabel        `json:"sentiment_label"`
	ConfidenceScore  float64               `json:"confidence_score"`
	ProcessingTimeMS float64               `json:"processing_time_ms"`
	InputTextLength  int                   `json:"input_text_length"`
	RawClassScores   []RawClassScore       `json:"raw_class_scores"`
	Attribution      *AttentionAttribution `json:"attribution,omitempty"`
}

type ValidatedText struct {
	Text          string `json:"text"`
	Length        int    `json:"length"`
	WordCount     int    `json:"word_count"`
	LineCount     int    `json:"line_count"`
	ContainsURL   bool   `json:"contains_url"`
	ContainsEmail bool   `json:"contains_email"`
	ContainsHTML  bool   `json:"contains_html"`
}

type ModelInfo struct {
	ModelName string `json:"model_name"`
	Backend   string `json:"backend"`
	Status    string `json:"status"`
}

type PerformanceStats struct {
	Predictions             int64   `json:"predictions"`
	AverageProcessingTimeMS float64 `json:"average_processing_time_ms"`
}

type PipelineHealth struct {
	Status           string           `json:"status"`
	ModelLoaded      bool             `json:"model_loaded"`
	LastActivity     time.Time        `json:"last_activity"`
	PerformanceStats PerformanceStats `json:"performance_stats"`
	ErrorCount       int64            `json:"error_count"`
}
