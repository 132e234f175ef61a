package models

type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

type ConfidenceThresholds struct {
	High float64
	Low  float64
}

var DefaultConfidenceThresholds = ConfidenceThresholds{High: 0.8, Low: 0.6}

// Level buckets a confidence score; scores at or above High are high, scores
// below Low are low.
func (t ConfidenceThresholds) Level(score float64) ConfidenceLevel {
	switch {
	case score >= t.High:
		return ConfidenceHigh
	case score < t.Low:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}
