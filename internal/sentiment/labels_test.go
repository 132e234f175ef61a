package sentiment

import (
	"testing"

	"github.com/spacesedan/sentilens/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		raw  string
		want models.SentimentLabel
	}{
		{"POSITIVE", models.SentimentPositive},
		{"Positive", models.SentimentPositive},
		{"pos", models.SentimentPositive},
		{"LABEL_1", models.SentimentPositive},
		{"NEGATIVE", models.SentimentNegative},
		{"neg", models.SentimentNegative},
		{"LABEL_0", models.SentimentNegative},
		{"NEUTRAL", models.SentimentNeutral},
		{"mixed", models.SentimentNeutral},
		{"", models.SentimentNeutral},
		// both markers present: positive wins
		{"positive_vs_negative", models.SentimentPositive},
		{"LABEL_10", models.SentimentPositive},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Canonicalize(tt.raw), "raw label %q", tt.raw)
	}
}
