package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfidenceLevel(t *testing.T) {
	tests := []struct {
		score float64
		want  ConfidenceLevel
	}{
		{0.95, ConfidenceHigh},
		{0.8, ConfidenceHigh},
		{0.7999, ConfidenceMedium},
		{0.6, ConfidenceMedium},
		{0.5999, ConfidenceLow},
		{0, ConfidenceLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultConfidenceThresholds.Level(tt.score), "score %v", tt.score)
	}
}
