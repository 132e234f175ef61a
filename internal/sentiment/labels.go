package sentiment

import (
	"strings"

	"github.com/spacesedan/sentilens/internal/models"
)

type labelRule struct {
	markers []string
	label   models.SentimentLabel
}

// labelRules is checked in order, so a raw label carrying both a positive and
// a negative marker resolves to positive.
var labelRules = [...]labelRule{
	{markers: []string{"positive", "pos", "1"}, label: models.SentimentPositive},
	{markers: []string{"negative", "neg", "0"}, label: models.SentimentNegative},
}

// Canonicalize maps a backend specific label such as "POSITIVE" or "LABEL_0"
// onto positive, negative or neutral.
func Canonicalize(rawLabel string) models.SentimentLabel {
	lower := strings.ToLower(rawLabel)
	for _, rule := range labelRules {
		for _, marker := range rule.markers {
			if strings.Contains(lower, marker) {
				return rule.label
			}
		}
	}
	return models.SentimentNeutral
}
