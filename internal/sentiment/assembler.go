package sentiment

import (
	"math"

	"github.com/spacesedan/sentilens/internal/models"
)

// roundTo never returns negative zero, which encoding/json would print as -0.
func roundTo(value float64, places int) float64 {
	p := math.Pow10(places)
	r := math.Round(value*p) / p
	if r == 0 {
		return 0
	}
	return r
}

// Assemble merges the pieces of one prediction into a PredictionResult,
// rounding confidence and attribution scores to 4 places and timing to 2.
// rawScores is copied so the result does not alias backend memory.
func Assemble(label models.SentimentLabel, confidence, elapsedMS float64, inputLen int, rawScores []models.RawClassScore, attribution *models.AttentionAttribution) *models.PredictionResult {
	scores := make([]models.RawClassScore, len(rawScores))
	copy(scores, rawScores)

	return &models.PredictionResult{
		SentimentLabel:   label,
		ConfidenceScore:  roundTo(confidence, 4),
		ProcessingTimeMS: roundTo(math.Max(elapsedMS, 0), 2),
		InputTextLength:  inputLen,
		RawClassScores:   scores,
		Attribution:      roundAttribution(attribution),
	}
}

func roundAttribution(a *models.AttentionAttribution) *models.AttentionAttribution {
	if a == nil {
		return nil
	}
	return &models.AttentionAttribution{
		Tokens:           roundTokens(a.Tokens),
		TopContributions: roundTokens(a.TopContributions),
	}
}

func roundTokens(tokens []models.TokenAttribution) []models.TokenAttribution {
	out := make([]models.TokenAttribution, len(tokens))
	for i, t := range tokens {
		out[i] = models.TokenAttribution{
			Token:             t.Token,
			AttentionScore:    roundTo(t.AttentionScore, 4),
			ContributionScore: roundTo(t.ContributionScore, 4),
		}
	}
	return out
}
