package sentiment

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/spacesedan/sentilens/internal/models"
	"gonum.org/v1/gonum/mat"
)

const MaxTopContributions = 10

// specialTokens are injected by tokenizers and carry no lexical content.
var specialTokens = map[string]struct{}{
	"[CLS]": {}, "[SEP]": {}, "[PAD]": {},
	"<s>": {}, "</s>": {}, "<pad>": {},
}

func IsSpecialToken(token string) bool {
	_, ok := specialTokens[token]
	return ok
}

// AttributionExtractor turns the final layer attention of a classifier into
// per token attention and signed contribution scores.
type AttributionExtractor struct{}

func NewAttributionExtractor() *AttributionExtractor {
	return &AttributionExtractor{}
}

// Extract averages finalLayer (heads x seq x seq) across heads, reads the row
// of the classification position and signs it by the predicted label. It
// never fails: any problem with the tensor yields an empty attribution.
func (e *AttributionExtractor) Extract(tokens []string, finalLayer [][][]float64, label models.SentimentLabel) (attribution *models.AttentionAttribution) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("[AttributionExtractor] Recovered while reducing attention",
				slog.Any("panic", r))
			attribution = models.EmptyAttribution()
		}
	}()

	row, err := classificationRow(finalLayer)
	if err != nil {
		slog.Warn("[AttributionExtractor] Unusable attention tensor",
			slog.String("error", err.Error()))
		return models.EmptyAttribution()
	}
	if len(tokens) != len(row) {
		slog.Warn("[AttributionExtractor] Token count does not match attention sequence",
			slog.Int("tokens", len(tokens)),
			slog.Int("sequence", len(row)))
		return models.EmptyAttribution()
	}

	sign := -1.0
	if label == models.SentimentPositive {
		sign = 1.0
	}

	scored := make([]models.TokenAttribution, 0, len(tokens))
	for i, token := range tokens {
		if IsSpecialToken(token) {
			continue
		}
		attention := roundTo(row[i], 4)
		scored = append(scored, models.TokenAttribution{
			Token:             token,
			AttentionScore:    attention,
			ContributionScore: roundTo(attention*sign, 4),
		})
	}

	return &models.AttentionAttribution{
		Tokens:           scored,
		TopContributions: topContributions(scored, MaxTopContributions),
	}
}

// classificationRow returns row 0 of the head-averaged attention matrix.
func classificationRow(finalLayer [][][]float64) ([]float64, error) {
	heads := len(finalLayer)
	if heads == 0 {
		return nil, errors.New("attention tensor has no heads")
	}
	seq := len(finalLayer[0])
	if seq == 0 {
		return nil, errors.New("attention tensor has an empty sequence")
	}

	sum := mat.NewDense(seq, seq, nil)
	flat := make([]float64, seq*seq)
	for h, head := range finalLayer {
		if len(head) != seq {
			return nil, fmt.Errorf("head %d has %d rows, want %d", h, len(head), seq)
		}
		for i, r := range head {
			if len(r) != seq {
				return nil, fmt.Errorf("head %d row %d has %d columns, want %d", h, i, len(r), seq)
			}
			copy(flat[i*seq:], r)
		}
		sum.Add(sum, mat.NewDense(seq, seq, flat))
	}
	sum.Scale(1/float64(heads), sum)

	return mat.Row(nil, 0, sum), nil
}

func topContributions(tokens []models.TokenAttribution, limit int) []models.TokenAttribution {
	top := make([]models.TokenAttribution, len(tokens))
	copy(top, tokens)
	sort.SliceStable(top, func(i, j int) bool {
		return math.Abs(top[i].ContributionScore) > math.Abs(top[j].ContributionScore)
	})
	if len(top) > limit {
		top = top[:limit]
	}
	return top
}
