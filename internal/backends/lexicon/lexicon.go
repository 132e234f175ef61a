// Package lexicon is a weight-free sentiment backend built on the VADER
// lexicon. It needs no model download and is deterministic, which makes it
// the fallback backend for offline use.
package lexicon

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/sentilens/internal/backends/words"
	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/sentiment"
)

const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"

	// Compound scores within +/- neutralBand are neutral.
	neutralBand = 0.20

	// attentionFloor keeps lexicon-neutral words from vanishing entirely.
	attentionFloor = 0.01
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
)

type Backend struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func New() *Backend {
	return &Backend{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Load satisfies sentiment.BackendLoader. The model id is ignored.
func Load(ctx context.Context, modelID string) (sentiment.InferenceBackend, error) {
	return New(), nil
}

func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// PlainText renders markdown, drops the produced markup and any links, and
// collapses whitespace.
func PlainText(input string) string {
	output := blackfriday.Run([]byte(RemoveLinks(input)), blackfriday.WithNoExtensions())
	stripped := tagPattern.ReplaceAllString(string(output), " ")
	return strings.Join(strings.Fields(stripped), " ")
}

func (b *Backend) Tokenize(ctx context.Context, text string) ([]int64, []string, error) {
	ids, tokens := words.Split(PlainText(text), sentiment.MaxSequenceTokens)
	return ids, tokens, nil
}

func (b *Backend) Classify(ctx context.Context, text string) ([]models.RawClassScore, error) {
	scores := b.analyzer.PolarityScores(PlainText(text))
	return LabelScores(scores.Compound), nil
}

// LabelScores turns a compound score into a three-class distribution. The
// neutral class holds a constant mass equal to the neutral band, so the
// positive class wins exactly when compound >= 0.20 and the negative class
// when compound <= -0.20.
func LabelScores(compound float64) []models.RawClassScore {
	pos := math.Max(compound, 0)
	neg := math.Max(-compound, 0)
	total := pos + neg + neutralBand

	return []models.RawClassScore{
		{Label: LabelPositive, Score: pos / total},
		{Label: LabelNegative, Score: neg / total},
		{Label: LabelNeutral, Score: neutralBand / total},
	}
}

// Attend synthesizes a single layer with a single head. The classification
// row weights each word by its lexicon intensity; every other row is
// uniform.
func (b *Backend) Attend(ctx context.Context, text string) ([][][][]float64, error) {
	_, tokens := words.Split(PlainText(text), sentiment.MaxSequenceTokens)
	seq := len(tokens)

	row0 := make([]float64, seq)
	var total float64
	for i, tok := range tokens {
		weight := attentionFloor
		if !sentiment.IsSpecialToken(tok) {
			weight += math.Abs(b.analyzer.PolarityScores(tok).Compound)
		}
		row0[i] = weight
		total += weight
	}
	for i := range row0 {
		row0[i] /= total
	}

	head := make([][]float64, seq)
	head[0] = row0
	for i := 1; i < seq; i++ {
		head[i] = make([]float64, seq)
		for j := range head[i] {
			head[i][j] = 1 / float64(seq)
		}
	}

	return [][][][]float64{{head}}, nil
}
