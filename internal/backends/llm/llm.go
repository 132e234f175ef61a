// Package llm classifies sentiment by asking a chat completion model for a
// JSON score list.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/sentilens/internal/backends/words"
	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/sentiment"
)

const (
	DefaultModel = "gpt-3.5-turbo"

	maxRetries        = 3
	defaultRetryDelay = 2 * time.Second
)

const classifyPrompt = `Classify the sentiment of the user's text.

### **STRICT OUTPUT FORMAT**
You MUST return only **valid JSON**, formatted exactly as follows:
{
  "scores": [
    {"label": "POSITIVE", "score": 0.0},
    {"label": "NEGATIVE", "score": 0.0},
    {"label": "NEUTRAL", "score": 0.0}
  ]
}

### **REQUIREMENTS**
- Scores are probabilities between 0 and 1 and sum to 1.
- Keep the labels and their order exactly as shown.
- **No Markdown formatting** (no triple backticks, no explanations).
- **No extra text before or after the JSON output**.
`

var errEmptyResponse = errors.New("model returned an empty response")

type chatCompleter interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type Backend struct {
	completions chatCompleter
	model       string
	retryDelay  time.Duration
}

func New(apiKey, model string) *Backend {
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	slog.Info("[LLMBackend] OpenAI client initialized", slog.String("model", model))
	return &Backend{
		completions: client.Chat.Completions,
		model:       model,
		retryDelay:  defaultRetryDelay,
	}
}

// NewLoader returns a loader that ignores the model id in favor of the chat
// model given here.
func NewLoader(apiKey, model string) sentiment.BackendLoader {
	return func(ctx context.Context, modelID string) (sentiment.InferenceBackend, error) {
		if apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY is required for the openai backend")
		}
		return New(apiKey, model), nil
	}
}

func (b *Backend) Tokenize(ctx context.Context, text string) ([]int64, []string, error) {
	ids, tokens := words.Split(text, sentiment.MaxSequenceTokens)
	return ids, tokens, nil
}

func (b *Backend) Attend(ctx context.Context, text string) ([][][][]float64, error) {
	return nil, sentiment.ErrAttentionUnavailable
}

func (b *Backend) Classify(ctx context.Context, text string) ([]models.RawClassScore, error) {
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(b.retryDelay):
			}
		}

		scores, err := b.classifyOnce(ctx, text)
		if err == nil {
			return scores, nil
		}
		lastErr = err
		slog.Warn("[LLMBackend] Classification attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
	}

	return nil, fmt.Errorf("classification failed after %d attempts: %w", maxRetries, lastErr)
}

func (b *Backend) classifyOnce(ctx context.Context, text string) ([]models.RawClassScore, error) {
	completion, err := b.completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(classifyPrompt),
			openai.UserMessage(text),
		}),
		Model:       openai.F(openai.ChatModel(b.model)),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, err
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return nil, errEmptyResponse
	}

	return parseScores(completion.Choices[0].Message.Content)
}

func parseScores(raw string) ([]models.RawClassScore, error) {
	var resp models.LLMClassScores
	if err := json.Unmarshal([]byte(cleanResponse(raw)), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	if len(resp.Scores) == 0 {
		return nil, errors.New("model response has no scores")
	}

	scores := make([]models.RawClassScore, 0, len(resp.Scores))
	for _, s := range resp.Scores {
		label := strings.ToUpper(strings.TrimSpace(s.Label))
		if label == "" {
			continue
		}
		scores = append(scores, models.RawClassScore{
			Label: label,
			Score: math.Min(math.Max(s.Score, 0), 1),
		})
	}
	if len(scores) == 0 {
		return nil, errors.New("model response has no labelled scores")
	}
	return scores, nil
}

func cleanResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
