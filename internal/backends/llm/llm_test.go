package llm

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCompleter struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	callCount int
}

func (m *mockCompleter) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.callCount
	m.callCount++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}

	var content string
	if i < len(m.responses) {
		content = m.responses[i]
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Content: content},
		}},
	}, nil
}

func (m *mockCompleter) getCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

func newTestBackend(m *mockCompleter) *Backend {
	return &Backend{completions: m, model: DefaultModel}
}

func TestClassify(t *testing.T) {
	m := &mockCompleter{responses: []string{
		"```json\n{\"scores\": [{\"label\": \"positive\", \"score\": 0.9}, {\"label\": \"NEGATIVE\", \"score\": 0.1}]}\n```",
	}}

	scores, err := newTestBackend(m).Classify(context.Background(), "I love this product!")
	require.NoError(t, err)
	assert.Equal(t, []models.RawClassScore{
		{Label: "POSITIVE", Score: 0.9},
		{Label: "NEGATIVE", Score: 0.1},
	}, scores)
	assert.Equal(t, 1, m.getCallCount())
}

func TestClassify_RetriesThenSucceeds(t *testing.T) {
	m := &mockCompleter{
		errs:      []error{errors.New("rate limited"), nil, nil},
		responses: []string{"", "not json", `{"scores": [{"label": "NEUTRAL", "score": 1.0}]}`},
	}

	scores, err := newTestBackend(m).Classify(context.Background(), "meh")
	require.NoError(t, err)
	assert.Equal(t, []models.RawClassScore{{Label: "NEUTRAL", Score: 1.0}}, scores)
	assert.Equal(t, 3, m.getCallCount())
}

func TestClassify_GivesUp(t *testing.T) {
	m := &mockCompleter{responses: []string{"", "", ""}}

	_, err := newTestBackend(m).Classify(context.Background(), "meh")
	require.Error(t, err)
	assert.ErrorIs(t, err, errEmptyResponse)
	assert.Equal(t, maxRetries, m.getCallCount())
}

func TestParseScores(t *testing.T) {
	scores, err := parseScores(`{"scores": [{"label": " pos ", "score": 1.4}, {"label": "", "score": 0.2}, {"label": "neg", "score": -1}]}`)
	require.NoError(t, err)
	assert.Equal(t, []models.RawClassScore{
		{Label: "POS", Score: 1},
		{Label: "NEG", Score: 0},
	}, scores)

	_, err = parseScores(`{"scores": []}`)
	assert.Error(t, err)

	_, err = parseScores(`{"scores": [{"label": "", "score": 1}]}`)
	assert.Error(t, err)
}

func TestCleanResponse(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanResponse("  ```json\n{\"a\":1}\n```  "))
	assert.Equal(t, `{"a":1}`, cleanResponse("```{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, cleanResponse(`{"a":1}`))
}

func TestAttendUnavailable(t *testing.T) {
	b := newTestBackend(&mockCompleter{})
	_, err := b.Attend(context.Background(), "text")
	assert.ErrorIs(t, err, sentiment.ErrAttentionUnavailable)

	_, tokens, err := b.Tokenize(context.Background(), "two words")
	require.NoError(t, err)
	assert.Equal(t, []string{"[CLS]", "two", "words", "[SEP]"}, tokens)
}

func TestNewLoaderRequiresKey(t *testing.T) {
	_, err := NewLoader("", "")(context.Background(), "ignored")
	assert.Error(t, err)
}
