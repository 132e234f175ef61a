package backends

import (
	"context"
	"testing"
	"time"

	"github.com/spacesedan/sentilens/config"
	"github.com/spacesedan/sentilens/internal/backends/lexicon"
	"github.com/spacesedan/sentilens/internal/models"
	"github.com/spacesedan/sentilens/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			loader, err := NewLoader(&config.Config{Backend: name})
			require.NoError(t, err)
			assert.NotNil(t, loader)
		})
	}

	_, err := NewLoader(&config.Config{Backend: "bert"})
	assert.ErrorContains(t, err, "unknown backend")
}

func TestNewLoader_Vader(t *testing.T) {
	loader, err := NewLoader(&config.Config{Backend: config.BackendVader})
	require.NoError(t, err)

	backend, err := loader(context.Background(), "ignored")
	require.NoError(t, err)
	assert.IsType(t, &lexicon.Backend{}, backend)
}

func TestNewLoader_OpenAIWithoutKeyFailsOnLoad(t *testing.T) {
	loader, err := NewLoader(&config.Config{Backend: config.BackendOpenAI})
	require.NoError(t, err)

	_, err = loader(context.Background(), "gpt")
	assert.Error(t, err)
}

func TestNewService_EndToEnd(t *testing.T) {
	svc, err := NewService(&config.Config{
		ModelName:          "vader",
		Backend:            config.BackendVader,
		MaxProcessingTime:  2 * time.Second,
		PerformanceLogging: true,
	})
	require.NoError(t, err)
	defer svc.Close()

	result, err := svc.Predict(context.Background(), "I love this product!", true)
	require.NoError(t, err)
	assert.Equal(t, models.SentimentPositive, result.SentimentLabel)
	require.NotNil(t, result.Attribution)
	assert.Equal(t, "love", result.Attribution.TopContributions[0].Token)
	assert.Equal(t, "vader", svc.Info().Backend)

	_, err = svc.Predict(context.Background(), "<script>alert(1)</script>", false)
	assert.ErrorIs(t, err, sentiment.ErrValidation)
}
