package utils

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToJSON(t *testing.T) {
	data, err := SerializeToJSON(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	_, err = SerializeToJSON(make(chan int))
	assert.ErrorContains(t, err, "chan int")
}

func TestHandleConsumerError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"transient", errors.New("broker down"), true},
		{"retriable kafka", kafka.NewError(kafka.ErrTransport, "transport", false), true},
		{"canceled", fmt.Errorf("read: %w", context.Canceled), false},
		{"fatal kafka", kafka.NewError(kafka.ErrFatal, "fatal", true), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HandleConsumerError(tt.err))
		})
	}
}
