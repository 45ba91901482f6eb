package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, pattern string, data any) error {
	args := m.Called(ctx, pattern, data)
	return args.Error(0)
}

func TestFanOut_PublishesToAll(t *testing.T) {
	a, b := new(mockPublisher), new(mockPublisher)
	a.On("Publish", mock.Anything, "order.created", 42).Return(errors.New("broker down"))
	b.On("Publish", mock.Anything, "order.created", 42).Return(nil)

	err := NewFanOut(a, nil, b).Publish(context.Background(), "order.created", 42)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	a.AssertExpectations(t)
	b.AssertExpectations(t)
}

func TestFanOut_EmptyIsNoop(t *testing.T) {
	assert.NoError(t, NewFanOut().Publish(context.Background(), "order.created", nil))
}

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope("order.created", map[string]int{"orderId": 1})
	assert.Equal(t, "order.created", env.Pattern)
	assert.NotEmpty(t, env.ID)
	assert.False(t, env.OccurredAt.IsZero())
}
