package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryDispatcher_PublishFillsEnvelope(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(EventIdentityBurned, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventIdentityBurned, Subject: "record"}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventIdentityClosed, Subject: "ignored"}))

	require.Len(t, got, 1)
	assert.Equal(t, "record", got[0].Subject)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestInMemoryDispatcher_JoinsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	first := errors.New("first")
	second := errors.New("second")
	calls := 0

	d.Subscribe(EventVoteCast, func(context.Context, Event) error { calls++; return first })
	d.Subscribe(EventVoteCast, func(context.Context, Event) error { calls++; return nil })
	d.Subscribe(EventVoteCast, func(context.Context, Event) error { calls++; return second })

	err := d.Publish(context.Background(), Event{Type: EventVoteCast})
	assert.Equal(t, 3, calls, "a failing handler does not stop the rest")
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
}
