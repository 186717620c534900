package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/identity-registry/internal/config"
	"github.com/spec-kit/identity-registry/internal/events"
	"github.com/spec-kit/identity-registry/internal/service"
)

func TestActivityService_RecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	activity := service.NewActivityService(dispatcher, nil, config.NotificationConfig{WebhookURL: "https://hooks.example.com"})
	activity.RegisterHandlers()

	for i := 0; i < 3; i++ {
		require.NoError(t, dispatcher.Publish(ctx, events.Event{
			Type:    events.EventVoteCast,
			Subject: fmt.Sprintf("poll-%d", i),
		}))
	}

	recent := activity.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "poll-2", recent[0].Subject)
	assert.Equal(t, "poll-1", recent[1].Subject)
	assert.NotEmpty(t, recent[0].ID)

	assert.Len(t, activity.Recent(0), 3)
}

func TestActivityService_BoundedLog(t *testing.T) {
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	activity := service.NewActivityService(dispatcher, nil, config.NotificationConfig{})
	activity.RegisterHandlers()

	for i := 0; i < 300; i++ {
		require.NoError(t, dispatcher.Publish(ctx, events.Event{
			Type:    events.EventIdentityExpired,
			Subject: fmt.Sprintf("record-%d", i),
		}))
	}

	recent := activity.Recent(0)
	require.Len(t, recent, 256)
	assert.Equal(t, "record-299", recent[0].Subject)
	assert.Equal(t, "record-44", recent[len(recent)-1].Subject)
}
