package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-registry/internal/config"
	"github.com/spec-kit/identity-registry/internal/events"
)

const defaultActivityCapacity = 256

// ActivityService records lifecycle and vote events in a bounded log and
// forwards them to the configured webhook stub.
type ActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig

	mu       sync.Mutex
	recent   []events.Event
	capacity int
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *ActivityService {
	return &ActivityService{
		dispatcher: dispatcher,
		logger:     nopIfNil(logger),
		cfg:        cfg,
		capacity:   defaultActivityCapacity,
	}
}

// RegisterHandlers subscribes to every published event type.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

// Recent returns up to limit events, newest first.
func (a *ActivityService) Recent(limit int) []events.Event {
	a.mu.Lock()
	defer a.mu.Unlock()

	if limit <= 0 || limit > len(a.recent) {
		limit = len(a.recent)
	}
	out := make([]events.Event, 0, limit)
	for i := len(a.recent) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, a.recent[i])
	}
	return out
}

func (a *ActivityService) handle(ctx context.Context, event events.Event) error {
	a.logger.Info(string(event.Type),
		zap.String("event_id", event.ID),
		zap.String("subject", event.Subject),
		zap.String("account_id", event.Actor.AccountID),
		zap.Any("payload", event.Payload))

	a.mu.Lock()
	a.recent = append(a.recent, event)
	if len(a.recent) > a.capacity {
		a.recent = a.recent[len(a.recent)-a.capacity:]
	}
	a.mu.Unlock()

	a.sendWebhookStub(ctx, event)
	return nil
}

func (a *ActivityService) sendWebhookStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(a.cfg.WebhookURL) == "" {
		return
	}
	a.logger.Debug("sendWebhookStub",
		zap.String("url", a.cfg.WebhookURL),
		zap.String("subject", event.Subject),
		zap.String("event_type", string(event.Type)))
}
