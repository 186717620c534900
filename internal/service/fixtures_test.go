package service_test

import (
	"context"
	"sync"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/events"
	"github.com/spec-kit/identity-registry/internal/service"
)

// eventRecorder captures every event published on a dispatcher.
type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func recordEvents(d events.Dispatcher) *eventRecorder {
	r := &eventRecorder{}
	for _, t := range events.AllEventTypes {
		d.Subscribe(t, func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
	return r
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *eventRecorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func actorFor(account *domain.Account) service.Actor {
	return service.ActorFromAccount(account)
}
