package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/events"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	AccountID string
	Wallet    domain.Address
	Role      domain.Role
}

// ActorFromAccount builds the actor for an authenticated account.
func ActorFromAccount(account *domain.Account) Actor {
	return Actor{AccountID: account.ID, Wallet: account.Wallet, Role: account.Role}
}

// IsAdmin reports whether the actor administers the registry.
func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}

func (a Actor) event() events.Actor {
	return events.Actor{AccountID: a.AccountID, Wallet: a.Wallet, Role: a.Role}
}

// publish hands the event to the dispatcher. Handlers run after the
// settlement committed, so their failures are logged, not returned.
func publish(ctx context.Context, d events.Dispatcher, logger *zap.Logger, event events.Event) {
	if d == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := d.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("subject", event.Subject),
			zap.Error(err))
	}
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
