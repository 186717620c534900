package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/spec-kit/identity-registry/internal/config"
	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/events"
	"github.com/spec-kit/identity-registry/internal/observability"
	"github.com/spec-kit/identity-registry/internal/repository"
	"github.com/spec-kit/identity-registry/internal/token"
)

// Lifecycle transition labels.
const (
	TransitionInitiate = "initiate"
	TransitionBurn     = "burn"
	TransitionExpire   = "expire"
	TransitionClose    = "close"
)

// IdentityService drives the soulbound identity lifecycle. Every transition
// runs as one settlement over the identity record and the registry.
type IdentityService struct {
	store      repository.Store
	tokens     token.Service
	authority  token.Authority
	metadata   config.TokenConfig
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// IdentityDependencies bundles collaborators for the identity service.
type IdentityDependencies struct {
	Store      repository.Store
	Tokens     token.Service
	Authority  token.Authority
	Metadata   config.TokenConfig
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewIdentityService constructs the service.
func NewIdentityService(deps IdentityDependencies) *IdentityService {
	return &IdentityService{
		store:      deps.Store,
		tokens:     deps.Tokens,
		authority:  deps.Authority,
		metadata:   deps.Metadata,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     nopIfNil(deps.Logger),
	}
}

// Initiate mints the caller's soulbound identity token for the given raw
// identity fields. It fails with ErrAlreadyMinted while the caller's record is
// active and with ErrDuplicateIdentity while any registry entry holds the
// same triple, including the caller's own inactive one. Overwriting an
// inactive record with a new triple releases the old triple and burns any
// unit the old record still holds.
func (s *IdentityService) Initiate(ctx context.Context, actor Actor, name, dob, gender string) (record *domain.IdentityRecord, err error) {
	identity, err := domain.HashIdentity(name, dob, gender)
	if err != nil {
		return nil, err
	}
	owner := actor.Wallet
	recordAddr := domain.RecordAddress(owner)

	ctx, span := observability.StartSpan(ctx, "identity.initiate", attribute.String("record", recordAddr.String()))
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordTransition(TransitionInitiate, err)
	}()

	nonce := uuid.New()
	mint := domain.MintAddress(owner, nonce[:])
	destination := domain.TokenAccountAddress(mint, owner)
	minted := false

	var (
		entry    *domain.RegistryEntry
		previous *domain.IdentityRecord
		pruned   int64
	)
	err = s.store.RunInTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Registry().Acquire(ctx); err != nil {
			return err
		}

		existing, err := repos.Identities().GetForUpdate(ctx, recordAddr)
		switch {
		case err == nil && existing.IsActive:
			return fmt.Errorf("%w: record %s", domain.ErrAlreadyMinted, recordAddr)
		case err == nil:
			previous = existing
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		dup, found, err := repos.Registry().FindDuplicate(ctx, identity)
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: registered to %s", domain.ErrDuplicateIdentity, dup.RecordAddress)
		}

		// The overwritten record no longer answers for its old triple.
		if previous != nil {
			if pruned, err = repos.Registry().RetainNotMatching(ctx, previous.Identity); err != nil {
				return err
			}
		}

		if _, err := s.tokens.CreateMetadataIfAbsent(ctx, s.authority, mint, s.metadataFor(recordAddr)); err != nil {
			return fmt.Errorf("create metadata: %w", err)
		}
		if err := s.tokens.MintOne(ctx, s.authority, mint, destination, owner); err != nil {
			return fmt.Errorf("mint: %w", err)
		}
		minted = true

		record = &domain.IdentityRecord{
			Address:     recordAddr,
			Owner:       owner,
			Mint:        mint,
			Destination: destination,
			Identity:    identity,
			IsActive:    true,
		}
		if err := repos.Identities().Upsert(ctx, record); err != nil {
			return err
		}
		entry = &domain.RegistryEntry{RecordAddress: recordAddr, Identity: identity}
		if err := repos.Registry().Append(ctx, entry); err != nil {
			return err
		}

		if err := s.tokens.RevokeMintAuthority(ctx, s.authority, mint); err != nil {
			return fmt.Errorf("revoke mint authority: %w", err)
		}
		if err := s.tokens.LockAccountAuthority(ctx, s.authority, destination); err != nil {
			return fmt.Errorf("lock account: %w", err)
		}
		if previous != nil {
			return s.retireUnit(ctx, previous)
		}
		return nil
	})
	if err != nil {
		if minted {
			s.compensateMint(ctx, mint, destination)
		}
		return nil, err
	}

	s.logger.Info("identity initiated",
		zap.String("record", recordAddr.String()),
		zap.String("mint", mint.String()),
		zap.Int64("registry_seq", entry.Seq),
		zap.Int64("previous_entries_removed", pruned))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventIdentityInitiated,
		Subject: recordAddr.String(),
		Actor:   actor.event(),
		Payload: events.IdentityInitiatedPayload{
			Owner:       owner,
			Mint:        mint,
			Destination: destination,
			RegistrySeq: entry.Seq,
		},
	})
	return record, nil
}

// compensateMint destroys a unit minted by a settlement that did not commit.
func (s *IdentityService) compensateMint(ctx context.Context, mint, destination domain.Address) {
	if err := s.tokens.BurnOne(context.WithoutCancel(ctx), s.authority, mint, destination); err != nil {
		s.logger.Error("compensating burn failed",
			zap.String("mint", mint.String()),
			zap.String("destination", destination.String()),
			zap.Error(err))
		return
	}
	s.logger.Warn("minted unit burned after failed settlement", zap.String("mint", mint.String()))
}

// retireUnit burns the unit an expired record left behind, if any.
func (s *IdentityService) retireUnit(ctx context.Context, rec *domain.IdentityRecord) error {
	acct, err := s.tokens.Account(ctx, rec.Destination)
	if errors.Is(err, token.ErrUnknownAccount) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("previous account: %w", err)
	}
	if acct.Balance == 0 {
		return nil
	}
	if err := s.tokens.BurnOne(ctx, s.authority, rec.Mint, rec.Destination); err != nil {
		return fmt.Errorf("burn previous unit: %w", err)
	}
	s.logger.Info("previous unit burned", zap.String("record", rec.Address.String()), zap.String("mint", rec.Mint.String()))
	return nil
}

func (s *IdentityService) metadataFor(recordAddr domain.Address) token.Metadata {
	return token.Metadata{
		Name:   s.metadata.Name,
		Symbol: s.metadata.Symbol,
		URI:    s.metadata.URIBase + recordAddr.String(),
	}
}

// Burn destroys the token unit bound to the record and deactivates it. The
// registry entry is kept, so the triple stays unavailable until Close.
func (s *IdentityService) Burn(ctx context.Context, actor Actor, address domain.Address) (record *domain.IdentityRecord, err error) {
	ctx, span := observability.StartSpan(ctx, "identity.burn", attribute.String("record", address.String()))
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordTransition(TransitionBurn, err)
	}()

	err = s.store.RunInTx(ctx, func(repos repository.Repositories) error {
		rec, err := repos.Identities().GetForUpdate(ctx, address)
		if err != nil {
			return err
		}
		if err := authorizeHolder(actor, rec); err != nil {
			return err
		}
		if err := repos.Identities().SetActive(ctx, address, false); err != nil {
			return err
		}
		if err := s.tokens.BurnOne(ctx, s.authority, rec.Mint, rec.Destination); err != nil {
			return fmt.Errorf("burn: %w", err)
		}
		rec.IsActive = false
		record = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventIdentityBurned,
		Subject: address.String(),
		Actor:   actor.event(),
		Payload: events.IdentityDeactivatedPayload{Owner: record.Owner, Mint: record.Mint, TokenBurned: true},
	})
	return record, nil
}

// Expire deactivates the record without touching the token ledger. Expiring
// an inactive record succeeds without changes.
func (s *IdentityService) Expire(ctx context.Context, actor Actor, address domain.Address) (record *domain.IdentityRecord, err error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: expire requires admin", domain.ErrForbidden)
	}
	ctx, span := observability.StartSpan(ctx, "identity.expire", attribute.String("record", address.String()))
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordTransition(TransitionExpire, err)
	}()

	changed := false
	err = s.store.RunInTx(ctx, func(repos repository.Repositories) error {
		rec, err := repos.Identities().GetForUpdate(ctx, address)
		if err != nil {
			return err
		}
		record = rec
		if !rec.IsActive {
			return nil
		}
		if err := repos.Identities().SetActive(ctx, address, false); err != nil {
			return err
		}
		rec.IsActive = false
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if changed {
		publish(ctx, s.dispatcher, s.logger, events.Event{
			Type:    events.EventIdentityExpired,
			Subject: address.String(),
			Actor:   actor.event(),
			Payload: events.IdentityDeactivatedPayload{Owner: record.Owner, Mint: record.Mint},
		})
	}
	return record, nil
}

// Close destroys an inactive record and prunes every registry entry holding
// its triple, freeing the identity for a new initiation.
func (s *IdentityService) Close(ctx context.Context, actor Actor, address domain.Address) (err error) {
	ctx, span := observability.StartSpan(ctx, "identity.close", attribute.String("record", address.String()))
	defer func() {
		observability.EndSpan(span, err)
		s.metrics.RecordTransition(TransitionClose, err)
	}()

	var (
		owner   domain.Address
		removed int64
	)
	err = s.store.RunInTx(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Registry().Acquire(ctx); err != nil {
			return err
		}
		rec, err := repos.Identities().GetForUpdate(ctx, address)
		if err != nil {
			return err
		}
		if err := authorizeHolder(actor, rec); err != nil {
			return err
		}
		if rec.IsActive {
			return fmt.Errorf("%w: burn or expire %s first", domain.ErrIdentityStillActive, address)
		}
		removed, err = repos.Registry().RetainNotMatching(ctx, rec.Identity)
		if err != nil {
			return err
		}
		owner = rec.Owner
		return repos.Identities().Delete(ctx, address)
	})
	if err != nil {
		return err
	}

	s.logger.Info("identity closed", zap.String("record", address.String()), zap.Int64("entries_removed", removed))
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventIdentityClosed,
		Subject: address.String(),
		Actor:   actor.event(),
		Payload: events.IdentityClosedPayload{Owner: owner, EntriesRemoved: removed},
	})
	return nil
}

// Get returns the record at address.
func (s *IdentityService) Get(ctx context.Context, address domain.Address) (*domain.IdentityRecord, error) {
	return s.store.Identities().Get(ctx, address)
}

// GetByOwner returns the record owned by a wallet.
func (s *IdentityService) GetByOwner(ctx context.Context, owner domain.Address) (*domain.IdentityRecord, error) {
	return s.store.Identities().Get(ctx, domain.RecordAddress(owner))
}

func authorizeHolder(actor Actor, rec *domain.IdentityRecord) error {
	if actor.IsAdmin() || actor.Wallet == rec.Owner {
		return nil
	}
	return fmt.Errorf("%w: record %s belongs to another wallet", domain.ErrForbidden, rec.Address)
}
