package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/spec-kit/identity-registry/internal/config"
	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/events"
	"github.com/spec-kit/identity-registry/internal/observability"
	"github.com/spec-kit/identity-registry/internal/repository/sqlite"
	"github.com/spec-kit/identity-registry/internal/service"
	"github.com/spec-kit/identity-registry/internal/testutil"
	"github.com/spec-kit/identity-registry/internal/token"
	"github.com/spec-kit/identity-registry/internal/token/mocks"
)

var tokenConfig = config.TokenConfig{
	Name:    "Soulbound Identity",
	Symbol:  "SBID",
	URIBase: "https://example.com/identities/",
}

type IdentityServiceSuite struct {
	suite.Suite

	ctx      context.Context
	store    *sqlite.Store
	ledger   *token.MemoryLedger
	recorder *eventRecorder
	identity *service.IdentityService
	registry *service.RegistryService

	admin service.Actor
	alice service.Actor
	bob   service.Actor
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewSQLiteStore(s.T())
	s.ledger = token.NewMemoryLedger()

	dispatcher := events.NewInMemoryDispatcher()
	s.recorder = recordEvents(dispatcher)

	s.identity = service.NewIdentityService(service.IdentityDependencies{
		Store:      s.store,
		Tokens:     s.ledger,
		Authority:  token.NewAuthority(),
		Metadata:   tokenConfig,
		Dispatcher: dispatcher,
		Metrics:    observability.NewMetrics(),
	})
	s.registry = service.NewRegistryService(s.store, dispatcher, nil)

	s.admin = actorFor(testutil.CreateAccount(s.T(), s.store, domain.RoleAdmin))
	s.alice = actorFor(testutil.CreateAccount(s.T(), s.store, domain.RoleHolder))
	s.bob = actorFor(testutil.CreateAccount(s.T(), s.store, domain.RoleHolder))

	_, created, err := s.registry.Initialize(s.ctx, s.admin)
	s.Require().NoError(err)
	s.Require().True(created)
}

func (s *IdentityServiceSuite) entries() int64 {
	stats, err := s.registry.Stats(s.ctx)
	s.Require().NoError(err)
	return stats.Entries
}

func (s *IdentityServiceSuite) initiateAlice(actor service.Actor) (*domain.IdentityRecord, error) {
	return s.identity.Initiate(s.ctx, actor, "Alice", "2000-01-01", "F")
}

func (s *IdentityServiceSuite) TestInitiateRequiresRegistry() {
	store := testutil.NewSQLiteStore(s.T())
	svc := service.NewIdentityService(service.IdentityDependencies{
		Store:     store,
		Tokens:    token.NewMemoryLedger(),
		Authority: token.NewAuthority(),
		Metadata:  tokenConfig,
	})

	_, err := svc.Initiate(s.ctx, s.alice, "Alice", "2000-01-01", "F")
	s.ErrorIs(err, domain.ErrRegistryNotInitialized)
}

func (s *IdentityServiceSuite) TestInitiateMintsSoulboundToken() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)

	s.Equal(domain.RecordAddress(s.alice.Wallet), record.Address)
	s.Equal(s.alice.Wallet, record.Owner)
	s.True(record.IsActive)
	s.Equal(domain.HashField("Alice"), record.Identity.Name)
	s.Equal(int64(1), s.entries())

	mint, err := s.ledger.Mint(s.ctx, record.Mint)
	s.Require().NoError(err)
	s.True(mint.AuthorityRevoked)
	s.Equal(uint64(1), mint.Supply)
	s.Require().NotNil(mint.Metadata)
	s.Equal(tokenConfig.URIBase+record.Address.String(), mint.Metadata.URI)
	s.Equal(tokenConfig.Symbol, mint.Metadata.Symbol)

	account, err := s.ledger.Account(s.ctx, record.Destination)
	s.Require().NoError(err)
	s.Equal(uint64(1), account.Balance)
	s.True(account.Locked)
	s.Equal(token.NewAuthority().Signer, account.Authority)

	stored, err := s.identity.GetByOwner(s.ctx, s.alice.Wallet)
	s.Require().NoError(err)
	s.Equal(record.Mint, stored.Mint)

	s.Equal([]events.EventType{events.EventRegistryInitialized, events.EventIdentityInitiated}, s.recorder.types())
	payload, ok := s.recorder.last().Payload.(events.IdentityInitiatedPayload)
	s.Require().True(ok)
	s.Equal(int64(1), payload.RegistrySeq)
}

func (s *IdentityServiceSuite) TestInitiateRejectsInvalidFields() {
	_, err := s.identity.Initiate(s.ctx, s.alice, "", "2000-01-01", "F")
	s.ErrorIs(err, domain.ErrInvalidInput)
	s.Zero(s.entries())
}

func (s *IdentityServiceSuite) TestInitiateWhileActiveIsAlreadyMinted() {
	_, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)

	_, err = s.identity.Initiate(s.ctx, s.alice, "Alicia", "2001-02-02", "F")
	s.ErrorIs(err, domain.ErrAlreadyMinted)
	s.Equal(int64(1), s.entries())
}

func (s *IdentityServiceSuite) TestSameTripleFromAnotherWalletIsDuplicate() {
	_, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)

	_, err = s.initiateAlice(s.bob)
	s.ErrorIs(err, domain.ErrDuplicateIdentity)
	s.Equal(int64(1), s.entries())

	_, err = s.identity.GetByOwner(s.ctx, s.bob.Wallet)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *IdentityServiceSuite) TestReinitiateAfterBurnWithoutCloseIsDuplicate() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)
	_, err = s.identity.Burn(s.ctx, s.alice, record.Address)
	s.Require().NoError(err)

	_, err = s.initiateAlice(s.alice)
	s.ErrorIs(err, domain.ErrDuplicateIdentity)
}

func (s *IdentityServiceSuite) TestReinitiateAfterExpireWithoutCloseIsDuplicate() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)
	_, err = s.identity.Expire(s.ctx, s.admin, record.Address)
	s.Require().NoError(err)

	_, err = s.initiateAlice(s.alice)
	s.ErrorIs(err, domain.ErrDuplicateIdentity)
}

func (s *IdentityServiceSuite) TestBurnKeepsRegistryEntry() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)

	burned, err := s.identity.Burn(s.ctx, s.alice, record.Address)
	s.Require().NoError(err)
	s.False(burned.IsActive)
	s.Equal(int64(1), s.entries())

	account, err := s.ledger.Account(s.ctx, record.Destination)
	s.Require().NoError(err)
	s.Zero(account.Balance)

	_, err = s.identity.Burn(s.ctx, s.alice, record.Address)
	s.ErrorIs(err, token.ErrInsufficientBalance)
}

func (s *IdentityServiceSuite) TestBurnByAnotherHolderIsForbidden() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)

	_, err = s.identity.Burn(s.ctx, s.bob, record.Address)
	s.ErrorIs(err, domain.ErrForbidden)

	stored, err := s.identity.Get(s.ctx, record.Address)
	s.Require().NoError(err)
	s.True(stored.IsActive)

	_, err = s.identity.Burn(s.ctx, s.admin, record.Address)
	s.NoError(err)
}

func (s *IdentityServiceSuite) TestBurnUnknownRecord() {
	_, err := s.identity.Burn(s.ctx, s.alice, domain.RecordAddress(s.alice.Wallet))
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *IdentityServiceSuite) TestExpireLeavesTokenAndIsIdempotent() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)

	_, err = s.identity.Expire(s.ctx, s.alice, record.Address)
	s.ErrorIs(err, domain.ErrForbidden)

	expired, err := s.identity.Expire(s.ctx, s.admin, record.Address)
	s.Require().NoError(err)
	s.False(expired.IsActive)

	account, err := s.ledger.Account(s.ctx, record.Destination)
	s.Require().NoError(err)
	s.Equal(uint64(1), account.Balance)

	published := len(s.recorder.types())
	_, err = s.identity.Expire(s.ctx, s.admin, record.Address)
	s.Require().NoError(err)
	s.Len(s.recorder.types(), published, "expiring an inactive record publishes nothing")

	// An expired record can still have its token burned.
	_, err = s.identity.Burn(s.ctx, s.alice, record.Address)
	s.NoError(err)
}

func (s *IdentityServiceSuite) TestCloseActiveRecordFails() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)

	err = s.identity.Close(s.ctx, s.alice, record.Address)
	s.ErrorIs(err, domain.ErrIdentityStillActive)
	s.Equal(int64(1), s.entries())
}

func (s *IdentityServiceSuite) TestCloseByAnotherHolderIsForbidden() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)
	_, err = s.identity.Burn(s.ctx, s.alice, record.Address)
	s.Require().NoError(err)

	err = s.identity.Close(s.ctx, s.bob, record.Address)
	s.ErrorIs(err, domain.ErrForbidden)
	s.Equal(int64(1), s.entries())
}

func (s *IdentityServiceSuite) TestAliceScenario() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)
	s.Equal(int64(1), s.entries())

	_, err = s.initiateAlice(s.bob)
	s.Require().ErrorIs(err, domain.ErrDuplicateIdentity)

	burned, err := s.identity.Burn(s.ctx, s.alice, record.Address)
	s.Require().NoError(err)
	s.False(burned.IsActive)
	s.Equal(int64(1), s.entries())

	s.Require().NoError(s.identity.Close(s.ctx, s.alice, record.Address))
	s.Zero(s.entries())
	_, err = s.identity.Get(s.ctx, record.Address)
	s.ErrorIs(err, domain.ErrNotFound)

	again, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)
	s.True(again.IsActive)
	s.NotEqual(record.Mint, again.Mint, "a fresh mint backs the new token")
	s.Equal(int64(1), s.entries())

	s.Equal(events.EventIdentityClosed, s.recorder.types()[3])
}

func (s *IdentityServiceSuite) TestClosePrunesEveryMatchingEntry() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)
	_, err = s.identity.Initiate(s.ctx, s.bob, "Bob", "1999-05-05", "M")
	s.Require().NoError(err)
	_, err = s.identity.Expire(s.ctx, s.admin, record.Address)
	s.Require().NoError(err)

	s.Require().NoError(s.identity.Close(s.ctx, s.admin, record.Address))

	entries, err := s.registry.ListEntries(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(domain.HashField("Bob"), entries[0].Identity.Name)

	payload, ok := s.recorder.last().Payload.(events.IdentityClosedPayload)
	s.Require().True(ok)
	s.Equal(int64(1), payload.EntriesRemoved)
}

func (s *IdentityServiceSuite) TestReinitiateWithNewTripleReleasesOldTriple() {
	original, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)
	_, err = s.identity.Expire(s.ctx, s.admin, original.Address)
	s.Require().NoError(err)

	renamed, err := s.identity.Initiate(s.ctx, s.alice, "Alicia", "2001-02-02", "F")
	s.Require().NoError(err)
	s.Equal(original.Address, renamed.Address)
	s.Equal(int64(1), s.entries(), "the overwritten triple leaves the registry")

	entries, err := s.registry.ListEntries(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(domain.HashField("Alicia"), entries[0].Identity.Name)

	oldAccount, err := s.ledger.Account(s.ctx, original.Destination)
	s.Require().NoError(err)
	s.Zero(oldAccount.Balance, "the expired unit is burned on overwrite")
	oldMint, err := s.ledger.Mint(s.ctx, original.Mint)
	s.Require().NoError(err)
	s.Zero(oldMint.Supply)

	_, err = s.identity.Expire(s.ctx, s.admin, renamed.Address)
	s.Require().NoError(err)
	s.Require().NoError(s.identity.Close(s.ctx, s.alice, renamed.Address))
	s.Zero(s.entries())

	record, err := s.initiateAlice(s.bob)
	s.Require().NoError(err)
	s.True(record.IsActive)
	s.Equal(int64(1), s.entries())
}

func (s *IdentityServiceSuite) TestReinitiateAfterBurnWithNewTriple() {
	original, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)
	_, err = s.identity.Burn(s.ctx, s.alice, original.Address)
	s.Require().NoError(err)

	_, err = s.identity.Initiate(s.ctx, s.alice, "Alicia", "2001-02-02", "F")
	s.Require().NoError(err)
	s.Equal(int64(1), s.entries())

	_, err = s.initiateAlice(s.bob)
	s.NoError(err, "the burned triple is free once its record is overwritten")
}

func (s *IdentityServiceSuite) TestConcurrentInitiateOfOneTriple() {
	const callers = 8

	actors := make([]service.Actor, callers)
	for i := range actors {
		actors[i] = actorFor(testutil.CreateAccount(s.T(), s.store, domain.RoleHolder))
	}

	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
	)
	for _, actor := range actors {
		actor := actor
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.initiateAlice(actor)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrDuplicateIdentity):
				duplicates++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(callers-1, duplicates)
	s.Equal(int64(1), s.entries())
}

func (s *IdentityServiceSuite) TestLedgerFailureLeavesNoPartialState() {
	ctrl := gomock.NewController(s.T())
	tokens := mocks.NewMockService(ctrl)
	lockErr := errors.New("ledger unavailable")

	gomock.InOrder(
		tokens.EXPECT().CreateMetadataIfAbsent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil),
		tokens.EXPECT().MintOne(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), s.alice.Wallet).Return(nil),
		tokens.EXPECT().RevokeMintAuthority(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		tokens.EXPECT().LockAccountAuthority(gomock.Any(), gomock.Any(), gomock.Any()).Return(lockErr),
		tokens.EXPECT().BurnOne(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)

	svc := service.NewIdentityService(service.IdentityDependencies{
		Store:     s.store,
		Tokens:    tokens,
		Authority: token.NewAuthority(),
		Metadata:  tokenConfig,
	})

	_, err := svc.Initiate(s.ctx, s.alice, "Alice", "2000-01-01", "F")
	s.ErrorIs(err, lockErr)

	s.Zero(s.entries())
	_, err = s.identity.GetByOwner(s.ctx, s.alice.Wallet)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *IdentityServiceSuite) TestMintFailureSkipsCompensation() {
	ctrl := gomock.NewController(s.T())
	tokens := mocks.NewMockService(ctrl)

	tokens.EXPECT().CreateMetadataIfAbsent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	tokens.EXPECT().MintOne(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(token.ErrMintAuthorityRevoked)

	svc := service.NewIdentityService(service.IdentityDependencies{
		Store:     s.store,
		Tokens:    tokens,
		Authority: token.NewAuthority(),
		Metadata:  tokenConfig,
	})

	_, err := svc.Initiate(s.ctx, s.alice, "Alice", "2000-01-01", "F")
	s.ErrorIs(err, token.ErrMintAuthorityRevoked)
	s.ErrorIs(err, token.ErrTokenService)
	s.Zero(s.entries())
}

func (s *IdentityServiceSuite) TestBurnLedgerFailureKeepsRecordActive() {
	record, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)

	ctrl := gomock.NewController(s.T())
	tokens := mocks.NewMockService(ctrl)
	tokens.EXPECT().BurnOne(gomock.Any(), gomock.Any(), record.Mint, record.Destination).Return(token.ErrUnknownAccount)

	svc := service.NewIdentityService(service.IdentityDependencies{
		Store:     s.store,
		Tokens:    tokens,
		Authority: token.NewAuthority(),
	})

	_, err = svc.Burn(s.ctx, s.alice, record.Address)
	s.ErrorIs(err, token.ErrUnknownAccount)

	stored, err := s.identity.Get(s.ctx, record.Address)
	s.Require().NoError(err)
	s.True(stored.IsActive)
}

func (s *IdentityServiceSuite) TestPreviousUnitBurnFailureRestoresOldRecord() {
	original, err := s.initiateAlice(s.alice)
	s.Require().NoError(err)
	_, err = s.identity.Expire(s.ctx, s.admin, original.Address)
	s.Require().NoError(err)

	ctrl := gomock.NewController(s.T())
	tokens := mocks.NewMockService(ctrl)
	burnErr := errors.New("ledger unavailable")

	gomock.InOrder(
		tokens.EXPECT().CreateMetadataIfAbsent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil),
		tokens.EXPECT().MintOne(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), s.alice.Wallet).Return(nil),
		tokens.EXPECT().RevokeMintAuthority(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		tokens.EXPECT().LockAccountAuthority(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		tokens.EXPECT().Account(gomock.Any(), original.Destination).Return(&token.AccountInfo{Balance: 1}, nil),
		tokens.EXPECT().BurnOne(gomock.Any(), gomock.Any(), original.Mint, original.Destination).Return(burnErr),
		tokens.EXPECT().BurnOne(gomock.Any(), gomock.Any(), gomock.Not(original.Mint), gomock.Any()).Return(nil),
	)

	svc := service.NewIdentityService(service.IdentityDependencies{
		Store:     s.store,
		Tokens:    tokens,
		Authority: token.NewAuthority(),
		Metadata:  tokenConfig,
	})

	_, err = svc.Initiate(s.ctx, s.alice, "Alicia", "2001-02-02", "F")
	s.ErrorIs(err, burnErr)

	stored, err := s.identity.Get(s.ctx, original.Address)
	s.Require().NoError(err)
	s.Equal(original.Mint, stored.Mint)
	s.Equal(original.Identity, stored.Identity)

	entries, err := s.registry.ListEntries(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(domain.HashField("Alice"), entries[0].Identity.Name)
}
