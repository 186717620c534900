package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/events"
	"github.com/spec-kit/identity-registry/internal/service"
	"github.com/spec-kit/identity-registry/internal/testutil"
	"github.com/spec-kit/identity-registry/internal/token"
)

func TestRegistryService_Initialize(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewSQLiteStore(t)
	dispatcher := events.NewInMemoryDispatcher()
	recorder := recordEvents(dispatcher)
	svc := service.NewRegistryService(store, dispatcher, nil)

	admin := actorFor(testutil.CreateAccount(t, store, domain.RoleAdmin))
	holder := actorFor(testutil.CreateAccount(t, store, domain.RoleHolder))

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.False(t, stats.Initialized)
	assert.Nil(t, stats.CreatedAt)
	assert.Equal(t, domain.RegistryAddress(), stats.Address)

	_, _, err = svc.Initialize(ctx, holder)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	reg, created, err := svc.Initialize(ctx, admin)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RegistryAddress(), reg.Address)

	payload, ok := recorder.last().Payload.(events.RegistryInitializedPayload)
	require.True(t, ok)
	assert.True(t, payload.Created)

	stats, err = svc.Stats(ctx)
	require.NoError(t, err)
	assert.True(t, stats.Initialized)
	require.NotNil(t, stats.CreatedAt)
	assert.Zero(t, stats.Entries)
}

func TestRegistryService_ReinitializeKeepsEntries(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewSQLiteStore(t)
	registry := service.NewRegistryService(store, nil, nil)
	identities := service.NewIdentityService(service.IdentityDependencies{
		Store:     store,
		Tokens:    token.NewMemoryLedger(),
		Authority: token.NewAuthority(),
		Metadata:  tokenConfig,
	})

	admin := actorFor(testutil.CreateAccount(t, store, domain.RoleAdmin))
	holder := actorFor(testutil.CreateAccount(t, store, domain.RoleHolder))

	_, _, err := registry.Initialize(ctx, admin)
	require.NoError(t, err)
	_, err = identities.Initiate(ctx, holder, "Alice", "2000-01-01", "F")
	require.NoError(t, err)

	_, created, err := registry.Initialize(ctx, admin)
	require.NoError(t, err)
	assert.False(t, created)

	stats, err := registry.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Entries)

	entries, err := registry.ListEntries(ctx, 500, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.RecordAddress(holder.Wallet), entries[0].RecordAddress)
}

// Duplicate detection depends only on the set of registered triples, not on
// the order they were registered in.
func TestRegistryService_DuplicateDetectionIsOrderIndependent(t *testing.T) {
	triples := [][3]string{
		{"Alice", "2000-01-01", "F"},
		{"Bob", "1999-05-05", "M"},
		{"Carol", "1985-12-31", "F"},
	}
	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}}

	for _, order := range orders {
		ctx := context.Background()
		store := testutil.NewSQLiteStore(t)
		identities := service.NewIdentityService(service.IdentityDependencies{
			Store:     store,
			Tokens:    token.NewMemoryLedger(),
			Authority: token.NewAuthority(),
			Metadata:  tokenConfig,
		})
		_, _, err := service.NewRegistryService(store, nil, nil).
			Initialize(ctx, actorFor(testutil.CreateAccount(t, store, domain.RoleAdmin)))
		require.NoError(t, err)

		for _, i := range order {
			holder := actorFor(testutil.CreateAccount(t, store, domain.RoleHolder))
			_, err := identities.Initiate(ctx, holder, triples[i][0], triples[i][1], triples[i][2])
			require.NoError(t, err)
		}

		for _, tr := range triples {
			late := actorFor(testutil.CreateAccount(t, store, domain.RoleHolder))
			_, err := identities.Initiate(ctx, late, tr[0], tr[1], tr[2])
			assert.ErrorIs(t, err, domain.ErrDuplicateIdentity, "order %v triple %v", order, tr)
		}

		late := actorFor(testutil.CreateAccount(t, store, domain.RoleHolder))
		_, err = identities.Initiate(ctx, late, "Dave", "1970-01-01", "M")
		assert.NoError(t, err, "order %v", order)
	}
}
