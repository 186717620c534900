package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories interface {
	Accounts() AccountRepository
	Identities() IdentityRepository
	Registry() RegistryRepository
	Polls() PollRepository
}

// Store is the persistence boundary. Repositories returned directly by the
// store run outside any transaction; RunInTx hands fn repositories bound to a
// single transaction that commits only when fn returns nil.
type Store interface {
	Repositories
	RunInTx(ctx context.Context, fn func(Repositories) error) error
	Ping(ctx context.Context) error
}

type repos struct {
	accounts   AccountRepository
	identities IdentityRepository
	registry   RegistryRepository
	polls      PollRepository
}

func newRepos(db DBTX) *repos {
	return &repos{
		accounts:   NewAccountRepository(db),
		identities: NewIdentityRepository(db),
		registry:   NewRegistryRepository(db, domain.RegistryAddress()),
		polls:      NewPollRepository(db),
	}
}

func (r *repos) Accounts() AccountRepository { return r.accounts }
func (r *repos) Identities() IdentityRepository { return r.identities }
func (r *repos) Registry() RegistryRepository { return r.registry }
func (r *repos) Polls() PollRepository { return r.polls }

type postgresStore struct {
	*repos
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return &postgresStore{repos: newRepos(pool), pool: pool}
}

func (s *postgresStore) RunInTx(ctx context.Context, fn func(Repositories) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(newRepos(tx))
	})
}

func (s *postgresStore) Ping(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return s.pool.Ping(ctx)
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// bytesArg passes a fixed-width value as bytea.
func bytesArg(a domain.Address) []byte {
	return a[:]
}

func digestArg(d domain.Digest) []byte {
	return d[:]
}

func scanAddress(dst *domain.Address, raw []byte) error {
	return dst.Scan(raw)
}

func scanIdentity(dst *domain.HashedIdentity, name, dob, gender []byte) error {
	if err := dst.Name.Scan(name); err != nil {
		return err
	}
	if err := dst.DOB.Scan(dob); err != nil {
		return err
	}
	return dst.Gender.Scan(gender)
}
