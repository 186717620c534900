// Package sqlite implements the repository store on an embedded SQLite
// database. It backs single-node deployments and the service test suites.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/spec-kit/identity-registry/internal/domain"
	"github.com/spec-kit/identity-registry/internal/repository"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL CHECK (role IN ('HOLDER', 'ADMIN')),
    wallet        BLOB NOT NULL UNIQUE CHECK (length(wallet) = 32),
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS registries (
    address    BLOB PRIMARY KEY CHECK (length(address) = 32),
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS registry_entries (
    seq            INTEGER PRIMARY KEY AUTOINCREMENT,
    registry       BLOB NOT NULL REFERENCES registries (address),
    record_address BLOB NOT NULL,
    hashed_name    BLOB NOT NULL,
    hashed_dob     BLOB NOT NULL,
    hashed_gender  BLOB NOT NULL,
    registered_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS registry_entries_triple_idx
    ON registry_entries (registry, hashed_name, hashed_dob, hashed_gender);

CREATE TABLE IF NOT EXISTS identity_records (
    address       BLOB PRIMARY KEY CHECK (length(address) = 32),
    owner         BLOB NOT NULL,
    mint          BLOB NOT NULL,
    destination   BLOB NOT NULL,
    hashed_name   BLOB NOT NULL,
    hashed_dob    BLOB NOT NULL,
    hashed_gender BLOB NOT NULL,
    is_active     BOOLEAN NOT NULL,
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS identity_records_owner_idx ON identity_records (owner);

CREATE TABLE IF NOT EXISTS polls (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    starts_at   TIMESTAMP NOT NULL,
    ends_at     TIMESTAMP NOT NULL,
    created_by  TEXT NOT NULL REFERENCES accounts (id),
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS candidates (
    id         TEXT PRIMARY KEY,
    poll_id    TEXT NOT NULL REFERENCES polls (id) ON DELETE CASCADE,
    name       TEXT NOT NULL,
    votes      INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS candidates_poll_idx ON candidates (poll_id);

CREATE TABLE IF NOT EXISTS vote_receipts (
    poll_id      TEXT NOT NULL REFERENCES polls (id) ON DELETE CASCADE,
    voter        BLOB NOT NULL,
    candidate_id TEXT NOT NULL REFERENCES candidates (id) ON DELETE CASCADE,
    cast_at      TIMESTAMP NOT NULL,
    PRIMARY KEY (poll_id, voter)
);
`

// dbtx is satisfied by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type repos struct {
	accounts   repository.AccountRepository
	identities repository.IdentityRepository
	registry   repository.RegistryRepository
	polls      repository.PollRepository
}

func newRepos(db dbtx) *repos {
	return &repos{
		accounts:   &accountRepository{db: db},
		identities: &identityRepository{db: db},
		registry:   &registryRepository{db: db, address: domain.RegistryAddress()},
		polls:      &pollRepository{db: db},
	}
}

func (r *repos) Accounts() repository.AccountRepository   { return r.accounts }
func (r *repos) Identities() repository.IdentityRepository { return r.identities }
func (r *repos) Registry() repository.RegistryRepository   { return r.registry }
func (r *repos) Polls() repository.PollRepository          { return r.polls }

// Store is a repository.Store over database/sql. Callers must only use the
// Repositories handed to RunInTx while inside it: the pool holds a single
// connection, so writes serialize on it.
type Store struct {
	*repos
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// NewStore applies the schema and returns the store.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &Store{repos: newRepos(db), db: db}, nil
}

func (s *Store) RunInTx(ctx context.Context, fn func(repository.Repositories) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(newRepos(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

var now = func() time.Time { return time.Now().UTC() }

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func affectedOrNotFound(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
