package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// RegistryRepository is the handle on the global identity registry. Entries
// keep insertion order; duplicate detection is exact equality on all three
// digests, served by the triple index.
type RegistryRepository interface {
	Address() domain.Address
	// Initialize creates the registry header. It reports false, and leaves
	// existing entries untouched, when the registry already exists.
	Initialize(ctx context.Context) (*domain.Registry, bool, error)
	Get(ctx context.Context) (*domain.Registry, error)
	// Acquire locks the registry for the rest of the surrounding transaction.
	Acquire(ctx context.Context) (*domain.Registry, error)
	Append(ctx context.Context, entry *domain.RegistryEntry) error
	FindDuplicate(ctx context.Context, identity domain.HashedIdentity) (*domain.RegistryEntry, bool, error)
	// RetainNotMatching removes every entry equal to identity.
	RetainNotMatching(ctx context.Context, identity domain.HashedIdentity) (int64, error)
	List(ctx context.Context, limit, offset int) ([]domain.RegistryEntry, error)
	Count(ctx context.Context) (int64, error)
}

type registryRepository struct {
	db      DBTX
	address domain.Address
}

// NewRegistryRepository binds the repository to the registry at address.
func NewRegistryRepository(db DBTX, address domain.Address) RegistryRepository {
	return &registryRepository{db: db, address: address}
}

func (r *registryRepository) Address() domain.Address {
	return r.address
}

func (r *registryRepository) Initialize(ctx context.Context) (*domain.Registry, bool, error) {
	const query = `
        INSERT INTO registries (address) VALUES ($1)
        ON CONFLICT (address) DO NOTHING
        RETURNING created_at`
	reg := &domain.Registry{Address: r.address}
	err := r.db.QueryRow(ctx, query, bytesArg(r.address)).Scan(&reg.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		existing, err := r.Get(ctx)
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return reg, true, nil
}

func (r *registryRepository) Get(ctx context.Context) (*domain.Registry, error) {
	return r.header(ctx, `SELECT created_at FROM registries WHERE address=$1`)
}

func (r *registryRepository) Acquire(ctx context.Context) (*domain.Registry, error) {
	return r.header(ctx, `SELECT created_at FROM registries WHERE address=$1 FOR UPDATE`)
}

func (r *registryRepository) header(ctx context.Context, query string) (*domain.Registry, error) {
	reg := &domain.Registry{Address: r.address}
	if err := r.db.QueryRow(ctx, query, bytesArg(r.address)).Scan(&reg.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRegistryNotInitialized
		}
		return nil, err
	}
	return reg, nil
}

func (r *registryRepository) Append(ctx context.Context, entry *domain.RegistryEntry) error {
	const query = `
        INSERT INTO registry_entries (registry, record_address, hashed_name, hashed_dob, hashed_gender)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING seq, registered_at`
	return r.db.QueryRow(ctx, query,
		bytesArg(r.address),
		bytesArg(entry.RecordAddress),
		digestArg(entry.Identity.Name),
		digestArg(entry.Identity.DOB),
		digestArg(entry.Identity.Gender),
	).Scan(&entry.Seq, &entry.RegisteredAt)
}

func (r *registryRepository) FindDuplicate(ctx context.Context, identity domain.HashedIdentity) (*domain.RegistryEntry, bool, error) {
	const query = `
        SELECT seq, record_address, hashed_name, hashed_dob, hashed_gender, registered_at
        FROM registry_entries
        WHERE registry=$1 AND hashed_name=$2 AND hashed_dob=$3 AND hashed_gender=$4
        ORDER BY seq LIMIT 1`
	rows, err := r.db.Query(ctx, query,
		bytesArg(r.address),
		digestArg(identity.Name),
		digestArg(identity.DOB),
		digestArg(identity.Gender),
	)
	if err != nil {
		return nil, false, err
	}
	entries, err := collectEntries(rows)
	if err != nil {
		return nil, false, err
	}
	if len(entries) == 0 {
		return nil, false, nil
	}
	return &entries[0], true, nil
}

func (r *registryRepository) RetainNotMatching(ctx context.Context, identity domain.HashedIdentity) (int64, error) {
	const query = `
        DELETE FROM registry_entries
        WHERE registry=$1 AND hashed_name=$2 AND hashed_dob=$3 AND hashed_gender=$4`
	cmd, err := r.db.Exec(ctx, query,
		bytesArg(r.address),
		digestArg(identity.Name),
		digestArg(identity.DOB),
		digestArg(identity.Gender),
	)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *registryRepository) List(ctx context.Context, limit, offset int) ([]domain.RegistryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT seq, record_address, hashed_name, hashed_dob, hashed_gender, registered_at
        FROM registry_entries
        WHERE registry=$1
        ORDER BY seq LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, bytesArg(r.address), limit, offset)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func (r *registryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM registry_entries WHERE registry=$1`, bytesArg(r.address)).Scan(&count)
	return count, err
}

func collectEntries(rows pgx.Rows) ([]domain.RegistryEntry, error) {
	defer rows.Close()

	var entries []domain.RegistryEntry
	for rows.Next() {
		var (
			entry                 domain.RegistryEntry
			recordAddr            []byte
			hashedName, hashedDOB []byte
			hashedGender          []byte
		)
		if err := rows.Scan(&entry.Seq, &recordAddr, &hashedName, &hashedDOB, &hashedGender, &entry.RegisteredAt); err != nil {
			return nil, err
		}
		if err := scanAddress(&entry.RecordAddress, recordAddr); err != nil {
			return nil, err
		}
		if err := scanIdentity(&entry.Identity, hashedName, hashedDOB, hashedGender); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
