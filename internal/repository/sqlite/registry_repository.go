package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/spec-kit/identity-registry/internal/domain"
)

type registryRepository struct {
	db      dbtx
	address domain.Address
}

func (r *registryRepository) Address() domain.Address {
	return r.address
}

func (r *registryRepository) Initialize(ctx context.Context) (*domain.Registry, bool, error) {
	ts := now()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO registries (address, created_at) VALUES (?, ?) ON CONFLICT (address) DO NOTHING`,
		r.address, ts)
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		existing, err := r.Get(ctx)
		return existing, false, err
	}
	return &domain.Registry{Address: r.address, CreatedAt: ts}, true, nil
}

func (r *registryRepository) Get(ctx context.Context) (*domain.Registry, error) {
	reg := &domain.Registry{Address: r.address}
	err := r.db.QueryRowContext(ctx, `SELECT created_at FROM registries WHERE address = ?`, r.address).
		Scan(&reg.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRegistryNotInitialized
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *registryRepository) Acquire(ctx context.Context) (*domain.Registry, error) {
	return r.Get(ctx)
}

func (r *registryRepository) Append(ctx context.Context, entry *domain.RegistryEntry) error {
	ts := now()
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO registry_entries (registry, record_address, hashed_name, hashed_dob, hashed_gender, registered_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		r.address,
		entry.RecordAddress,
		entry.Identity.Name,
		entry.Identity.DOB,
		entry.Identity.Gender,
		ts,
	)
	if err != nil {
		return err
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entry.Seq, entry.RegisteredAt = seq, ts
	return nil
}

func (r *registryRepository) FindDuplicate(ctx context.Context, identity domain.HashedIdentity) (*domain.RegistryEntry, bool, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT seq, record_address, hashed_name, hashed_dob, hashed_gender, registered_at
        FROM registry_entries
        WHERE registry = ? AND hashed_name = ? AND hashed_dob = ? AND hashed_gender = ?
        ORDER BY seq LIMIT 1`,
		r.address, identity.Name, identity.DOB, identity.Gender)
	if err != nil {
		return nil, false, err
	}
	entries, err := collectEntries(rows)
	if err != nil || len(entries) == 0 {
		return nil, false, err
	}
	return &entries[0], true, nil
}

func (r *registryRepository) RetainNotMatching(ctx context.Context, identity domain.HashedIdentity) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
        DELETE FROM registry_entries
        WHERE registry = ? AND hashed_name = ? AND hashed_dob = ? AND hashed_gender = ?`,
		r.address, identity.Name, identity.DOB, identity.Gender)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *registryRepository) List(ctx context.Context, limit, offset int) ([]domain.RegistryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT seq, record_address, hashed_name, hashed_dob, hashed_gender, registered_at
        FROM registry_entries WHERE registry = ?
        ORDER BY seq LIMIT ? OFFSET ?`,
		r.address, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectEntries(rows)
}

func (r *registryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM registry_entries WHERE registry = ?`, r.address).Scan(&count)
	return count, err
}

func collectEntries(rows *sql.Rows) ([]domain.RegistryEntry, error) {
	defer rows.Close()

	var entries []domain.RegistryEntry
	for rows.Next() {
		var entry domain.RegistryEntry
		if err := rows.Scan(
			&entry.Seq,
			&entry.RecordAddress,
			&entry.Identity.Name,
			&entry.Identity.DOB,
			&entry.Identity.Gender,
			&entry.RegisteredAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
