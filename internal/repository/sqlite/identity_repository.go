package sqlite

import (
	"context"

	"github.com/spec-kit/identity-registry/internal/domain"
)

type identityRepository struct {
	db dbtx
}

const identityColumns = `address, owner, mint, destination, hashed_name, hashed_dob, hashed_gender, is_active, created_at, updated_at`

func (r *identityRepository) Get(ctx context.Context, address domain.Address) (*domain.IdentityRecord, error) {
	return r.fetchSingle(ctx, address)
}

// GetForUpdate is a plain read: the single connection already serializes
// every transaction.
func (r *identityRepository) GetForUpdate(ctx context.Context, address domain.Address) (*domain.IdentityRecord, error) {
	return r.fetchSingle(ctx, address)
}

func (r *identityRepository) Upsert(ctx context.Context, record *domain.IdentityRecord) error {
	ts := now()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO identity_records (address, owner, mint, destination, hashed_name, hashed_dob, hashed_gender, is_active, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (address) DO UPDATE SET
            owner=excluded.owner,
            mint=excluded.mint,
            destination=excluded.destination,
            hashed_name=excluded.hashed_name,
            hashed_dob=excluded.hashed_dob,
            hashed_gender=excluded.hashed_gender,
            is_active=excluded.is_active,
            created_at=excluded.created_at,
            updated_at=excluded.updated_at`,
		record.Address,
		record.Owner,
		record.Mint,
		record.Destination,
		record.Identity.Name,
		record.Identity.DOB,
		record.Identity.Gender,
		record.IsActive,
		ts,
		ts,
	)
	if err != nil {
		return err
	}
	record.CreatedAt, record.UpdatedAt = ts, ts
	return nil
}

func (r *identityRepository) SetActive(ctx context.Context, address domain.Address, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE identity_records SET is_active = ?, updated_at = ? WHERE address = ?`,
		active, now(), address)
	return affectedOrNotFound(res, err)
}

func (r *identityRepository) Delete(ctx context.Context, address domain.Address) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM identity_records WHERE address = ?`, address)
	return affectedOrNotFound(res, err)
}

func (r *identityRepository) fetchSingle(ctx context.Context, address domain.Address) (*domain.IdentityRecord, error) {
	var record domain.IdentityRecord
	if err := r.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identity_records WHERE address = ?`, address,
	).Scan(
		&record.Address,
		&record.Owner,
		&record.Mint,
		&record.Destination,
		&record.Identity.Name,
		&record.Identity.DOB,
		&record.Identity.Gender,
		&record.IsActive,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	return &record, nil
}
