package repository

import (
	"context"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// IdentityRepository persists one IdentityRecord per derived address.
type IdentityRepository interface {
	Get(ctx context.Context, address domain.Address) (*domain.IdentityRecord, error)
	// GetForUpdate loads the record and holds it exclusively until the
	// surrounding transaction ends.
	GetForUpdate(ctx context.Context, address domain.Address) (*domain.IdentityRecord, error)
	// Upsert creates the record or overwrites every field of an existing one.
	Upsert(ctx context.Context, record *domain.IdentityRecord) error
	SetActive(ctx context.Context, address domain.Address, active bool) error
	Delete(ctx context.Context, address domain.Address) error
}

type identityRepository struct {
	db DBTX
}

// NewIdentityRepository instantiates repository.
func NewIdentityRepository(db DBTX) IdentityRepository {
	return &identityRepository{db: db}
}

const identityColumns = `address, owner, mint, destination, hashed_name, hashed_dob, hashed_gender, is_active, created_at, updated_at`

func (r *identityRepository) Get(ctx context.Context, address domain.Address) (*domain.IdentityRecord, error) {
	const query = `SELECT ` + identityColumns + ` FROM identity_records WHERE address=$1`
	return r.fetchSingle(ctx, query, address)
}

func (r *identityRepository) GetForUpdate(ctx context.Context, address domain.Address) (*domain.IdentityRecord, error) {
	const query = `SELECT ` + identityColumns + ` FROM identity_records WHERE address=$1 FOR UPDATE`
	return r.fetchSingle(ctx, query, address)
}

func (r *identityRepository) Upsert(ctx context.Context, record *domain.IdentityRecord) error {
	const query = `
        INSERT INTO identity_records (address, owner, mint, destination, hashed_name, hashed_dob, hashed_gender, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (address) DO UPDATE SET
            owner=EXCLUDED.owner,
            mint=EXCLUDED.mint,
            destination=EXCLUDED.destination,
            hashed_name=EXCLUDED.hashed_name,
            hashed_dob=EXCLUDED.hashed_dob,
            hashed_gender=EXCLUDED.hashed_gender,
            is_active=EXCLUDED.is_active,
            created_at=NOW(),
            updated_at=NOW()
        RETURNING created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		bytesArg(record.Address),
		bytesArg(record.Owner),
		bytesArg(record.Mint),
		bytesArg(record.Destination),
		digestArg(record.Identity.Name),
		digestArg(record.Identity.DOB),
		digestArg(record.Identity.Gender),
		record.IsActive,
	).Scan(&record.CreatedAt, &record.UpdatedAt)
}

func (r *identityRepository) SetActive(ctx context.Context, address domain.Address, active bool) error {
	const query = `UPDATE identity_records SET is_active=$1, updated_at=NOW() WHERE address=$2`
	cmd, err := r.db.Exec(ctx, query, active, bytesArg(address))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *identityRepository) Delete(ctx context.Context, address domain.Address) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM identity_records WHERE address=$1`, bytesArg(address))
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *identityRepository) fetchSingle(ctx context.Context, query string, address domain.Address) (*domain.IdentityRecord, error) {
	var (
		record                        domain.IdentityRecord
		addr, owner, mint, dest       []byte
		hashedName, hashedDOB, gender []byte
	)
	if err := r.db.QueryRow(ctx, query, bytesArg(address)).Scan(
		&addr,
		&owner,
		&mint,
		&dest,
		&hashedName,
		&hashedDOB,
		&gender,
		&record.IsActive,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	for _, f := range []struct {
		dst *domain.Address
		raw []byte
	}{
		{&record.Address, addr},
		{&record.Owner, owner},
		{&record.Mint, mint},
		{&record.Destination, dest},
	} {
		if err := scanAddress(f.dst, f.raw); err != nil {
			return nil, err
		}
	}
	if err := scanIdentity(&record.Identity, hashedName, hashedDOB, gender); err != nil {
		return nil, err
	}
	return &record, nil
}
