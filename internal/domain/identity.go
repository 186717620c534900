package domain

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"
)

// Digest is a one-way hash of a single identity field.
type Digest [blake2b.Size256]byte

// HashField hashes the raw UTF-8 bytes of a field.
func HashField(raw string) Digest {
	return blake2b.Sum256([]byte(raw))
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// MarshalText renders the digest as hex.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Value stores the digest as raw bytes.
func (d Digest) Value() (driver.Value, error) {
	return d[:], nil
}

// Scan reads a raw 32-byte column.
func (d *Digest) Scan(src any) error {
	return scanFixed(d[:], src)
}

// HashedIdentity is the identity triple used as the duplicate detection key.
type HashedIdentity struct {
	Name   Digest `json:"hashed_name"`
	DOB    Digest `json:"hashed_dob"`
	Gender Digest `json:"hashed_gender"`
}

// HashIdentity hashes the raw identity fields. Fields are hashed byte for
// byte; they must be non-blank valid UTF-8.
func HashIdentity(name, dob, gender string) (HashedIdentity, error) {
	fields := []struct {
		label string
		value string
	}{
		{"name", name},
		{"dob", dob},
		{"gender", gender},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return HashedIdentity{}, fmt.Errorf("%w: %s required", ErrInvalidInput, f.label)
		}
		if !utf8.ValidString(f.value) {
			return HashedIdentity{}, fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalidInput, f.label)
		}
	}
	return HashedIdentity{
		Name:   HashField(name),
		DOB:    HashField(dob),
		Gender: HashField(gender),
	}, nil
}

// IdentityState is the lifecycle state of one identity.
type IdentityState string

const (
	IdentityStateUnregistered IdentityState = "UNREGISTERED"
	IdentityStateActive       IdentityState = "ACTIVE"
	IdentityStateInactive     IdentityState = "INACTIVE"
)

// IdentityRecord is the persisted state behind one soulbound token.
type IdentityRecord struct {
	Address     Address
	Owner       Address
	Mint        Address
	Destination Address
	Identity    HashedIdentity
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// State derives the lifecycle state from the record. A nil record is unregistered.
func (r *IdentityRecord) State() IdentityState {
	switch {
	case r == nil:
		return IdentityStateUnregistered
	case r.IsActive:
		return IdentityStateActive
	default:
		return IdentityStateInactive
	}
}

// Registry is the header of the global identity registry.
type Registry struct {
	Address   Address
	CreatedAt time.Time
}

// RegistryEntry is one registered identity triple. Entries carry no activation
// flag; IdentityRecord.IsActive is the only source of truth.
type RegistryEntry struct {
	Seq           int64
	RecordAddress Address
	Identity      HashedIdentity
	RegisteredAt  time.Time
}
