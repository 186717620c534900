package domain

import (
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// AddressSize is the byte width of every derived address.
const AddressSize = 32

// programTag namespaces every derived address to this service.
const programTag = "identity-registry/v1"

// Well-known seed tags used for address derivation.
const (
	SeedRegistry  = "registry"
	SeedMint      = "mint"
	SeedTokenData = "token_data"
	SeedAccount   = "account"
	SeedMetadata  = "metadata"
	SeedWallet    = "wallet"
	SeedAuthority = "authority"
)

// Address identifies a persisted record or a token ledger account.
type Address [AddressSize]byte

// DeriveAddress hashes the program tag and the length-prefixed seeds into a
// deterministic address.
func DeriveAddress(seeds ...[]byte) Address {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(programTag))
	var size [2]byte
	for _, seed := range seeds {
		binary.BigEndian.PutUint16(size[:], uint16(len(seed)))
		h.Write(size[:])
		h.Write(seed)
	}
	var out Address
	copy(out[:], h.Sum(nil))
	return out
}

// RegistryAddress is the address of the single global registry.
func RegistryAddress() Address {
	return DeriveAddress([]byte(SeedRegistry))
}

// AuthorityAddress is the mint authority the service signs with.
func AuthorityAddress() Address {
	return DeriveAddress([]byte(SeedAuthority))
}

// RecordAddress returns the identity record address owned by a wallet.
func RecordAddress(owner Address) Address {
	return DeriveAddress([]byte(SeedTokenData), owner[:])
}

// MintAddress returns the mint of one identity token.
func MintAddress(owner Address, nonce []byte) Address {
	return DeriveAddress([]byte(SeedMint), owner[:], nonce)
}

// TokenAccountAddress returns the associated token account of owner for mint.
func TokenAccountAddress(mint, owner Address) Address {
	return DeriveAddress([]byte(SeedAccount), mint[:], owner[:])
}

// MetadataAddress returns the metadata account of a mint.
func MetadataAddress(mint Address) Address {
	return DeriveAddress([]byte(SeedMetadata), mint[:])
}

// WalletAddress returns the wallet bound to an account id.
func WalletAddress(accountID string) Address {
	return DeriveAddress([]byte(SeedWallet), []byte(accountID))
}

// ParseAddress decodes a 64 character hex address.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("%w: address is not hex", ErrInvalidInput)
	}
	if len(raw) != AddressSize {
		return a, fmt.Errorf("%w: address must be %d bytes", ErrInvalidInput, AddressSize)
	}
	copy(a[:], raw)
	return a, nil
}

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalText renders the address as hex.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText parses a hex address.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores the address as raw bytes.
func (a Address) Value() (driver.Value, error) {
	return a[:], nil
}

// Scan reads a raw 32-byte column.
func (a *Address) Scan(src any) error {
	return scanFixed(a[:], src)
}

func scanFixed(dst []byte, src any) error {
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("scan: unsupported type %T", src)
	}
	if len(raw) != len(dst) {
		return fmt.Errorf("scan: want %d bytes, got %d", len(dst), len(raw))
	}
	copy(dst, raw)
	return nil
}
