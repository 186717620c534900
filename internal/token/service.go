// Package token defines the boundary to the token ledger that holds soulbound
// identity tokens, plus in-memory and Redis-backed ledgers implementing it.
package token

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// ErrTokenService is wrapped by every failure a ledger reports.
var ErrTokenService = errors.New("token service")

var (
	ErrUnknownMint           = fmt.Errorf("%w: unknown mint", ErrTokenService)
	ErrUnknownAccount        = fmt.Errorf("%w: unknown account", ErrTokenService)
	ErrMintAuthorityRevoked  = fmt.Errorf("%w: mint authority revoked", ErrTokenService)
	ErrUnauthorizedAuthority = fmt.Errorf("%w: signer is not the required authority", ErrTokenService)
	ErrAccountLocked         = fmt.Errorf("%w: account authority locked", ErrTokenService)
	ErrInsufficientBalance   = fmt.Errorf("%w: insufficient balance", ErrTokenService)
	ErrMintMismatch          = fmt.Errorf("%w: account belongs to another mint", ErrTokenService)
)

// Authority is the signing context a caller presents to the ledger. Signer
// is the address acting as mint authority for mints it created.
type Authority struct {
	Program domain.Address
	Signer  domain.Address
}

// NewAuthority returns the service's own signing context.
func NewAuthority() Authority {
	return Authority{Program: domain.RegistryAddress(), Signer: domain.AuthorityAddress()}
}

// Metadata holds the display fields of a mint.
type Metadata struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	URI    string `json:"uri"`
}

// MintInfo describes a mint.
type MintInfo struct {
	Address          domain.Address
	Authority        domain.Address
	AuthorityRevoked bool
	Supply           uint64
	// MetadataAccount is the derived address the metadata is stored under.
	MetadataAccount domain.Address
	Metadata        *Metadata
}

// AccountInfo describes a token account.
type AccountInfo struct {
	Address   domain.Address
	Mint      domain.Address
	Owner     domain.Address
	Authority domain.Address
	Balance   uint64
	Locked    bool
}

// Service is the token capability the identity lifecycle relies on. Each
// operation either applies fully or reports an error wrapping ErrTokenService.
type Service interface {
	// CreateMetadataIfAbsent creates the mint (with auth.Signer as its
	// authority) and its metadata. It reports false when metadata already exists.
	CreateMetadataIfAbsent(ctx context.Context, auth Authority, mint domain.Address, md Metadata) (bool, error)
	// MintOne mints exactly one unit into destination, creating the account
	// for owner when absent.
	MintOne(ctx context.Context, auth Authority, mint, destination, owner domain.Address) error
	// RevokeMintAuthority permanently disables minting on mint.
	RevokeMintAuthority(ctx context.Context, auth Authority, mint domain.Address) error
	// LockAccountAuthority hands the account authority to auth.Signer and
	// forbids transfers out of it.
	LockAccountAuthority(ctx context.Context, auth Authority, account domain.Address) error
	// BurnOne destroys one unit held by account. The mint's issuing authority
	// may always burn from accounts of its mint.
	BurnOne(ctx context.Context, auth Authority, mint, account domain.Address) error
	// Mint returns the state of a mint.
	Mint(ctx context.Context, mint domain.Address) (*MintInfo, error)
	// Account returns the state of a token account.
	Account(ctx context.Context, account domain.Address) (*AccountInfo, error)
	// Ping verifies the ledger is reachable.
	Ping(ctx context.Context) error
}
