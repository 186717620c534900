package token

import (
	"context"
	"sync"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// MemoryLedger is a process-local token ledger.
type MemoryLedger struct {
	mu       sync.Mutex
	mints    map[domain.Address]*MintInfo
	accounts map[domain.Address]*AccountInfo
	metadata map[domain.Address]*Metadata
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		mints:    make(map[domain.Address]*MintInfo),
		accounts: make(map[domain.Address]*AccountInfo),
		metadata: make(map[domain.Address]*Metadata),
	}
}

var _ Service = (*MemoryLedger)(nil)

func (l *MemoryLedger) CreateMetadataIfAbsent(_ context.Context, auth Authority, mint domain.Address, md Metadata) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.mints[mint]
	if !ok {
		info = &MintInfo{Address: mint, Authority: auth.Signer}
		l.mints[mint] = info
	}
	mdAddr := domain.MetadataAddress(mint)
	if _, ok := l.metadata[mdAddr]; ok {
		return false, nil
	}
	if info.Authority != auth.Signer {
		return false, ErrUnauthorizedAuthority
	}
	copied := md
	l.metadata[mdAddr] = &copied
	return true, nil
}

func (l *MemoryLedger) MintOne(_ context.Context, auth Authority, mint, destination, owner domain.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.mints[mint]
	if !ok {
		return ErrUnknownMint
	}
	if info.AuthorityRevoked {
		return ErrMintAuthorityRevoked
	}
	if info.Authority != auth.Signer {
		return ErrUnauthorizedAuthority
	}
	acct, ok := l.accounts[destination]
	if !ok {
		acct = &AccountInfo{Address: destination, Mint: mint, Owner: owner, Authority: owner}
		l.accounts[destination] = acct
	}
	if acct.Mint != mint {
		return ErrMintMismatch
	}
	acct.Balance++
	info.Supply++
	return nil
}

func (l *MemoryLedger) RevokeMintAuthority(_ context.Context, auth Authority, mint domain.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.mints[mint]
	if !ok {
		return ErrUnknownMint
	}
	if info.Authority != auth.Signer {
		return ErrUnauthorizedAuthority
	}
	info.AuthorityRevoked = true
	return nil
}

func (l *MemoryLedger) LockAccountAuthority(_ context.Context, auth Authority, account domain.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[account]
	if !ok {
		return ErrUnknownAccount
	}
	info, ok := l.mints[acct.Mint]
	if !ok {
		return ErrUnknownMint
	}
	if info.Authority != auth.Signer && acct.Authority != auth.Signer {
		return ErrUnauthorizedAuthority
	}
	acct.Authority = auth.Signer
	acct.Locked = true
	return nil
}

func (l *MemoryLedger) BurnOne(_ context.Context, auth Authority, mint, account domain.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.mints[mint]
	if !ok {
		return ErrUnknownMint
	}
	acct, ok := l.accounts[account]
	if !ok {
		return ErrUnknownAccount
	}
	if acct.Mint != mint {
		return ErrMintMismatch
	}
	if info.Authority != auth.Signer && acct.Authority != auth.Signer {
		return ErrUnauthorizedAuthority
	}
	if acct.Balance == 0 {
		return ErrInsufficientBalance
	}
	acct.Balance--
	info.Supply--
	return nil
}

// Transfer moves one unit between accounts of the same mint. Locked accounts
// never release their unit.
func (l *MemoryLedger) Transfer(_ context.Context, signer, from, to domain.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	src, ok := l.accounts[from]
	if !ok {
		return ErrUnknownAccount
	}
	if src.Locked {
		return ErrAccountLocked
	}
	if src.Authority != signer {
		return ErrUnauthorizedAuthority
	}
	if src.Balance == 0 {
		return ErrInsufficientBalance
	}
	dst, ok := l.accounts[to]
	if !ok {
		return ErrUnknownAccount
	}
	if dst.Mint != src.Mint {
		return ErrMintMismatch
	}
	src.Balance--
	dst.Balance++
	return nil
}

func (l *MemoryLedger) Mint(_ context.Context, mint domain.Address) (*MintInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.mints[mint]
	if !ok {
		return nil, ErrUnknownMint
	}
	out := *info
	if md, ok := l.metadata[domain.MetadataAddress(mint)]; ok {
		copied := *md
		out.MetadataAccount = domain.MetadataAddress(mint)
		out.Metadata = &copied
	}
	return &out, nil
}

func (l *MemoryLedger) Account(_ context.Context, account domain.Address) (*AccountInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acct, ok := l.accounts[account]
	if !ok {
		return nil, ErrUnknownAccount
	}
	out := *acct
	return &out, nil
}

func (l *MemoryLedger) Ping(context.Context) error {
	return nil
}
