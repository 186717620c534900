package token

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/identity-registry/internal/domain"
)

// RedisLedger keeps mints and token accounts in Redis hashes. Every mutation
// runs as a Lua script so it applies atomically on the server.
type RedisLedger struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisLedger builds a ledger storing keys under prefix.
func NewRedisLedger(client redis.UniversalClient, prefix string) *RedisLedger {
	if prefix == "" {
		prefix = "sbt"
	}
	return &RedisLedger{client: client, prefix: prefix}
}

var _ Service = (*RedisLedger)(nil)

var createMetadataScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  redis.call('HSET', KEYS[1], 'authority', ARGV[1], 'revoked', '0', 'supply', '0')
end
if redis.call('EXISTS', KEYS[2]) == 1 then
  return 0
end
if redis.call('HGET', KEYS[1], 'authority') ~= ARGV[1] then
  return redis.error_reply('UNAUTHORIZED_AUTHORITY')
end
redis.call('HSET', KEYS[2], 'name', ARGV[2], 'symbol', ARGV[3], 'uri', ARGV[4])
return 1
`)

var mintOneScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return redis.error_reply('UNKNOWN_MINT')
end
local m = redis.call('HMGET', KEYS[1], 'authority', 'revoked')
if m[2] == '1' then
  return redis.error_reply('MINT_AUTHORITY_REVOKED')
end
if m[1] ~= ARGV[1] then
  return redis.error_reply('UNAUTHORIZED_AUTHORITY')
end
if redis.call('EXISTS', KEYS[2]) == 0 then
  redis.call('HSET', KEYS[2], 'mint', ARGV[2], 'owner', ARGV[3], 'authority', ARGV[3], 'balance', '0', 'locked', '0')
elseif redis.call('HGET', KEYS[2], 'mint') ~= ARGV[2] then
  return redis.error_reply('MINT_MISMATCH')
end
redis.call('HINCRBY', KEYS[2], 'balance', 1)
redis.call('HINCRBY', KEYS[1], 'supply', 1)
return 1
`)

var revokeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return redis.error_reply('UNKNOWN_MINT')
end
if redis.call('HGET', KEYS[1], 'authority') ~= ARGV[1] then
  return redis.error_reply('UNAUTHORIZED_AUTHORITY')
end
redis.call('HSET', KEYS[1], 'revoked', '1')
return 1
`)

var lockScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return redis.error_reply('UNKNOWN_ACCOUNT')
end
if redis.call('EXISTS', KEYS[2]) == 0 then
  return redis.error_reply('UNKNOWN_MINT')
end
local issuer = redis.call('HGET', KEYS[2], 'authority')
local current = redis.call('HGET', KEYS[1], 'authority')
if issuer ~= ARGV[1] and current ~= ARGV[1] then
  return redis.error_reply('UNAUTHORIZED_AUTHORITY')
end
redis.call('HSET', KEYS[1], 'authority', ARGV[1], 'locked', '1')
return 1
`)

var burnScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return redis.error_reply('UNKNOWN_MINT')
end
if redis.call('EXISTS', KEYS[2]) == 0 then
  return redis.error_reply('UNKNOWN_ACCOUNT')
end
local a = redis.call('HMGET', KEYS[2], 'mint', 'authority', 'balance')
if a[1] ~= ARGV[2] then
  return redis.error_reply('MINT_MISMATCH')
end
local issuer = redis.call('HGET', KEYS[1], 'authority')
if issuer ~= ARGV[1] and a[2] ~= ARGV[1] then
  return redis.error_reply('UNAUTHORIZED_AUTHORITY')
end
if tonumber(a[3]) <= 0 then
  return redis.error_reply('INSUFFICIENT_BALANCE')
end
redis.call('HINCRBY', KEYS[2], 'balance', -1)
redis.call('HINCRBY', KEYS[1], 'supply', -1)
return 1
`)

var transferScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 or redis.call('EXISTS', KEYS[2]) == 0 then
  return redis.error_reply('UNKNOWN_ACCOUNT')
end
local src = redis.call('HMGET', KEYS[1], 'mint', 'authority', 'balance', 'locked')
if src[4] == '1' then
  return redis.error_reply('ACCOUNT_LOCKED')
end
if src[2] ~= ARGV[1] then
  return redis.error_reply('UNAUTHORIZED_AUTHORITY')
end
if tonumber(src[3]) <= 0 then
  return redis.error_reply('INSUFFICIENT_BALANCE')
end
if redis.call('HGET', KEYS[2], 'mint') ~= src[1] then
  return redis.error_reply('MINT_MISMATCH')
end
redis.call('HINCRBY', KEYS[1], 'balance', -1)
redis.call('HINCRBY', KEYS[2], 'balance', 1)
return 1
`)

var scriptErrors = map[string]error{
	"UNKNOWN_MINT":           ErrUnknownMint,
	"UNKNOWN_ACCOUNT":        ErrUnknownAccount,
	"MINT_AUTHORITY_REVOKED": ErrMintAuthorityRevoked,
	"UNAUTHORIZED_AUTHORITY": ErrUnauthorizedAuthority,
	"ACCOUNT_LOCKED":         ErrAccountLocked,
	"INSUFFICIENT_BALANCE":   ErrInsufficientBalance,
	"MINT_MISMATCH":          ErrMintMismatch,
}

func (l *RedisLedger) mintKey(mint domain.Address) string {
	return l.prefix + ":mint:" + mint.String()
}

func (l *RedisLedger) accountKey(account domain.Address) string {
	return l.prefix + ":account:" + account.String()
}

func (l *RedisLedger) metadataKey(mint domain.Address) string {
	return l.prefix + ":metadata:" + domain.MetadataAddress(mint).String()
}

func (l *RedisLedger) CreateMetadataIfAbsent(ctx context.Context, auth Authority, mint domain.Address, md Metadata) (bool, error) {
	created, err := createMetadataScript.Run(ctx, l.client,
		[]string{l.mintKey(mint), l.metadataKey(mint)},
		auth.Signer.String(), md.Name, md.Symbol, md.URI,
	).Int()
	if err != nil {
		return false, translate(err)
	}
	return created == 1, nil
}

func (l *RedisLedger) MintOne(ctx context.Context, auth Authority, mint, destination, owner domain.Address) error {
	err := mintOneScript.Run(ctx, l.client,
		[]string{l.mintKey(mint), l.accountKey(destination)},
		auth.Signer.String(), mint.String(), owner.String(),
	).Err()
	return translate(err)
}

func (l *RedisLedger) RevokeMintAuthority(ctx context.Context, auth Authority, mint domain.Address) error {
	err := revokeScript.Run(ctx, l.client, []string{l.mintKey(mint)}, auth.Signer.String()).Err()
	return translate(err)
}

func (l *RedisLedger) LockAccountAuthority(ctx context.Context, auth Authority, account domain.Address) error {
	mint, err := l.accountMint(ctx, account)
	if err != nil {
		return err
	}
	err = lockScript.Run(ctx, l.client,
		[]string{l.accountKey(account), l.mintKey(mint)},
		auth.Signer.String(),
	).Err()
	return translate(err)
}

func (l *RedisLedger) BurnOne(ctx context.Context, auth Authority, mint, account domain.Address) error {
	err := burnScript.Run(ctx, l.client,
		[]string{l.mintKey(mint), l.accountKey(account)},
		auth.Signer.String(), mint.String(),
	).Err()
	return translate(err)
}

// Transfer moves one unit between accounts of the same mint. Locked accounts
// never release their unit.
func (l *RedisLedger) Transfer(ctx context.Context, signer, from, to domain.Address) error {
	err := transferScript.Run(ctx, l.client,
		[]string{l.accountKey(from), l.accountKey(to)},
		signer.String(),
	).Err()
	return translate(err)
}

func (l *RedisLedger) Mint(ctx context.Context, mint domain.Address) (*MintInfo, error) {
	fields, err := l.client.HGetAll(ctx, l.mintKey(mint)).Result()
	if err != nil {
		return nil, translate(err)
	}
	if len(fields) == 0 {
		return nil, ErrUnknownMint
	}
	authority, err := domain.ParseAddress(fields["authority"])
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt mint authority: %w", ErrTokenService, err)
	}
	supply, _ := strconv.ParseUint(fields["supply"], 10, 64)
	info := &MintInfo{
		Address:          mint,
		Authority:        authority,
		AuthorityRevoked: fields["revoked"] == "1",
		Supply:           supply,
	}
	md, err := l.client.HGetAll(ctx, l.metadataKey(mint)).Result()
	if err != nil {
		return nil, translate(err)
	}
	if len(md) > 0 {
		info.MetadataAccount = domain.MetadataAddress(mint)
		info.Metadata = &Metadata{Name: md["name"], Symbol: md["symbol"], URI: md["uri"]}
	}
	return info, nil
}

func (l *RedisLedger) Account(ctx context.Context, account domain.Address) (*AccountInfo, error) {
	fields, err := l.client.HGetAll(ctx, l.accountKey(account)).Result()
	if err != nil {
		return nil, translate(err)
	}
	if len(fields) == 0 {
		return nil, ErrUnknownAccount
	}
	info := &AccountInfo{Address: account, Locked: fields["locked"] == "1"}
	for _, f := range []struct {
		name string
		dst  *domain.Address
	}{
		{"mint", &info.Mint},
		{"owner", &info.Owner},
		{"authority", &info.Authority},
	} {
		parsed, err := domain.ParseAddress(fields[f.name])
		if err != nil {
			return nil, fmt.Errorf("%w: corrupt account %s: %w", ErrTokenService, f.name, err)
		}
		*f.dst = parsed
	}
	info.Balance, _ = strconv.ParseUint(fields["balance"], 10, 64)
	return info, nil
}

func (l *RedisLedger) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func (l *RedisLedger) accountMint(ctx context.Context, account domain.Address) (domain.Address, error) {
	raw, err := l.client.HGet(ctx, l.accountKey(account), "mint").Result()
	if errors.Is(err, redis.Nil) {
		return domain.Address{}, ErrUnknownAccount
	}
	if err != nil {
		return domain.Address{}, translate(err)
	}
	mint, err := domain.ParseAddress(raw)
	if err != nil {
		return domain.Address{}, fmt.Errorf("%w: corrupt account mint: %w", ErrTokenService, err)
	}
	return mint, nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for code, sentinel := range scriptErrors {
		if strings.Contains(msg, code) {
			return sentinel
		}
	}
	return fmt.Errorf("%w: %w", ErrTokenService, err)
}
