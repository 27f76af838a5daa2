package rediskv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key prefix of the refresh token whitelist. The token value itself is part
// of the key, so every session token is revocable on its own and revoking
// one never touches the user's other sessions.
const whitelistPrefix = "refresh-token-"

// Whitelist keeps the set of currently honored refresh tokens in redis.
// Entries expire together with the token itself, no sweeping required.
type Whitelist struct {
	rdb redis.Cmdable
}

func NewWhitelist(rdb redis.Cmdable) *Whitelist {
	return &Whitelist{rdb: rdb}
}

func whitelistKey(token string) string {
	return whitelistPrefix + token
}

// Record the freshly minted refresh token as owned by the user
func (w *Whitelist) Record(ctx context.Context, token string, userID string, ttl time.Duration) error {
	err := w.rdb.Set(ctx, whitelistKey(token), userID, ttl).Err()
	if err != nil {
		return fmt.Errorf("whitelist set error: %w", err)
	}
	return nil
}

// IsValid returns the owner's id if the token is still whitelisted.
// An absent entry (revoked or expired, not distinguished) returns "".
func (w *Whitelist) IsValid(ctx context.Context, token string) (string, error) {
	userID, err := w.rdb.Get(ctx, whitelistKey(token)).Result()

	switch {
	case err == nil:
		return userID, nil
	case errors.Is(err, redis.Nil):
		return "", nil
	default:
		return "", fmt.Errorf("whitelist get error: %w", err)
	}
}

// Revoke deletes the token's entry. Revoking an unknown token is a no-op.
func (w *Whitelist) Revoke(ctx context.Context, token string) error {
	err := w.rdb.Del(ctx, whitelistKey(token)).Err()
	if err != nil {
		return fmt.Errorf("whitelist del error: %w", err)
	}
	return nil
}
