package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenUnknown indicates the presented token is not in the store.
var ErrTokenUnknown = errors.New("auth: unknown token")

// TokenManager issues and validates opaque bearer tokens backed by Redis.
// Tokens carry no claims; the store maps token to user id with a TTL.
type TokenManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenManager constructs a TokenManager.
func NewTokenManager(client *redis.Client, ttl time.Duration) *TokenManager {
	return &TokenManager{client: client, ttl: ttl}
}

// Issue mints a fresh token for userID and stores it with the configured TTL.
func (tm *TokenManager) Issue(ctx context.Context, userID string) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	if err := tm.client.Set(ctx, tm.key(token), userID, tm.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Validate returns the user id a token was issued for.
func (tm *TokenManager) Validate(ctx context.Context, token string) (string, error) {
	userID, err := tm.client.Get(ctx, tm.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrTokenUnknown
		}
		return "", err
	}
	return userID, nil
}

// Revoke deletes a token from the store.
func (tm *TokenManager) Revoke(ctx context.Context, token string) error {
	err := tm.client.Del(ctx, tm.key(token)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

func (tm *TokenManager) key(token string) string {
	return "accessdeck:token:" + token
}
