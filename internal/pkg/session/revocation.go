// internal/pkg/session/revocation.go
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations tracks operator tokens revoked before their expiry. Entries
// expire with the token so the set never outgrows the live tokens.
type Revocations struct {
	client redis.UniversalClient
	prefix string
}

func NewRevocations(client redis.UniversalClient, prefix string) *Revocations {
	return &Revocations{client: client, prefix: prefix}
}

func (r *Revocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return fmt.Errorf("token has no jti")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.key(jti), time.Now().UTC().Format(time.RFC3339), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *Revocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, r.key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return true, nil
}

func (r *Revocations) key(jti string) string {
	return fmt.Sprintf("%s:revoked:%s", r.prefix, jti)
}
