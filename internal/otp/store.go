package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeInvalid is returned when a code is absent, mismatched, or expired.
// Callers cannot distinguish the three cases, which also keeps the error
// message safe to surface to clients.
var ErrCodeInvalid = errors.New("invalid or expired OTP")

const keyPrefix = "otp:"

// Store keeps pending one-time codes in Redis. Native key TTL enforces
// expiry, SET overwrites any pending code for the same mobile, and a
// matched code is deleted before the login completes, so each code is
// usable at most once even across multiple server instances.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns a Store issuing codes valid for ttl.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

// Save stores code for mobile, replacing any pending code.
func (s *Store) Save(ctx context.Context, mobile, code string) error {
	return s.client.Set(ctx, keyPrefix+mobile, code, s.ttl).Err()
}

// Consume validates code for mobile and deletes it on a match. A mismatch
// leaves the pending code in place so the real code remains usable.
func (s *Store) Consume(ctx context.Context, mobile, code string) error {
	stored, err := s.client.Get(ctx, keyPrefix+mobile).Result()
	if err == redis.Nil {
		return ErrCodeInvalid
	}
	if err != nil {
		return fmt.Errorf("otp lookup: %w", err)
	}

	if stored != code {
		return ErrCodeInvalid
	}

	if err := s.client.Del(ctx, keyPrefix+mobile).Err(); err != nil {
		return fmt.Errorf("otp delete: %w", err)
	}

	return nil
}

// GenerateCode returns a uniformly random 6-digit numeric code in
// [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
