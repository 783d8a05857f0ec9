package otp

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// RedisStore keeps challenges in Redis so OTPs survive process restarts.
// Codes are stored bcrypt-hashed; Redis handles expiry via key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		// Redis refuses SET with a zero expiry only when EX is given, but an
		// unbounded OTP in a shared store is not acceptable; cap it.
		ttl = 15 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(identityNumber string) string {
	return "otp:" + identityNumber
}

func (s *RedisStore) Issue(ctx context.Context, key, code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), string(hash), s.ttl).Err()
}

func (s *RedisStore) Verify(ctx context.Context, key, code string) (bool, error) {
	hash, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return false, nil
	}

	// Consume on success only.
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return false, err
	}
	return true, nil
}
