package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arturoeanton/soundgate/internal/domain"
	"github.com/arturoeanton/soundgate/internal/port"
)

// RedisSessionStore keeps sessions in Redis, keyed by secret, with a per-user
// index so sign-out can drop them all.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: "session:"}
}

func (r *RedisSessionStore) key(secret string) string {
	return r.prefix + secret
}

func (r *RedisSessionStore) userKey(userID string) string {
	return r.prefix + "user:" + userID
}

// Create stores s for ttl.
func (r *RedisSessionStore) Create(ctx context.Context, s *domain.Session, ttl time.Duration) error {
	if s.Secret == "" || s.UserID == "" {
		return fmt.Errorf("session: missing secret or user id")
	}
	if ttl <= 0 {
		return fmt.Errorf("session: ttl must be positive")
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.key(s.Secret), data, ttl)
		p.SAdd(ctx, r.userKey(s.UserID), s.Secret)
		p.Expire(ctx, r.userKey(s.UserID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: store: %w", err)
	}
	return nil
}

// Get returns the live session for secret.
func (r *RedisSessionStore) Get(ctx context.Context, secret string) (*domain.Session, error) {
	if secret == "" {
		return nil, port.ErrNotFound
	}
	val, err := r.client.Get(ctx, r.key(secret)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: get: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &s, nil
}

// Delete removes one session and its index entry.
func (r *RedisSessionStore) Delete(ctx context.Context, s *domain.Session) error {
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, r.key(s.Secret))
		p.SRem(ctx, r.userKey(s.UserID), s.Secret)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}

// DeleteUser removes every session of userID.
func (r *RedisSessionStore) DeleteUser(ctx context.Context, userID string) error {
	secrets, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("session: list: %w", err)
	}

	keys := make([]string, 0, len(secrets)+1)
	for _, s := range secrets {
		keys = append(keys, r.key(s))
	}
	keys = append(keys, r.userKey(userID))
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}
