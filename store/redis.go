package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NewSessionID mints the opaque identifier that names one server-side
// session. The browser carries only this value, never the tokens.
func NewSessionID() string {
	return uuid.NewString()
}

// RedisStore keeps one session's credential under a single Redis key, so a
// rotated token pair lands in one SET and old copies can never be read
// half-updated.
type RedisStore struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedisStore binds a store to one session ID. The TTL should match the
// refresh token lifetime: once the refresh token is dead the record is
// useless anyway.
func NewRedisStore(client redis.UniversalClient, prefix, sessionID string, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis store: client is required")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("redis store: session ID is required")
	}
	if prefix == "" {
		prefix = "authcore:session"
	}
	return &RedisStore{
		client: client,
		key:    prefix + ":" + sessionID,
		ttl:    ttl,
	}, nil
}

func (s *RedisStore) Save(ctx context.Context, cred *Credential) error {
	payload, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("redis store: %v", err)
	}
	if err := s.client.Set(ctx, s.key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Read(ctx context.Context) (*Credential, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		// Corrupt record. Drop it so the session falls back to login
		// instead of failing the same way on every request.
		_ = s.client.Del(ctx, s.key).Err()
		return nil, ErrNoCredential
	}
	return &cred, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
