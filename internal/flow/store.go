package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("donation session not found")

// Store persists donation state between requests.
type Store interface {
	Load(ctx context.Context, session string) (State, error)
	Save(ctx context.Context, session string, s State) error
	Delete(ctx context.Context, session string) error
}

const sessionKeyPrefix = "donationState:"

// RedisStore keeps each session as one JSON value. Keys live outside the
// cache prefix so clearing reference data never drops a donor's progress.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(session string) string {
	return sessionKeyPrefix + session
}

func (r *RedisStore) Load(ctx context.Context, session string) (State, error) {
	raw, err := r.client.Get(ctx, r.key(session)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, ErrSessionNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("load session %s: %w", session, err)
	}
	s := Initial()
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("decode session %s: %w", session, err)
	}
	if s.CurrencyRates == nil {
		s.CurrencyRates = Initial().CurrencyRates
	}
	return s, nil
}

// Save refreshes the TTL on every write.
func (r *RedisStore) Save(ctx context.Context, session string, s State) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session, err)
	}
	if err := r.client.Set(ctx, r.key(session), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, session string) error {
	if err := r.client.Del(ctx, r.key(session)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", session, err)
	}
	return nil
}
