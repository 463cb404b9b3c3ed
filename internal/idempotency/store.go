package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is what the store keeps per key. InProgress entries act as a lock
// until the handler finishes.
type Entry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	ContentType string    `json:"content_type"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	CreatedAt   time.Time `json:"created_at"`
}

type Store struct {
	rdb     *redis.Client
	lockTTL time.Duration
	ttl     time.Duration
}

func NewStore(rdb *redis.Client, lockTTL, ttl time.Duration) *Store {
	return &Store{rdb: rdb, lockTTL: lockTTL, ttl: ttl}
}

// OpenRedis connects and pings so a bad address fails at startup.
func OpenRedis(addr string, db int) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return r, nil
}

// Reserve stores an in-progress entry unless the key already exists.
func (s *Store) Reserve(ctx context.Context, key string, entry Entry) (bool, error) {
	b, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, b, s.lockTTL).Result()
}

func (s *Store) Load(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("decode idempotency entry: %w", err)
	}
	return &entry, nil
}

func (s *Store) Save(ctx context.Context, key string, entry Entry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, s.ttl).Err()
}

func (s *Store) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
