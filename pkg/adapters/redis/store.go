// Package redis provides a Redis-backed AnnotationStore so captured
// annotation sets survive host restarts and can be shared between hosts.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glosskit/gloss/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.AnnotationStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored annotation sets.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for annotation sets.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "gloss:annotations:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(page string) string {
	return s.prefix + page
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the annotation set for a page, replacing any previous set.
func (s *Store) Save(ctx context.Context, page string, list []domain.Annotation) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to marshal annotations: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(page), data, s.ttl)

	// Index score doubles as the expiry instant for lazy cleanup.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01, effectively "never"
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: page})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the annotation set for a page.
func (s *Store) Load(ctx context.Context, page string) ([]domain.Annotation, error) {
	val, err := s.client.Get(ctx, s.key(page)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var list []domain.Annotation
	if err := json.Unmarshal([]byte(val), &list); err != nil {
		return nil, fmt.Errorf("failed to unmarshal annotations: %w", err)
	}
	return list, nil
}

// Delete removes the annotation set for a page.
func (s *Store) Delete(ctx context.Context, page string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(page))
	pipe.ZRem(ctx, s.indexKey(), page)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns pages with stored sets, lazily pruning expired index entries.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired sets: %w", err)
	}

	pages, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	return pages, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
