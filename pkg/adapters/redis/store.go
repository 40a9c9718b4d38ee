// Package redis provides a Redis-backed RecordStore. Dedupe-on-first-write
// maps directly onto SETNX; a list key preserves first-seen order.
package redis

import (
	"context"
	"fmt"

	"github.com/aretw0/vigil/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.RecordStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
}

type Option func(*Store)

// WithPrefix sets the key prefix for recorded entries.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "vigil:replay:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) dataKey(key string) string {
	return s.prefix + "data:" + key
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Record stores (key, data) with SETNX; only the winning write appends the key
// to the order index, so re-records never disturb first-seen order.
func (s *Store) Record(ctx context.Context, key, data string) (bool, error) {
	stored, err := s.client.SetNX(ctx, s.dataKey(key), data, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record entry: %w", err)
	}
	if !stored {
		return false, nil
	}
	if err := s.client.RPush(ctx, s.indexKey(), key).Err(); err != nil {
		return false, fmt.Errorf("failed to index entry: %w", err)
	}
	return true, nil
}

// Entries returns all recorded pairs in first-seen order.
func (s *Store) Entries(ctx context.Context) ([]ports.RecordedEntry, error) {
	keys, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list index: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	dataKeys := make([]string, len(keys))
	for i, key := range keys {
		dataKeys[i] = s.dataKey(key)
	}
	values, err := s.client.MGet(ctx, dataKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	entries := make([]ports.RecordedEntry, 0, len(keys))
	for i, key := range keys {
		data, _ := values[i].(string)
		entries = append(entries, ports.RecordedEntry{Key: key, Data: data})
	}
	return entries, nil
}
