package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"magic-counter/internal/domain"
)

// Collection keys in the backing key-value store.
const (
	keyUsers = "users"
	keyDecks = "decks"
	keyGames = "games"
)

// collection is a persisted entity list: the whole collection serializes
// as one JSON array under its key on every mutation, and loads back with
// timestamps revived. A corrupt payload loads as empty with the corrupt
// flag set; Reset is the only way out of that state.
type collection[T any] struct {
	mu       sync.Mutex
	db       *sql.DB
	key      string
	items    []T
	corrupt  bool
	validate func(T) error
	logger   zerolog.Logger
}

func newCollection[T any](db *sql.DB, key string, validate func(T) error, logger zerolog.Logger) *collection[T] {
	c := &collection[T]{
		db:       db,
		key:      key,
		validate: validate,
		logger:   logger.With().Str("collection", key).Logger(),
	}
	if err := c.load(context.Background()); err != nil {
		c.corrupt = true
		c.items = nil
		c.logger.Warn().Err(err).Msg("collection failed to load, starting empty until reset")
	}
	return c
}

func (c *collection[T]) load(ctx context.Context) error {
	var payload string
	err := c.db.QueryRowContext(ctx, "SELECT payload FROM collections WHERE key = ?", c.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", c.key, err)
	}

	var items []T
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCorrupt, c.key, err)
	}
	for _, item := range items {
		if err := c.validate(item); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrCorrupt, c.key, err)
		}
	}
	c.items = items
	return nil
}

// persist serializes the full collection. Callers hold the mutex.
func (c *collection[T]) persist(ctx context.Context) error {
	payload, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", c.key, err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO collections (key, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		c.key, string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("persist %s: %w", c.key, err)
	}
	return nil
}

func (c *collection[T]) add(ctx context.Context, item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, item)
	return c.persist(ctx)
}

// update applies mutate to the latest stored value of the matching item.
// Mutations always run against current state, never a caller snapshot.
func (c *collection[T]) update(ctx context.Context, match func(T) bool, mutate func(*T)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if match(c.items[i]) {
			mutate(&c.items[i])
			return c.persist(ctx)
		}
	}
	return domain.ErrNotFound
}

func (c *collection[T]) remove(ctx context.Context, match func(T) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if match(c.items[i]) {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return c.persist(ctx)
		}
	}
	return domain.ErrNotFound
}

func (c *collection[T]) get(match func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// list returns the items in insertion order.
func (c *collection[T]) list() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// replace swaps the whole collection, used by import.
func (c *collection[T]) replace(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
	c.corrupt = false
	return c.persist(ctx)
}

// reset discards the collection, the recovery path for a corrupt load.
func (c *collection[T]) reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.corrupt = false
	c.logger.Warn().Msg("collection reset")
	return c.persist(ctx)
}

func (c *collection[T]) isCorrupt() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.corrupt
}
