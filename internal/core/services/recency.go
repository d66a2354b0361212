package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/sean-rowe/weatherdesk/internal/core/ports"
)

const (
	// recentKey is the storage key holding the serialized recency list.
	recentKey = "recent_locations"

	// maxRecent caps the recency list length.
	maxRecent = 5
)

// RecencyCache maintains the ordered, deduplicated list of successfully
// resolved location names, most-recent-first. Every mutation is persisted
// immediately so the list survives the session.
type RecencyCache struct {
	store  ports.KeyValueStore
	logger *zap.Logger

	mu    sync.Mutex
	names []string
}

// NewRecencyCache creates a recency cache backed by the given store.
func NewRecencyCache(store ports.KeyValueStore, logger *zap.Logger) *RecencyCache {
	return &RecencyCache{
		store:  store,
		logger: logger,
	}
}

// Load reads the persisted list. An absent key yields an empty cache.
func (c *RecencyCache) Load(ctx context.Context) error {
	raw, err := c.store.Get(ctx, recentKey)

	if errors.Is(err, ports.ErrKeyNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to read recent locations: %w", err)
	}

	var names []string

	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		// A corrupt entry is dropped rather than wedging startup.
		c.logger.Warn("discarding unreadable recent locations entry", zap.Error(err))

		return nil
	}

	if len(names) > maxRecent {
		names = names[:maxRecent]
	}

	c.mu.Lock()
	c.names = names
	c.mu.Unlock()

	return nil
}

// Add prepends name, removing any prior occurrence, truncates to the
// length cap, and persists the result.
func (c *RecencyCache) Add(ctx context.Context, name string) error {
	c.mu.Lock()

	next := make([]string, 0, maxRecent)
	next = append(next, name)

	for _, existing := range c.names {
		if existing == name {
			continue
		}

		next = append(next, existing)
	}

	if len(next) > maxRecent {
		next = next[:maxRecent]
	}

	c.names = next
	serialized, err := json.Marshal(next)
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to serialize recent locations: %w", err)
	}

	if err := c.store.Set(ctx, recentKey, string(serialized)); err != nil {
		return fmt.Errorf("failed to persist recent locations: %w", err)
	}

	return nil
}

// Names returns a copy of the current list, most recent first.
func (c *RecencyCache) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.names))
	copy(out, c.names)

	return out
}
