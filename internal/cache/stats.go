package cache

import (
	"time"

	"spendwise/internal/core"
)

// Dashboard is the derived statistics payload served for one user.
type Dashboard struct {
	Stats      core.Stats           `json:"stats"`
	Monthly    []core.Bucket        `json:"monthly"`
	Weekly     []core.Bucket        `json:"weekly"`
	Categories []core.CategoryShare `json:"categories"`

	// Version identifies the stored expense list the dashboard was built from.
	Version string `json:"-"`
}

// StatsCache caches Dashboards keyed by user. It implements the services
// Invalidator so every expense mutation drops the user's entries.
type StatsCache struct {
	*LRUCache[Dashboard]
}

func NewStatsCache(size int, ttl time.Duration) *StatsCache {
	return &StatsCache{LRUCache: NewLRUCache[Dashboard](size, ttl)}
}

func userPrefix(userID string) string { return "user:" + userID + ":" }

// Key builds the cache key for a user and a view name.
func Key(userID, view string) string { return userPrefix(userID) + view }

// InvalidateUser drops every cached view of userID.
func (s *StatsCache) InvalidateUser(userID string) {
	s.DeletePrefix(userPrefix(userID))
}
