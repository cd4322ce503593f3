// Package storage implements the key-value persistence adapter that every
// repository in spendwise writes through. Values are opaque JSON documents.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store is closed")

// Store is the persistence adapter contract. Get reports absence with
// ok=false and a nil error; Put replaces the whole value stored under key.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// Key prefixes for per-user documents.
const (
	ExpensesPrefix  = "expenses_"
	BudgetsPrefix   = "budgets_"
	RecurringPrefix = "recurring_"
	UserPrefix      = "user_"
)

func ExpensesKey(userID string) string  { return ExpensesPrefix + userID }
func BudgetsKey(userID string) string   { return BudgetsPrefix + userID }
func RecurringKey(userID string) string { return RecurringPrefix + userID }
func UserKey(username string) string    { return UserPrefix + username }

// GetJSON loads key into dst. It returns false when the key is absent and
// leaves dst untouched.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it under key.
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}
