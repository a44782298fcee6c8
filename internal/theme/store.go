package theme

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/ziadkadry99/sitekit/internal/db"
)

// PreferenceKey is the key the mode is stored under, both in the preferences
// table and in browser localStorage.
const PreferenceKey = "sitekit-theme"

// Store persists the chosen mode. Load reports ok=false when nothing has been
// saved yet.
type Store interface {
	Load(ctx context.Context) (Mode, bool, error)
	Save(ctx context.Context, m Mode) error
}

// MemoryStore keeps the mode for the life of the process.
type MemoryStore struct {
	mu    sync.Mutex
	mode  Mode
	saved bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(context.Context) (Mode, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode, s.saved, nil
}

func (s *MemoryStore) Save(_ context.Context, m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode, s.saved = m, true
	return nil
}

// SQLStore persists the mode in the preferences table.
type SQLStore struct {
	db *db.DB
}

// NewSQLStore creates a store backed by the given database.
func NewSQLStore(database *db.DB) *SQLStore {
	return &SQLStore{db: database}
}

func (s *SQLStore) Load(ctx context.Context) (Mode, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, PreferenceKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("loading theme preference: %w", err)
	}
	m, err := Parse(value)
	if err != nil {
		// A corrupt row counts as no preference.
		return "", false, nil
	}
	return m, true, nil
}

func (s *SQLStore) Save(ctx context.Context, m Mode) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		PreferenceKey, string(m))
	if err != nil {
		return fmt.Errorf("saving theme preference: %w", err)
	}
	return nil
}
