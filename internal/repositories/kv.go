package repositories

import (
	"database/sql"
	"fmt"
)

// KVRepository stores small persisted preferences (dark mode, last sync time)
// in the kv table.
type KVRepository struct {
	db *sql.DB
}

// NewKVRepository creates a new KVRepository with the given database connection
func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the value stored under key, or "" when the key is unset.
func (r *KVRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read kv %q: %w", key, err)
	}
	return value, nil
}

// Set upserts the value stored under key.
func (r *KVRepository) Set(key, value string) error {
	query := `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := r.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to write kv %q: %w", key, err)
	}
	return nil
}

// DarkMode reads the persisted dark-mode preference. Defaults to true when unset.
func (r *KVRepository) DarkMode() (bool, error) {
	value, err := r.Get("dark_mode")
	if err != nil {
		return true, err
	}
	return value != "false", nil
}

// SetDarkMode persists the dark-mode preference.
func (r *KVRepository) SetDarkMode(enabled bool) error {
	if enabled {
		return r.Set("dark_mode", "true")
	}
	return r.Set("dark_mode", "false")
}
