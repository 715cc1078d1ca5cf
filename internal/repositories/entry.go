package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
)

// EntryRepository implements models.Repository[*models.CachedEntry] for the entry cache.
type EntryRepository struct {
	db *sql.DB
}

// NewEntryRepository creates a new EntryRepository with the given database connection
func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create inserts a new entry into the cache with a generated sequence.
// The id comes from the remote row and must already be set.
func (r *EntryRepository) Create(entry *models.CachedEntry) error {
	sequence, err := NextSequence(r.db, "entries")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	entry.SetSequence(sequence)

	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO entries (id, sequence, diary_id, title, content, is_draft, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		entry.ID(),
		entry.Sequence(),
		entry.DiaryID(),
		entry.Title(),
		entry.Content(),
		entry.IsDraft(),
		entry.CreatedAt(),
		entry.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

// Get retrieves an entry by ID, excluding soft-deleted rows
func (r *EntryRepository) Get(id string) (*models.CachedEntry, error) {
	query := `
		SELECT id, sequence, diary_id, title, content, is_draft, created_at, updated_at, deleted_at
		FROM entries
		WHERE id = ? AND deleted_at IS NULL
	`

	entry, err := r.scan(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entry not found")
	}
	return entry, err
}

// Update modifies an existing cached entry. The draft flag only moves from
// set to cleared, mirroring the publish-once rule.
func (r *EntryRepository) Update(entry *models.CachedEntry) error {
	if err := entry.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	entry.SetUpdatedAt(now)

	query := `
		UPDATE entries
		SET title = ?, content = ?, is_draft = is_draft AND ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, entry.Title(), entry.Content(), entry.IsDraft(), now, entry.ID())
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("entry not found or already deleted: %s", entry.ID())
	}

	return nil
}

// Delete soft-deletes a cached entry by ID
func (r *EntryRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE entries
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("entry not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves cached entries matching the given criteria, newest first,
// excluding soft-deleted rows. Supported criteria: diary_id, is_draft.
func (r *EntryRepository) List(criteria map[string]any) ([]*models.CachedEntry, error) {
	query := `
		SELECT id, sequence, diary_id, title, content, is_draft, created_at, updated_at, deleted_at
		FROM entries
		WHERE deleted_at IS NULL
	`
	var args []any

	var clauses []string
	if diaryID, ok := criteria["diary_id"]; ok {
		clauses = append(clauses, "diary_id = ?")
		args = append(args, diaryID)
	}
	if isDraft, ok := criteria["is_draft"]; ok {
		clauses = append(clauses, "is_draft = ?")
		args = append(args, isDraft)
	}
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.CachedEntry
	for rows.Next() {
		entry, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// ReplaceForDiary clears a diary's cached entries and inserts the given rows, used by cache sync.
func (r *EntryRepository) ReplaceForDiary(diaryID string, entries []models.Entry) error {
	if _, err := r.db.Exec("DELETE FROM entries WHERE diary_id = ?", diaryID); err != nil {
		return fmt.Errorf("failed to clear entry cache: %w", err)
	}
	for _, e := range entries {
		if err := r.Create(models.NewCachedEntry(e)); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every cached entry row.
func (r *EntryRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM entries"); err != nil {
		return fmt.Errorf("failed to clear entry cache: %w", err)
	}
	return nil
}

func (r *EntryRepository) scan(row rowScanner) (*models.CachedEntry, error) {
	var (
		id, diaryID          string
		title                sql.NullString
		content              string
		sequence             int
		isDraft              bool
		createdAt, updatedAt time.Time
		deletedAt            *time.Time
	)

	if err := row.Scan(&id, &sequence, &diaryID, &title, &content, &isDraft, &createdAt, &updatedAt, &deletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan entry: %w", err)
	}

	entry := models.NewCachedEntry(models.Entry{
		ID:        id,
		DiaryID:   diaryID,
		Title:     title.String,
		Content:   content,
		IsDraft:   isDraft,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	})
	entry.SetSequence(sequence)
	entry.SetDeletedAt(deletedAt)
	return entry, nil
}
