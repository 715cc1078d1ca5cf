package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/afterthoughts/internal/models"
)

// DiaryRepository implements models.Repository[*models.CachedDiary] for the diary cache.
type DiaryRepository struct {
	db *sql.DB
}

// NewDiaryRepository creates a new DiaryRepository with the given database connection
func NewDiaryRepository(db *sql.DB) *DiaryRepository {
	return &DiaryRepository{db: db}
}

// Create inserts a new diary into the cache with a generated sequence.
// The id comes from the remote row and must already be set.
func (r *DiaryRepository) Create(diary *models.CachedDiary) error {
	sequence, err := NextSequence(r.db, "diaries")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	diary.SetSequence(sequence)

	if err := diary.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO diaries (id, sequence, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		diary.ID(),
		diary.Sequence(),
		diary.UserID(),
		diary.Title(),
		diary.CreatedAt(),
		diary.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert diary: %w", err)
	}

	return nil
}

// Get retrieves a diary by ID, excluding soft-deleted rows
func (r *DiaryRepository) Get(id string) (*models.CachedDiary, error) {
	query := `
		SELECT id, sequence, user_id, title, created_at, updated_at, deleted_at
		FROM diaries
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing cached diary
func (r *DiaryRepository) Update(diary *models.CachedDiary) error {
	if err := diary.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	diary.SetUpdatedAt(now)

	query := `
		UPDATE diaries
		SET title = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, diary.Title(), now, diary.ID())
	if err != nil {
		return fmt.Errorf("failed to update diary: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("diary not found or already deleted: %s", diary.ID())
	}

	return nil
}

// Delete soft-deletes a cached diary by ID
func (r *DiaryRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE diaries
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete diary: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("diary not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves cached diaries matching the given criteria, newest first,
// excluding soft-deleted rows. Supported criteria: user_id.
func (r *DiaryRepository) List(criteria map[string]any) ([]*models.CachedDiary, error) {
	query := `
		SELECT id, sequence, user_id, title, created_at, updated_at, deleted_at
		FROM diaries
		WHERE deleted_at IS NULL
	`
	var args []any

	var clauses []string
	if userID, ok := criteria["user_id"]; ok {
		clauses = append(clauses, "user_id = ?")
		args = append(args, userID)
	}
	if len(clauses) > 0 {
		query += " AND " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list diaries: %w", err)
	}
	defer rows.Close()

	var diaries []*models.CachedDiary
	for rows.Next() {
		diary, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		diaries = append(diaries, diary)
	}

	return diaries, rows.Err()
}

// Replace clears the cache for a user and inserts the given rows, used by cache sync.
func (r *DiaryRepository) Replace(userID string, diaries []models.Diary) error {
	if _, err := r.db.Exec("DELETE FROM diaries WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear diary cache: %w", err)
	}
	for _, d := range diaries {
		if err := r.Create(models.NewCachedDiary(d)); err != nil {
			return err
		}
	}
	return nil
}

// Clear drops every cached diary row.
func (r *DiaryRepository) Clear() error {
	if _, err := r.db.Exec("DELETE FROM diaries"); err != nil {
		return fmt.Errorf("failed to clear diary cache: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DiaryRepository) scanOne(row *sql.Row) (*models.CachedDiary, error) {
	diary, err := r.scan(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("diary not found")
	}
	return diary, err
}

func (r *DiaryRepository) scan(row rowScanner) (*models.CachedDiary, error) {
	var (
		id, userID, title    string
		sequence             int
		createdAt, updatedAt time.Time
		deletedAt            *time.Time
	)

	if err := row.Scan(&id, &sequence, &userID, &title, &createdAt, &updatedAt, &deletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan diary: %w", err)
	}

	diary := models.NewCachedDiary(models.Diary{ID: id, UserID: userID, Title: title, CreatedAt: createdAt})
	diary.SetSequence(sequence)
	diary.SetUpdatedAt(updatedAt)
	diary.SetDeletedAt(deletedAt)
	return diary, nil
}
