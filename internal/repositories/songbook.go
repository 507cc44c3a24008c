package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

const songbookColumns = "id, sequence, session_key, title, max_active_songs, is_noodle_mode, created_at, updated_at, deleted_at"

// SongbookRepository implements models.Repository[*models.Songbook]
type SongbookRepository struct {
	db *sql.DB
}

// NewSongbookRepository creates a new SongbookRepository with the given database connection
func NewSongbookRepository(db *sql.DB) *SongbookRepository {
	return &SongbookRepository{db: db}
}

// Create inserts a new songbook into the database with generated ID and sequence
func (r *SongbookRepository) Create(book *models.Songbook) error {
	if err := book.Validate(); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "songbooks")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO songbooks (id, sequence, session_key, title, max_active_songs, is_noodle_mode, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		book.SessionKey(),
		book.Title(),
		book.MaxActiveSongs(),
		book.IsNoodleMode(),
		book.CreatedAt(),
		book.UpdatedAt(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: session key %s is taken", shared.ErrInvalidInput, book.SessionKey())
	}
	if err != nil {
		return fmt.Errorf("failed to insert songbook: %w", err)
	}

	book.SetID(id)
	book.SetSequence(sequence)
	return nil
}

// Get retrieves a songbook by ID, excluding soft-deleted songbooks
func (r *SongbookRepository) Get(id string) (*models.Songbook, error) {
	query := "SELECT " + songbookColumns + " FROM songbooks WHERE id = ? AND deleted_at IS NULL"

	book, err := scanSongbook(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongbookNotFound, id)
	}
	return book, err
}

// GetBySessionKey retrieves a songbook by the key guests use to join it.
// Keys are matched case-insensitively.
func (r *SongbookRepository) GetBySessionKey(key string) (*models.Songbook, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	query := "SELECT " + songbookColumns + " FROM songbooks WHERE session_key = ? AND deleted_at IS NULL"

	book, err := scanSongbook(r.db.QueryRow(query, key))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: session %s", shared.ErrSongbookNotFound, key)
	}
	return book, err
}

// Update modifies an existing songbook in the database. The session key is immutable.
func (r *SongbookRepository) Update(book *models.Songbook) error {
	if err := book.Validate(); err != nil {
		return err
	}

	now := time.Now()

	query := `
		UPDATE songbooks
		SET title = ?, max_active_songs = ?, is_noodle_mode = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, book.Title(), book.MaxActiveSongs(), book.IsNoodleMode(), now, book.ID())
	if err != nil {
		return fmt.Errorf("failed to update songbook: %w", err)
	}

	if err := expectAffected(result, shared.ErrSongbookNotFound, book.ID()); err != nil {
		return err
	}

	book.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a songbook by ID
func (r *SongbookRepository) Delete(id string) error {
	return softDelete(r.db, "songbooks", id, shared.ErrSongbookNotFound)
}

// List retrieves all songbooks matching the given criteria, excluding soft-deleted songbooks.
//
// Supported criteria: "noodle" (bool).
func (r *SongbookRepository) List(criteria map[string]any) ([]*models.Songbook, error) {
	query := "SELECT " + songbookColumns + " FROM songbooks WHERE deleted_at IS NULL"
	args := []any{}

	if noodle, ok := criteria["noodle"].(bool); ok {
		query += " AND is_noodle_mode = ?"
		args = append(args, noodle)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songbooks: %w", err)
	}
	defer rows.Close()

	var books []*models.Songbook
	for rows.Next() {
		book, err := scanSongbook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return books, nil
}

func scanSongbook(row scanner) (*models.Songbook, error) {
	var (
		id             string
		sequence       int
		sessionKey     string
		title          string
		maxActiveSongs int
		isNoodleMode   bool
		createdAt      time.Time
		updatedAt      time.Time
		deletedAt      sql.NullTime
	)

	err := row.Scan(&id, &sequence, &sessionKey, &title, &maxActiveSongs, &isNoodleMode, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan songbook: %w", err)
	}

	book := models.NewSongbook(sequence, title, maxActiveSongs, isNoodleMode)
	book.SetID(id)
	book.SetSessionKey(sessionKey)
	book.SetCreatedAt(createdAt)
	book.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		book.SetDeletedAt(&deletedAt.Time)
	}

	return book, nil
}
