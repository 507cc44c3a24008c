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

const songColumns = "id, sequence, title, artist, content, created_at, updated_at, deleted_at"

// SongRepository implements models.Repository[*models.Song] for the song library.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song into the database with generated ID and sequence
func (r *SongRepository) Create(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return err
	}

	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO songs (id, sequence, title, artist, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		song.Title(),
		song.Artist(),
		song.Content(),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	song.SetID(id)
	song.SetSequence(sequence)
	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE id = ? AND deleted_at IS NULL"

	song, err := scanSong(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	return song, err
}

// GetBySequence retrieves a song by its human-readable sequence number
func (r *SongRepository) GetBySequence(sequence int) (*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE sequence = ? AND deleted_at IS NULL"

	song, err := scanSong(r.db.QueryRow(query, sequence))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: #%d", shared.ErrSongNotFound, sequence)
	}
	return song, err
}

// Update modifies an existing song in the database
func (r *SongRepository) Update(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return err
	}

	now := time.Now()

	query := `
		UPDATE songs
		SET title = ?, artist = ?, content = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, song.Title(), song.Artist(), song.Content(), now, song.ID())
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	if err := expectAffected(result, shared.ErrSongNotFound, song.ID()); err != nil {
		return err
	}

	song.SetUpdatedAt(now)
	return nil
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(id string) error {
	return softDelete(r.db, "songs", id, shared.ErrSongNotFound)
}

// List retrieves all songs matching the given criteria, excluding soft-deleted songs.
//
// Supported criteria: "artist" (exact, case-insensitive).
func (r *SongRepository) List(criteria map[string]any) ([]*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE deleted_at IS NULL"
	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ? COLLATE NOCASE"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	return r.query(query, args...)
}

// likeEscaper makes a search term match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Search finds songs whose title or artist contains query, case-insensitively.
func (r *SongRepository) Search(q string) ([]*models.Song, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fmt.Errorf("%w: search query is empty", shared.ErrInvalidInput)
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	query := "SELECT " + songColumns + ` FROM songs
		WHERE deleted_at IS NULL AND (LOWER(title) LIKE ? ESCAPE '\' OR LOWER(artist) LIKE ? ESCAPE '\')
		ORDER BY title ASC, sequence ASC`

	return r.query(query, pattern, pattern)
}

// FindByKey returns the live song matching title and artist after normalization, if any.
func (r *SongRepository) FindByKey(title, artist string) (*models.Song, error) {
	songs, err := r.List(nil)
	if err != nil {
		return nil, err
	}

	key := shared.NormalizeSongKey(title, artist)
	for _, song := range songs {
		if song.Key() == key {
			return song, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, key)
}

func (r *SongRepository) query(query string, args ...any) ([]*models.Song, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// scanSong scans a row selected with songColumns into a [models.Song]
func scanSong(row scanner) (*models.Song, error) {
	var (
		id        string
		sequence  int
		title     string
		artist    string
		content   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &title, &artist, &content, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song := models.NewSong(sequence, title, artist, content)
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}

	return song, nil
}
