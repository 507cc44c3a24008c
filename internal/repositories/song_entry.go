package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

const songEntryColumns = "id, sequence, songbook_id, song_id, is_flagged, created_at, updated_at, deleted_at"

// SongEntryRepository implements models.Repository[*models.SongEntry] for songbook requests
type SongEntryRepository struct {
	db *sql.DB
}

// NewSongEntryRepository creates a new SongEntryRepository with the given database connection
func NewSongEntryRepository(db *sql.DB) *SongEntryRepository {
	return &SongEntryRepository{db: db}
}

// Create records a request for a song in a songbook.
//
// Both the songbook and the song must exist. A song that already has a live
// entry in the songbook returns [shared.ErrAlreadyRequested].
func (r *SongEntryRepository) Create(entry *models.SongEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	if ok, err := exists(r.db, "songbooks", entry.SongbookID()); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s", shared.ErrSongbookNotFound, entry.SongbookID())
	}

	if ok, err := exists(r.db, "songs", entry.SongID()); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, entry.SongID())
	}

	sequence, err := NextSequence(r.db, "song_entries")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()

	query := `
		INSERT INTO song_entries (id, sequence, songbook_id, song_id, is_flagged, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		entry.SongbookID(),
		entry.SongID(),
		entry.IsFlagged(),
		entry.CreatedAt(),
		entry.UpdatedAt(),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: song %s in songbook %s", shared.ErrAlreadyRequested, entry.SongID(), entry.SongbookID())
	}
	if err != nil {
		return fmt.Errorf("failed to insert song entry: %w", err)
	}

	entry.SetID(id)
	entry.SetSequence(sequence)
	return nil
}

// Get retrieves a song entry by ID, excluding soft-deleted entries
func (r *SongEntryRepository) Get(id string) (*models.SongEntry, error) {
	query := "SELECT " + songEntryColumns + " FROM song_entries WHERE id = ? AND deleted_at IS NULL"

	entry, err := scanSongEntry(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrEntryNotFound, id)
	}
	return entry, err
}

// Update persists the entry's flag. Songbook and song membership is immutable.
func (r *SongEntryRepository) Update(entry *models.SongEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if err := r.SetFlagged(entry.ID(), entry.IsFlagged()); err != nil {
		return err
	}
	entry.SetUpdatedAt(time.Now())
	return nil
}

// SetFlagged marks or clears the flag on an entry
func (r *SongEntryRepository) SetFlagged(id string, flagged bool) error {
	query := "UPDATE song_entries SET is_flagged = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL"

	result, err := r.db.Exec(query, flagged, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update song entry: %w", err)
	}

	return expectAffected(result, shared.ErrEntryNotFound, id)
}

// Delete soft-deletes a song entry by ID, allowing the song to be requested again
func (r *SongEntryRepository) Delete(id string) error {
	return softDelete(r.db, "song_entries", id, shared.ErrEntryNotFound)
}

// List retrieves all entries matching the given criteria, excluding soft-deleted entries.
//
// Supported criteria: "songbook_id" (string), "flagged" (bool).
func (r *SongEntryRepository) List(criteria map[string]any) ([]*models.SongEntry, error) {
	query := "SELECT " + songEntryColumns + " FROM song_entries WHERE deleted_at IS NULL"
	args := []any{}

	if songbookID, ok := criteria["songbook_id"].(string); ok && songbookID != "" {
		query += " AND songbook_id = ?"
		args = append(args, songbookID)
	}

	if flagged, ok := criteria["flagged"].(bool); ok {
		query += " AND is_flagged = ?"
		args = append(args, flagged)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query song entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.SongEntry
	for rows.Next() {
		entry, err := scanSongEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// ListBySongbook returns a songbook's live entries in request order with their songs attached.
//
// Entries whose song has since been deleted are omitted.
func (r *SongEntryRepository) ListBySongbook(songbookID string) ([]*models.SongEntry, error) {
	query := `
		SELECT e.id, e.sequence, e.songbook_id, e.song_id, e.is_flagged, e.created_at, e.updated_at, e.deleted_at,
		       s.id, s.sequence, s.title, s.artist, s.content, s.created_at, s.updated_at, s.deleted_at
		FROM song_entries e
		INNER JOIN songs s ON s.id = e.song_id
		WHERE e.songbook_id = ? AND e.deleted_at IS NULL AND s.deleted_at IS NULL
		ORDER BY e.sequence ASC
	`

	rows, err := r.db.Query(query, songbookID)
	if err != nil {
		return nil, fmt.Errorf("failed to query songbook entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.SongEntry
	for rows.Next() {
		entry, err := scanSongEntryWithSong(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Stats returns the number of live entries in a songbook and how many of them are flagged.
//
// Counts the same entries as ListBySongbook, so requests for deleted songs are skipped.
func (r *SongEntryRepository) Stats(songbookID string) (total, flagged int, err error) {
	query := `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN e.is_flagged THEN 1 ELSE 0 END), 0)
		FROM song_entries e
		INNER JOIN songs s ON s.id = e.song_id
		WHERE e.songbook_id = ? AND e.deleted_at IS NULL AND s.deleted_at IS NULL
	`

	if err := r.db.QueryRow(query, songbookID).Scan(&total, &flagged); err != nil {
		return 0, 0, fmt.Errorf("failed to count song entries: %w", err)
	}
	return total, flagged, nil
}

func scanSongEntry(row scanner) (*models.SongEntry, error) {
	var (
		id         string
		sequence   int
		songbookID string
		songID     string
		isFlagged  bool
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &songbookID, &songID, &isFlagged, &createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song entry: %w", err)
	}

	entry := models.NewSongEntry(sequence, songbookID, songID)
	entry.SetID(id)
	entry.SetFlagged(isFlagged)
	entry.SetCreatedAt(createdAt)
	entry.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		entry.SetDeletedAt(&deletedAt.Time)
	}

	return entry, nil
}

func scanSongEntryWithSong(rows *sql.Rows) (*models.SongEntry, error) {
	var (
		id, songbookID, songID         string
		sequence                       int
		isFlagged                      bool
		createdAt, updatedAt           time.Time
		deletedAt                      sql.NullTime
		songRowID, title, artist, body string
		songSequence                   int
		songCreatedAt, songUpdatedAt   time.Time
		songDeletedAt                  sql.NullTime
	)

	err := rows.Scan(
		&id, &sequence, &songbookID, &songID, &isFlagged, &createdAt, &updatedAt, &deletedAt,
		&songRowID, &songSequence, &title, &artist, &body, &songCreatedAt, &songUpdatedAt, &songDeletedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan songbook entry: %w", err)
	}

	song := models.NewSong(songSequence, title, artist, body)
	song.SetID(songRowID)
	song.SetCreatedAt(songCreatedAt)
	song.SetUpdatedAt(songUpdatedAt)

	entry := models.NewSongEntry(sequence, songbookID, songID)
	entry.SetID(id)
	entry.SetFlagged(isFlagged)
	entry.SetCreatedAt(createdAt)
	entry.SetUpdatedAt(updatedAt)
	entry.SetSong(song)

	return entry, nil
}
