package models

import (
	"fmt"

	"github.com/desertthunder/songbook/internal/shared"
)

// SongEntry is a request for a song within a songbook.
type SongEntry struct {
	record
	songbookID string
	songID     string
	isFlagged  bool
	song       *Song
}

// NewSongEntry creates a [SongEntry] requesting songID in songbookID.
func NewSongEntry(sequence int, songbookID, songID string) *SongEntry {
	return &SongEntry{
		record:     newRecord(sequence),
		songbookID: songbookID,
		songID:     songID,
	}
}

func (e *SongEntry) SongbookID() string { return e.songbookID }
func (e *SongEntry) SongID() string     { return e.songID }
func (e *SongEntry) IsFlagged() bool    { return e.isFlagged }

// Song returns the requested song when it was loaded with the entry.
func (e *SongEntry) Song() *Song { return e.song }

func (e *SongEntry) SetFlagged(flagged bool) { e.isFlagged = flagged }
func (e *SongEntry) SetSong(song *Song)      { e.song = song }

// Validate requires both the songbook and the song reference.
func (e *SongEntry) Validate() error {
	if e.songbookID == "" {
		return fmt.Errorf("%w: song entry songbook is required", shared.ErrValidation)
	}
	if e.songID == "" {
		return fmt.Errorf("%w: song entry song is required", shared.ErrValidation)
	}
	return nil
}
