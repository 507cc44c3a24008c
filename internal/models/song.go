package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/songbook/internal/shared"
)

// Song is a library entry holding raw tab content.
type Song struct {
	record
	title   string
	artist  string
	content string
}

// NewSong creates a [Song] that has not been persisted yet.
func NewSong(sequence int, title, artist, content string) *Song {
	return &Song{
		record:  newRecord(sequence),
		title:   strings.TrimSpace(title),
		artist:  strings.TrimSpace(artist),
		content: content,
	}
}

func (s *Song) Title() string   { return s.title }
func (s *Song) Artist() string  { return s.artist }
func (s *Song) Content() string { return s.content }

func (s *Song) SetTitle(title string)     { s.title = strings.TrimSpace(title) }
func (s *Song) SetArtist(artist string)   { s.artist = strings.TrimSpace(artist) }
func (s *Song) SetContent(content string) { s.content = content }

// Key returns the normalized title/artist key used to spot duplicate songs.
func (s *Song) Key() string {
	return shared.NormalizeSongKey(s.title, s.artist)
}

// String renders the song as "Artist - Title", or just the title when there is no artist.
func (s *Song) String() string {
	if s.artist == "" {
		return s.title
	}
	return fmt.Sprintf("%s - %s", s.artist, s.title)
}

// Validate requires a title.
func (s *Song) Validate() error {
	if s.title == "" {
		return fmt.Errorf("%w: song title is required", shared.ErrValidation)
	}
	return nil
}
