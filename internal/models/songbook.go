package models

import (
	"fmt"
	"strings"

	"github.com/desertthunder/songbook/internal/shared"
)

// Songbook is a party session that guests add song requests to.
//
// Noodle mode songbooks are free-form jam sessions; the rest run as timed power hours.
type Songbook struct {
	record
	sessionKey     string
	title          string
	maxActiveSongs int
	isNoodleMode   bool
}

// NewSongbook creates a [Songbook] with a freshly generated session key.
//
// A maxActiveSongs of zero means unlimited.
func NewSongbook(sequence int, title string, maxActiveSongs int, isNoodleMode bool) *Songbook {
	return &Songbook{
		record:         newRecord(sequence),
		sessionKey:     shared.GenerateSessionKey(),
		title:          strings.TrimSpace(title),
		maxActiveSongs: maxActiveSongs,
		isNoodleMode:   isNoodleMode,
	}
}

func (b *Songbook) SessionKey() string  { return b.sessionKey }
func (b *Songbook) Title() string       { return b.title }
func (b *Songbook) MaxActiveSongs() int { return b.maxActiveSongs }
func (b *Songbook) IsNoodleMode() bool  { return b.isNoodleMode }

func (b *Songbook) SetSessionKey(key string) { b.sessionKey = key }
func (b *Songbook) SetTitle(title string)    { b.title = strings.TrimSpace(title) }
func (b *Songbook) SetMaxActiveSongs(n int)  { b.maxActiveSongs = n }
func (b *Songbook) SetNoodleMode(on bool)    { b.isNoodleMode = on }

// Mode names the songbook's session style.
func (b *Songbook) Mode() string {
	if b.isNoodleMode {
		return "songbook"
	}
	return "power hour"
}

// Validate requires a title and session key and rejects a negative song limit.
func (b *Songbook) Validate() error {
	switch {
	case b.title == "":
		return fmt.Errorf("%w: songbook title is required", shared.ErrValidation)
	case b.sessionKey == "":
		return fmt.Errorf("%w: songbook session key is required", shared.ErrValidation)
	case b.maxActiveSongs < 0:
		return fmt.Errorf("%w: max active songs cannot be negative (%d)", shared.ErrValidation, b.maxActiveSongs)
	}
	return nil
}

// SongbookExport bundles a songbook with its requests for export.
type SongbookExport struct {
	Songbook *Songbook
	Entries  []*SongEntry
}

// Flagged counts the flagged entries in the export.
func (e *SongbookExport) Flagged() int {
	n := 0
	for _, entry := range e.Entries {
		if entry.IsFlagged() {
			n++
		}
	}
	return n
}
