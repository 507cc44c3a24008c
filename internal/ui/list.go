package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/tab"
)

var _ list.Item = songItem{}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song *models.Song
}

func (i songItem) FilterValue() string { return i.song.Title() + " " + i.song.Artist() }
func (i songItem) Title() string       { return i.song.Title() }
func (i songItem) Description() string {
	desc := fmt.Sprintf("#%d", i.song.Sequence())
	if i.song.Artist() != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Artist())
	}
	if capo := strings.TrimSpace(tab.CapoLine(strings.Split(i.song.Content(), "\n"))); capo != "" {
		desc = fmt.Sprintf("%s • %s", desc, capo)
	}
	return desc
}
