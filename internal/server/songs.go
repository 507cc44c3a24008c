package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
)

const (
	routeSongs       = "GET /api/songs"
	routeSongSearch  = "GET /api/songs/search"
	routeSong        = "GET /api/songs/{id}"
	routeSongColumns = "GET /api/songs/{id}/columns"
)

type songResponse struct {
	ID        string    `json:"id"`
	Sequence  int       `json:"sequence"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newSongResponse(song *models.Song, withContent bool) songResponse {
	resp := songResponse{
		ID:        song.ID(),
		Sequence:  song.Sequence(),
		Title:     song.Title(),
		Artist:    song.Artist(),
		CreatedAt: song.CreatedAt(),
		UpdatedAt: song.UpdatedAt(),
	}
	if withContent {
		resp.Content = song.Content()
	}
	return resp
}

func newSongResponses(songs []*models.Song) []songResponse {
	out := make([]songResponse, 0, len(songs))
	for _, song := range songs {
		out = append(out, newSongResponse(song, false))
	}
	return out
}

// SongHandler serves the song library and tab column layouts.
type SongHandler struct {
	songs   *repositories.SongRepository
	display shared.DisplayConfig
	logger  *log.Logger
}

// NewSongHandler creates a [SongHandler]. display supplies the default column settings.
func NewSongHandler(songs *repositories.SongRepository, display shared.DisplayConfig, logger *log.Logger) *SongHandler {
	return &SongHandler{songs: songs, display: display, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SongHandler) Routes() []string {
	return []string{routeSongs, routeSongSearch, routeSong, routeSongColumns}
}

func (h *SongHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeSongs:
		h.list(w, r)
	case routeSongSearch:
		h.search(w, r)
	case routeSong:
		h.get(w, r)
	case routeSongColumns:
		h.columns(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *SongHandler) list(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if artist := r.URL.Query().Get("artist"); artist != "" {
		criteria["artist"] = artist
	}

	songs, err := h.songs.List(criteria)
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongResponses(songs))
}

// search returns 404 when nothing matches, so clients can tell "no results" from an empty library.
func (h *SongHandler) search(w http.ResponseWriter, r *http.Request) {
	songs, err := h.songs.Search(r.URL.Query().Get("q"))
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	if len(songs) == 0 {
		writeError(w, http.StatusNotFound, "no songs match the search")
		return
	}
	writeJSON(w, http.StatusOK, newSongResponses(songs))
}

func (h *SongHandler) get(w http.ResponseWriter, r *http.Request) {
	song, err := h.songs.Get(r.PathValue("id"))
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongResponse(song, true))
}

// columns lays out a song's tab. Query parameters: lines, transpose, first, visible, hide_chords.
func (h *SongHandler) columns(w http.ResponseWriter, r *http.Request) {
	song, err := h.songs.Get(r.PathValue("id"))
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	opts := formatter.TabOptions{HideChords: r.URL.Query().Get("hide_chords") == "true"}
	for _, p := range []struct {
		name string
		dst  *int
		def  int
	}{
		{"lines", &opts.LinesPerColumn, h.display.LinesPerColumn},
		{"transpose", &opts.Transpose, 0},
		{"first", &opts.First, 0},
		{"visible", &opts.Columns, 0},
	} {
		if *p.dst, err = queryInt(r, p.name, p.def); err != nil {
			writeFailure(w, h.logger, err)
			return
		}
	}

	view, err := formatter.RenderTab(song.Content(), opts)
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
