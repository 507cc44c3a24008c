package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
)

const (
	routeSongbooks       = "GET /api/songbooks"
	routeSongbookCreate  = "POST /api/songbooks"
	routeSongbook        = "GET /api/songbooks/{key}"
	routeSongbookDetails = "GET /api/songbooks/{key}/details"
	routeSongbookStats   = "GET /api/songbooks/{key}/stats"
	routeEntryCreate     = "POST /api/song_entries"
	routeEntryUpdate     = "PATCH /api/song_entries/{id}"
	routeEntryDelete     = "DELETE /api/song_entries/{id}"
)

type songbookResponse struct {
	ID             string    `json:"id"`
	SessionKey     string    `json:"session_key"`
	Title          string    `json:"title"`
	MaxActiveSongs int       `json:"max_active_songs"`
	IsNoodleMode   bool      `json:"is_noodle_mode"`
	TotalSongs     int       `json:"total_songs"`
	CreatedAt      time.Time `json:"created_at"`
}

type songEntryResponse struct {
	ID         string        `json:"id"`
	Sequence   int           `json:"sequence"`
	SongbookID string        `json:"songbook_id"`
	SongID     string        `json:"song_id"`
	IsFlagged  bool          `json:"is_flagged"`
	Song       *songResponse `json:"song,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}

type songbookDetailsResponse struct {
	songbookResponse
	SongEntries []songEntryResponse `json:"song_entries"`
}

type songbookStatsResponse struct {
	TotalSongs   int `json:"total_songs"`
	FlaggedSongs int `json:"flagged_songs"`
}

type createSongbookRequest struct {
	Title          string `json:"title"`
	MaxActiveSongs int    `json:"max_active_songs"`
	IsNoodleMode   bool   `json:"is_noodle_mode"`
}

type createEntryRequest struct {
	SongbookID string `json:"songbook_id"`
	SongID     string `json:"song_id"`
}

type updateEntryRequest struct {
	IsFlagged bool `json:"is_flagged"`
}

func newSongbookResponse(book *models.Songbook, total int) songbookResponse {
	return songbookResponse{
		ID:             book.ID(),
		SessionKey:     book.SessionKey(),
		Title:          book.Title(),
		MaxActiveSongs: book.MaxActiveSongs(),
		IsNoodleMode:   book.IsNoodleMode(),
		TotalSongs:     total,
		CreatedAt:      book.CreatedAt(),
	}
}

func newSongEntryResponse(entry *models.SongEntry) songEntryResponse {
	resp := songEntryResponse{
		ID:         entry.ID(),
		Sequence:   entry.Sequence(),
		SongbookID: entry.SongbookID(),
		SongID:     entry.SongID(),
		IsFlagged:  entry.IsFlagged(),
		CreatedAt:  entry.CreatedAt(),
	}
	if song := entry.Song(); song != nil {
		s := newSongResponse(song, false)
		resp.Song = &s
	}
	return resp
}

// SongbookHandler serves songbook sessions and the song requests made in them.
type SongbookHandler struct {
	books   *repositories.SongbookRepository
	entries *repositories.SongEntryRepository
	logger  *log.Logger
}

// NewSongbookHandler creates a [SongbookHandler]
func NewSongbookHandler(books *repositories.SongbookRepository, entries *repositories.SongEntryRepository, logger *log.Logger) *SongbookHandler {
	return &SongbookHandler{books: books, entries: entries, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SongbookHandler) Routes() []string {
	return []string{
		routeSongbooks, routeSongbookCreate, routeSongbook, routeSongbookDetails, routeSongbookStats,
		routeEntryCreate, routeEntryUpdate, routeEntryDelete,
	}
}

func (h *SongbookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeSongbooks:
		h.list(w, r)
	case routeSongbookCreate:
		h.create(w, r)
	case routeSongbook:
		h.get(w, r)
	case routeSongbookDetails:
		h.details(w, r)
	case routeSongbookStats:
		h.stats(w, r)
	case routeEntryCreate:
		h.request(w, r)
	case routeEntryUpdate:
		h.flag(w, r)
	case routeEntryDelete:
		h.remove(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *SongbookHandler) list(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.List(nil)
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	out := make([]songbookResponse, 0, len(books))
	for _, book := range books {
		total, _, err := h.entries.Stats(book.ID())
		if err != nil {
			writeFailure(w, h.logger, err)
			return
		}
		out = append(out, newSongbookResponse(book, total))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *SongbookHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSongbookRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	book := models.NewSongbook(0, req.Title, req.MaxActiveSongs, req.IsNoodleMode)
	if err := h.books.Create(book); err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	h.logger.Info("songbook created", "session", book.SessionKey(), "mode", book.Mode())
	writeJSON(w, http.StatusCreated, newSongbookResponse(book, 0))
}

func (h *SongbookHandler) get(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.GetBySessionKey(r.PathValue("key"))
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	total, _, err := h.entries.Stats(book.ID())
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongbookResponse(book, total))
}

func (h *SongbookHandler) details(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.GetBySessionKey(r.PathValue("key"))
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	entries, err := h.entries.ListBySongbook(book.ID())
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	resp := songbookDetailsResponse{
		songbookResponse: newSongbookResponse(book, len(entries)),
		SongEntries:      make([]songEntryResponse, 0, len(entries)),
	}
	for _, entry := range entries {
		resp.SongEntries = append(resp.SongEntries, newSongEntryResponse(entry))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *SongbookHandler) stats(w http.ResponseWriter, r *http.Request) {
	book, err := h.books.GetBySessionKey(r.PathValue("key"))
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	total, flagged, err := h.entries.Stats(book.ID())
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, songbookStatsResponse{TotalSongs: total, FlaggedSongs: flagged})
}

// request adds a song to a songbook. A repeat request for the same song answers 409.
func (h *SongbookHandler) request(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	entry := models.NewSongEntry(0, req.SongbookID, req.SongID)
	if err := h.entries.Create(entry); err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSongEntryResponse(entry))
}

func (h *SongbookHandler) flag(w http.ResponseWriter, r *http.Request) {
	var req updateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	id := r.PathValue("id")
	if err := h.entries.SetFlagged(id, req.IsFlagged); err != nil {
		writeFailure(w, h.logger, err)
		return
	}

	entry, err := h.entries.Get(id)
	if err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongEntryResponse(entry))
}

func (h *SongbookHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.entries.Delete(r.PathValue("id")); err != nil {
		writeFailure(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
