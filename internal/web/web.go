package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tab"
)

const (
	routeIndex = "GET /{$}"
	routeSong  = "GET /songs/{id}"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{"chords": highlightChords}

// Handler renders the song list and paged tab views as HTML.
type Handler struct {
	songs   *repositories.SongRepository
	display shared.DisplayConfig
	logger  *log.Logger
	pages   map[string]*template.Template
}

// NewHandler parses the embedded templates and creates a [Handler].
func NewHandler(songs *repositories.SongRepository, display shared.DisplayConfig, logger *log.Logger) (*Handler, error) {
	pages := map[string]*template.Template{}
	for _, name := range []string{"songs", "tab"} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Handler{songs: songs, display: display, logger: logger, pages: pages}, nil
}

// Routes returns the HTTP routes this handler serves.
func (h *Handler) Routes() []string {
	return []string{routeIndex, routeSong}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case routeIndex:
		h.index(w, r)
	case routeSong:
		h.song(w, r)
	default:
		http.NotFound(w, r)
	}
}

type indexPage struct {
	Title string
	Query string
	Songs []*models.Song
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	var (
		songs []*models.Song
		err   error
	)
	if query == "" {
		songs, err = h.songs.List(nil)
	} else {
		songs, err = h.songs.Search(query)
	}
	if err != nil {
		h.fail(w, err)
		return
	}

	h.render(w, "songs", indexPage{Title: "Songs", Query: query, Songs: songs})
}

type tabPage struct {
	Title      string
	Song       *models.Song
	Columns    tab.Layout
	From       int
	To         int
	Total      int
	ShowChords bool
	PrevURL    string
	NextURL    string
	ChordsURL  string
	UpURL      string
	DownURL    string
}

// tabState is the view state carried in the query string.
type tabState struct {
	first     int
	transpose int
	chords    bool
}

func (s tabState) url(id string) string {
	v := url.Values{}
	v.Set("first", strconv.Itoa(s.first))
	v.Set("transpose", strconv.Itoa(s.transpose))
	v.Set("chords", strconv.FormatBool(s.chords))
	return "/songs/" + url.PathEscape(id) + "?" + v.Encode()
}

func (h *Handler) parseState(r *http.Request) tabState {
	q := r.URL.Query()
	state := tabState{chords: h.display.ShowChords}

	if n, err := strconv.Atoi(q.Get("first")); err == nil {
		state.first = n
	}
	if n, err := strconv.Atoi(q.Get("transpose")); err == nil {
		state.transpose = n
	}
	if b, err := strconv.ParseBool(q.Get("chords")); err == nil {
		state.chords = b
	}
	return state
}

func (h *Handler) song(w http.ResponseWriter, r *http.Request) {
	song, err := h.songs.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}

	state := h.parseState(r)

	lines := tab.Format(song.Content(), state.transpose)
	if !state.chords {
		lines = tab.WithoutChords(lines)
	}

	layout, err := tab.SplitIntoColumns(lines, h.display.LinesPerColumn)
	if err != nil {
		h.fail(w, err)
		return
	}

	viewport, err := tab.NewViewport(h.display.ColumnsToDisplay, len(layout))
	if err != nil {
		h.fail(w, err)
		return
	}
	viewport.SetFirst(state.first)
	state.first = viewport.First()

	window := viewport.Window(layout)
	page := tabPage{
		Title:      song.Title(),
		Song:       song,
		Columns:    window,
		From:       state.first + 1,
		To:         state.first + len(window),
		Total:      len(layout),
		ShowChords: state.chords,
	}

	if prev := *viewport; prev.Prev() {
		page.PrevURL = tabState{prev.First(), state.transpose, state.chords}.url(song.ID())
	}
	if next := *viewport; next.Next() {
		page.NextURL = tabState{next.First(), state.transpose, state.chords}.url(song.ID())
	}
	page.ChordsURL = tabState{0, state.transpose, !state.chords}.url(song.ID())
	page.UpURL = tabState{state.first, state.transpose + 1, state.chords}.url(song.ID())
	page.DownURL = tabState{state.first, state.transpose - 1, state.chords}.url(song.ID())

	h.render(w, "tab", page)
}

func (h *Handler) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.fail(w, fmt.Errorf("failed to render %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, tab.ErrInvalidCapacity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("page failed", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// highlightChords escapes line and wraps chord markup in styled spans.
func highlightChords(line string) template.HTML {
	escaped := template.HTMLEscapeString(line)
	escaped = strings.ReplaceAll(escaped, tab.ChordOpen, `<span class="chord">`)
	escaped = strings.ReplaceAll(escaped, tab.ChordClose, "</span>")
	return template.HTML(escaped)
}
