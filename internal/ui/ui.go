package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tab"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SongListView ViewState = iota
	TabView
)

// Loader fetches the songs shown in the list view along with a list title.
type Loader func(ctx context.Context) (string, []*models.Song, error)

// LibraryLoader lists every song in the library.
func LibraryLoader(songs *repositories.SongRepository) Loader {
	return func(ctx context.Context) (string, []*models.Song, error) {
		all, err := songs.List(nil)
		return "Songs", all, err
	}
}

// SongbookLoader lists the songs requested in the songbook with the given session key, in request order.
func SongbookLoader(books *repositories.SongbookRepository, entries *repositories.SongEntryRepository, sessionKey string) Loader {
	return func(ctx context.Context) (string, []*models.Song, error) {
		book, err := books.GetBySessionKey(sessionKey)
		if err != nil {
			return "", nil, err
		}

		requested, err := entries.ListBySongbook(book.ID())
		if err != nil {
			return "", nil, err
		}

		songs := make([]*models.Song, 0, len(requested))
		for _, entry := range requested {
			songs = append(songs, entry.Song())
		}
		return fmt.Sprintf("%s (%s)", book.Title(), book.SessionKey()), songs, nil
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	load      Loader
	display   shared.DisplayConfig
	logger    *log.Logger
	width     int
	height    int
	songList  list.Model
	ready     bool
	song      *models.Song
	transpose int
	chords    bool
	layout    tab.Layout
	viewport  *tab.Viewport
	err       error
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, load Loader, display shared.DisplayConfig, logger *log.Logger) *Model {
	return &Model{
		ctx:     ctx,
		view:    SongListView,
		load:    load,
		display: display,
		logger:  logger,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init initializes the TUI by fetching songs from the [Loader].
func (m *Model) Init() tea.Cmd {
	return m.fetchSongs()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeList()
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case SongListView:
			return m.handleSongListKeys(msg)
		case TabView:
			return m.handleTabKeys(msg)
		}

	case Msg:
		switch msg.kind {
		case MsgSongsFetched:
			fetched := msg.data.(songsFetched)
			if fetched.err != nil {
				m.err = fetched.err
				return m, nil
			}

			items := make([]list.Item, len(fetched.songs))
			for i, song := range fetched.songs {
				items[i] = songItem{song: song}
			}
			m.songList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.songList.Title = fetched.title
			m.ready = true
			m.resizeList()
			m.logger.Debug("songs fetched", "count", len(items))
			return m, nil
		}
	}

	if m.view == SongListView && m.ready {
		var cmd tea.Cmd
		m.songList, cmd = m.songList.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SongListView:
		return m.renderSongList()
	case TabView:
		return m.renderTab()
	default:
		return ""
	}
}

func (m *Model) handleSongListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.err != nil || !m.ready {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.songList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.songList.SelectedItem().(songItem); ok {
				m.openSong(item.song)
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleTabKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SongListView
		m.song = nil
		m.err = nil
	case m.err != nil:
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.viewport.Prev()
	case key.Matches(msg, m.keys.next):
		m.viewport.Next()
	case key.Matches(msg, m.keys.up):
		m.transpose++
		m.relayout()
	case key.Matches(msg, m.keys.down):
		m.transpose--
		m.relayout()
	case key.Matches(msg, m.keys.chords):
		m.chords = !m.chords
		m.relayout()
	}
	return m, nil
}

func (m *Model) openSong(song *models.Song) {
	m.song = song
	m.transpose = 0
	m.chords = m.display.ShowChords
	m.viewport = nil
	m.view = TabView
	m.relayout()
}

// relayout recomputes the columns of the open song after any change to transposition or chord visibility.
func (m *Model) relayout() {
	lines := tab.Format(m.song.Content(), m.transpose)
	if !m.chords {
		lines = tab.WithoutChords(lines)
	}

	layout, err := tab.SplitIntoColumns(lines, m.display.LinesPerColumn)
	if err != nil {
		m.err = err
		return
	}
	m.layout = layout

	if m.viewport == nil {
		viewport, err := tab.NewViewport(m.display.ColumnsToDisplay, len(layout))
		if err != nil {
			m.err = err
			return
		}
		m.viewport = viewport
	} else {
		m.viewport.Resize(len(layout))
	}

	m.logger.Debug("layout", "song", m.song.ID(), "columns", len(layout), "transpose", m.transpose, "chords", m.chords)
}

func (m *Model) resizeList() {
	if m.ready && m.width > 0 && m.height > 0 {
		m.songList.SetSize(m.width-4, m.height-8)
	}
}

func (m *Model) fetchSongs() tea.Cmd {
	return func() tea.Msg {
		title, songs, err := m.load(m.ctx)
		return songsFetchedMsg(title, songs, err)
	}
}

func (m *Model) renderSongList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.songList.View(), helpView)
}

func (m *Model) renderTab() string {
	title := styles.title.Render(m.song.String())

	window := m.viewport.Window(m.layout)
	body := styles.tab.Render(formatter.RenderColumns(window, formatter.RenderOptions{}))

	first := m.viewport.First()
	status := styles.status.Render(fmt.Sprintf("Columns %d–%d of %d", first+1, first+len(window), len(m.layout)))
	if !m.chords {
		status += styles.warn.Render("  chords hidden")
	}

	helpKeys := []key.Binding{m.keys.prev, m.keys.next, m.keys.up, m.keys.down, m.keys.chords, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s\n%s", title, body, status, styles.help.Render(helpView))
}
