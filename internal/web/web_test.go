package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
	th "github.com/desertthunder/songbook/internal/testing"
)

func setupHandler(t *testing.T) (http.Handler, *models.Song) {
	t.Helper()

	db := th.MustOpenDB(t)
	songs := repositories.NewSongRepository(db)

	song := models.NewSong(0, "Wonderwall", "Oasis", th.SampleTab)
	if err := songs.Create(song); err != nil {
		t.Fatalf("failed to create song: %v", err)
	}

	display := shared.DisplayConfig{LinesPerColumn: 2, ColumnsToDisplay: 1, ShowChords: true}
	handler, err := NewHandler(songs, display, shared.NewLogger(io.Discard))
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}

	mux := http.NewServeMux()
	for _, route := range handler.Routes() {
		mux.Handle(route, handler)
	}
	return mux, song
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndex(t *testing.T) {
	h, song := setupHandler(t)

	t.Run("lists songs", func(t *testing.T) {
		rec := get(t, h, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `href="/songs/`+song.ID()+`"`) {
			t.Errorf("expected link to song, got:\n%s", rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), "Oasis - Wonderwall") {
			t.Error("expected song name")
		}
	})

	t.Run("search without results", func(t *testing.T) {
		rec := get(t, h, "/?q=zeppelin")
		if !strings.Contains(rec.Body.String(), "No songs found.") {
			t.Errorf("expected empty state, got:\n%s", rec.Body.String())
		}
	})
}

func TestSongPage(t *testing.T) {
	h, song := setupHandler(t)
	base := "/songs/" + song.ID()

	t.Run("first page", func(t *testing.T) {
		rec := get(t, h, base)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		body := rec.Body.String()
		if !strings.Contains(body, "Columns 1–1 of 3") {
			t.Errorf("expected column position, got:\n%s", body)
		}
		if strings.Contains(body, "Previous") {
			t.Error("first page should not link back")
		}
		if !strings.Contains(body, "first=2") {
			t.Error("expected next link to jump two columns")
		}
	})

	t.Run("chords are highlighted", func(t *testing.T) {
		body := get(t, h, base+"?first=1").Body.String()
		if !strings.Contains(body, `<span class="chord">Em7</span>`) {
			t.Errorf("expected highlighted chord, got:\n%s", body)
		}
		if !strings.Contains(body, "Previous") {
			t.Error("expected previous link")
		}
	})

	t.Run("hide chords", func(t *testing.T) {
		body := get(t, h, base+"?chords=false&first=1").Body.String()
		if strings.Contains(body, "Em7") {
			t.Error("chord lines should be hidden")
		}
		if !strings.Contains(body, "Show chords") {
			t.Error("expected toggle to offer showing chords")
		}
	})

	t.Run("transpose", func(t *testing.T) {
		body := get(t, h, base+"?transpose=2").Body.String()
		if !strings.Contains(body, "Capo 2 transposed 2 steps") {
			t.Errorf("expected transposition annotation, got:\n%s", body)
		}
	})

	t.Run("unknown song", func(t *testing.T) {
		if rec := get(t, h, "/songs/missing"); rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})
}

func TestHighlightChords(t *testing.T) {
	got := string(highlightChords("<b>[ch]G[/ch]"))
	want := `&lt;b&gt;<span class="chord">G</span>`
	if got != want {
		t.Errorf("highlightChords() = %q, want %q", got, want)
	}
}
