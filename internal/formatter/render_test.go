package formatter

import (
	"errors"
	"reflect"
	"testing"

	"github.com/desertthunder/songbook/internal/tab"
	th "github.com/desertthunder/songbook/internal/testing"
)

func TestRenderColumns(t *testing.T) {
	tt := []struct {
		name   string
		layout tab.Layout
		opts   RenderOptions
		want   string
	}{
		{
			name:   "pads columns and strips markup",
			layout: tab.Layout{{"[ch]G[/ch]", "hello"}, {"ab"}},
			opts:   RenderOptions{Gutter: 2},
			want:   "G      ab\nhello\n",
		},
		{
			name:   "default gutter",
			layout: tab.Layout{{"a"}, {"b"}},
			want:   "a    b\n",
		},
		{
			name:   "wide runes use terminal cells",
			layout: tab.Layout{{"日本"}, {"x"}},
			opts:   RenderOptions{Gutter: 1},
			want:   "日本 x\n",
		},
		{
			name:   "keep markup",
			layout: tab.Layout{{"[ch]G[/ch]"}},
			opts:   RenderOptions{KeepMarkup: true},
			want:   "[ch]G[/ch]\n",
		},
		{
			name:   "empty column",
			layout: tab.Layout{{}},
			want:   "",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			if got := RenderColumns(tc.layout, tc.opts); got != tc.want {
				t.Errorf("RenderColumns() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRenderTab(t *testing.T) {
	t.Run("window of the layout", func(t *testing.T) {
		view, err := RenderTab(th.SampleTab, TabOptions{LinesPerColumn: 2, Columns: 1, First: 1})
		if err != nil {
			t.Fatalf("RenderTab failed: %v", err)
		}

		if view.Total != 3 {
			t.Errorf("Total = %d, want 3", view.Total)
		}
		if view.Annotation != "Capo 2" {
			t.Errorf("Annotation = %q", view.Annotation)
		}

		want := tab.Layout{{"[ch]Em7[/ch]  [ch]G[/ch]", "Today is gonna be the day"}}
		if !reflect.DeepEqual(view.Layout, want) {
			t.Errorf("Layout = %q, want %q", view.Layout, want)
		}
		if view.Text != "Em7  G\nToday is gonna be the day\n" {
			t.Errorf("Text = %q", view.Text)
		}
	})

	t.Run("all columns by default", func(t *testing.T) {
		view, err := RenderTab(th.SampleTab, TabOptions{LinesPerColumn: 2})
		if err != nil {
			t.Fatalf("RenderTab failed: %v", err)
		}
		if len(view.Layout) != view.Total || view.First != 0 {
			t.Errorf("expected full layout, got %d of %d from %d", len(view.Layout), view.Total, view.First)
		}
	})

	t.Run("hide chords", func(t *testing.T) {
		view, err := RenderTab(th.SampleTab, TabOptions{LinesPerColumn: 2, HideChords: true})
		if err != nil {
			t.Fatalf("RenderTab failed: %v", err)
		}

		want := tab.Layout{
			{"Capo 2 ", "Today is gonna be the day"},
			{"That they're gonna throw it back to you"},
		}
		if !reflect.DeepEqual(view.Layout, want) {
			t.Errorf("Layout = %q, want %q", view.Layout, want)
		}
	})

	t.Run("transpose annotation", func(t *testing.T) {
		view, err := RenderTab(th.SampleTab, TabOptions{LinesPerColumn: 30, Transpose: 3})
		if err != nil {
			t.Fatalf("RenderTab failed: %v", err)
		}
		if view.Annotation != "Capo 2 transposed 3 steps" {
			t.Errorf("Annotation = %q", view.Annotation)
		}
	})

	t.Run("invalid capacity", func(t *testing.T) {
		_, err := RenderTab(th.SampleTab, TabOptions{LinesPerColumn: 0})
		if !errors.Is(err, tab.ErrInvalidCapacity) {
			t.Errorf("expected ErrInvalidCapacity, got %v", err)
		}
	})

	t.Run("negative visible columns", func(t *testing.T) {
		_, err := RenderTab(th.SampleTab, TabOptions{LinesPerColumn: 5, Columns: -1})
		if !errors.Is(err, tab.ErrInvalidCapacity) {
			t.Errorf("expected ErrInvalidCapacity, got %v", err)
		}
	})
}
