package tab

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestFormat(t *testing.T) {
	tt := []struct {
		name  string
		raw   string
		steps int
		want  []string
	}{
		{
			name:  "header lines before first chord line are dropped",
			raw:   "Intro\n[ch]G[/ch] line one\nline two",
			steps: 0,
			want:  []string{" ", "[ch]G[/ch] line one", "line two"},
		},
		{
			name:  "capo and transposition annotation",
			raw:   "Capo: 3\n[ch]Am[/ch] x\ny",
			steps: 2,
			want:  []string{"Capo: 3 transposed 2 steps", "[ch]Am[/ch] x", "y"},
		},
		{
			name:  "empty input yields the annotation and one empty line",
			raw:   "",
			steps: 0,
			want:  []string{" ", ""},
		},
		{
			name:  "negative transposition",
			raw:   "",
			steps: -1,
			want:  []string{" transposed -1 steps", ""},
		},
		{
			name:  "no chord marker keeps every line",
			raw:   "first\nsecond",
			steps: 0,
			want:  []string{" ", "first", "second"},
		},
		{
			name:  "tab wrappers and windows line endings",
			raw:   "[tab]Capo 1\r\n[ch]C[/ch]\r\nla[/tab]",
			steps: 0,
			want:  []string{"Capo 1 ", "[ch]C[/ch]", "la"},
		},
		{
			name:  "wrappers stripped anywhere in the text",
			raw:   "[ch]D[/ch] [tab]mid[/tab]dle\n[tab][/tab]",
			steps: 0,
			want:  []string{" ", "[ch]D[/ch] middle", ""},
		},
		{
			name:  "capo match is case-insensitive and takes the first match",
			raw:   "CAPO 4\ncapo 5\n[ch]E[/ch]",
			steps: 0,
			want:  []string{"CAPO 4 ", "[ch]E[/ch]"},
		},
		{
			name:  "capo line inside the body is still used",
			raw:   "[ch]G[/ch]\nuse a capo on 5",
			steps: 3,
			want:  []string{"use a capo on 5 transposed 3 steps", "[ch]G[/ch]", "use a capo on 5"},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := Format(tc.raw, tc.steps)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Format() = %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("always has an annotation line", func(t *testing.T) {
		for _, raw := range []string{"", "\n", "\r\n", "[tab][/tab]", "x"} {
			if got := Format(raw, 0); len(got) < 1 {
				t.Errorf("Format(%q) returned %d lines", raw, len(got))
			}
		}
	})

	t.Run("wrapper stripping is idempotent", func(t *testing.T) {
		raw := "[tab]Capo 2\n[ch]A[/ch] [tab]x[/tab]\n[/tab]y[tab]"
		body := Format(raw, 0)[1:]
		for _, line := range body {
			if strings.Contains(line, TabOpen) || strings.Contains(line, TabClose) {
				t.Errorf("line %q still contains a tab wrapper", line)
			}
		}

		again := Format(strings.Join(body, "\n"), 0)[1:]
		if !reflect.DeepEqual(again, body) {
			t.Errorf("second pass changed body: %q, want %q", again, body)
		}
	})
}

func TestSplitIntoColumns(t *testing.T) {
	tt := []struct {
		name      string
		lines     []string
		maxLength int
		want      Layout
	}{
		{
			name:      "chord line on last slot moves to next column",
			lines:     []string{"a", "[ch]b", "c", "d"},
			maxLength: 2,
			want:      Layout{{"a"}, {"[ch]b", "c"}, {"d"}},
		},
		{
			name:      "empty input yields one empty column",
			lines:     []string{},
			maxLength: 5,
			want:      Layout{{}},
		},
		{
			name:      "plain lines fill columns evenly",
			lines:     []string{"a", "b", "c", "d", "e"},
			maxLength: 2,
			want:      Layout{{"a", "b"}, {"c", "d"}, {"e"}},
		},
		{
			name:      "shifted column skips a slot",
			lines:     []string{"a", "b", "[ch]c", "d", "e", "f", "g"},
			maxLength: 3,
			want:      Layout{{"a", "b"}, {"[ch]c", "d", "e"}, {"f", "g"}},
		},
		{
			name:      "chord lines not on the last slot stay put",
			lines:     []string{"[ch]a", "b", "[ch]c", "d"},
			maxLength: 2,
			want:      Layout{{"[ch]a", "b"}, {"[ch]c", "d"}},
		},
		{
			name:      "capacity of one never skips a column",
			lines:     []string{"a", "[ch]b", "c", "[ch]d"},
			maxLength: 1,
			want:      Layout{{"a"}, {"[ch]b"}, {"c"}, {"[ch]d"}},
		},
		{
			name:      "everything fits in one column",
			lines:     []string{" ", "[ch]G", "words"},
			maxLength: 10,
			want:      Layout{{" ", "[ch]G", "words"}},
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got, err := SplitIntoColumns(tc.lines, tc.maxLength)
			if err != nil {
				t.Fatalf("SplitIntoColumns() error = %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("SplitIntoColumns() = %q, want %q", got, tc.want)
			}
		})
	}

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		for _, capacity := range []int{0, -1, -20} {
			layout, err := SplitIntoColumns([]string{"a"}, capacity)
			if !errors.Is(err, ErrInvalidCapacity) {
				t.Errorf("SplitIntoColumns(%d) error = %v, want ErrInvalidCapacity", capacity, err)
			}
			if layout != nil {
				t.Errorf("SplitIntoColumns(%d) layout = %q, want nil", capacity, layout)
			}
		}
	})

	t.Run("preserves every line in order", func(t *testing.T) {
		inputs := [][]string{
			{"a", "b", "c"},
			{"[ch]1", "[ch]2", "[ch]3", "[ch]4", "[ch]5"},
			{"x", "[ch]y", "z", "[ch]w", "v", "u", "[ch]t", "s"},
			Format("Capo 1\n[ch]G[/ch]\nla\n[ch]C[/ch]\nla la\n\n[ch]D[/ch]\nend", 1),
		}

		for i, lines := range inputs {
			for capacity := 1; capacity <= 5; capacity++ {
				t.Run(fmt.Sprintf("input %d capacity %d", i, capacity), func(t *testing.T) {
					layout, err := SplitIntoColumns(lines, capacity)
					if err != nil {
						t.Fatalf("SplitIntoColumns() error = %v", err)
					}
					if got := layout.Lines(); !reflect.DeepEqual(got, lines) {
						t.Errorf("lines = %q, want %q", got, lines)
					}
					for c, col := range layout {
						if len(col) > capacity {
							t.Errorf("column %d has %d lines, capacity %d", c, len(col), capacity)
						}
					}
				})
			}
		}
	})

	t.Run("chord lines never end a full column", func(t *testing.T) {
		lines := []string{"a", "[ch]b", "c", "[ch]d", "e", "[ch]f", "g", "h", "[ch]i", "j"}
		for capacity := 2; capacity <= 4; capacity++ {
			layout, err := SplitIntoColumns(lines, capacity)
			if err != nil {
				t.Fatalf("SplitIntoColumns() error = %v", err)
			}
			for c, col := range layout[:len(layout)-1] {
				if len(col) == capacity && HasChord(col[len(col)-1]) {
					t.Errorf("capacity %d: column %d ends with chord line %q", capacity, c, col[len(col)-1])
				}
			}
		}
	})
}

func TestCountColumns(t *testing.T) {
	t.Run("empty tab occupies one column", func(t *testing.T) {
		got, err := CountColumns("", 5)
		if err != nil {
			t.Fatalf("CountColumns() error = %v", err)
		}
		if got != 1 {
			t.Errorf("CountColumns() = %d, want 1", got)
		}
	})

	t.Run("matches split of formatted lines", func(t *testing.T) {
		raw := "Song\nCapo 2\n[ch]G[/ch]\none\n[ch]C[/ch]\ntwo\n[ch]D[/ch]\nthree\nfour"
		for capacity := 1; capacity <= 6; capacity++ {
			layout, err := SplitIntoColumns(Format(raw, 0), capacity)
			if err != nil {
				t.Fatalf("SplitIntoColumns() error = %v", err)
			}
			got, err := CountColumns(raw, capacity)
			if err != nil {
				t.Fatalf("CountColumns() error = %v", err)
			}
			if got != len(layout) {
				t.Errorf("capacity %d: CountColumns() = %d, want %d", capacity, got, len(layout))
			}
		}
	})

	t.Run("ignores transposition", func(t *testing.T) {
		a, _ := CountColumns("[ch]A\nb\nc", 2)
		layout, _ := SplitIntoColumns(Format("[ch]A\nb\nc", 7), 2)
		if a != len(layout) {
			t.Errorf("CountColumns() = %d, want %d", a, len(layout))
		}
	})

	t.Run("rejects non-positive capacity", func(t *testing.T) {
		if _, err := CountColumns("a", 0); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("CountColumns() error = %v, want ErrInvalidCapacity", err)
		}
	})
}

func TestWithoutChords(t *testing.T) {
	t.Run("keeps annotation even when it mentions chords", func(t *testing.T) {
		lines := []string{"[ch]capo[/ch] ", "[ch]G[/ch]", "words", "[ch]C[/ch]", "more"}
		want := []string{"[ch]capo[/ch] ", "words", "more"}
		if got := WithoutChords(lines); !reflect.DeepEqual(got, want) {
			t.Errorf("WithoutChords() = %q, want %q", got, want)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := WithoutChords(nil); len(got) != 0 {
			t.Errorf("WithoutChords(nil) = %q, want empty", got)
		}
	})
}

func TestStripMarkup(t *testing.T) {
	if got := StripMarkup("[ch]Am[/ch]   [ch]G[/ch]"); got != "Am   G" {
		t.Errorf("StripMarkup() = %q, want %q", got, "Am   G")
	}
}
