package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tab"
	tu "github.com/desertthunder/songbook/internal/testing"
)

const creepFile = "---\ntitle: Creep\nartist: Radiohead\n---\n[tab][ch]G[/ch]\nWhen you were here before[/tab]"

func TestTabCommands(t *testing.T) {
	dir := t.TempDir()
	path := tu.MustWriteFile(t, dir, "wonderwall.txt", tu.SampleTab)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"count", []string{"tab", "count", "--lines", "2", path}, []string{"3\n"}},
		{"count json", []string{"tab", "count", "--lines", "2", "--json", path}, []string{`{"total_columns":3}`}},
		{"format keeps the annotation space", []string{"tab", "format", path}, []string{"Capo 2 \n[ch]Em7[/ch]  [ch]G[/ch]\n"}},
		{"format transposed", []string{"tab", "format", "--transpose", "3", path}, []string{"Capo 2 transposed 3 steps\n"}},
		{"format without chords", []string{"tab", "format", "--hide-chords", path}, []string{"Capo 2 \nToday is gonna be the day\n"}},
		{"columns", []string{"tab", "columns", "--lines", "2", path}, []string{"── column 3 ──\n[ch]Dsus4[/ch]  [ch]A7sus4[/ch]\n"}},
		{"columns json", []string{"tab", "columns", "--lines", "2", "--json", path}, []string{`"total_columns":3`, `"annotation":"Capo 2"`}},
		{"render window", []string{"tab", "render", "--lines", "2", "--columns", "2", path}, []string{"Capo 2     Em7  G\n", "columns 1–2 of 3"}},
		{"render from column", []string{"tab", "render", "--lines", "2", "--columns", "1", "--first", "2", path}, []string{"Dsus4  A7sus4\n", "columns 3–3 of 3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := run(runner, tt.args...); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			for _, want := range tt.want {
				if !strings.Contains(output.String(), want) {
					t.Errorf("output missing %q:\n%s", want, output.String())
				}
			}
		})
	}

	t.Run("reads stdin without a file", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Input: strings.NewReader(tu.SampleTab), Output: output})

		if err := run(runner, "tab", "count", "--lines", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "3\n" {
			t.Errorf("expected 3 columns, got %q", output.String())
		}
	})

	t.Run("uses configured lines per column", func(t *testing.T) {
		output := &bytes.Buffer{}
		config := shared.DefaultConfig()
		config.Display.LinesPerColumn = 2
		runner := NewRunner(RunnerOpts{Config: config, Output: output})

		if err := run(runner, "tab", "count", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "3\n" {
			t.Errorf("expected 3 columns, got %q", output.String())
		}
	})

	t.Run("front matter is ignored", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})
		creep := tu.MustWriteFile(t, dir, "creep.md", creepFile)

		if err := run(runner, "tab", "format", creep); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(output.String(), "Radiohead") {
			t.Errorf("front matter leaked into output: %q", output.String())
		}
	})

	errorTests := []struct {
		name string
		args []string
		err  error
	}{
		{"zero lines", []string{"tab", "count", "--lines", "0", path}, tab.ErrInvalidCapacity},
		{"negative lines", []string{"tab", "columns", "--lines=-1", path}, tab.ErrInvalidCapacity},
		{"negative visible columns", []string{"tab", "render", "--lines", "2", "--columns=-1", path}, tab.ErrInvalidCapacity},
	}

	for _, tt := range errorTests {
		t.Run(tt.name, func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
			if err := run(runner, tt.args...); !errors.Is(err, tt.err) {
				t.Errorf("expected %v, got %v", tt.err, err)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		err := run(runner, "tab", "count", filepath.Join(dir, "nope.txt"))
		if err == nil || !strings.Contains(err.Error(), "failed to read tab") {
			t.Errorf("expected read error, got %v", err)
		}
	})
}

func TestSongCommands(t *testing.T) {
	dir := t.TempDir()
	wonderwall := tu.MustWriteFile(t, dir, "wonderwall.txt", tu.SampleTab)
	creep := tu.MustWriteFile(t, dir, "creep.md", creepFile)

	runner, output := newTestRunner(t)

	t.Run("add", func(t *testing.T) {
		if err := run(runner, "song", "add", "--title", "Wonderwall", "--artist", "Oasis", "--file", wonderwall); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "✓ Added #1 Oasis - Wonderwall") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("add duplicate", func(t *testing.T) {
		err := run(runner, "song", "add", "--title", "wonderwall ", "--artist", "OASIS")
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("import skips duplicates", func(t *testing.T) {
		output.Reset()
		// wonderwall.txt has no front matter, so it imports under its file name with no artist
		if err := run(runner, "song", "import", creep, wonderwall); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "✓ Imported 2 songs (0 skipped)") {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		if err := run(runner, "song", "import", creep); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "✓ Imported 0 songs (1 skipped)") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("import without files", func(t *testing.T) {
		if err := run(runner, "song", "import"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		output.Reset()
		if err := run(runner, "song", "list", "--json", "--lines", "2"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var songs []songOutput
		if err := json.Unmarshal(output.Bytes(), &songs); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if len(songs) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(songs))
		}
		if songs[0].Title != "Wonderwall" || songs[0].Columns != 3 {
			t.Errorf("unexpected first song %+v", songs[0])
		}
		if songs[1].Title != "Creep" || songs[1].Artist != "Radiohead" {
			t.Errorf("expected front matter fields, got %+v", songs[1])
		}
	})

	t.Run("list by artist", func(t *testing.T) {
		output.Reset()
		if err := run(runner, "song", "list", "--artist", "radiohead"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Songs (1)") || !strings.Contains(output.String(), "Radiohead - Creep") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("search", func(t *testing.T) {
		output.Reset()
		if err := run(runner, "song", "search", "creep"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), `Results for "creep" (1)`) {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("search without query", func(t *testing.T) {
		if err := run(runner, "song", "search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("show by sequence", func(t *testing.T) {
		output.Reset()
		if err := run(runner, "song", "show", "--lines", "2", "--columns", "1", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"Oasis - Wonderwall", "Capo 2", "columns 1–1 of 3"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("output missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("show sequence zero", func(t *testing.T) {
		if err := run(runner, "song", "show", "0"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("show unknown", func(t *testing.T) {
		if err := run(runner, "song", "show", "missing-id"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		output.Reset()
		if err := run(runner, "song", "delete", "3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "✓ Deleted #3") {
			t.Errorf("unexpected output %q", output.String())
		}
		if err := run(runner, "song", "show", "3"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected deleted song to be gone, got %v", err)
		}
	})
}

func TestSongbookCommands(t *testing.T) {
	dir := t.TempDir()
	runner, output := newTestRunner(t)

	wonderwall := tu.MustWriteFile(t, dir, "wonderwall.txt", tu.SampleTab)
	if err := run(runner, "song", "add", "--title", "Wonderwall", "--artist", "Oasis", "--file", wonderwall); err != nil {
		t.Fatalf("failed to add song: %v", err)
	}

	output.Reset()
	if err := run(runner, "songbook", "create", "--title", "Open Mic", "--json"); err != nil {
		t.Fatalf("failed to create songbook: %v", err)
	}

	var book songbookOutput
	if err := json.Unmarshal(output.Bytes(), &book); err != nil {
		t.Fatalf("failed to decode songbook: %v", err)
	}
	if book.SessionKey == "" || book.MaxActiveSongs != 3 {
		t.Fatalf("unexpected songbook %+v", book)
	}
	session := strings.ToLower(book.SessionKey)

	t.Run("request", func(t *testing.T) {
		output.Reset()
		if err := run(runner, "songbook", "request", "--session", session, "--song", "1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "✓ Requested Oasis - Wonderwall in "+book.SessionKey) {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("request twice", func(t *testing.T) {
		err := run(runner, "songbook", "request", "--session", session, "--song", "1")
		if !errors.Is(err, shared.ErrAlreadyRequested) {
			t.Errorf("expected ErrAlreadyRequested, got %v", err)
		}
	})

	var entries []entryOutput
	t.Run("entries", func(t *testing.T) {
		output.Reset()
		if err := run(runner, "songbook", "entries", "--session", session, "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if err := json.Unmarshal(output.Bytes(), &entries); err != nil {
			t.Fatalf("failed to decode entries: %v", err)
		}
		if len(entries) != 1 || entries[0].Song != "Oasis - Wonderwall" {
			t.Fatalf("unexpected entries %+v", entries)
		}
	})

	t.Run("flag", func(t *testing.T) {
		if len(entries) == 0 {
			t.Skip("no entries")
		}
		output.Reset()
		if err := run(runner, "songbook", "flag", "--entry", entries[0].ID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		output.Reset()
		if err := run(runner, "songbook", "list", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var books []songbookOutput
		if err := json.Unmarshal(output.Bytes(), &books); err != nil {
			t.Fatalf("failed to decode songbooks: %v", err)
		}
		if len(books) != 1 || books[0].TotalSongs != 1 || books[0].FlaggedSongs != 1 {
			t.Errorf("unexpected songbooks %+v", books)
		}
	})

	t.Run("flag unknown entry", func(t *testing.T) {
		err := run(runner, "songbook", "flag", "--entry", "missing")
		if !errors.Is(err, shared.ErrEntryNotFound) {
			t.Errorf("expected ErrEntryNotFound, got %v", err)
		}
	})

	t.Run("export", func(t *testing.T) {
		t.Run("text", func(t *testing.T) {
			path := filepath.Join(dir, "open-mic.txt")
			if err := run(runner, "songbook", "export", "--session", session, "--format", "text", "--output", path); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if content := tu.MustReadFile(t, path); !strings.Contains(content, "1. Oasis - Wonderwall [flagged]") {
				t.Errorf("unexpected text export:\n%s", content)
			}
		})

		t.Run("csv", func(t *testing.T) {
			base := filepath.Join(dir, "open-mic")
			if err := run(runner, "songbook", "export", "--session", session, "--format", "csv", "--output", base); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			tu.AssertFileExists(t, base+"_songs.csv")
			tu.AssertFileExists(t, base+"_metadata.json")
		})

		t.Run("markdown with tabs", func(t *testing.T) {
			out := filepath.Join(dir, "md")
			if err := run(runner, "songbook", "export", "--session", session, "--tabs", "--lines", "2", "--output", out); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			tu.AssertFileExists(t, filepath.Join(out, "README.md"))

			rendered := tu.MustReadFile(t, filepath.Join(out, "tabs", "01-wonderwall.txt"))
			if !strings.Contains(rendered, "Capo 2     Em7  G") {
				t.Errorf("expected every column side by side, got:\n%s", rendered)
			}
		})

		t.Run("unknown format", func(t *testing.T) {
			err := run(runner, "songbook", "export", "--session", session, "--format", "yaml")
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("expected ErrInvalidFlag, got %v", err)
			}
		})

		t.Run("all", func(t *testing.T) {
			out := filepath.Join(dir, "bulk")
			output.Reset()
			if err := run(runner, "songbook", "export-all", "--format", "csv", "--output", out, "--rate", "100"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !strings.Contains(output.String(), "Exported 1 of 1 songbooks") {
				t.Errorf("unexpected output:\n%s", output.String())
			}
			tu.AssertFileExists(t, filepath.Join(out, session, session+"_songs.csv"))
			tu.AssertFileExists(t, filepath.Join(out, "export_manifest.json"))
		})
	})

	t.Run("delete", func(t *testing.T) {
		if err := run(runner, "songbook", "delete", "--session", session); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		err := run(runner, "songbook", "entries", "--session", session)
		if !errors.Is(err, shared.ErrSongbookNotFound) {
			t.Errorf("expected ErrSongbookNotFound, got %v", err)
		}
	})
}

func TestSetupCommands(t *testing.T) {
	dir := t.TempDir()
	wd := tu.MustGetwd(t)
	tu.MustChdir(t, dir)
	t.Cleanup(func() { os.Chdir(wd) })

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		ConfigPath: "config.toml",
		Logger:     shared.NewLogger(&bytes.Buffer{}),
		Output:     output,
	})
	t.Cleanup(func() { runner.Close() })

	t.Run("database creates config and migrates", func(t *testing.T) {
		if err := run(runner, "setup", "database"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
		tu.AssertFileExists(t, filepath.Join(dir, "songbook.db"))
		for _, want := range []string{"✓ 0001", "✓ 0002"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("output missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("rollback", func(t *testing.T) {
		output.Reset()
		if err := run(runner, "setup", "rollback"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "✓ 0001") || !strings.Contains(output.String(), "✗ 0002") {
			t.Errorf("expected latest migration rolled back:\n%s", output.String())
		}
	})

	t.Run("status json", func(t *testing.T) {
		output.Reset()
		if err := run(runner, "setup", "status", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var statuses []shared.MigrationStatus
		if err := json.Unmarshal(output.Bytes(), &statuses); err != nil {
			t.Fatalf("failed to decode statuses: %v", err)
		}
		if len(statuses) != 2 || !statuses[0].Applied || statuses[1].Applied {
			t.Errorf("unexpected statuses %+v", statuses)
		}
	})
}
