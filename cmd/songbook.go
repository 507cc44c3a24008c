package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
)

type songbookOutput struct {
	ID             string `json:"id"`
	SessionKey     string `json:"session_key"`
	Title          string `json:"title"`
	Mode           string `json:"mode"`
	MaxActiveSongs int    `json:"max_active_songs"`
	TotalSongs     int    `json:"total_songs"`
	FlaggedSongs   int    `json:"flagged_songs"`
}

type entryOutput struct {
	ID        string `json:"id"`
	Sequence  int    `json:"sequence"`
	SongID    string `json:"song_id"`
	Song      string `json:"song"`
	IsFlagged bool   `json:"is_flagged"`
}

// SongbookCreate starts a new songbook session and prints its session key.
func (r *Runner) SongbookCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	book := models.NewSongbook(0, cmd.String("title"), cmd.Int("max-active"), cmd.Bool("noodle"))
	if err := r.books.Create(book); err != nil {
		return err
	}

	r.logger.Info("songbook created", "id", book.ID(), "session", book.SessionKey(), "mode", book.Mode())

	if cmd.Bool("json") {
		return r.writeJSON(newSongbookOutput(book, 0, 0), true)
	}
	r.writePlain("✓ Created songbook %q (%s mode)\n", book.Title(), book.Mode())
	return r.writePlain("Session key: %s\n", book.SessionKey())
}

// SongbookList prints every songbook with its request counts.
func (r *Runner) SongbookList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	var criteria map[string]any
	if cmd.IsSet("noodle") {
		criteria = map[string]any{"noodle": cmd.Bool("noodle")}
	}

	books, err := r.books.List(criteria)
	if err != nil {
		return err
	}

	out := make([]songbookOutput, 0, len(books))
	for _, book := range books {
		total, flagged, err := r.entries.Stats(book.ID())
		if err != nil {
			return err
		}
		out = append(out, newSongbookOutput(book, total, flagged))
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Songbooks (%d)", len(out)))
	for _, b := range out {
		r.writePlain("%s  %s  [%s]  %d requests, %d flagged\n", b.SessionKey, b.Title, b.Mode, b.TotalSongs, b.FlaggedSongs)
	}
	return nil
}

// SongbookRequest adds a song to a songbook session.
func (r *Runner) SongbookRequest(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	book, err := r.books.GetBySessionKey(cmd.String("session"))
	if err != nil {
		return err
	}

	song, err := r.resolveSong(cmd.String("song"))
	if err != nil {
		return err
	}

	entry := models.NewSongEntry(0, book.ID(), song.ID())
	if err := r.entries.Create(entry); err != nil {
		return err
	}

	r.logger.Info("song requested", "session", book.SessionKey(), "song", song.ID(), "entry", entry.ID())
	return r.writePlain("✓ Requested %s in %s (entry %s)\n", song, book.SessionKey(), entry.ID())
}

// SongbookEntries prints the requests made in a songbook session, oldest first.
func (r *Runner) SongbookEntries(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	book, err := r.books.GetBySessionKey(cmd.String("session"))
	if err != nil {
		return err
	}

	entries, err := r.entries.ListBySongbook(book.ID())
	if err != nil {
		return err
	}

	out := make([]entryOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entryOutput{
			ID:        entry.ID(),
			Sequence:  entry.Sequence(),
			SongID:    entry.SongID(),
			Song:      entry.Song().String(),
			IsFlagged: entry.IsFlagged(),
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%s): %d requests", book.Title(), book.SessionKey(), len(out)))
	for i, e := range out {
		flag := " "
		if e.IsFlagged {
			flag = "⚑"
		}
		r.writePlain("%3d %s %s  %s\n", i+1, flag, e.Song, e.ID)
	}
	return nil
}

// SongbookFlag marks or unmarks a song request.
func (r *Runner) SongbookFlag(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	id := cmd.String("entry")
	flagged := !cmd.Bool("unflag")
	if err := r.entries.SetFlagged(id, flagged); err != nil {
		return err
	}

	r.logger.Info("entry updated", "entry", id, "flagged", flagged)
	if flagged {
		return r.writePlain("✓ Flagged %s\n", id)
	}
	return r.writePlain("✓ Unflagged %s\n", id)
}

// SongbookExport writes a songbook's requests as CSV, Markdown or plain text.
func (r *Runner) SongbookExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	export, err := r.loadExport(cmd.String("session"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	format := strings.ToLower(cmd.String("format"))

	r.logger.Info("exporting songbook", "session", export.Songbook.SessionKey(), "format", format, "entries", len(export.Entries))

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Wrote %s\n", result.SongsFile)
		return r.writePlain("✓ Wrote %s\n", result.MetadataFile)
	case "markdown", "md":
		var opts *formatter.TabOptions
		if cmd.Bool("tabs") {
			o := r.tabOptions(cmd)
			o.Columns = 0
			opts = &o
		}
		result, err := formatter.WriteMarkdownExport(export, output, opts)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %d files to %s\n", len(result.Files), result.Directory)
	case "text", "txt":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Wrote %s\n", path)
	default:
		return fmt.Errorf("%w: unknown export format %q (csv, markdown, text)", shared.ErrInvalidFlag, format)
	}
}

// SongbookExportAll writes several songbooks at once, printing progress as each finishes.
func (r *Runner) SongbookExportAll(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	}
	if cmd.Bool("tabs") {
		o := r.tabOptions(cmd)
		o.Columns = 0
		opts.Tabs = &o
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	prog := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	exporter := tasks.NewExporter(r.books, r.entries, r.logger)
	result, err := exporter.BulkExport(ctx, prog, cmd.StringSlice("session"), opts)
	close(prog)
	<-done
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Exported %d of %d songbooks", result.SuccessfulExports, result.TotalSongbooks))
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("✗ %s: %v\n", res.SessionKey, res.Error)
		}
	}
	return r.writePlain("Manifest: %s\n", result.ManifestPath)
}

func (r *Runner) loadExport(sessionKey string) (*models.SongbookExport, error) {
	book, err := r.books.GetBySessionKey(sessionKey)
	if err != nil {
		return nil, err
	}

	entries, err := r.entries.ListBySongbook(book.ID())
	if err != nil {
		return nil, err
	}
	return &models.SongbookExport{Songbook: book, Entries: entries}, nil
}

// SongbookDelete removes a songbook session.
func (r *Runner) SongbookDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	book, err := r.books.GetBySessionKey(cmd.String("session"))
	if err != nil {
		return err
	}

	if err := r.books.Delete(book.ID()); err != nil {
		return err
	}

	r.logger.Info("songbook deleted", "session", book.SessionKey())
	return r.writePlain("✓ Deleted songbook %s\n", book.SessionKey())
}

func newSongbookOutput(book *models.Songbook, total, flagged int) songbookOutput {
	return songbookOutput{
		ID:             book.ID(),
		SessionKey:     book.SessionKey(),
		Title:          book.Title(),
		Mode:           book.Mode(),
		MaxActiveSongs: book.MaxActiveSongs(),
		TotalSongs:     total,
		FlaggedSongs:   flagged,
	}
}

// songbookCommand handles songbook sessions and song requests
func songbookCommand(r *Runner) *cli.Command {
	session := func() cli.Flag {
		return &cli.StringFlag{
			Name:     "session",
			Aliases:  []string{"s"},
			Usage:    "Songbook session key",
			Required: true,
		}
	}

	return &cli.Command{
		Name:    "songbook",
		Aliases: []string{"book"},
		Usage:   "Manage songbook sessions and requests",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Start a songbook session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Songbook title",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-active",
						Usage: "Maximum active songs per guest",
						Value: 3,
					},
					&cli.BoolFlag{
						Name:  "noodle",
						Usage: "Noodle mode: free-form requests",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SongbookCreate,
			},
			{
				Name:  "list",
				Usage: "List songbook sessions",
				Flags: flags([]cli.Flag{
					&cli.BoolFlag{
						Name:  "noodle",
						Usage: "Only noodle mode (or, with =false, only standard) songbooks",
					},
				}, outputFlags()),
				Action: r.SongbookList,
			},
			{
				Name:  "request",
				Usage: "Request a song in a session",
				Flags: []cli.Flag{
					session(),
					&cli.StringFlag{
						Name:     "song",
						Usage:    "Song ID or sequence number",
						Required: true,
					},
				},
				Action: r.SongbookRequest,
			},
			{
				Name:   "entries",
				Usage:  "List the requests in a session",
				Flags:  flags([]cli.Flag{session()}, outputFlags()),
				Action: r.SongbookEntries,
			},
			{
				Name:  "flag",
				Usage: "Flag a request",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "entry",
						Usage:    "Song entry ID",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "unflag",
						Usage: "Clear the flag instead",
					},
				},
				Action: r.SongbookFlag,
			},
			{
				Name:  "export",
				Usage: "Export a session's requests",
				Flags: flags([]cli.Flag{
					session(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown or text",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path (defaults to the session key)",
					},
					&cli.BoolFlag{
						Name:  "tabs",
						Usage: "Include rendered tabs with a markdown export",
					},
				}, layoutFlags()),
				Action: r.SongbookExport,
			},
			{
				Name:  "export-all",
				Usage: "Export many sessions concurrently with a manifest",
				Flags: flags([]cli.Flag{
					&cli.StringSliceFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Session keys to export (default: every songbook)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "csv, markdown or text",
						Value:   "markdown",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: songbook_export_{epoch})",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers (max 10)",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Songbooks loaded per second",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "tabs",
						Usage: "Include rendered tabs with a markdown export",
					},
				}, layoutFlags()),
				Action: r.SongbookExportAll,
			},
			{
				Name:   "delete",
				Usage:  "Delete a songbook session",
				Flags:  []cli.Flag{session()},
				Action: r.SongbookDelete,
			},
		},
	}
}
