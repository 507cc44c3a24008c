package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tab"
)

type songOutput struct {
	ID       string `json:"id"`
	Sequence int    `json:"sequence"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Columns  int    `json:"total_columns"`
}

// SongAdd stores a song from flags and an optional tab file.
func (r *Runner) SongAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	file, err := r.readSongFile(cmd.String("file"))
	if err != nil {
		return err
	}

	if cmd.IsSet("title") {
		file.Title = cmd.String("title")
	}
	if cmd.IsSet("artist") {
		file.Artist = cmd.String("artist")
	}

	song, err := r.addSong(file)
	if err != nil {
		return err
	}

	r.logger.Info("song added", "id", song.ID(), "sequence", song.Sequence())
	return r.writePlain("✓ Added #%d %s (%s)\n", song.Sequence(), song, song.ID())
}

// SongImport stores every song file given as an argument, skipping songs already in the library.
func (r *Runner) SongImport(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("%w: at least one song file", shared.ErrMissingArgument)
	}

	if err := r.open(); err != nil {
		return err
	}

	imported, skipped := 0, 0
	for _, path := range paths {
		file, err := shared.ParseSongFile(path)
		if err != nil {
			return err
		}

		song, err := r.addSong(file)
		if errors.Is(err, shared.ErrInvalidInput) {
			r.logger.Warn("skipping song", "path", path, "error", err)
			skipped++
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		r.logger.Debug("imported song", "path", path, "id", song.ID())
		imported++
	}

	return r.writePlain("✓ Imported %d songs (%d skipped)\n", imported, skipped)
}

// readSongFile parses path as a song file. Stdin ("-") is read as tab text and no path yields an empty song.
func (r *Runner) readSongFile(path string) (*shared.SongFile, error) {
	switch path {
	case "":
		return &shared.SongFile{}, nil
	case "-":
		content, err := r.readTab(path)
		if err != nil {
			return nil, err
		}
		return &shared.SongFile{Content: content}, nil
	default:
		return shared.ParseSongFile(path)
	}
}

// addSong creates a song unless one with the same title and artist already exists.
func (r *Runner) addSong(file *shared.SongFile) (*models.Song, error) {
	if existing, err := r.songs.FindByKey(file.Title, file.Artist); err == nil {
		return nil, fmt.Errorf("%w: %q already exists as #%d", shared.ErrInvalidInput, existing.String(), existing.Sequence())
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	song := models.NewSong(0, file.Title, file.Artist, file.Content)
	if err := r.songs.Create(song); err != nil {
		return nil, err
	}
	return song, nil
}

// SongList prints the song library.
func (r *Runner) SongList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	var criteria map[string]any
	if artist := cmd.String("artist"); artist != "" {
		criteria = map[string]any{"artist": artist}
	}

	songs, err := r.songs.List(criteria)
	if err != nil {
		return err
	}
	return r.writeSongs(cmd, "Songs", songs)
}

// SongSearch prints songs whose title or artist contains the query.
func (r *Runner) SongSearch(ctx context.Context, cmd *cli.Command) error {
	query, err := trimArg(cmd, "query")
	if err != nil {
		return err
	}

	if err := r.open(); err != nil {
		return err
	}

	songs, err := r.songs.Search(query)
	if err != nil {
		return err
	}
	return r.writeSongs(cmd, fmt.Sprintf("Results for %q", query), songs)
}

// SongShow renders a stored song's tab in columns.
func (r *Runner) SongShow(ctx context.Context, cmd *cli.Command) error {
	ref, err := trimArg(cmd, "song")
	if err != nil {
		return err
	}

	if err := r.open(); err != nil {
		return err
	}

	song, err := r.resolveSong(ref)
	if err != nil {
		return err
	}

	view, err := formatter.RenderTab(song.Content(), r.tabOptions(cmd))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	r.writePlainHeader(song.String())
	return r.writeTabView(view)
}

// SongDelete removes a song from the library.
func (r *Runner) SongDelete(ctx context.Context, cmd *cli.Command) error {
	ref, err := trimArg(cmd, "song")
	if err != nil {
		return err
	}

	if err := r.open(); err != nil {
		return err
	}

	song, err := r.resolveSong(ref)
	if err != nil {
		return err
	}

	if err := r.songs.Delete(song.ID()); err != nil {
		return err
	}

	r.logger.Info("song deleted", "id", song.ID())
	return r.writePlain("✓ Deleted #%d %s\n", song.Sequence(), song)
}

// resolveSong looks a song up by sequence number when ref is numeric and by ID otherwise.
func (r *Runner) resolveSong(ref string) (*models.Song, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n <= 0 {
			return nil, fmt.Errorf("%w: song sequence numbers start at 1, got %d", shared.ErrInvalidArgument, n)
		}
		return r.songs.GetBySequence(n)
	}
	return r.songs.Get(ref)
}

func (r *Runner) writeSongs(cmd *cli.Command, title string, songs []*models.Song) error {
	lines := r.linesPerColumn(cmd)

	out := make([]songOutput, 0, len(songs))
	for _, song := range songs {
		n, err := tab.CountColumns(song.Content(), lines)
		if err != nil {
			return err
		}
		out = append(out, songOutput{
			ID:       song.ID(),
			Sequence: song.Sequence(),
			Title:    song.Title(),
			Artist:   song.Artist(),
			Columns:  n,
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d)", title, len(out)))
	for _, s := range out {
		name := s.Title
		if s.Artist != "" {
			name = s.Artist + " - " + s.Title
		}
		r.writePlain("%4d  %s  [%d cols]  %s\n", s.Sequence, name, s.Columns, s.ID)
	}
	return nil
}

// songCommand handles the song library
func songCommand(r *Runner) *cli.Command {
	songArg := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "song"}}
	}
	linesFlag := func() cli.Flag {
		return &cli.IntFlag{
			Name:    "lines",
			Aliases: []string{"n"},
			Usage:   "Lines per column used for column counts (default from config)",
		}
	}

	return &cli.Command{
		Name:  "song",
		Usage: "Manage the song library",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a song from flags and a tab file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "title",
						Usage: "Song title (overrides front matter)",
					},
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Song artist (overrides front matter)",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Tab file with optional YAML front matter, or - for stdin",
					},
				},
				Action: r.SongAdd,
			},
			{
				Name:      "import",
				Usage:     "Import song files, skipping duplicates",
				ArgsUsage: "<file>...",
				Action:    r.SongImport,
			},
			{
				Name:  "list",
				Usage: "List songs in the library",
				Flags: flags([]cli.Flag{
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Only songs by this artist",
					},
					linesFlag(),
				}, outputFlags()),
				Action: r.SongList,
			},
			{
				Name:      "search",
				Usage:     "Search songs by title or artist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags:     flags([]cli.Flag{linesFlag()}, outputFlags()),
				Action:    r.SongSearch,
			},
			{
				Name:      "show",
				Usage:     "Render a song's tab by ID or sequence number",
				Arguments: songArg(),
				Flags:     flags(layoutFlags(), windowFlags(), outputFlags()),
				Action:    r.SongShow,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a song by ID or sequence number",
				Arguments: songArg(),
				Action:    r.SongDelete,
			},
		},
	}
}
