package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tab"
)

// TabFormat prints the formatted lines of a tab, annotation first.
func (r *Runner) TabFormat(ctx context.Context, cmd *cli.Command) error {
	content, err := r.readTab(cmd.StringArg("file"))
	if err != nil {
		return err
	}

	lines := tab.Format(content, cmd.Int("transpose"))
	if cmd.Bool("hide-chords") {
		lines = tab.WithoutChords(lines)
	}

	if cmd.Bool("json") {
		return r.writeJSON(lines, cmd.Bool("pretty"))
	}

	for _, line := range lines {
		r.writePlain("%s\n", line)
	}
	return nil
}

// TabColumns prints every column of a tab's layout.
func (r *Runner) TabColumns(ctx context.Context, cmd *cli.Command) error {
	content, err := r.readTab(cmd.StringArg("file"))
	if err != nil {
		return err
	}

	view, err := formatter.RenderTab(content, formatter.TabOptions{
		LinesPerColumn: r.linesPerColumn(cmd),
		Transpose:      cmd.Int("transpose"),
		HideChords:     cmd.Bool("hide-chords"),
		Render:         formatter.RenderOptions{KeepMarkup: true},
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	for i, column := range view.Layout {
		r.writePlain("── column %d ──\n", i+1)
		for _, line := range column {
			r.writePlain("%s\n", line)
		}
	}
	return nil
}

// TabCount prints how many columns a tab occupies.
func (r *Runner) TabCount(ctx context.Context, cmd *cli.Command) error {
	content, err := r.readTab(cmd.StringArg("file"))
	if err != nil {
		return err
	}

	n, err := tab.CountColumns(content, r.linesPerColumn(cmd))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]int{"total_columns": n}, false)
	}
	return r.writePlain("%d\n", n)
}

// TabRender prints the visible window of a tab with columns side by side.
func (r *Runner) TabRender(ctx context.Context, cmd *cli.Command) error {
	content, err := r.readTab(cmd.StringArg("file"))
	if err != nil {
		return err
	}

	view, err := formatter.RenderTab(content, r.tabOptions(cmd))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}
	return r.writeTabView(view)
}

// readTab reads tab text from path, or from the runner's input when path is empty or "-".
//
// Front matter is dropped so song files can be viewed directly.
func (r *Runner) readTab(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(r.input)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read tab: %w", err)
	}

	song, err := shared.ParseSong(string(data))
	if err != nil {
		return "", err
	}
	return song.Content, nil
}

// linesPerColumn returns --lines when given and the configured default otherwise.
//
// An explicit non-positive value is passed through so the core rejects it.
func (r *Runner) linesPerColumn(cmd *cli.Command) int {
	if cmd.IsSet("lines") {
		return cmd.Int("lines")
	}
	return r.config.Display.LinesPerColumn
}

func (r *Runner) tabOptions(cmd *cli.Command) formatter.TabOptions {
	columns := r.config.Display.ColumnsToDisplay
	if cmd.IsSet("columns") {
		columns = cmd.Int("columns")
	}

	hide := !r.config.Display.ShowChords
	if cmd.IsSet("hide-chords") {
		hide = cmd.Bool("hide-chords")
	}

	return formatter.TabOptions{
		LinesPerColumn: r.linesPerColumn(cmd),
		Columns:        columns,
		First:          cmd.Int("first"),
		Transpose:      cmd.Int("transpose"),
		HideChords:     hide,
	}
}

func (r *Runner) writeTabView(view *formatter.TabView) error {
	if err := r.writePlain("%s", view.Text); err != nil {
		return err
	}

	last := view.First + len(view.Layout)
	if view.First > 0 || last < view.Total {
		return r.writePlainln("columns %d–%d of %d", view.First+1, last, view.Total)
	}
	return nil
}

// layoutFlags are shared by every command that lays a tab out in columns.
func layoutFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "lines",
			Aliases: []string{"n"},
			Usage:   "Lines per column (default from config)",
		},
		&cli.IntFlag{
			Name:    "transpose",
			Aliases: []string{"t"},
			Usage:   "Transposition steps noted in the annotation line",
		},
		&cli.BoolFlag{
			Name:  "hide-chords",
			Usage: "Drop chord lines before laying out columns",
		},
	}
}

func windowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "columns",
			Usage: "Columns shown side by side, 0 for all (default from config)",
		},
		&cli.IntFlag{
			Name:  "first",
			Usage: "First column shown (0-based)",
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

// fileArg is the optional tab path; empty or "-" reads stdin.
func fileArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "file"}}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var all []cli.Flag
	for _, group := range groups {
		all = append(all, group...)
	}
	return all
}

// tabCommand handles tab formatting without touching the database
func tabCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tab",
		Usage: "Format and lay out tab text",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Print formatted lines with the capo/transposition annotation",
				Arguments: fileArg(),
				Flags: flags([]cli.Flag{
					&cli.IntFlag{
						Name:    "transpose",
						Aliases: []string{"t"},
						Usage:   "Transposition steps noted in the annotation line",
					},
					&cli.BoolFlag{
						Name:  "hide-chords",
						Usage: "Drop chord lines",
					},
				}, outputFlags()),
				Action: r.TabFormat,
			},
			{
				Name:      "columns",
				Usage:     "Print every column of the layout",
				Arguments: fileArg(),
				Flags:     flags(layoutFlags(), outputFlags()),
				Action:    r.TabColumns,
			},
			{
				Name:      "count",
				Usage:     "Print the number of columns a tab occupies",
				Arguments: fileArg(),
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "lines",
						Aliases: []string{"n"},
						Usage:   "Lines per column (default from config)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.TabCount,
			},
			{
				Name:      "render",
				Usage:     "Render the visible columns side by side",
				Arguments: fileArg(),
				Flags:     flags(layoutFlags(), windowFlags(), outputFlags()),
				Action:    r.TabRender,
			},
		},
	}
}

// trimArg returns a trimmed positional argument or ErrMissingArgument.
func trimArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}
