// package formatter renders tabs as side-by-side columns and exports songbook requests to CSV, Markdown, and plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// SongbookMetadata is the JSON summary written alongside exports.
type SongbookMetadata struct {
	ID             string    `json:"id"`
	SessionKey     string    `json:"session_key"`
	Title          string    `json:"title"`
	Mode           string    `json:"mode"`
	MaxActiveSongs int       `json:"max_active_songs"`
	Requests       int       `json:"requests"`
	Flagged        int       `json:"flagged"`
	CreatedAt      time.Time `json:"created_at"`
}

// ExportToCSV converts a SongbookExport to CSV format with columns: #, Title, Artist, Flagged, Requested At
func ExportToCSV(export *models.SongbookExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"#", "Title", "Artist", "Flagged", "Requested At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, entry := range export.Entries {
		title, artist := songFields(entry)
		record := []string{
			strconv.Itoa(i + 1),
			title,
			artist,
			strconv.FormatBool(entry.IsFlagged()),
			entry.CreatedAt().UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a SongbookExport to Markdown format.
//
// When tabsDir is set, each song title links to its tab file inside that directory.
func ExportToMarkdown(export *models.SongbookExport, tabsDir string) ([]byte, error) {
	var buf bytes.Buffer
	book := export.Songbook

	fmt.Fprintf(&buf, "# %s\n\n", book.Title())
	fmt.Fprintf(&buf, "**Session**: %s\n", book.SessionKey())
	fmt.Fprintf(&buf, "**Mode**: %s\n", book.Mode())
	fmt.Fprintf(&buf, "**Requests**: %d (%d flagged)\n\n", len(export.Entries), export.Flagged())

	buf.WriteString("## Songs\n\n")
	for i, entry := range export.Entries {
		title, artist := songFields(entry)
		if tabsDir != "" {
			title = fmt.Sprintf("[%s](%s/%s)", title, tabsDir, tabFilename(i, title))
		}

		line := title
		if artist != "" {
			line = artist + " - " + title
		}
		if entry.IsFlagged() {
			line += " ⚑"
		}
		fmt.Fprintf(&buf, "%d. %s\n", i+1, line)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a SongbookExport to plain text format
func ExportToText(export *models.SongbookExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Songbook: %s\n", export.Songbook.Title())
	fmt.Fprintf(&buf, "Session: %s\n", export.Songbook.SessionKey())
	fmt.Fprintf(&buf, "Requests: %d\n\n", len(export.Entries))

	for i, entry := range export.Entries {
		title, artist := songFields(entry)
		flag := ""
		if entry.IsFlagged() {
			flag = " [flagged]"
		}
		if artist == "" {
			fmt.Fprintf(&buf, "%d. %s%s\n", i+1, title, flag)
		} else {
			fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, artist, title, flag)
		}
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of songbook metadata (without requests)
func ToMetadataJSON(export *models.SongbookExport) ([]byte, error) {
	book := export.Songbook
	return shared.MarshalJSON(SongbookMetadata{
		ID:             book.ID(),
		SessionKey:     book.SessionKey(),
		Title:          book.Title(),
		Mode:           book.Mode(),
		MaxActiveSongs: book.MaxActiveSongs(),
		Requests:       len(export.Entries),
		Flagged:        export.Flagged(),
		CreatedAt:      book.CreatedAt(),
	}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SongsFile    string
	MetadataFile string
}

// WriteCSVExport exports a songbook to CSV format with accompanying metadata JSON file.
//
// Defaults to the session key as the base filename & creates {base}_songs.csv and {base}_metadata.json
func WriteCSVExport(export *models.SongbookExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = defaultBase(export)
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := baseFilepath + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		SongsFile:    songsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
}

// WriteMarkdownExport exports a songbook to Markdown format in a dedicated directory.
//
// Directory name defaults to the session key. Creates {dir}/README.md and, when
// opts is non-nil, one rendered tab per song under {dir}/tabs.
func WriteMarkdownExport(export *models.SongbookExport, outputDir string, opts *TabOptions) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = defaultBase(export)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	tabsDir := ""
	if opts != nil {
		tabsDir = "tabs"
		files, err := writeTabs(export, filepath.Join(outputDir, tabsDir), *opts)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, files...)
	}

	mdData, err := ExportToMarkdown(export, tabsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a songbook to plain text format.
//
// Defaults to {session}_songs.txt as the filename.
func WriteTextExport(export *models.SongbookExport, path string) (string, error) {
	if path == "" {
		path = defaultBase(export) + "_songs.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

func writeTabs(export *models.SongbookExport, dir string, opts TabOptions) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create tabs directory: %w", err)
	}

	var files []string
	for i, entry := range export.Entries {
		song := entry.Song()
		if song == nil {
			continue
		}

		view, err := RenderTab(song.Content(), opts)
		if err != nil {
			return nil, fmt.Errorf("failed to render %q: %w", song.Title(), err)
		}

		var b strings.Builder
		b.WriteString(song.String() + "\n")
		if view.Annotation != "" {
			b.WriteString(view.Annotation + "\n")
		}
		b.WriteString("\n" + view.Text)

		path := filepath.Join(dir, tabFilename(i, song.Title()))
		if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
			return nil, fmt.Errorf("failed to write tab file: %w", err)
		}
		files = append(files, path)
	}

	return files, nil
}

func songFields(entry *models.SongEntry) (title, artist string) {
	if song := entry.Song(); song != nil {
		return song.Title(), song.Artist()
	}
	return entry.SongID(), ""
}

func defaultBase(export *models.SongbookExport) string {
	return strings.ToLower(export.Songbook.SessionKey())
}

// tabFilename builds a filesystem-safe name like 03-hey-jude.txt.
func tabFilename(i int, title string) string {
	slug := strings.Join(strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}), "-")
	if slug == "" {
		slug = "song"
	}
	return fmt.Sprintf("%02d-%s.txt", i+1, slug)
}
