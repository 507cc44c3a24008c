package shared

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SongFile is a song parsed from a text file with optional YAML front matter.
type SongFile struct {
	Title   string `yaml:"title"`
	Artist  string `yaml:"artist"`
	Content string `yaml:"-"`
}

// ParseSongFile reads a song file from disk.
//
// When the front matter has no title, the file name without extension is used.
func ParseSongFile(path string) (*SongFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read song file: %w", err)
	}

	song, err := ParseSong(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if song.Title == "" {
		song.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return song, nil
}

// ParseSong splits raw song text into front matter fields and tab content.
//
// Text without front matter is returned untouched as content.
func ParseSong(raw string) (*SongFile, error) {
	frontmatter, content, ok := splitFrontmatter(raw)
	if !ok {
		return &SongFile{Content: raw}, nil
	}

	var song SongFile
	if err := yaml.Unmarshal([]byte(frontmatter), &song); err != nil {
		return nil, fmt.Errorf("%w: invalid front matter: %v", ErrInvalidSongFile, err)
	}

	song.Title = strings.TrimSpace(song.Title)
	song.Artist = strings.TrimSpace(song.Artist)
	song.Content = content
	return &song, nil
}

// splitFrontmatter separates a leading "---" delimited block from the rest of raw.
func splitFrontmatter(raw string) (frontmatter, content string, ok bool) {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	if !strings.HasPrefix(normalized, "---\n") {
		return "", raw, false
	}

	rest := normalized[len("---\n"):]
	before, after, found := strings.Cut(rest, "\n---")
	if !found {
		return "", raw, false
	}

	// drop the remainder of the closing delimiter line
	if _, body, hasBody := strings.Cut(after, "\n"); hasBody {
		after = body
	} else {
		after = ""
	}

	return before, after, true
}
