package tasks

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/songbook/internal/shared"
)

type manifest struct {
	ExportedAt        time.Time       `json:"exported_at"`
	Format            string          `json:"format"`
	TotalSongbooks    int             `json:"total_songbooks"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Songbooks         []manifestEntry `json:"songbooks"`
}

type manifestEntry struct {
	SessionKey string   `json:"session_key"`
	Title      string   `json:"title,omitempty"`
	Requests   int      `json:"requests"`
	Success    bool     `json:"success"`
	Files      []string `json:"files,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// writeManifest records the outcome of every songbook in a bulk export as JSON.
func writeManifest(result *BulkExportResult, format, path string) error {
	m := manifest{
		ExportedAt:        time.Now().UTC(),
		Format:            format,
		TotalSongbooks:    result.TotalSongbooks,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		Songbooks:         make([]manifestEntry, 0, len(result.Results)),
	}

	for _, res := range result.Results {
		entry := manifestEntry{
			SessionKey: res.SessionKey,
			Title:      res.Title,
			Requests:   res.Requests,
			Success:    res.Success,
			Files:      res.Files,
		}
		if res.Error != nil {
			entry.Error = res.Error.Error()
		}
		m.Songbooks = append(m.Songbooks, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
