package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
)

const (
	defaultWorkers   = 5
	maxWorkers       = 10
	defaultRateLimit = 5.0
	manifestFilename = "export_manifest.json"
)

// Exporter writes songbooks to disk concurrently.
type Exporter struct {
	books   *repositories.SongbookRepository
	entries *repositories.SongEntryRepository
	logger  *log.Logger
}

// NewExporter creates an Exporter reading from the given repositories.
func NewExporter(books *repositories.SongbookRepository, entries *repositories.SongEntryRepository, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Exporter{books: books, entries: entries, logger: logger}
}

// BulkExportOpts contains configuration for bulk songbook exports.
type BulkExportOpts struct {
	Format     string                // Export format: csv, markdown, text
	OutputDir  string                // Base output directory (default: songbook_export_{epoch})
	NumWorkers int                   // Concurrent workers (default: 5, max: 10)
	RateLimit  float64               // Songbook loads per second (default: 5)
	Tabs       *formatter.TabOptions // Rendered tabs for markdown exports; nil skips them
}

// SongbookExportResult is the outcome of exporting one songbook.
type SongbookExportResult struct {
	SessionKey string
	Title      string
	Requests   int
	Success    bool
	Files      []string
	Error      error
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalSongbooks    int
	SuccessfulExports int
	FailedExports     int
	Results           []SongbookExportResult // ordered by session key
	OutputDirectory   string
	ManifestPath      string
}

type exportJob struct {
	export *models.SongbookExport
	dir    string
}

// BulkExport exports the songbooks with the given session keys, or every songbook when keys is empty.
//
// Songbooks are loaded one at a time under the rate limit and written by a pool of workers.
// Per-songbook failures are collected in the result; only setup, cancellation and manifest errors are returned.
func (e *Exporter) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, keys []string, opts BulkExportOpts) (*BulkExportResult, error) {
	opts.Format = strings.ToLower(strings.TrimSpace(opts.Format))
	switch opts.Format {
	case "":
		opts.Format = "markdown"
	case "md":
		opts.Format = "markdown"
	case "txt":
		opts.Format = "text"
	case "csv", "markdown", "text":
	default:
		return nil, fmt.Errorf("%w: unknown export format %q (csv, markdown, text)", shared.ErrInvalidFlag, opts.Format)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("songbook_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	opts.NumWorkers = min(opts.NumWorkers, maxWorkers)
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}

	keys, err := e.resolveKeys(keys)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	e.logger.Info("starting bulk export", "songbooks", len(keys), "format", opts.Format, "workers", opts.NumWorkers, "dir", opts.OutputDir)

	result := &BulkExportResult{
		TotalSongbooks:  len(keys),
		OutputDirectory: opts.OutputDir,
		Results:         make([]SongbookExportResult, 0, len(keys)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(keys))
	results := make(chan SongbookExportResult, len(keys))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	// The producer reports load failures on results, so it counts toward closing it.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(jobs)

		sendProgress(prog, loadingSongbooksUpdate(len(keys)))
		for i, key := range keys {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			export, err := e.load(key)
			if err != nil {
				results <- SongbookExportResult{
					SessionKey: key,
					Error:      fmt.Errorf("failed to load songbook: %w", err),
				}
				continue
			}

			jobs <- exportJob{
				export: export,
				dir:    filepath.Join(opts.OutputDir, strings.ToLower(key)),
			}
			sendProgress(prog, exportingSongbookUpdate(i+1, len(keys), key, len(export.Entries)))
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(keys), res.SessionKey, len(res.Files)))
		} else {
			result.FailedExports++
			e.logger.Warn("songbook export failed", "session", res.SessionKey, "error", res.Error)
			sendProgress(prog, exportFailedUpdate(completed, len(keys), res.SessionKey, res.Error))
		}
	}

	slices.SortFunc(result.Results, func(a, b SongbookExportResult) int {
		return strings.Compare(a.SessionKey, b.SessionKey)
	})

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export canceled after %d of %d songbooks: %w", completed, len(keys), err)
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestFilename)
	sendProgress(prog, writingManifestUpdate(manifestPath))
	if err := writeManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("bulk export finished", "ok", result.SuccessfulExports, "failed", result.FailedExports)
	return result, nil
}

// resolveKeys normalizes and de-duplicates keys, listing every songbook when none are given.
func (e *Exporter) resolveKeys(keys []string) ([]string, error) {
	if len(keys) == 0 {
		books, err := e.books.List(nil)
		if err != nil {
			return nil, err
		}
		for _, book := range books {
			keys = append(keys, book.SessionKey())
		}
	}

	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		key = strings.ToUpper(strings.TrimSpace(key))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out, nil
}

func (e *Exporter) load(key string) (*models.SongbookExport, error) {
	book, err := e.books.GetBySessionKey(key)
	if err != nil {
		return nil, err
	}

	entries, err := e.entries.ListBySongbook(book.ID())
	if err != nil {
		return nil, err
	}
	return &models.SongbookExport{Songbook: book, Entries: entries}, nil
}

// exportWorker writes songbooks from the jobs channel until it is drained or ctx is done.
func (e *Exporter) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan exportJob, results chan<- SongbookExportResult, opts BulkExportOpts) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- exportSongbook(job, opts)
	}
}

// exportSongbook writes a single songbook in the requested format.
func exportSongbook(j exportJob, opts BulkExportOpts) SongbookExportResult {
	book := j.export.Songbook
	result := SongbookExportResult{
		SessionKey: book.SessionKey(),
		Title:      book.Title(),
		Requests:   len(j.export.Entries),
		Files:      []string{},
	}

	switch opts.Format {
	case "csv":
		if err := os.MkdirAll(j.dir, 0755); err != nil {
			result.Error = fmt.Errorf("failed to create directory: %w", err)
			return result
		}
		res, err := formatter.WriteCSVExport(j.export, filepath.Join(j.dir, filepath.Base(j.dir)))
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{res.SongsFile, res.MetadataFile}
	case "markdown":
		res, err := formatter.WriteMarkdownExport(j.export, j.dir, opts.Tabs)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = res.Files
	case "text":
		if err := os.MkdirAll(j.dir, 0755); err != nil {
			result.Error = fmt.Errorf("failed to create directory: %w", err)
			return result
		}
		path, err := formatter.WriteTextExport(j.export, filepath.Join(j.dir, filepath.Base(j.dir)+"_songs.txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}
