package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nicolasrp432/PlaywrongIa/internal/formatter"
	"github.com/nicolasrp432/PlaywrongIa/internal/shared"
	"golang.org/x/time/rate"
)

const manifestFile = "export_manifest.json"

// BulkExportOpts contains configuration for bulk listing exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: playwrong_export_{epoch})
	NumWorkers int     // Concurrent writers (default: 5, max 10)
	RateLimit  float64 // Fetches per second (default: 5)
	Covers     bool    // Download a cover image for markdown exports
}

// ListExportResult is the outcome of exporting one listing.
type ListExportResult struct {
	Index        int      `json:"-"`
	Target       Target   `json:"target"`
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Movies       int      `json:"movies"`
	Success      bool     `json:"success"`
	Files        []string `json:"files,omitempty"`
	Error        error    `json:"-"`
	ErrorMessage string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalLists        int                `json:"total_lists"`
	SuccessfulExports int                `json:"successful_exports"`
	FailedExports     int                `json:"failed_exports"`
	OutputDirectory   string             `json:"output_directory"`
	ManifestPath      string             `json:"-"`
	Results           []ListExportResult `json:"lists"`
}

type exportJob struct {
	index  int
	target Target
	list   *formatter.MovieList
}

func normalizeFormat(format string) (string, error) {
	switch strings.ToLower(format) {
	case "", "json":
		return "json", nil
	case "csv":
		return "csv", nil
	case "markdown", "md":
		return "markdown", nil
	case "txt", "text":
		return "txt", nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q (json, csv, markdown, txt)", shared.ErrInvalidFlag, format)
	}
}

// BulkExport exports the targets concurrently with rate limiting and progress tracking.
//
// One failed listing does not stop the rest. When ctx is cancelled the partial result is
// returned with the context error and no manifest is written.
func (e *ExportEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	targets []Target,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: nothing to export", shared.ErrMissingArgument)
	}
	for _, t := range targets {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}

	format, err := normalizeFormat(opts.Format)
	if err != nil {
		return nil, err
	}
	opts.Format = format

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("playwrong_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalLists:      len(targets),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ListExportResult, 0, len(targets)),
	}

	names := e.genreNames(ctx, prog, targets)
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan exportJob, len(targets))
	results := make(chan ListExportResult, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	wg.Add(1)
	go e.produce(ctx, &wg, limiter, prog, targets, names, jobs, results)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorMessage = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(targets), res))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(targets), res))
		}
	}

	sort.Slice(result.Results, func(i, j int) bool {
		return result.Results[i].Index < result.Results[j].Index
	})

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, manifestFile)
	if err := writeManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))

	e.logger.Info("bulk export finished",
		"lists", result.TotalLists, "ok", result.SuccessfulExports, "failed", result.FailedExports, "dir", opts.OutputDir)
	return result, nil
}

// produce fetches each target in order and queues it for the workers.
// Fetch failures are reported directly on results.
func (e *ExportEngine) produce(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	prog chan<- ProgressUpdate,
	targets []Target,
	names map[int]string,
	jobs chan<- exportJob,
	results chan<- ListExportResult,
) {
	defer wg.Done()
	defer close(jobs)

	for i, target := range targets {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		e.sendProgress(prog, fetchingListUpdate(i+1, len(targets), target))
		list := &formatter.MovieList{Slug: target.Slug(), Title: title(target, names)}

		movies, err := e.fetch(ctx, target)
		if err != nil {
			failed := ListExportResult{
				Index:  i,
				Target: target,
				Slug:   list.Slug,
				Title:  list.Title,
				Error:  fmt.Errorf("failed to fetch listing: %w", err),
			}
			select {
			case results <- failed:
			case <-ctx.Done():
				return
			}
			continue
		}
		list.Movies = movies

		select {
		case jobs <- exportJob{index: i, target: target, list: list}:
		case <-ctx.Done():
			return
		}
	}
}

// exportWorker writes listings from the jobs channel until it is closed.
func (e *ExportEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan exportJob,
	results chan<- ListExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- e.exportList(ctx, job, opts)
	}
}

// exportList writes a single listing in the requested format.
func (e *ExportEngine) exportList(ctx context.Context, j exportJob, opts BulkExportOpts) ListExportResult {
	result := ListExportResult{
		Index:  j.index,
		Target: j.target,
		Slug:   j.list.Slug,
		Title:  j.list.Title,
		Movies: len(j.list.Movies),
		Files:  []string{},
	}

	switch opts.Format {
	case "csv":
		csvRes, err := formatter.WriteCSVExport(j.list, filepath.Join(opts.OutputDir, j.list.Slug))
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.MoviesFile, csvRes.MetadataFile}

	case "markdown":
		var imageURL string
		if opts.Covers {
			imageURL = formatter.CoverURL(j.list)
		}

		mdRes, err := formatter.WriteMarkdownExport(ctx, j.list, filepath.Join(opts.OutputDir, j.list.Slug), imageURL)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		if mdRes.Warning != "" {
			e.logger.Warn(mdRes.Warning, "list", j.list.Slug)
		}
		result.Files = mdRes.Files

	case "txt":
		path, err := formatter.WriteTextExport(j.list, filepath.Join(opts.OutputDir, j.list.Slug+"_movies.txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	default:
		jsonPath := filepath.Join(opts.OutputDir, j.list.Slug+".json")
		data, err := formatter.ExportToJSON(j.list)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
	}

	result.Success = true
	return result
}

func writeManifest(result *BulkExportResult, format, path string) error {
	manifest := struct {
		Format     string    `json:"format"`
		ExportedAt time.Time `json:"exported_at"`
		*BulkExportResult
	}{
		Format:           format,
		ExportedAt:       time.Now().UTC(),
		BulkExportResult: result,
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
