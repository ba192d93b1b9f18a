package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nicolasrp432/PlaywrongIa/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes several listings to disk at once.
//
// Without --trending, --genre or --search the home listings are exported.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	var targets []tasks.Target
	if cmd.Bool("trending") {
		targets = append(targets, tasks.TrendingTarget())
	}
	for _, query := range cmd.StringSlice("genre") {
		genre, err := r.store.LookupGenre(ctx, query)
		if err != nil {
			return err
		}
		targets = append(targets, tasks.GenreTarget(genre.ID, genre.Name))
	}
	for _, query := range cmd.StringSlice("search") {
		targets = append(targets, tasks.SearchTarget(query))
	}
	if len(targets) == 0 {
		targets = tasks.DefaultTargets()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	progress := make(chan tasks.ProgressUpdate, 16)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	engine := tasks.NewExportEngine(r.svc, r.logger)
	result, err := engine.BulkExport(ctx, progress, targets, tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("dir"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		Covers:     cmd.Bool("covers"),
	})
	close(progress)
	wg.Wait()

	interrupted := errors.Is(err, context.Canceled) && result != nil
	if err != nil && !interrupted {
		return err
	}

	if cmd.Bool("json") {
		if werr := r.writeJSON(result, true); werr != nil {
			return werr
		}
		return err
	}

	if interrupted {
		r.logger.Warn("export interrupted", "exported", result.SuccessfulExports, "total", result.TotalLists)
		r.writePlainHeader(fmt.Sprintf("Exportación interrumpida: %d/%d listas", result.SuccessfulExports, result.TotalLists))
	} else {
		r.writePlainHeader(fmt.Sprintf("Exportación: %d/%d listas", result.SuccessfulExports, result.TotalLists))
	}
	for _, res := range result.Results {
		if res.Success {
			r.writePlain("✓ %-40s %3d películas\n", res.Title, res.Movies)
		} else {
			r.writePlain("✗ %-40s %s\n", res.Title, res.ErrorMessage)
		}
	}
	if interrupted {
		return err
	}
	r.writePlain("\nManifest: %s\n", result.ManifestPath)
	return nil
}
