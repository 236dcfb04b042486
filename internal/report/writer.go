package report

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"formcli/internal/analysis"
)

// Writer renders every configured artifact format for a run.
type Writer struct {
	opts   DashboardOptions
	logger *slog.Logger
}

// NewWriter creates a report writer.
func NewWriter(scale analysis.Scale, categories []analysis.Category, commentColumns map[string]string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		opts: DashboardOptions{
			Scale:          scale,
			Categories:     categories,
			CommentColumns: commentColumns,
		},
		logger: logger,
	}
}

// WriteAll renders all artifacts into the run directory concurrently
// and returns the paths written, sorted for stable output. The first
// failing format aborts the rest.
func (w *Writer) WriteAll(ctx context.Context, result *analysis.RunResult, run Run) ([]string, error) {
	var (
		mu    sync.Mutex
		paths []string
	)
	record := func(path string) {
		mu.Lock()
		paths = append(paths, path)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		path, err := WriteJSON(result, run)
		if err != nil {
			return err
		}
		record(path)
		return nil
	})
	g.Go(func() error {
		path, err := WriteText(result, run)
		if err != nil {
			return err
		}
		record(path)
		return nil
	})
	g.Go(func() error {
		path, err := WriteCSV(result, run)
		if err != nil {
			return err
		}
		record(path)
		return nil
	})
	g.Go(func() error {
		path, err := WriteDashboard(result, w.opts, run)
		if err != nil {
			return err
		}
		record(path)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(paths)

	w.logger.InfoContext(ctx, "analysis artifacts written",
		"run_id", run.ID,
		"run_dir", run.Dir,
		"files", len(paths),
	)
	return paths, nil
}
