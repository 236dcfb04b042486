package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// RunResult bundles everything one analysis run produces, as plain
// structured data for the reporting and transport layers.
type RunResult struct {
	Selection  Selection  `json:"selection"`
	Population Stats      `json:"population"`
	Subset     Stats      `json:"subset"`
	Comparison Comparison `json:"comparison"`
	Assessment Assessment `json:"assessment"`
	Comments   []Comment  `json:"comments,omitempty"`
	Notes      []Note     `json:"notes,omitempty"`
	// Rows holds the filtered subset for detail reporting.
	Rows []ResponseRow `json:"-"`
}

// Runner orchestrates one or more analysis runs over a loaded dataset.
// Population statistics are computed once and reused across runs; the
// shared aggregator memoizes normalization so selection passes only pay
// for the filtering.
type Runner struct {
	rows           []ResponseRow
	categories     []Category
	commentColumns map[string]string
	agg            *Aggregator
	engine         *Engine
	logger         *slog.Logger

	popOnce    sync.Once
	population Stats
	popErr     error
}

// NewRunner creates a runner over an already-loaded dataset.
func NewRunner(rows []ResponseRow, categories []Category, scale Scale, thresholds Thresholds, commentColumns map[string]string, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		rows:           rows,
		categories:     categories,
		commentColumns: commentColumns,
		agg:            NewAggregator(categories, scale, logger),
		engine:         NewEngine(thresholds, scale),
		logger:         logger,
	}
}

// Rows returns the loaded dataset.
func (r *Runner) Rows() []ResponseRow {
	return r.rows
}

// Population returns the full-population statistics, computing them on
// first use.
func (r *Runner) Population() (Stats, error) {
	r.popOnce.Do(func() {
		r.population, r.popErr = r.agg.Aggregate(r.rows)
	})
	return r.population, r.popErr
}

// Run computes a full analysis for the given selection: subset
// statistics, comparison against the population, and recommendations.
func (r *Runner) Run(ctx context.Context, sel Selection) (*RunResult, error) {
	start := time.Now()

	population, err := r.Population()
	if err != nil {
		return nil, fmt.Errorf("population pass: %w", err)
	}

	filtered := sel.Filter(r.rows)
	subset, err := r.agg.Aggregate(filtered)
	if err != nil {
		return nil, fmt.Errorf("selection pass: %w", err)
	}

	cmp := Compare(subset, population)
	assessment := r.engine.Evaluate(cmp, sel)

	result := &RunResult{
		Selection:  sel,
		Population: population,
		Subset:     subset,
		Comparison: cmp,
		Assessment: assessment,
		Comments:   CollectComments(filtered, r.categories, r.commentColumns),
		Notes:      r.agg.Notes(),
		Rows:       filtered,
	}

	r.logger.InfoContext(ctx, "analysis run complete",
		"selection", sel.String(),
		"subset_rows", len(filtered),
		"population_rows", len(r.rows),
		"notes", len(result.Notes),
		"duration", time.Since(start).String(),
	)

	return result, nil
}
