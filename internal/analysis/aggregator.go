package analysis

import (
	"fmt"
	"log/slog"
	"sync"
)

type cacheKey struct {
	rowID    string
	question string
}

// Aggregator computes per-category and per-question statistics over
// arbitrary subsets of response rows. Normalization is memoized per
// (row, question) so the population pass and any number of selection
// passes never re-normalize the same cell.
//
// An Aggregator is safe for concurrent use: independent subsets may be
// aggregated in parallel.
type Aggregator struct {
	categories []Category
	norm       *Normalizer
	logger     *slog.Logger

	mu        sync.Mutex
	cache     map[cacheKey]Score
	notes     []Note
	noteSeen  map[Note]struct{}
	schemaSet bool
	schema    map[string]struct{}
}

// NewAggregator creates an aggregator for the configured categories and
// scale.
func NewAggregator(categories []Category, scale Scale, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		categories: categories,
		norm:       NewNormalizer(scale),
		logger:     logger,
		cache:      make(map[cacheKey]Score),
		noteSeen:   make(map[Note]struct{}),
		schema:     make(map[string]struct{}),
	}
}

// Normalizer exposes the underlying normalizer, mainly for callers that
// need to score stray cells outside an aggregation pass.
func (a *Aggregator) Normalizer() *Normalizer {
	return a.norm
}

// Aggregate computes statistics for the given rows. A nil row sequence
// is a structural error; an empty one is a legitimate no-data subset and
// yields stats with every category in the explicit no-data state.
func (a *Aggregator) Aggregate(rows []ResponseRow) (Stats, error) {
	if rows == nil {
		return Stats{}, fmt.Errorf("aggregate: nil response rows")
	}

	a.observeSchema(rows)

	stats := Stats{
		Rows:       len(rows),
		Categories: make([]CategoryStats, 0, len(a.categories)),
	}

	var overallSum float64
	for _, cat := range a.categories {
		cs := CategoryStats{
			Name:         cat.Name,
			Questions:    make([]QuestionStats, 0, len(cat.Questions)),
			Distribution: make(map[int]int),
		}

		var questionMeanSum float64
		questionsWithData := 0

		for _, q := range cat.Questions {
			qs := a.aggregateQuestion(cat.Name, q, rows, cs.Distribution)
			cs.Valid += qs.Valid
			cs.Missing += qs.Missing
			if qs.HasData {
				questionMeanSum += qs.Mean
				questionsWithData++
			}
			cs.Questions = append(cs.Questions, qs)
		}

		// Category mean is the mean of question means: each question
		// carries equal weight regardless of response counts.
		if questionsWithData > 0 {
			cs.Mean = questionMeanSum / float64(questionsWithData)
			cs.HasData = true
		}

		for v, count := range cs.Distribution {
			overallSum += float64(v * count)
		}
		stats.Overall.Valid += cs.Valid
		stats.Overall.Missing += cs.Missing
		stats.Categories = append(stats.Categories, cs)
	}

	// Overall mean is flattened over every valid score rather than
	// averaged across category means, so low-question-count categories
	// cannot dominate.
	if stats.Overall.Valid > 0 {
		stats.Overall.Mean = overallSum / float64(stats.Overall.Valid)
		stats.Overall.HasData = true
	}

	a.logger.Debug("aggregation pass complete",
		"rows", len(rows),
		"categories", len(stats.Categories),
		"valid_scores", stats.Overall.Valid,
		"missing", stats.Overall.Missing,
	)

	return stats, nil
}

// Notes returns the data-quality notes collected so far, deduplicated.
// Notes accumulate across passes because normalization happens once per
// cell.
func (a *Aggregator) Notes() []Note {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Note, len(a.notes))
	copy(out, a.notes)
	return out
}

func (a *Aggregator) aggregateQuestion(category, question string, rows []ResponseRow, dist map[int]int) QuestionStats {
	qs := QuestionStats{Question: question}

	if a.schemaKnown() && !a.questionInSchema(question) {
		a.addNote(Note{Kind: NoteUndefinedQuestion, Category: category, Question: question})
		return qs
	}

	sum := 0
	for _, row := range rows {
		raw, ok := row.Answer(question)
		if !ok {
			qs.Missing++
			a.addNote(Note{Kind: NoteQuestionMissingFromRow, Question: question, RowID: row.ID})
			continue
		}
		score := a.score(row.ID, category, question, raw)
		if !score.Valid {
			qs.Missing++
			continue
		}
		qs.Valid++
		sum += score.Value
		dist[score.Value]++
	}

	if qs.Valid > 0 {
		qs.Mean = float64(sum) / float64(qs.Valid)
		qs.HasData = true
	}
	return qs
}

// score normalizes one cell, memoized by (row, question). Data-quality
// notes are recorded on the first normalization only.
func (a *Aggregator) score(rowID, category, question, raw string) Score {
	key := cacheKey{rowID: rowID, question: question}

	a.mu.Lock()
	if s, ok := a.cache[key]; ok {
		a.mu.Unlock()
		return s
	}
	a.mu.Unlock()

	s, reason := a.norm.Normalize(raw)
	switch reason {
	case ReasonOutOfRange:
		a.addNote(Note{Kind: NoteOutOfRange, Category: category, Question: question, RowID: rowID, RawValue: raw})
	case ReasonUnrecognized:
		a.addNote(Note{Kind: NoteUnrecognizedValue, Category: category, Question: question, RowID: rowID, RawValue: raw})
	}

	a.mu.Lock()
	a.cache[key] = s
	a.mu.Unlock()
	return s
}

func (a *Aggregator) addNote(n Note) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.noteSeen[n]; ok {
		return
	}
	a.noteSeen[n] = struct{}{}
	a.notes = append(a.notes, n)
}

// observeSchema records which questions appear anywhere in the data, so
// configured questions that exist in no row can be flagged once instead
// of once per row.
func (a *Aggregator) observeSchema(rows []ResponseRow) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.schemaSet {
		return
	}
	for _, row := range rows {
		for q := range row.Answers {
			a.schema[q] = struct{}{}
		}
	}
	if len(rows) > 0 {
		a.schemaSet = true
	}
}

func (a *Aggregator) schemaKnown() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.schemaSet
}

func (a *Aggregator) questionInSchema(question string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.schema[question]
	return ok
}
