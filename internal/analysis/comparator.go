package analysis

import "sort"

// Delta is a signed selection-minus-population difference. Comparable is
// false when either side is in the no-data state.
type Delta struct {
	Value      float64 `json:"value"`
	Comparable bool    `json:"comparable"`
}

// QuestionComparison pairs one question's selection and population stats.
type QuestionComparison struct {
	Question   string        `json:"question"`
	Selection  QuestionStats `json:"selection"`
	Population QuestionStats `json:"population"`
	Delta      Delta         `json:"delta"`
}

// CategoryComparison pairs one category's selection and population stats
// with per-question detail.
type CategoryComparison struct {
	Category   string               `json:"category"`
	Selection  CategoryStats        `json:"selection"`
	Population CategoryStats        `json:"population"`
	Delta      Delta                `json:"delta"`
	Questions  []QuestionComparison `json:"questions"`
}

// Comparison is the result of comparing a selection subset against the
// full population. Created fresh each run and never mutated afterwards.
type Comparison struct {
	SelectionRows  int                  `json:"selection_rows"`
	PopulationRows int                  `json:"population_rows"`
	Categories     []CategoryComparison `json:"categories"`
	Overall        Delta                `json:"overall"`
}

// CategoryByName returns the comparison for a named category.
func (c Comparison) CategoryByName(name string) (CategoryComparison, bool) {
	for _, cc := range c.Categories {
		if cc.Category == name {
			return cc, true
		}
	}
	return CategoryComparison{}, false
}

// Compare derives deltas between a selection pass and the population
// pass. Categories are ranked by descending delta, non-comparable
// categories last, ties broken by name ascending, so report ordering is
// deterministic.
func Compare(selection, population Stats) Comparison {
	cmp := Comparison{
		SelectionRows:  selection.Rows,
		PopulationRows: population.Rows,
		Categories:     make([]CategoryComparison, 0, len(selection.Categories)),
		Overall:        delta(selection.Overall.Mean, selection.Overall.HasData, population.Overall.Mean, population.Overall.HasData),
	}

	for _, sel := range selection.Categories {
		pop, ok := population.CategoryByName(sel.Name)
		if !ok {
			pop = CategoryStats{Name: sel.Name}
		}

		cc := CategoryComparison{
			Category:   sel.Name,
			Selection:  sel,
			Population: pop,
			Delta:      delta(sel.Mean, sel.HasData, pop.Mean, pop.HasData),
			Questions:  make([]QuestionComparison, 0, len(sel.Questions)),
		}

		// Questions keep configured order; only categories are ranked.
		for _, sq := range sel.Questions {
			pq := questionByName(pop.Questions, sq.Question)
			cc.Questions = append(cc.Questions, QuestionComparison{
				Question:   sq.Question,
				Selection:  sq,
				Population: pq,
				Delta:      delta(sq.Mean, sq.HasData, pq.Mean, pq.HasData),
			})
		}

		cmp.Categories = append(cmp.Categories, cc)
	}

	sort.SliceStable(cmp.Categories, func(i, j int) bool {
		a, b := cmp.Categories[i], cmp.Categories[j]
		if a.Delta.Comparable != b.Delta.Comparable {
			return a.Delta.Comparable
		}
		if a.Delta.Comparable && a.Delta.Value != b.Delta.Value {
			return a.Delta.Value > b.Delta.Value
		}
		return a.Category < b.Category
	})

	return cmp
}

func delta(selMean float64, selHas bool, popMean float64, popHas bool) Delta {
	if !selHas || !popHas {
		return Delta{}
	}
	return Delta{Value: selMean - popMean, Comparable: true}
}

func questionByName(questions []QuestionStats, name string) QuestionStats {
	for _, q := range questions {
		if q.Question == name {
			return q
		}
	}
	return QuestionStats{Question: name}
}
