package analysis

import (
	"fmt"
	"math"
)

// PerformanceLabel classifies a category's delta against the population.
type PerformanceLabel string

const (
	LabelSignificantlyAbove PerformanceLabel = "significantly_above"
	LabelAbove              PerformanceLabel = "above"
	LabelSimilar            PerformanceLabel = "similar"
	LabelBelow              PerformanceLabel = "below"
	LabelSignificantlyBelow PerformanceLabel = "significantly_below"
	LabelNotComparable      PerformanceLabel = "not_comparable"
)

// Rank orders labels from best to worst. Not-comparable ranks last.
func (l PerformanceLabel) Rank() int {
	switch l {
	case LabelSignificantlyAbove:
		return 0
	case LabelAbove:
		return 1
	case LabelSimilar:
		return 2
	case LabelBelow:
		return 3
	case LabelSignificantlyBelow:
		return 4
	default:
		return 5
	}
}

// IsBelow reports whether the label marks underperformance.
func (l PerformanceLabel) IsBelow() bool {
	return l == LabelBelow || l == LabelSignificantlyBelow
}

// LevelLabel classifies a raw selection mean against the scale midpoint.
type LevelLabel string

const (
	LevelBelowExpectations LevelLabel = "below_expectations"
	LevelMeetsExpectations LevelLabel = "meets_expectations"
	LevelNoData            LevelLabel = "no_data"
)

// Thresholds configures the ordered delta classification rules.
type Thresholds struct {
	// Significant is the |delta| beyond which performance is
	// significantly above or below the population.
	Significant float64 `json:"significant"`
	// Similar is the |delta| within which performance counts as on par.
	Similar float64 `json:"similar"`
}

// DefaultThresholds returns the standard classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Significant: 0.2, Similar: 0.1}
}

// IsValid checks threshold ordering.
func (t Thresholds) IsValid() bool {
	return t.Similar > 0 && t.Significant > t.Similar
}

// CategoryAssessment carries the qualitative labels for one category.
type CategoryAssessment struct {
	Category string           `json:"category"`
	Label    PerformanceLabel `json:"label"`
	Level    LevelLabel       `json:"level"`
}

// Assessment is the recommendation engine's output for one run.
type Assessment struct {
	Categories []CategoryAssessment `json:"categories"`
	Guidance   []string             `json:"guidance"`
}

// Engine maps comparison results to qualitative labels and textual
// guidance. It is a pure mapping: identical input always yields
// identical output.
type Engine struct {
	thresholds Thresholds
	scale      Scale
}

// NewEngine creates a recommendation engine. Invalid thresholds fall
// back to the defaults.
func NewEngine(thresholds Thresholds, scale Scale) *Engine {
	if !thresholds.IsValid() {
		thresholds = DefaultThresholds()
	}
	return &Engine{thresholds: thresholds, scale: scale}
}

// Label classifies a delta through the ordered threshold table. The
// mapping is monotonic: a larger defined delta never yields a worse
// label.
func (e *Engine) Label(d Delta) PerformanceLabel {
	if !d.Comparable {
		return LabelNotComparable
	}
	switch {
	case d.Value > e.thresholds.Significant:
		return LabelSignificantlyAbove
	case d.Value > e.thresholds.Similar:
		return LabelAbove
	case math.Abs(d.Value) <= e.thresholds.Similar:
		return LabelSimilar
	case d.Value < -e.thresholds.Significant:
		return LabelSignificantlyBelow
	default:
		return LabelBelow
	}
}

// Level classifies an absolute mean against the scale midpoint.
func (e *Engine) Level(mean float64, hasData bool) LevelLabel {
	if !hasData {
		return LevelNoData
	}
	if mean < e.scale.Midpoint() {
		return LevelBelowExpectations
	}
	return LevelMeetsExpectations
}

// Evaluate assigns labels per category and derives textual guidance for
// the selection.
func (e *Engine) Evaluate(cmp Comparison, sel Selection) Assessment {
	out := Assessment{
		Categories: make([]CategoryAssessment, 0, len(cmp.Categories)),
	}

	for _, cc := range cmp.Categories {
		out.Categories = append(out.Categories, CategoryAssessment{
			Category: cc.Category,
			Label:    e.Label(cc.Delta),
			Level:    e.Level(cc.Selection.Mean, cc.Selection.HasData),
		})
	}

	out.Guidance = e.guidance(cmp, out.Categories, sel)
	return out
}

func (e *Engine) guidance(cmp Comparison, categories []CategoryAssessment, sel Selection) []string {
	if cmp.SelectionRows == 0 {
		return []string{"No data available for this combination - unable to provide recommendations."}
	}

	var guidance []string

	// Category focus: the lowest-scoring category, when it also trails
	// the population.
	if worst, ok := worstCategory(cmp); ok {
		label := e.Label(worst.Delta)
		if label.IsBelow() {
			guidance = append(guidance, fmt.Sprintf(
				"CATEGORY FOCUS: Address %s (score: %.2f, %s)",
				worst.Category, worst.Selection.Mean, label,
			))
		}
	}

	// Combination impact for a fully specific selection.
	if sel.Team != AllGroups && sel.Location != AllGroups {
		below := 0
		for _, ca := range categories {
			if ca.Label.IsBelow() {
				below++
			}
		}
		if below > 0 {
			guidance = append(guidance, fmt.Sprintf(
				"COMBINATION IMPACT: %s in %s shows lower performance in %d categories",
				sel.Team, sel.Location, below,
			))
		}
	}

	if len(guidance) == 0 {
		guidance = append(guidance, "No specific issues identified - performance appears satisfactory for this combination.")
	}
	return guidance
}

// worstCategory returns the category with the lowest selection mean
// among those with data.
func worstCategory(cmp Comparison) (CategoryComparison, bool) {
	found := false
	var worst CategoryComparison
	for _, cc := range cmp.Categories {
		if !cc.Selection.HasData {
			continue
		}
		if !found || cc.Selection.Mean < worst.Selection.Mean {
			worst = cc
			found = true
		}
	}
	return worst, found
}
