package analysis

import (
	"fmt"
	"sort"
	"strings"
)

// AllGroups is the wildcard value for a selection dimension.
const AllGroups = "all"

// Score is a normalized Likert response. Valid is false for the missing
// sentinel; Value is only meaningful when Valid is true.
type Score struct {
	Value int  `json:"value"`
	Valid bool `json:"valid"`
}

// ValidScore returns a valid score with the given value.
func ValidScore(v int) Score {
	return Score{Value: v, Valid: true}
}

// MissingScore returns the missing sentinel.
func MissingScore() Score {
	return Score{}
}

// ResponseRow is one respondent's record. Immutable once loaded.
type ResponseRow struct {
	ID       string            `json:"id"`
	Team     string            `json:"team"`
	Location string            `json:"location"`
	Answers  map[string]string `json:"answers"`
}

// Answer returns the raw cell value for a question and whether the
// question exists in this row at all.
func (r ResponseRow) Answer(question string) (string, bool) {
	v, ok := r.Answers[question]
	return v, ok
}

// Scale describes the valid Likert range and the label mapping used to
// convert textual responses into scores.
type Scale struct {
	Min             int            `json:"min"`
	Max             int            `json:"max"`
	Labels          map[string]int `json:"labels,omitempty"`
	RoundFractional bool           `json:"round_fractional"`
}

// DefaultScale returns the standard 1-5 agreement scale.
func DefaultScale() Scale {
	return Scale{
		Min: 1,
		Max: 5,
		Labels: map[string]int{
			"Strongly Disagree": 1,
			"Disagree":          2,
			"Neutral":           3,
			"Agree":             4,
			"Strongly Agree":    5,
		},
		RoundFractional: true,
	}
}

// IsValid checks that the scale bounds are coherent and every mapped
// label lands inside them.
func (s Scale) IsValid() bool {
	if s.Min >= s.Max {
		return false
	}
	for _, v := range s.Labels {
		if v < s.Min || v > s.Max {
			return false
		}
	}
	return true
}

// Midpoint returns the middle of the scale, used for absolute-level labels.
func (s Scale) Midpoint() float64 {
	return float64(s.Min+s.Max) / 2
}

// Contains reports whether v lies inside the valid range.
func (s Scale) Contains(v int) bool {
	return v >= s.Min && v <= s.Max
}

// Category is a named grouping of questions for rollup reporting.
// Categories are ordered as configured; order is preserved in reports.
type Category struct {
	Name      string   `json:"name"`
	Questions []string `json:"questions"`
}

// Selection is the immutable team/location filter for one analysis run.
// Either dimension may be the AllGroups wildcard.
type Selection struct {
	Team     string `json:"team"`
	Location string `json:"location"`
}

// Matches reports whether a row falls inside the selection.
func (s Selection) Matches(r ResponseRow) bool {
	if s.Team != AllGroups && r.Team != s.Team {
		return false
	}
	if s.Location != AllGroups && r.Location != s.Location {
		return false
	}
	return true
}

// Filter returns the rows matching the selection, preserving order.
func (s Selection) Filter(rows []ResponseRow) []ResponseRow {
	out := make([]ResponseRow, 0, len(rows))
	for _, r := range rows {
		if s.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// TeamDisplay returns a human-readable team name.
func (s Selection) TeamDisplay() string {
	if s.Team == AllGroups {
		return "All Teams"
	}
	return s.Team
}

// LocationDisplay returns a human-readable location name.
func (s Selection) LocationDisplay() string {
	if s.Location == AllGroups {
		return "All Locations"
	}
	return s.Location
}

// String implements fmt.Stringer.
func (s Selection) String() string {
	return s.TeamDisplay() + " + " + s.LocationDisplay()
}

// QuestionStats holds per-question aggregates. HasData distinguishes the
// explicit no-data state from a true mean of zero.
type QuestionStats struct {
	Question string  `json:"question"`
	Mean     float64 `json:"mean"`
	HasData  bool    `json:"has_data"`
	Valid    int     `json:"valid"`
	Missing  int     `json:"missing"`
}

// CategoryStats holds per-category aggregates for one aggregation pass.
// Mean is the mean of question means, so every question carries equal
// weight regardless of how many responses it received.
type CategoryStats struct {
	Name         string          `json:"name"`
	Mean         float64         `json:"mean"`
	HasData      bool            `json:"has_data"`
	Valid        int             `json:"valid"`
	Missing      int             `json:"missing"`
	Questions    []QuestionStats `json:"questions"`
	Distribution map[int]int     `json:"distribution,omitempty"`
}

// OverallStats is the all-categories aggregate: a flattened mean over
// every valid score, so categories with few questions cannot dominate.
type OverallStats struct {
	Mean    float64 `json:"mean"`
	HasData bool    `json:"has_data"`
	Valid   int     `json:"valid"`
	Missing int     `json:"missing"`
}

// Stats is the result of one aggregation pass over a row subset.
type Stats struct {
	Rows       int             `json:"rows"`
	Categories []CategoryStats `json:"categories"`
	Overall    OverallStats    `json:"overall"`
}

// CategoryByName returns the stats for a named category.
func (s Stats) CategoryByName(name string) (CategoryStats, bool) {
	for _, c := range s.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return CategoryStats{}, false
}

// NoteKind classifies a data-quality note.
type NoteKind string

const (
	// NoteUnrecognizedValue marks a raw value that is neither numeric
	// nor in the label map.
	NoteUnrecognizedValue NoteKind = "unrecognized_value"
	// NoteOutOfRange marks a numeric value outside the scale bounds.
	NoteOutOfRange NoteKind = "out_of_range"
	// NoteUndefinedQuestion marks a configured question absent from the
	// loaded data entirely.
	NoteUndefinedQuestion NoteKind = "undefined_question"
	// NoteQuestionMissingFromRow marks a question absent from an
	// individual row.
	NoteQuestionMissingFromRow NoteKind = "question_missing_from_row"
)

// Note is a non-fatal data-quality finding surfaced to the caller.
type Note struct {
	Kind     NoteKind `json:"kind"`
	Category string   `json:"category,omitempty"`
	Question string   `json:"question,omitempty"`
	RowID    string   `json:"row_id,omitempty"`
	RawValue string   `json:"raw_value,omitempty"`
}

// String implements fmt.Stringer.
func (n Note) String() string {
	parts := []string{string(n.Kind)}
	if n.Category != "" {
		parts = append(parts, "category="+n.Category)
	}
	if n.Question != "" {
		parts = append(parts, "question="+n.Question)
	}
	if n.RowID != "" {
		parts = append(parts, "row="+n.RowID)
	}
	if n.RawValue != "" {
		parts = append(parts, fmt.Sprintf("value=%q", n.RawValue))
	}
	return strings.Join(parts, " ")
}

// Comment is a free-text response attributed to a category.
type Comment struct {
	Category string `json:"category"`
	Text     string `json:"text"`
	Team     string `json:"team"`
	Location string `json:"location"`
}

// SortedScoreValues returns the distribution keys in ascending order,
// for stable histogram rendering.
func SortedScoreValues(dist map[int]int) []int {
	keys := make([]int, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
