package analysis

import (
	"math"
	"strconv"
	"strings"
)

// Reason explains a normalization outcome. ReasonOK accompanies every
// valid score; the remaining reasons all yield the missing sentinel.
type Reason string

const (
	ReasonOK           Reason = "ok"
	ReasonEmpty        Reason = "empty"
	ReasonOutOfRange   Reason = "out_of_range"
	ReasonUnrecognized Reason = "unrecognized"
)

// Normalizer converts raw cell values into normalized scores against a
// fixed scale. It is pure: the same input always yields the same output
// and no state is mutated.
type Normalizer struct {
	scale Scale
	// labels holds sanitized label keys; lowered holds the same keys
	// folded for the case-insensitive retry.
	labels  map[string]int
	lowered map[string]int
}

// NewNormalizer builds a normalizer for the given scale. Label keys are
// whitespace-normalized up front so lookups match however the source
// spreadsheet formatted them.
func NewNormalizer(scale Scale) *Normalizer {
	n := &Normalizer{
		scale:   scale,
		labels:  make(map[string]int, len(scale.Labels)),
		lowered: make(map[string]int, len(scale.Labels)),
	}
	for label, value := range scale.Labels {
		key := SanitizeText(label)
		n.labels[key] = value
		n.lowered[strings.ToLower(key)] = value
	}
	return n
}

// Scale returns the scale the normalizer was built with.
func (n *Normalizer) Scale() Scale {
	return n.scale
}

// Normalize maps a raw cell value to exactly one of {valid score,
// missing}. It never fails: out-of-range numbers and unrecognized text
// become the missing sentinel, with the reason reported for data-quality
// notes.
func (n *Normalizer) Normalize(raw string) (Score, Reason) {
	text := SanitizeText(raw)
	if text == "" {
		return MissingScore(), ReasonEmpty
	}

	// Numeric input first: survey exports mix label columns with
	// already-numeric ones.
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		v := int(f)
		if f != math.Trunc(f) {
			if !n.scale.RoundFractional {
				return MissingScore(), ReasonUnrecognized
			}
			v = int(math.Round(f))
		}
		if !n.scale.Contains(v) {
			return MissingScore(), ReasonOutOfRange
		}
		return ValidScore(v), ReasonOK
	}

	if v, ok := n.labels[text]; ok {
		return ValidScore(v), ReasonOK
	}
	if v, ok := n.lowered[strings.ToLower(text)]; ok {
		return ValidScore(v), ReasonOK
	}

	return MissingScore(), ReasonUnrecognized
}

// SanitizeText collapses every whitespace run into a single space and
// trims the ends. Headers and label lookups share this so config values
// match the spreadsheet regardless of stray tabs or newlines.
func SanitizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
