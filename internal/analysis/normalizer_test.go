package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizer(t *testing.T) {
	scale := DefaultScale()
	n := NewNormalizer(scale)

	tests := []struct {
		name     string
		raw      string
		expected Score
		reason   Reason
	}{
		{"mapped label", "Strongly Agree", ValidScore(5), ReasonOK},
		{"mapped label lowest", "Strongly Disagree", ValidScore(1), ReasonOK},
		{"case-insensitive label", "strongly agree", ValidScore(5), ReasonOK},
		{"label with extra whitespace", "  Strongly \t Agree ", ValidScore(5), ReasonOK},
		{"numeric in range", "4", ValidScore(4), ReasonOK},
		{"numeric at lower bound", "1", ValidScore(1), ReasonOK},
		{"numeric at upper bound", "5", ValidScore(5), ReasonOK},
		{"fractional rounds to nearest", "3.6", ValidScore(4), ReasonOK},
		{"fractional rounds down", "3.4", ValidScore(3), ReasonOK},
		{"numeric above range", "6", MissingScore(), ReasonOutOfRange},
		{"numeric below range", "0", MissingScore(), ReasonOutOfRange},
		{"fractional rounding out of range", "5.6", MissingScore(), ReasonOutOfRange},
		{"empty cell", "", MissingScore(), ReasonEmpty},
		{"whitespace only", "   \t\n", MissingScore(), ReasonEmpty},
		{"unmapped text", "N/A", MissingScore(), ReasonUnrecognized},
		{"unmapped sentence", "prefer not to say", MissingScore(), ReasonUnrecognized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, reason := n.Normalize(tt.raw)
			assert.Equal(t, tt.expected, score)
			assert.Equal(t, tt.reason, reason)
		})
	}
}

func TestNormalizerFractionalRejectedWithoutRounding(t *testing.T) {
	scale := DefaultScale()
	scale.RoundFractional = false
	n := NewNormalizer(scale)

	score, reason := n.Normalize("3.5")
	assert.Equal(t, MissingScore(), score)
	assert.Equal(t, ReasonUnrecognized, reason)

	// Exact integers still pass.
	score, reason = n.Normalize("3")
	assert.Equal(t, ValidScore(3), score)
	assert.Equal(t, ReasonOK, reason)
}

// Normalization must be idempotent and pure: repeated calls with the
// same input always yield the same outcome.
func TestNormalizerIdempotent(t *testing.T) {
	n := NewNormalizer(DefaultScale())

	inputs := []string{"Agree", "3", "N/A", "", "7", "2.5"}
	for _, raw := range inputs {
		first, firstReason := n.Normalize(raw)
		for i := 0; i < 3; i++ {
			score, reason := n.Normalize(raw)
			require.Equal(t, first, score, "input %q", raw)
			require.Equal(t, firstReason, reason, "input %q", raw)
		}
	}
}

// Every label in the configured map must round-trip; everything outside
// the numeric domain and the map must be missing.
func TestNormalizerTotality(t *testing.T) {
	scale := DefaultScale()
	n := NewNormalizer(scale)

	for label, want := range scale.Labels {
		score, reason := n.Normalize(label)
		require.Equal(t, ReasonOK, reason, "label %q", label)
		require.Equal(t, ValidScore(want), score, "label %q", label)
	}

	for _, raw := range []string{"maybe", "yes", "-", "??", "agreeable"} {
		score, _ := n.Normalize(raw)
		assert.False(t, score.Valid, "raw %q must be missing", raw)
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"  How  satisfied\tare you?  ", "How satisfied are you?"},
		{"one\ntwo", "one two"},
		{"plain", "plain"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, SanitizeText(tt.in))
	}
}

func TestScale(t *testing.T) {
	t.Run("default is valid", func(t *testing.T) {
		assert.True(t, DefaultScale().IsValid())
	})

	t.Run("inverted bounds invalid", func(t *testing.T) {
		assert.False(t, Scale{Min: 5, Max: 1}.IsValid())
	})

	t.Run("label outside bounds invalid", func(t *testing.T) {
		s := Scale{Min: 1, Max: 5, Labels: map[string]int{"Over": 9}}
		assert.False(t, s.IsValid())
	})

	t.Run("midpoint", func(t *testing.T) {
		assert.Equal(t, 3.0, DefaultScale().Midpoint())
		assert.Equal(t, 2.5, Scale{Min: 0, Max: 5}.Midpoint())
	})
}
