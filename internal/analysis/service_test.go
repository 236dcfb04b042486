package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunnerGoldenScenario(t *testing.T) {
	rows := testRows()
	thresholds := Thresholds{Significant: 0.5, Similar: 0.1}
	runner := NewRunner(rows, testCategories(), DefaultScale(), thresholds, nil, nil)

	result, err := runner.Run(context.Background(), Selection{Team: "Eng", Location: AllGroups})
	require.NoError(t, err)

	popC1, ok := result.Population.CategoryByName("C1")
	require.True(t, ok)
	assert.InDelta(t, 3.0, popC1.Mean, 1e-9)

	subC1, ok := result.Subset.CategoryByName("C1")
	require.True(t, ok)
	assert.InDelta(t, 3.75, subC1.Mean, 1e-9)

	cc, ok := result.Comparison.CategoryByName("C1")
	require.True(t, ok)
	require.True(t, cc.Delta.Comparable)
	assert.InDelta(t, 0.75, cc.Delta.Value, 1e-9)

	require.Len(t, result.Assessment.Categories, 1)
	assert.Equal(t, LabelSignificantlyAbove, result.Assessment.Categories[0].Label)
	assert.Equal(t, LevelMeetsExpectations, result.Assessment.Categories[0].Level)

	assert.Equal(t, 2, result.Comparison.SelectionRows)
	assert.Equal(t, 3, result.Comparison.PopulationRows)
	assert.Len(t, result.Rows, 2)
}

func TestRunnerNoDataCategory(t *testing.T) {
	// Every answer in the category is an unmapped "N/A": the aggregator
	// must report no data and the comparator must mark the delta not
	// comparable.
	rows := []ResponseRow{
		{ID: "r1", Team: "Eng", Answers: map[string]string{"Q1": "N/A", "Q2": "N/A"}},
		{ID: "r2", Team: "Ops", Answers: map[string]string{"Q1": "N/A", "Q2": "N/A"}},
	}
	runner := NewRunner(rows, testCategories(), DefaultScale(), DefaultThresholds(), nil, nil)

	result, err := runner.Run(context.Background(), Selection{Team: "Eng", Location: AllGroups})
	require.NoError(t, err)

	c1, ok := result.Subset.CategoryByName("C1")
	require.True(t, ok)
	assert.False(t, c1.HasData)

	cc, ok := result.Comparison.CategoryByName("C1")
	require.True(t, ok)
	assert.False(t, cc.Delta.Comparable)

	require.Len(t, result.Assessment.Categories, 1)
	assert.Equal(t, LabelNotComparable, result.Assessment.Categories[0].Label)
	assert.Equal(t, LevelNoData, result.Assessment.Categories[0].Level)
}

func TestRunnerEmptySelection(t *testing.T) {
	runner := NewRunner(testRows(), testCategories(), DefaultScale(), DefaultThresholds(), nil, nil)

	result, err := runner.Run(context.Background(), Selection{Team: "Ghost Team", Location: AllGroups})
	require.NoError(t, err, "empty selection is informational, not a failure")

	assert.Equal(t, 0, result.Comparison.SelectionRows)
	for _, c := range result.Subset.Categories {
		assert.False(t, c.HasData)
	}
	require.NotEmpty(t, result.Assessment.Guidance)
	assert.Contains(t, result.Assessment.Guidance[0], "No data available")
}

func TestRunnerCollectsComments(t *testing.T) {
	rows := []ResponseRow{
		{ID: "r1", Team: "Eng", Location: "Berlin", Answers: map[string]string{
			"Q1": "4", "Q2": "5", "C1 Comments": "More pairing time please",
		}},
		{ID: "r2", Team: "Eng", Location: "Berlin", Answers: map[string]string{
			"Q1": "3", "Q2": "3", "C1 Comments": "-",
		}},
	}
	commentColumns := map[string]string{"C1": "C1 Comments"}
	runner := NewRunner(rows, testCategories(), DefaultScale(), DefaultThresholds(), commentColumns, nil)

	result, err := runner.Run(context.Background(), Selection{Team: "Eng", Location: AllGroups})
	require.NoError(t, err)

	require.Len(t, result.Comments, 1, "short placeholder comments are dropped")
	assert.Equal(t, "C1", result.Comments[0].Category)
	assert.Equal(t, "More pairing time please", result.Comments[0].Text)
	assert.Equal(t, "Eng", result.Comments[0].Team)
	assert.Equal(t, "Berlin", result.Comments[0].Location)
}

func TestSelectionFilter(t *testing.T) {
	rows := testRows()

	tests := []struct {
		name     string
		sel      Selection
		expected int
	}{
		{"specific team", Selection{Team: "Eng", Location: AllGroups}, 2},
		{"specific location", Selection{Team: AllGroups, Location: "Lisbon"}, 1},
		{"team and location", Selection{Team: "Eng", Location: "Berlin"}, 2},
		{"mismatched combination", Selection{Team: "Eng", Location: "Lisbon"}, 0},
		{"all rows", Selection{Team: AllGroups, Location: AllGroups}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.sel.Filter(rows), tt.expected)
		})
	}
}

func TestSelectionDisplay(t *testing.T) {
	sel := Selection{Team: AllGroups, Location: "Berlin"}
	assert.Equal(t, "All Teams", sel.TeamDisplay())
	assert.Equal(t, "Berlin", sel.LocationDisplay())
	assert.Equal(t, "All Teams + Berlin", sel.String())
}
