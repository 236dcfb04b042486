package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formcli/internal/analysis"
)

func sampleRows() []analysis.ResponseRow {
	return []analysis.ResponseRow{
		{ID: "r1", Team: "Eng", Location: "Berlin"},
		{ID: "r2", Team: "Eng", Location: "Lisbon"},
		{ID: "r3", Team: "Ops", Location: "Berlin"},
		{ID: "r4", Team: "Sales", Location: ""},
	}
}

func TestAvailable(t *testing.T) {
	g := Available(sampleRows())

	assert.Equal(t, []GroupCount{
		{Name: "Eng", Responses: 2},
		{Name: "Ops", Responses: 1},
		{Name: "Sales", Responses: 1},
	}, g.Teams)

	// Blank locations do not contribute.
	assert.Equal(t, []GroupCount{
		{Name: "Berlin", Responses: 2},
		{Name: "Lisbon", Responses: 1},
	}, g.Locations)

	assert.Equal(t, []string{"Eng", "Ops", "Sales"}, g.TeamNames())
	assert.Equal(t, []string{"Berlin", "Lisbon"}, g.LocationNames())
}

func TestResolve(t *testing.T) {
	g := Available(sampleRows())

	tests := []struct {
		name       string
		team, loc  int
		expected   analysis.Selection
		expectFail bool
	}{
		{"first of each", 1, 1, analysis.Selection{Team: "Eng", Location: "Berlin"}, false},
		{"wildcards", 4, 3, analysis.Selection{Team: analysis.AllGroups, Location: analysis.AllGroups}, false},
		{"mixed", 2, 3, analysis.Selection{Team: "Ops", Location: analysis.AllGroups}, false},
		{"team choice too high", 5, 1, analysis.Selection{}, true},
		{"zero choice", 0, 1, analysis.Selection{}, true},
		{"location choice too high", 1, 4, analysis.Selection{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Resolve(g, tt.team, tt.loc)
			if tt.expectFail {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sel)
		})
	}
}

func TestResolveNames(t *testing.T) {
	g := Available(sampleRows())

	sel, err := ResolveNames(g, "Eng", "")
	require.NoError(t, err)
	assert.Equal(t, analysis.Selection{Team: "Eng", Location: analysis.AllGroups}, sel)

	sel, err = ResolveNames(g, analysis.AllGroups, "Lisbon")
	require.NoError(t, err)
	assert.Equal(t, analysis.Selection{Team: analysis.AllGroups, Location: "Lisbon"}, sel)

	_, err = ResolveNames(g, "Marketing", "")
	require.Error(t, err)

	_, err = ResolveNames(g, "Eng", "Atlantis")
	require.Error(t, err)
}

// Resolution is pure: the same inventory and choices always produce the
// same selection.
func TestResolveDeterministic(t *testing.T) {
	g := Available(sampleRows())
	first, err := Resolve(g, 2, 1)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		sel, err := Resolve(g, 2, 1)
		require.NoError(t, err)
		assert.Equal(t, first, sel)
	}
}
