// Package selection derives the distinct team and location groups
// observed in loaded survey data and resolves user choices into an
// immutable analysis.Selection. It contains no console I/O: prompting
// lives with the caller, so the resolution logic stays a pure function.
package selection

import (
	"fmt"
	"sort"

	"formcli/internal/analysis"
)

// GroupCount is one distinct dimension value with its response count.
type GroupCount struct {
	Name      string `json:"name"`
	Responses int    `json:"responses"`
}

// Groups is the inventory of distinct teams and locations in the data,
// sorted by name. It backs both the interactive picker and the API.
type Groups struct {
	Teams     []GroupCount `json:"teams"`
	Locations []GroupCount `json:"locations"`
}

// Available scans the rows and builds the group inventory. Rows with a
// blank value in a dimension do not contribute to that dimension.
func Available(rows []analysis.ResponseRow) Groups {
	teams := make(map[string]int)
	locations := make(map[string]int)
	for _, r := range rows {
		if r.Team != "" {
			teams[r.Team]++
		}
		if r.Location != "" {
			locations[r.Location]++
		}
	}
	return Groups{
		Teams:     sortedCounts(teams),
		Locations: sortedCounts(locations),
	}
}

// TeamNames returns the distinct team values in sorted order.
func (g Groups) TeamNames() []string {
	return names(g.Teams)
}

// LocationNames returns the distinct location values in sorted order.
func (g Groups) LocationNames() []string {
	return names(g.Locations)
}

// HasTeam reports whether the named team exists in the data.
func (g Groups) HasTeam(name string) bool {
	return name == analysis.AllGroups || contains(g.Teams, name)
}

// HasLocation reports whether the named location exists in the data.
func (g Groups) HasLocation(name string) bool {
	return name == analysis.AllGroups || contains(g.Locations, name)
}

// Resolve maps 1-based menu choices onto a Selection. For each
// dimension, choices 1..n pick the corresponding sorted group name and
// choice n+1 picks the wildcard, mirroring the numbered prompt the
// caller presents.
func Resolve(g Groups, teamChoice, locationChoice int) (analysis.Selection, error) {
	team, err := resolveChoice(g.Teams, teamChoice, "team")
	if err != nil {
		return analysis.Selection{}, err
	}
	location, err := resolveChoice(g.Locations, locationChoice, "location")
	if err != nil {
		return analysis.Selection{}, err
	}
	return analysis.Selection{Team: team, Location: location}, nil
}

// ResolveNames maps explicit dimension values (or the "all" wildcard)
// onto a Selection, validating them against the observed groups.
func ResolveNames(g Groups, team, location string) (analysis.Selection, error) {
	if team == "" {
		team = analysis.AllGroups
	}
	if location == "" {
		location = analysis.AllGroups
	}
	if !g.HasTeam(team) {
		return analysis.Selection{}, fmt.Errorf("unknown team %q", team)
	}
	if !g.HasLocation(location) {
		return analysis.Selection{}, fmt.Errorf("unknown location %q", location)
	}
	return analysis.Selection{Team: team, Location: location}, nil
}

func resolveChoice(groups []GroupCount, choice int, dimension string) (string, error) {
	if choice < 1 || choice > len(groups)+1 {
		return "", fmt.Errorf("%s choice %d out of range 1-%d", dimension, choice, len(groups)+1)
	}
	if choice == len(groups)+1 {
		return analysis.AllGroups, nil
	}
	return groups[choice-1].Name, nil
}

func sortedCounts(m map[string]int) []GroupCount {
	out := make([]GroupCount, 0, len(m))
	for name, count := range m {
		out = append(out, GroupCount{Name: name, Responses: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func names(groups []GroupCount) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Name
	}
	return out
}

func contains(groups []GroupCount, name string) bool {
	for _, g := range groups {
		if g.Name == name {
			return true
		}
	}
	return false
}
