// Package report renders one analysis run into its artifact set: a
// JSON summary, a plain-text report, a sectioned CSV, and an Excel
// dashboard with charts. All artifacts live in a per-run directory so
// repeated runs never overwrite each other.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"formcli/internal/analysis"
)

// Run identifies one analysis run's artifact directory.
type Run struct {
	ID        string
	Dir       string
	CreatedAt time.Time
}

// NewRun creates the run directory under baseDir. The directory name
// encodes the selection, prefixed with a timestamp unless disabled:
// 20260115_143210_Engineering_Berlin. Wildcard dimensions render as
// AllTeams / AllLocations.
func NewRun(baseDir string, sel analysis.Selection, includeTimestamp bool) (Run, error) {
	now := time.Now()

	name := dirPart(sel.Team, "AllTeams") + "_" + dirPart(sel.Location, "AllLocations")
	if includeTimestamp {
		name = now.Format("20060102_150405") + "_" + name
	}

	dir := filepath.Join(baseDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Run{}, fmt.Errorf("failed to create run directory %s: %w", dir, err)
	}

	return Run{
		ID:        uuid.New().String(),
		Dir:       dir,
		CreatedAt: now,
	}, nil
}

// Path returns the full path of a named artifact inside the run.
func (r Run) Path(filename string) string {
	return filepath.Join(r.Dir, filename)
}

func dirPart(value, wildcard string) string {
	if value == analysis.AllGroups {
		return wildcard
	}
	return strings.ReplaceAll(value, " ", "_")
}
