package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formcli/internal/analysis"
)

const validYAML = `
data_source:
  file_path: responses.xlsx
  sheet: Form Responses 1
columns:
  team_column: Team
  location_column: Location
scale:
  min: 1
  max: 5
  labels:
    Strongly Disagree: 1
    Disagree: 2
    Neutral: 3
    Agree: 4
    Strongly Agree: 5
categories:
  - name: Collaboration
    questions:
      - I can rely on my teammates
      - We communicate openly
  - name: Tooling
    questions:
      - I have the tools I need
comment_fields:
  Collaboration: Collaboration comments
analysis:
  significant_difference_threshold: 0.3
  similar_threshold: 0.15
output:
  dir: runs
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "responses.xlsx", cfg.DataSource.FilePath)
	assert.Equal(t, "Form Responses 1", cfg.DataSource.Sheet)
	assert.Equal(t, "Team", cfg.Columns.Team)
	assert.Equal(t, "Location", cfg.Columns.Location)

	require.Len(t, cfg.Categories, 2)
	assert.Equal(t, "Collaboration", cfg.Categories[0].Name)
	assert.Len(t, cfg.Categories[0].Questions, 2)

	assert.Equal(t, 0.3, cfg.Analysis.SignificantDifferenceThreshold)
	assert.Equal(t, 0.15, cfg.Analysis.SimilarThreshold)
	assert.Equal(t, "runs", cfg.Output.Dir)
}

func TestLoadDefaults(t *testing.T) {
	minimal := `
data_source:
  file_path: responses.csv
columns:
  team_column: Team
  location_column: Location
categories:
  - name: C1
    questions: [Q1]
`
	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	scale := cfg.ToScale()
	assert.Equal(t, 1, scale.Min)
	assert.Equal(t, 5, scale.Max)
	assert.True(t, scale.RoundFractional)
	assert.NotEmpty(t, scale.Labels)

	assert.Equal(t, analysis.DefaultThresholds(), cfg.Thresholds())
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.True(t, *cfg.Output.IncludeTimestamp)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SURVEY_OUTPUT_DIR", "elsewhere")
	t.Setenv("SURVEY_SERVER_PORT", "9091")

	cfg, err := Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "elsewhere", cfg.Output.Dir)
	assert.Equal(t, 9091, cfg.Server.Port)
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			"missing file path",
			`
columns:
  team_column: Team
  location_column: Location
categories:
  - name: C1
    questions: [Q1]
`,
		},
		{
			"missing team column",
			`
data_source:
  file_path: x.xlsx
columns:
  location_column: Location
categories:
  - name: C1
    questions: [Q1]
`,
		},
		{
			"empty categories",
			`
data_source:
  file_path: x.xlsx
columns:
  team_column: Team
  location_column: Location
categories: []
`,
		},
		{
			"category without questions",
			`
data_source:
  file_path: x.xlsx
columns:
  team_column: Team
  location_column: Location
categories:
  - name: C1
    questions: []
`,
		},
		{
			"inverted scale",
			`
data_source:
  file_path: x.xlsx
columns:
  team_column: Team
  location_column: Location
scale:
  min: 5
  max: 1
categories:
  - name: C1
    questions: [Q1]
`,
		},
		{
			"label outside scale",
			`
data_source:
  file_path: x.xlsx
columns:
  team_column: Team
  location_column: Location
scale:
  min: 1
  max: 5
  labels:
    Beyond: 11
categories:
  - name: C1
    questions: [Q1]
`,
		},
		{
			"question in two categories",
			`
data_source:
  file_path: x.xlsx
columns:
  team_column: Team
  location_column: Location
categories:
  - name: C1
    questions: [Q1]
  - name: C2
    questions: [Q1]
`,
		},
		{
			"thresholds out of order",
			`
data_source:
  file_path: x.xlsx
columns:
  team_column: Team
  location_column: Location
categories:
  - name: C1
    questions: [Q1]
analysis:
  significant_difference_threshold: 0.1
  similar_threshold: 0.5
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestToCategoriesSanitizesQuestions(t *testing.T) {
	cfg := &Config{Categories: []CategoryConfig{
		{Name: "C1", Questions: []string{"  I have  the tools\tI need "}},
	}}
	cats := cfg.ToCategories()
	require.Len(t, cats, 1)
	assert.Equal(t, []string{"I have the tools I need"}, cats[0].Questions)
}
