// Package config loads and validates the application configuration:
// the survey data source, dimension columns, category definitions,
// Likert scale, recommendation thresholds, and output/server settings.
//
// Configuration is resolved in three layers: the YAML file, SURVEY_*
// environment overrides, then defaults for anything still unset. The
// result is validated exactly once at load time; the analysis core only
// ever sees typed, pre-validated values.
package config
