package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"formcli/internal/analysis"
)

// Config is the complete application configuration. Values come from
// the YAML config file, overridden by SURVEY_* environment variables,
// with defaults applied for anything left unset.
type Config struct {
	DataSource DataSourceConfig  `yaml:"data_source" envconfig:"DATA_SOURCE"`
	Columns    ColumnsConfig     `yaml:"columns" envconfig:"COLUMNS"`
	Scale      ScaleConfig       `yaml:"scale" envconfig:"SCALE"`
	Categories []CategoryConfig  `yaml:"categories" validate:"min=1,dive"`
	Comments   map[string]string `yaml:"comment_fields"`
	Analysis   AnalysisConfig    `yaml:"analysis" envconfig:"ANALYSIS"`
	Output     OutputConfig      `yaml:"output" envconfig:"OUTPUT"`
	Logging    LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	Server     ServerConfig      `yaml:"server" envconfig:"SERVER"`
}

// DataSourceConfig locates the survey export to analyze.
type DataSourceConfig struct {
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
	// Sheet is optional; when empty the parser discovers the sheet
	// containing the configured columns.
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// ColumnsConfig names the organizational dimension columns.
type ColumnsConfig struct {
	Team     string `yaml:"team_column" envconfig:"TEAM" validate:"required"`
	Location string `yaml:"location_column" envconfig:"LOCATION" validate:"required"`
}

// ScaleConfig is the valid Likert range and label mapping.
type ScaleConfig struct {
	Min             int            `yaml:"min" envconfig:"MIN"`
	Max             int            `yaml:"max" envconfig:"MAX"`
	Labels          map[string]int `yaml:"labels"`
	RoundFractional *bool          `yaml:"round_fractional" envconfig:"ROUND_FRACTIONAL"`
}

// CategoryConfig is one named question grouping. Order in the file is
// preserved through to reports.
type CategoryConfig struct {
	Name      string   `yaml:"name" validate:"required"`
	Questions []string `yaml:"questions" validate:"min=1"`
}

// AnalysisConfig holds the recommendation thresholds.
type AnalysisConfig struct {
	SignificantDifferenceThreshold float64 `yaml:"significant_difference_threshold" envconfig:"SIGNIFICANT_THRESHOLD"`
	SimilarThreshold               float64 `yaml:"similar_threshold" envconfig:"SIMILAR_THRESHOLD"`
}

// OutputConfig controls run artifact placement.
type OutputConfig struct {
	Dir              string `yaml:"dir" envconfig:"DIR"`
	IncludeTimestamp *bool  `yaml:"include_timestamp" envconfig:"INCLUDE_TIMESTAMP"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// ServerConfig contains HTTP server configuration for the web binary.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST"`
}

// Load reads the YAML file, applies SURVEY_* environment overrides and
// defaults, and validates the result. Configuration errors are fatal
// before analysis starts.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := envconfig.Process("SURVEY", &cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := analysis.DefaultScale()
	if c.Scale.Min == 0 && c.Scale.Max == 0 {
		c.Scale.Min = def.Min
		c.Scale.Max = def.Max
	}
	if len(c.Scale.Labels) == 0 {
		c.Scale.Labels = def.Labels
	}
	if c.Scale.RoundFractional == nil {
		v := true
		c.Scale.RoundFractional = &v
	}

	defThresholds := analysis.DefaultThresholds()
	if c.Analysis.SignificantDifferenceThreshold == 0 {
		c.Analysis.SignificantDifferenceThreshold = defThresholds.Significant
	}
	if c.Analysis.SimilarThreshold == 0 {
		c.Analysis.SimilarThreshold = defThresholds.Similar
	}

	if c.Output.Dir == "" {
		c.Output.Dir = "output"
	}
	if c.Output.IncludeTimestamp == nil {
		v := true
		c.Output.IncludeTimestamp = &v
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/formcli.log"
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 30 * time.Second
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = 50
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = 20
	}
}

// Validate checks structure with tag rules plus the domain invariants
// the tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if !c.ToScale().IsValid() {
		return fmt.Errorf("invalid scale: min=%d max=%d (every label must map inside the range)",
			c.Scale.Min, c.Scale.Max)
	}
	if !c.Thresholds().IsValid() {
		return fmt.Errorf("invalid thresholds: significant=%.3f must exceed similar=%.3f > 0",
			c.Analysis.SignificantDifferenceThreshold, c.Analysis.SimilarThreshold)
	}

	seen := make(map[string]string)
	for _, cat := range c.Categories {
		for _, q := range cat.Questions {
			key := analysis.SanitizeText(q)
			if owner, dup := seen[key]; dup && owner != cat.Name {
				return fmt.Errorf("question %q appears in both %q and %q: every question belongs to exactly one category",
					q, owner, cat.Name)
			}
			seen[key] = cat.Name
		}
	}

	return nil
}

// ToScale converts the scale section into the analysis type.
func (c *Config) ToScale() analysis.Scale {
	round := true
	if c.Scale.RoundFractional != nil {
		round = *c.Scale.RoundFractional
	}
	return analysis.Scale{
		Min:             c.Scale.Min,
		Max:             c.Scale.Max,
		Labels:          c.Scale.Labels,
		RoundFractional: round,
	}
}

// ToCategories converts the category section into analysis types,
// sanitizing question names so they match normalized column headers.
func (c *Config) ToCategories() []analysis.Category {
	out := make([]analysis.Category, 0, len(c.Categories))
	for _, cat := range c.Categories {
		questions := make([]string, 0, len(cat.Questions))
		for _, q := range cat.Questions {
			questions = append(questions, analysis.SanitizeText(q))
		}
		out = append(out, analysis.Category{Name: cat.Name, Questions: questions})
	}
	return out
}

// CommentColumns returns the category-to-comment-column mapping with
// column names sanitized.
func (c *Config) CommentColumns() map[string]string {
	if len(c.Comments) == 0 {
		return nil
	}
	out := make(map[string]string, len(c.Comments))
	for category, column := range c.Comments {
		out[category] = analysis.SanitizeText(column)
	}
	return out
}

// Thresholds returns the recommendation thresholds.
func (c *Config) Thresholds() analysis.Thresholds {
	return analysis.Thresholds{
		Significant: c.Analysis.SignificantDifferenceThreshold,
		Similar:     c.Analysis.SimilarThreshold,
	}
}
