// Package config provides centralized configuration management for the
// generator. Configuration is read from a YAML file, with environment
// variables as fallback for deployment-specific values, and is validated
// on startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SummaryFileSuffix is the Bureau's per-state archive naming convention for
// the tracts/block-groups distribution.
const SummaryFileSuffix = "_Tracts_Block_Groups_Only.zip"

// Config holds all settings for one generator run.
type Config struct {
	// Year is the ACS release year, e.g. "2015".
	Year string `yaml:"year"`

	// SummaryLevel is the geographic summary level code to extract.
	// "150" is the block group level. Compared as a string: leading
	// zeros are significant.
	SummaryLevel string `yaml:"summary_level"`

	// States lists the state names to process, spelled the way the
	// Bureau spells them in archive file names (e.g. "Colorado",
	// "NewYork").
	States []string `yaml:"states"`

	// Tables optionally restricts the run to these table names.
	// Empty means every table in the appendix metadata.
	Tables []string `yaml:"tables"`

	// SourceDir is where downloaded source files live.
	// Default: ACS_data_<year> under the working directory.
	SourceDir string `yaml:"source_dir"`

	Output  Output  `yaml:"output"`
	Logging Logging `yaml:"logging"`
}

// Output selects and parameterizes the destination for assembled tables.
type Output struct {
	// Driver is one of: fs, memory, s3, postgres. Default: fs.
	Driver string `yaml:"driver"`

	// Dir is the output directory for the fs driver.
	// Default: <source_dir>/ACS_tables.
	Dir string `yaml:"dir"`

	// Bucket and Prefix configure the s3 driver.
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`

	// Region and Endpoint override the S3 client defaults; Endpoint
	// enables S3-compatible stores such as MinIO.
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	// URL is the connection string for the postgres driver.
	URL string `yaml:"url"`
}

// Logging holds structured-logging settings.
type Logging struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `yaml:"level"`

	// Format is "text" or "json". Default: text.
	Format string `yaml:"format"`
}

// Load reads and parses a YAML config file. An empty path yields the
// default configuration.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyEnv fills in empty fields from environment variables.
// YAML values take precedence; env vars are used only as fallback.
func (c *Config) applyEnv() {
	out := &c.Output
	if out.Driver == "" {
		out.Driver = os.Getenv("ACSGEN_OUTPUT_DRIVER")
	}
	if out.Bucket == "" {
		out.Bucket = os.Getenv("ACSGEN_S3_BUCKET")
	}
	if out.Prefix == "" {
		out.Prefix = os.Getenv("ACSGEN_S3_PREFIX")
	}
	if out.Region == "" {
		out.Region = os.Getenv("ACSGEN_S3_REGION")
	}
	if out.Endpoint == "" {
		out.Endpoint = os.Getenv("ACSGEN_S3_ENDPOINT")
	}
	if out.URL == "" {
		out.URL = envOr("DATABASE_URL", "DB_URL")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = os.Getenv("ACSGEN_LOG_LEVEL")
	}
	if c.Logging.Format == "" {
		c.Logging.Format = os.Getenv("ACSGEN_LOG_FORMAT")
	}
}

// envOr returns the first non-empty value from the given env var names.
func envOr(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// validate applies defaults and rejects unusable settings.
func (c *Config) validate() error {
	if c.Year == "" {
		c.Year = "2015"
	}
	if c.SummaryLevel == "" {
		c.SummaryLevel = "150"
	}
	if len(c.States) == 0 {
		c.States = []string{"Colorado"}
	}
	if c.SourceDir == "" {
		c.SourceDir = "ACS_data_" + c.Year
	}

	switch c.Output.Driver {
	case "":
		c.Output.Driver = "fs"
	case "fs", "memory":
	case "s3":
		if c.Output.Bucket == "" {
			return fmt.Errorf("output.bucket is required for the s3 driver")
		}
	case "postgres":
		if c.Output.URL == "" {
			return fmt.Errorf("output.url is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown output driver %q", c.Output.Driver)
	}

	if c.Output.Dir == "" {
		c.Output.Dir = filepath.Join(c.SourceDir, "ACS_tables")
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	return nil
}

// StateArchivePath returns the expected on-disk location of one state's
// summary file archive.
func (c *Config) StateArchivePath(state string) string {
	return filepath.Join(c.SourceDir, state+SummaryFileSuffix)
}

// AppendixFile is the file name of the appendix metadata workbook for the
// configured year.
func (c *Config) AppendixFile() string {
	return "ACS_" + c.Year + "_SF_5YR_Appendices.xlsx"
}

// TemplatesFile is the file name of the per-sequence template archive for
// the configured year.
func (c *Config) TemplatesFile() string {
	return c.Year + "_5yr_Summary_FileTemplates.zip"
}
