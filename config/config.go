package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/darianmavgo/mktransfer/converters/common"
	"github.com/darianmavgo/mktransfer/dbconn"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	BatchSize     int    `hcl:"batch_size,optional" yaml:"batch_size"`
	ExportDir     string `hcl:"export_dir,optional" yaml:"export_dir"`
	ImportDir     string `hcl:"import_dir,optional" yaml:"import_dir"`
	Delimiter     string `hcl:"delimiter,optional" yaml:"delimiter"`
	Driver        string `hcl:"driver,optional" yaml:"driver"`
	DSN           string `hcl:"dsn,optional" yaml:"dsn"`
	Dialect       string `hcl:"dialect,optional" yaml:"dialect"`
	StrictRecords bool   `hcl:"strict_records,optional" yaml:"strict_records"`
	Verbose       bool   `hcl:"verbose,optional" yaml:"verbose"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BatchSize: common.DefaultBatchSize,
		ExportDir: "export",
		ImportDir: "import",
		Delimiter: string(common.DefaultDelimiter),
		Driver:    dbconn.DriverSQLite,
		DSN:       "transfer.db",
	}
}

// Load reads the configuration from the given file. Files ending in .yaml
// or .yml are read as YAML, everything else as HCL. Unset keys keep their
// defaults.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		parser := hclparse.NewParser()
		file, diags := parser.ParseHCL(content, path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
		}
		diags = gohcl.DecodeBody(file.Body, nil, cfg)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode config: %s", diags.Error())
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return fmt.Errorf("invalid config: batch_size must be positive, got %d", c.BatchSize)
	}
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("invalid config: delimiter must be a single character, got %q", c.Delimiter)
	}
	if _, err := dbconn.DialectFor(c.Driver); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Dialect != "" {
		if _, err := common.ParseDialect(c.Dialect); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
	}
	return nil
}

// DelimiterRune returns the CSV delimiter.
func (c *Config) DelimiterRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)
	if r == utf8.RuneError {
		return common.DefaultDelimiter
	}
	return r
}

// Options builds the per-call converter options for dialect. A dialect set
// in the configuration takes precedence over the connection's.
func (c *Config) Options(dialect common.Dialect) common.Options {
	opts := common.DefaultOptions()
	opts.BatchSize = c.BatchSize
	opts.Delimiter = c.DelimiterRune()
	opts.Dialect = dialect
	if d, err := common.ParseDialect(c.Dialect); c.Dialect != "" && err == nil {
		opts.Dialect = d
	}
	opts.StrictRecords = c.StrictRecords
	return opts
}

// Export writes the configuration to the specified file in HCL format.
func Export(path string, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	root.SetAttributeValue("batch_size", cty.NumberIntVal(int64(cfg.BatchSize)))
	root.SetAttributeValue("export_dir", cty.StringVal(cfg.ExportDir))
	root.SetAttributeValue("import_dir", cty.StringVal(cfg.ImportDir))
	root.SetAttributeValue("delimiter", cty.StringVal(cfg.Delimiter))
	root.AppendNewline()
	root.SetAttributeValue("driver", cty.StringVal(cfg.Driver))
	root.SetAttributeValue("dsn", cty.StringVal(cfg.DSN))
	if cfg.Dialect != "" {
		root.SetAttributeValue("dialect", cty.StringVal(cfg.Dialect))
	}
	root.AppendNewline()
	root.SetAttributeValue("strict_records", cty.BoolVal(cfg.StrictRecords))
	root.SetAttributeValue("verbose", cty.BoolVal(cfg.Verbose))

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	_, err = file.Write(f.Bytes())
	if err != nil {
		return fmt.Errorf("failed to write config to file: %w", err)
	}

	return nil
}
