package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/darianmavgo/mktransfer/converters/common"
	"github.com/google/go-cmp/cmp"
)

func TestExportAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.hcl")

	// Test Export
	want := DefaultConfig()
	want.BatchSize = 500
	want.Delimiter = ","
	want.Driver = "mysql"
	want.DSN = "user:pw@tcp(localhost:3306)/shop"
	want.Dialect = "mysql"
	want.StrictRecords = true
	if err := Export(configPath, want); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	// Test Load
	got, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.hcl")
	if err := os.WriteFile(configPath, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write empty config: %v", err)
	}

	loadedCfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), loadedCfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := "batch_size: 25\ndelimiter: \"|\"\ndriver: sqlserver\ndsn: sqlserver://sa:pw@localhost?database=shop\nverbose: true\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.BatchSize != 25 || cfg.Delimiter != "|" || cfg.Driver != "sqlserver" || !cfg.Verbose {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.ExportDir != "export" {
		t.Errorf("expected default export dir, got %q", cfg.ExportDir)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"BadHCL", "bad.hcl", "batch_size = "},
		{"UnknownKey", "unknown.hcl", "colour = \"red\"\n"},
		{"ZeroBatch", "zero.hcl", "batch_size = 0\n"},
		{"LongDelimiter", "delim.yml", "delimiter: \";;\"\n"},
		{"UnknownDriver", "driver.hcl", "driver = \"oracle\"\n"},
		{"UnknownDialect", "dialect.yaml", "dialect: oracle\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error")
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.hcl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 3
	cfg.Delimiter = "\t"
	cfg.StrictRecords = true

	opts := cfg.Options(common.DialectSQLServer)
	if opts.BatchSize != 3 || opts.Delimiter != '\t' || opts.Dialect != common.DialectSQLServer || !opts.StrictRecords {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestOptionsDialectOverride(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		conn    common.Dialect
		want    common.Dialect
	}{
		{"Unset", "", common.DialectMySQL, common.DialectMySQL},
		{"SQLServer", "sqlserver", common.DialectMySQL, common.DialectSQLServer},
		{"MSSQLAlias", "MSSQL", common.DialectMySQL, common.DialectSQLServer},
		{"MySQL", "mysql", common.DialectSQLServer, common.DialectMySQL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Dialect = tt.dialect
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if got := cfg.Options(tt.conn).Dialect; got != tt.want {
				t.Errorf("Dialect = %v, want %v", got, tt.want)
			}
		})
	}
}
