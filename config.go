package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// SyncConfig holds the full TOML-driven synchronisation configuration.
type SyncConfig struct {
	Source           SourceConfig `toml:"source"`
	Target           TargetConfig `toml:"target"`
	Tables           []string     `toml:"tables"`        // compare only these tables
	IgnoreTables     []string     `toml:"ignore_tables"` // never compare these tables
	DropExtraIndexes bool         `toml:"drop_extra_indexes"`
	Apply            bool         `toml:"apply"`
	Output           string       `toml:"output"` // plan file; stdout when empty
	Hooks            HooksConfig  `toml:"hooks"`

	// configDir is the directory containing the TOML file, used to resolve relative SQL paths.
	configDir string
}

// SourceConfig identifies the engine holding the desired schema.
type SourceConfig struct {
	Type   string `toml:"type"` // "mysql", "sqlite" or "postgres"
	DSN    string `toml:"dsn"`
	Schema string `toml:"schema"` // overrides the database/schema derived from the DSN
}

// TargetConfig is the live MySQL database being reconciled.
type TargetConfig struct {
	DSN    string `toml:"dsn"`
	Schema string `toml:"schema"`
}

type HooksConfig struct {
	BeforeApply []string `toml:"before_apply"`
	AfterApply  []string `toml:"after_apply"`
}

// loadConfig reads a TOML config file and returns a SyncConfig with defaults applied.
func loadConfig(path string) (*SyncConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := SyncConfig{
		DropExtraIndexes: true,
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SyncConfig) validate() error {
	c.Source.Type = strings.ToLower(strings.TrimSpace(c.Source.Type))
	if c.Source.Type == "" {
		return fmt.Errorf("source.type is required (must be mysql, sqlite or postgres)")
	}
	if _, err := newSchemaSource(c.Source.Type); err != nil {
		return err
	}
	if c.Source.DSN == "" {
		return fmt.Errorf("source.dsn is required")
	}
	if c.Source.Type == "sqlite" && c.Source.Schema != "" {
		return fmt.Errorf("source.schema is not supported for sqlite sources")
	}

	if c.Target.DSN == "" {
		return fmt.Errorf("target.dsn is required")
	}
	// Apply runs unqualified DDL, so the connection's default database must
	// be the one that was introspected.
	dsnDB, err := mysqlDSNDatabase(c.Target.DSN)
	if err != nil {
		return fmt.Errorf("target.dsn: %w", err)
	}
	switch {
	case c.Target.Schema == "" && dsnDB == "":
		return fmt.Errorf("target.dsn: cannot extract database name from DSN: empty name")
	case c.Target.Schema == "":
		c.Target.Schema = dsnDB
	case dsnDB == "":
		c.Target.DSN, err = mysqlDSNWithDatabase(c.Target.DSN, c.Target.Schema)
		if err != nil {
			return fmt.Errorf("target.dsn: %w", err)
		}
	case dsnDB != c.Target.Schema:
		return fmt.Errorf("target.schema %q does not match database %q in target.dsn", c.Target.Schema, dsnDB)
	}

	for _, name := range c.Tables {
		if slices.Contains(c.IgnoreTables, name) {
			return fmt.Errorf("table %q is listed in both tables and ignore_tables", name)
		}
	}
	return nil
}

// resolvePath resolves a path relative to the config file directory.
func (c *SyncConfig) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}

func (c *SyncConfig) planOptions() PlanOptions {
	return PlanOptions{
		Tables:           c.Tables,
		IgnoreTables:     c.IgnoreTables,
		DropExtraIndexes: c.DropExtraIndexes,
	}
}
