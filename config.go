package mibresolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config controls how the MIB database is built and how OIDs are rendered.
type Config struct {
	// MIBDirs are searched for modules and, when Modules is empty, loaded
	// in full.
	MIBDirs []string `yaml:"mib_dirs"`

	// Modules restricts loading to these modules and their imports.
	Modules []string `yaml:"modules"`

	// MaxOIDLen caps the number of components of a parsed OID.
	MaxOIDLen int `yaml:"max_oid_len"`

	// SuppressDiagnostics logs MIB load problems at debug instead of warn.
	SuppressDiagnostics bool `yaml:"suppress_diagnostics"`

	// NumericIndexes keeps instance suffixes numeric in symbolic names.
	// When false, suffixes of table columns are broken down by INDEX.
	NumericIndexes bool `yaml:"numeric_indexes"`

	// Workers bounds the goroutines used by ResolveAll.
	Workers int `yaml:"workers"`

	// CacheFile, if set, holds a model snapshot reused while the MIB
	// sources are unchanged.
	CacheFile string `yaml:"cache_file"`
}

// ErrInvalidConfig is returned for a configuration that cannot be used.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		MaxOIDLen:           DefaultMaxOIDLen,
		SuppressDiagnostics: true,
		NumericIndexes:      true,
		Workers:             runtime.GOMAXPROCS(0),
	}
}

// LoadConfig reads a YAML configuration file. Keys missing from the file
// keep their default values. Relative paths in the file are taken relative
// to the file's directory.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// resolvePaths makes relative directories and files relative to base.
func (c *Config) resolvePaths(base string) {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i, dir := range c.MIBDirs {
		c.MIBDirs[i] = join(dir)
	}
	c.CacheFile = join(c.CacheFile)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.MaxOIDLen < 0 {
		return fmt.Errorf("%w: max_oid_len must not be negative", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) maxOIDLen() int {
	if c.MaxOIDLen <= 0 {
		return DefaultMaxOIDLen
	}
	return c.MaxOIDLen
}

func (c Config) workers() int {
	if c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}
