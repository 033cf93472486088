package mibresolver

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultMaxOIDLen, cfg.MaxOIDLen)
	assert.True(t, cfg.SuppressDiagnostics)
	assert.True(t, cfg.NumericIndexes)
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.Workers)
	assert.Empty(t, cfg.MIBDirs)
	assert.Empty(t, cfg.CacheFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("testdata/config.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join("testdata", "mibs")}, cfg.MIBDirs, "relative to the config file")
	assert.Empty(t, cfg.Modules)
	assert.Equal(t, 64, cfg.MaxOIDLen)
	assert.False(t, cfg.SuppressDiagnostics)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, cfg.NumericIndexes, "keys missing from the file keep their defaults")
}

func TestLoadConfig_RelativePaths(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(t.TempDir(), "shared")
	path := filepath.Join(dir, "mibresolve.yaml")
	content := "mib_dirs:\n  - mibs\n  - " + abs + "\ncache_file: cache/model.cbor\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "mibs"), abs}, cfg.MIBDirs)
	assert.Equal(t, filepath.Join(dir, "cache", "model.cbor"), cfg.CacheFile)

	cfg, err = LoadConfig(writeConfig(t, "empty.yaml", "workers: 1\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.CacheFile, "an unset cache file stays unset")
}

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := map[string]struct {
		path    string
		invalid bool
	}{
		"missing file":     {path: filepath.Join(dir, "nope.yaml")},
		"bad yaml":         {path: write("bad.yaml", "mib_dirs: [unterminated\n")},
		"wrong type":       {path: write("type.yaml", "max_oid_len: lots\n")},
		"negative max len": {path: write("len.yaml", "max_oid_len: -1\n"), invalid: true},
		"negative workers": {path: write("workers.yaml", "workers: -2\n"), invalid: true},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(test.path)
			require.Error(t, err)
			assert.Equal(t, test.invalid, errors.Is(err, ErrInvalidConfig))
		})
	}
}

func TestConfig_Limits(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, DefaultMaxOIDLen, cfg.maxOIDLen())
	assert.Equal(t, runtime.GOMAXPROCS(0), cfg.workers())

	cfg = Config{MaxOIDLen: 10, Workers: 2}
	assert.Equal(t, 10, cfg.maxOIDLen())
	assert.Equal(t, 2, cfg.workers())
}
