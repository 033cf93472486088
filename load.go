package mibresolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Load loads MIB modules from the given search directories and returns a
// resolved model. Modules are named as in an IMPORTS clause ("IF-MIB") or
// given as file names found in one of the directories. Any module that
// fails to load fails the whole call.
//
// Example:
//
//	model, err := mibresolver.Load(ctx, []string{"/usr/share/snmp/mibs"}, "IF-MIB", "SNMPv2-MIB")
func Load(ctx context.Context, dirs []string, modules ...string) (*Model, error) {
	compiler, err := NewCompiler(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = compiler.Close() }()

	compiler.AppendPath(dirs...)
	for _, name := range modules {
		if err := compiler.LoadModule(name); err != nil {
			return nil, err
		}
	}
	return compiler.Resolve()
}

// LoadDir loads every MIB file below dir and returns a resolved model.
// Files that fail to parse are skipped (they may not be MIB files).
//
// Example:
//
//	model, err := mibresolver.LoadDir(ctx, "/usr/share/snmp/mibs")
func LoadDir(ctx context.Context, dir string) (*Model, error) {
	return LoadDirWithOptions(ctx, []string{dir}, LoadDirOptions{Recursive: true})
}

// LoadDirOptions configures LoadDirWithOptions behavior.
type LoadDirOptions struct {
	// Extensions filters files by extension. If empty, all files are tried.
	// Extensions should include the dot, e.g., []string{".mib", ".txt"}
	Extensions []string

	// Recursive controls whether subdirectories are walked.
	Recursive bool

	// OnError is called for each file that fails to load.
	// If nil, load errors are silently ignored.
	OnError func(path string, err error)

	// Logger receives debug output from the compiler. Nil uses slog.Default.
	Logger *slog.Logger
}

// LoadDirWithOptions loads the MIB files found in dirs. Every visited
// directory joins the search path before any file is loaded, so imports
// between files resolve regardless of walk order.
func LoadDirWithOptions(ctx context.Context, dirs []string, opts LoadDirOptions) (*Model, error) {
	searchDirs, files, err := collectMIBFiles(dirs, opts)
	if err != nil {
		return nil, err
	}

	compiler, err := NewCompiler(ctx, opts.Logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = compiler.Close() }()

	compiler.AppendPath(searchDirs...)
	for _, path := range files {
		if err := compiler.LoadModule(filepath.Base(path)); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if opts.OnError != nil {
				opts.OnError(path, err)
			}
		}
	}

	model, err := compiler.Resolve()
	if err != nil {
		return nil, err
	}
	if fp, err := fingerprintFiles(files); err == nil {
		model.fingerprint = fp
	}
	return model, nil
}

// collectMIBFiles walks dirs and returns the directories to search and the
// candidate files, both in lexical order.
func collectMIBFiles(dirs []string, opts LoadDirOptions) (searchDirs, files []string, err error) {
	extSet := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		extSet[ext] = true
	}

	for _, dir := range dirs {
		walkFn := func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return err
				}
				return nil // Ignore permission errors below the root
			}
			if d.IsDir() {
				if !opts.Recursive && path != dir {
					return fs.SkipDir
				}
				searchDirs = append(searchDirs, path)
				return nil
			}
			if !d.Type().IsRegular() && d.Type()&fs.ModeSymlink == 0 {
				return nil
			}
			if len(extSet) > 0 && !extSet[filepath.Ext(path)] {
				return nil
			}
			files = append(files, path)
			return nil
		}
		if err := filepath.WalkDir(dir, walkFn); err != nil {
			return nil, nil, fmt.Errorf("walking %s: %w", dir, err)
		}
	}
	sort.Strings(files)
	return searchDirs, files, nil
}

// Fingerprint summarises the MIB files under dirs (names, sizes and
// modification times) and the requested module list. Snapshots carry it so
// a stale cache can be detected.
func Fingerprint(dirs []string, modules []string) (string, error) {
	_, files, err := collectMIBFiles(dirs, LoadDirOptions{Recursive: true})
	if err != nil {
		return "", err
	}
	return fingerprintFiles(append(files, modules...))
}

func fingerprintFiles(entries []string) (string, error) {
	h := sha256.New()
	for _, entry := range entries {
		h.Write([]byte(entry))
		h.Write([]byte{0})
		if info, err := os.Stat(entry); err == nil {
			h.Write([]byte(strconv.FormatInt(info.Size(), 10)))
			h.Write([]byte(info.ModTime().UTC().Format("20060102150405.000000000")))
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Severity indicates the severity level of a diagnostic.
type Severity uint32

const (
	// SeverityError indicates a module that could not be loaded.
	SeverityError Severity = 0
	// SeverityWarning indicates a definition that was skipped.
	SeverityWarning Severity = 1
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is a problem found while loading MIB modules.
type Diagnostic struct {
	Severity Severity
	Source   string // Module name or file the problem belongs to
	Message  string
}

// MustLoad is like Load but panics on error.
// Useful for tests or when you know the MIBs are valid.
func MustLoad(ctx context.Context, dirs []string, modules ...string) *Model {
	model, err := Load(ctx, dirs, modules...)
	if err != nil {
		panic(fmt.Sprintf("mibresolver.MustLoad: %v", err))
	}
	return model
}
