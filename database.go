package mibresolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/sourcegraph/conc/iter"
)

// ErrNoModules is returned by Open when no MIB module could be loaded.
var ErrNoModules = errors.New("no MIB modules loaded")

// Result is a resolved OID.
type Result struct {
	OID       OID
	Canonical string  // Dotted numeric form without a leading dot
	Name      string  // "MODULE::object.index", or Canonical without a definition
	Enums     EnumMap // Never nil
}

// Resolver resolves textual OIDs. ok is false when the input does not name
// an OID.
type Resolver interface {
	Resolve(input string) (Result, bool)
}

// Database answers Resolve calls from an immutable Model. Safe for
// concurrent use.
type Database struct {
	model  *Model
	cfg    Config
	logger *slog.Logger
}

var _ Resolver = (*Database)(nil)

// New wraps an already built model.
func New(model *Model, cfg Config, logger *slog.Logger) *Database {
	if logger == nil {
		logger = slog.Default()
	}
	return &Database{model: model, cfg: cfg, logger: logger}
}

// Open builds the database described by cfg. When cfg.CacheFile holds a
// snapshot of the same MIB sources it is used instead of parsing; otherwise
// the MIBs are compiled and the cache rewritten. A failure here leaves no
// database to serve from.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fp, err := Fingerprint(cfg.MIBDirs, cfg.Modules)
	if err != nil {
		return nil, fmt.Errorf("scanning MIB directories: %w", err)
	}

	if cfg.CacheFile != "" {
		model, err := ReadSnapshot(cfg.CacheFile)
		switch {
		case err == nil && model.Fingerprint() == fp:
			logger.Debug("using MIB snapshot", "file", cfg.CacheFile, "modules", model.ModuleCount())
			return New(model, cfg, logger), nil
		case err == nil:
			logger.Info("MIB snapshot is stale, recompiling", "file", cfg.CacheFile)
		case !errors.Is(err, os.ErrNotExist):
			logger.Warn("ignoring unreadable MIB snapshot", "file", cfg.CacheFile, "err", err)
		}
	}

	model, err := compile(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("loading MIB database: %w", err)
	}
	model.fingerprint = fp

	if cfg.CacheFile != "" {
		if err := model.WriteSnapshot(cfg.CacheFile); err != nil {
			logger.Warn("writing MIB snapshot failed", "file", cfg.CacheFile, "err", err)
		}
	}
	logger.Info("MIB database ready", "modules", model.ModuleCount(), "nodes", model.NodeCount())
	return New(model, cfg, logger), nil
}

func compile(ctx context.Context, cfg Config, logger *slog.Logger) (*Model, error) {
	diagLevel := slog.LevelWarn
	if cfg.SuppressDiagnostics {
		diagLevel = slog.LevelDebug
	}

	var model *Model
	if len(cfg.Modules) == 0 {
		var err error
		model, err = LoadDirWithOptions(ctx, cfg.MIBDirs, LoadDirOptions{
			Recursive: true,
			Logger:    logger,
			OnError: func(path string, err error) {
				logger.Log(ctx, diagLevel, "skipping MIB file", "file", path, "err", err)
			},
		})
		if err != nil {
			return nil, err
		}
	} else {
		compiler, err := NewCompiler(ctx, logger)
		if err != nil {
			return nil, err
		}
		defer func() { _ = compiler.Close() }()

		compiler.AppendPath(cfg.MIBDirs...)
		for _, name := range cfg.Modules {
			if err := compiler.LoadModule(name); err != nil {
				return nil, err
			}
		}
		if model, err = compiler.Resolve(); err != nil {
			return nil, err
		}
		for _, d := range compiler.GetDiagnostics() {
			logger.Log(ctx, diagLevel, d.Message, "source", d.Source, "severity", d.Severity)
		}
	}

	if model.ModuleCount() == 0 {
		return nil, ErrNoModules
	}
	return model, nil
}

// Model returns the underlying model.
func (db *Database) Model() *Model {
	return db.model
}

// Resolve parses input, numeric or symbolic, and returns its canonical form,
// symbolic name and the enum labels of the object it belongs to. ok is false
// when input does not parse.
func (db *Database) Resolve(input string) (Result, bool) {
	oid, err := db.model.ParseOID(input, db.cfg.maxOIDLen())
	if err != nil {
		db.logger.Debug("cannot resolve OID", "input", input, "err", err)
		return Result{}, false
	}

	canonical := oid.String()
	node := db.model.Lookup(oid)

	name := canonical
	if node != nil {
		name = db.model.FormatName(oid, db.cfg.NumericIndexes)
	}

	return Result{
		OID:       oid,
		Canonical: canonical,
		Name:      name,
		Enums:     EnumsOf(node),
	}, true
}

// Lookup is the outcome of resolving one input of a batch.
type Lookup struct {
	Input  string
	Result Result
	Found  bool
}

// ResolveAll resolves inputs on at most Config.Workers goroutines. The
// results are in input order.
func (db *Database) ResolveAll(inputs []string) []Lookup {
	mapper := iter.Mapper[string, Lookup]{MaxGoroutines: db.cfg.workers()}
	return mapper.Map(inputs, func(input *string) Lookup {
		res, ok := db.Resolve(*input)
		return Lookup{Input: *input, Result: res, Found: ok}
	})
}

// FakeResolver resolves from a fixed table. Intended for tests of code that
// consumes a Resolver.
type FakeResolver map[string]Result

var _ Resolver = FakeResolver(nil)

// Resolve implements Resolver.
func (f FakeResolver) Resolve(input string) (Result, bool) {
	res, ok := f[input]
	if ok && res.Enums == nil {
		res.Enums = EnumMap{}
	}
	return res, ok
}

// Holder publishes the current Database. A reload stores a new database
// while in-flight Resolve calls finish on the old one.
type Holder struct {
	db atomic.Pointer[Database]
}

// NewHolder returns a Holder serving db.
func NewHolder(db *Database) *Holder {
	h := &Holder{}
	h.db.Store(db)
	return h
}

// Load returns the current database.
func (h *Holder) Load() *Database {
	return h.db.Load()
}

// Store replaces the current database.
func (h *Holder) Store(db *Database) {
	h.db.Store(db)
}

// Resolve implements Resolver against the current database.
func (h *Holder) Resolve(input string) (Result, bool) {
	db := h.db.Load()
	if db == nil {
		return Result{}, false
	}
	return db.Resolve(input)
}
