// Package mibresolver translates SNMP object identifiers between their
// numeric and symbolic forms using a database built from MIB modules.
//
// MIB files are parsed with gosmi and snapshotted into an immutable [Model]:
// an OID tree plus the per-object facts needed for rendering (module, type,
// DISPLAY-HINT, units, enumerations and table INDEX clauses). Once built, a
// model never changes and is safe for concurrent read access.
//
// # Quick Start
//
//	cfg := mibresolver.DefaultConfig()
//	cfg.MIBDirs = []string{"/usr/share/snmp/mibs"}
//
//	db, err := mibresolver.Open(ctx, cfg, logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, ok := db.Resolve("1.3.6.1.2.1.2.2.1.7.1")
//	// res.Canonical == "1.3.6.1.2.1.2.2.1.7.1"
//	// res.Name      == "IF-MIB::ifAdminStatus.1"
//	// res.Enums     == {1: "up", 2: "down", 3: "testing"}
//
// # Input Forms
//
// [Database.Resolve] and [Model.ParseOID] accept dotted numeric OIDs (with
// or without a leading dot), module-qualified names ("IF-MIB::ifDescr.1"),
// bare names ("ifDescr.1"), label paths ("iso.org.dod.internet") and quoted
// string indexes ("ifName.\"eth0\""). Input that does not name an OID is
// reported as not found; it is never an error for the caller.
//
// # Loading MIBs
//
//   - [Open] builds a [Database] from a [Config], reusing a snapshot file
//     while the MIB sources are unchanged
//   - [Load] loads named modules and their imports
//   - [LoadDir] loads every file below a directory
//   - [NewCompiler] provides low-level control over loading
//   - [NewBuilder] assembles a model from definitions directly
//
// # Concurrency
//
// gosmi keeps process-global state, so only one [Compiler] is open at a
// time; [NewCompiler] blocks until the previous one is closed. [Model],
// [Database] and [Annotator] are safe for concurrent use. A [Holder]
// publishes a replacement database without stopping readers.
package mibresolver
