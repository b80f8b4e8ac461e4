// File: lakefield/mergeconf/doc.go

// Package mergeconf aggregates configuration fragments from an ordered list
// of providers into a single tree, with deterministic deep-merge semantics
// and an optional on-disk cache that skips the providers entirely on the
// next run.
//
// Features:
//   - Deep, order-sensitive tree merge with ReplaceWith and Remove
//     override directives
//   - List-style integer keys that append on collision instead of
//     overwriting
//   - Providers as plain functions, named registry entries, or built-ins
//     (Static, File, Env), each contributing one fragment or a lazy
//     sequence of fragments
//   - Post-processors applied to the merged tree in pipeline order
//   - Best-effort TOML cache with provenance header and atomic writes
//   - Typed access (String, Int64, Bool, Float64) and struct Scan via
//     mapstructure
//   - Builder pattern for easy initialization
//
// Quick Start:
//
//	cfg, err := mergeconf.NewBuilder().
//	    WithProviders(
//	        mergeconf.File("base.toml"),
//	        mergeconf.OptionalFile("override.toml"),
//	        mergeconf.Env("MYAPP_"),
//	    ).
//	    WithCacheFile(cachePath).
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	host, _ := cfg.String("server.host")
//	port, _ := cfg.Int64("server.port")
//
// Merge semantics, per key of the later fragment:
//  1. ReplaceWith(v) sets the key outright, skipping the recursive merge
//  2. Remove deletes the key; removing an absent key is a no-op
//  3. Integer keys append: merging {0:"a"} with {0:"b"} gives {0:"a", 1:"b"}
//  4. Nested trees merge recursively; scalars overwrite
//
// Caching is opt-in per tree: the merged result is written only when it
// holds a truthy "cache-enabled" value, and the file mode can be set with
// "cache-file-mode". A present cache file short-circuits providers and
// processors entirely; delete the file to recompute.
package mergeconf
