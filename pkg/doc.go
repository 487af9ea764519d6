// Package dupescan provides exact duplicate-file detection and resolution
// over a directory tree, with a persistent hash cache so repeated runs avoid
// rehashing unchanged files.
//
// # Core API
//
// The main entry point is Engine, which runs a single detection pass over a
// set of file records supplied by a Scanner:
//
//	cache, _ := dupescan.OpenHashCache(".dupescan")
//	defer cache.Close()
//
//	scanner := dupescan.NewScanner(dupescan.ScanConfig{MinSize: 10 * 1024})
//	records, err := scanner.Scan("/path/to/dir")
//
//	engine, _ := dupescan.NewEngine(dupescan.EngineOptions{Cache: cache})
//	result, err := engine.Detect(context.Background(), records)
//
// Each DuplicateGroup in the result designates exactly one file to keep and
// the rest as deletable. Deletions (or a preview of them) are applied by an
// Executor:
//
//	exec := dupescan.NewExecutor(0)
//	report := exec.Apply(context.Background(), result.Groups, true)
//
// # Detection strategy
//
// Files are first partitioned by size; only size collisions are hashed.
// Files above the sampling threshold get a cheap head/middle/tail fingerprint
// first, and only fingerprint collisions proceed to the full cryptographic
// digest. The full digest is the sole proof of identity, so sampling can
// never cause a false positive.
//
// # Configuration
//
// Settings live in an INI file loaded with LoadConfig; see Config. Debug
// output is controlled with:
//
//	dupescan.SetVerboseLevel(2)
//	dupescan.SetDebugFlags("hash,cache")
//
// # Note on Internal API
//
// The resolution rule table and the cache schema are internal implementation
// details and may change. External consumers should primarily use Engine,
// Scanner, Executor, HashCache and the result types.
package dupescan
