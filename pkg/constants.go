package dupescan

// File constants
const (
	// ConfigDir is the per-tree metadata directory holding config and cache.
	ConfigDir = ".dupescan"

	// CacheDBName is the hash cache database file inside ConfigDir.
	CacheDBName = "hashes.db"
)

// Hash size constants (bytes)
const (
	HashSizeSHA1   = 20
	HashSizeSHA256 = 32
	HashSizeSHA512 = 64
)

// Sampling defaults. Files at or below DefaultSampleThreshold are always
// fully hashed; larger files get a head/middle/tail fingerprint first. The
// window sizes only affect the false-collision rate (a collision forces a
// full hash), never correctness.
const (
	DefaultSampleThreshold = 20 * 1024 * 1024 // 20 MiB
	DefaultSampleWindow    = 1 * 1024 * 1024  // 1 MiB per window below 1 GiB
)

// Scan defaults
const (
	// DefaultMinFileSize excludes tiny files from detection entirely.
	DefaultMinFileSize = 10 * 1024
)

// Performance defaults
const (
	DefaultHashWorkers    = 4
	DefaultHashBufferSize = 2 * 1024 * 1024

	// cacheFlushBatch is the number of pending cache entries that triggers
	// an automatic transaction flush.
	cacheFlushBatch = 256
)

// DefaultKeepKeyword marks paths that should win duplicate resolution.
const DefaultKeepKeyword = "keep"

// imageExtensions are skipped by the scanner when SkipImages is set.
// Matches the behaviour of treating photo libraries as out of scope for
// byte-identity cleanup.
var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {},
	".tiff": {}, ".tif": {}, ".webp": {}, ".svg": {}, ".ico": {},
	".heic": {}, ".heif": {}, ".raw": {}, ".cr2": {}, ".nef": {},
	".arw": {}, ".dng": {}, ".psd": {}, ".ai": {},
}
