package dupescan

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// cacheSchema holds one row per path. A row is only ever trusted when its
// stored (size, mtime_ns) exactly match the file on disk; any mismatch is a
// miss and the row is overwritten after rehashing. Sample fingerprints are
// never persisted, they are cheap to recompute.
const cacheSchema = `
CREATE TABLE IF NOT EXISTS file_hashes (
	path         TEXT    NOT NULL PRIMARY KEY,
	size         INTEGER NOT NULL,
	mtime_ns     INTEGER NOT NULL,
	algo         TEXT    NOT NULL,
	digest       TEXT    NOT NULL,
	last_checked INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_file_hashes_identity ON file_hashes(size, mtime_ns);
`

// HashEntry is one persisted cache record.
type HashEntry struct {
	Path    string
	Size    int64
	MTimeNS int64
	Algo    string
	Digest  string
}

// HashCache is the persistent path -> digest store. It is the only state
// that survives a run. Safe for concurrent Lookup/Store from hash workers;
// writes are batched and flushed in single transactions.
//
// A corrupt or unreadable database degrades to cold-cache behaviour: every
// Lookup misses and every Store is dropped. Degradation is reported once
// through DegradedError, never as a fatal condition.
type HashCache struct {
	db     *sql.DB
	dbPath string

	mu       sync.Mutex
	pending  []HashEntry
	degraded error
}

// OpenHashCache opens (or creates) the cache database under dir. On schema
// or open failure the database file is recreated once; if that also fails
// the cache comes up degraded rather than returning an error.
func OpenHashCache(dir string) (*HashCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &HashCache{dbPath: filepath.Join(dir, CacheDBName)}

	db, err := openCacheDB(c.dbPath)
	if err != nil {
		VerboseLog(1, "cache unreadable, recreating: %v", err)
		// Corrupt database: drop it and start cold.
		_ = os.Remove(c.dbPath)
		db, err = openCacheDB(c.dbPath)
	}
	if err != nil {
		VerboseLog(1, "cache disabled for this run: %v", err)
		c.degraded = newFileError(c.dbPath, KindCache, err)
		return c, nil
	}

	c.db = db
	return c, nil
}

func openCacheDB(path string) (*sql.DB, error) {
	dsn := "file:" + path +
		"?_pragma=journal_mode(wal)" +
		"&_pragma=synchronous(normal)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return db, nil
}

// DegradedError returns the error that disabled the cache, or nil when the
// cache is healthy.
func (c *HashCache) DegradedError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degraded
}

// Lookup returns the cached full digest for path, but only when the stored
// size and mtime exactly match the current file and the digest was computed
// with the requested algorithm. Anything else is a miss.
func (c *HashCache) Lookup(path string, size int64, mtime time.Time, algo string) (string, bool) {
	c.mu.Lock()
	if c.degraded != nil {
		c.mu.Unlock()
		return "", false
	}
	// Unflushed entries are visible to lookups within the same run.
	for i := len(c.pending) - 1; i >= 0; i-- {
		p := c.pending[i]
		if p.Path == path {
			c.mu.Unlock()
			if p.Size == size && p.MTimeNS == mtime.UnixNano() && p.Algo == algo {
				return p.Digest, true
			}
			return "", false
		}
	}
	c.mu.Unlock()

	var digest string
	err := c.db.QueryRow(`
		SELECT digest FROM file_hashes
		WHERE path = ? AND size = ? AND mtime_ns = ? AND algo = ?`,
		path, size, mtime.UnixNano(), algo).Scan(&digest)
	if err != nil {
		if err != sql.ErrNoRows {
			c.degrade(err)
		}
		return "", false
	}
	return digest, true
}

// Store queues an entry for the next flush, overwriting any previous entry
// for the same path once flushed.
func (c *HashCache) Store(entry HashEntry) {
	c.mu.Lock()
	if c.degraded != nil {
		c.mu.Unlock()
		return
	}
	c.pending = append(c.pending, entry)
	full := len(c.pending) >= cacheFlushBatch
	c.mu.Unlock()

	if full {
		if err := c.Flush(); err != nil {
			VerboseLog(1, "cache flush failed: %v", err)
		}
	}
}

// Flush writes all pending entries in a single transaction.
func (c *HashCache) Flush() error {
	c.mu.Lock()
	if c.degraded != nil || len(c.pending) == 0 {
		c.mu.Unlock()
		return nil
	}
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		c.degrade(err)
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO file_hashes
			(path, size, mtime_ns, algo, digest, last_checked)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		c.degrade(err)
		return fmt.Errorf("failed to prepare cache insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, e := range batch {
		if _, err := stmt.Exec(e.Path, e.Size, e.MTimeNS, e.Algo, e.Digest, now); err != nil {
			tx.Rollback()
			c.degrade(err)
			return fmt.Errorf("failed to store cache entry for %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		c.degrade(err)
		return fmt.Errorf("failed to commit cache transaction: %w", err)
	}

	if IsDebugEnabled("cache") {
		VerboseLog(3, "flushed %d cache entries", len(batch))
	}
	return nil
}

// Len returns the number of persisted entries.
func (c *HashCache) Len() (int64, error) {
	c.mu.Lock()
	if c.degraded != nil {
		c.mu.Unlock()
		return 0, c.degraded
	}
	c.mu.Unlock()

	var count int64
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM file_hashes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}

// Prune removes entries whose file no longer exists on disk and returns the
// number of rows dropped.
func (c *HashCache) Prune() (int64, error) {
	c.mu.Lock()
	if c.degraded != nil {
		c.mu.Unlock()
		return 0, c.degraded
	}
	c.mu.Unlock()

	rows, err := c.db.Query(`SELECT path FROM file_hashes`)
	if err != nil {
		return 0, fmt.Errorf("failed to list cache entries: %w", err)
	}

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("failed to scan cache row: %w", err)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("failed to iterate cache rows: %w", err)
	}

	var pruned int64
	for _, path := range stale {
		res, err := c.db.Exec(`DELETE FROM file_hashes WHERE path = ?`, path)
		if err != nil {
			return pruned, fmt.Errorf("failed to prune cache entry %s: %w", path, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			pruned += n
		}
	}
	return pruned, nil
}

// Clear drops every persisted entry.
func (c *HashCache) Clear() error {
	c.mu.Lock()
	c.pending = nil
	if c.degraded != nil {
		c.mu.Unlock()
		return c.degraded
	}
	c.mu.Unlock()

	if _, err := c.db.Exec(`DELETE FROM file_hashes`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// Close flushes pending writes and releases the database.
func (c *HashCache) Close() error {
	flushErr := c.Flush()

	c.mu.Lock()
	db := c.db
	c.db = nil
	c.degraded = newFileError(c.dbPath, KindCache, fmt.Errorf("cache closed"))
	c.mu.Unlock()

	if db != nil {
		if err := db.Close(); err != nil {
			return fmt.Errorf("failed to close cache database: %w", err)
		}
	}
	return flushErr
}

// degrade disables the cache after a storage error. Logged once.
func (c *HashCache) degrade(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.degraded != nil {
		return
	}
	c.degraded = newFileError(c.dbPath, KindCache, err)
	c.pending = nil
	VerboseLog(1, "cache degraded to cold behaviour: %v", err)
}
