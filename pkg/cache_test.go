package dupescan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *HashCache {
	t.Helper()
	cache, err := OpenHashCache(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, cache.DegradedError())
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestHashCache_StoreAndLookup(t *testing.T) {
	cache := openTestCache(t)
	mtime := time.Unix(1700000000, 123456789)

	cache.Store(HashEntry{
		Path: "/data/a.bin", Size: 4096, MTimeNS: mtime.UnixNano(),
		Algo: "sha256", Digest: "deadbeef",
	})
	require.NoError(t, cache.Flush())

	digest, ok := cache.Lookup("/data/a.bin", 4096, mtime, "sha256")
	require.True(t, ok)
	assert.Equal(t, "deadbeef", digest)
}

func TestHashCache_PendingEntriesVisibleBeforeFlush(t *testing.T) {
	cache := openTestCache(t)
	mtime := time.Unix(1700000000, 0)

	cache.Store(HashEntry{
		Path: "/data/b.bin", Size: 10, MTimeNS: mtime.UnixNano(),
		Algo: "sha256", Digest: "cafe",
	})

	digest, ok := cache.Lookup("/data/b.bin", 10, mtime, "sha256")
	require.True(t, ok)
	assert.Equal(t, "cafe", digest)
}

func TestHashCache_MetadataMismatchIsMiss(t *testing.T) {
	cache := openTestCache(t)
	mtime := time.Unix(1700000000, 500)

	cache.Store(HashEntry{
		Path: "/data/c.bin", Size: 777, MTimeNS: mtime.UnixNano(),
		Algo: "sha256", Digest: "0123",
	})
	require.NoError(t, cache.Flush())

	// Size changed
	_, ok := cache.Lookup("/data/c.bin", 778, mtime, "sha256")
	assert.False(t, ok, "size mismatch must be a miss")

	// Modification time changed
	_, ok = cache.Lookup("/data/c.bin", 777, mtime.Add(time.Nanosecond), "sha256")
	assert.False(t, ok, "mtime mismatch must be a miss")

	// Different digest algorithm
	_, ok = cache.Lookup("/data/c.bin", 777, mtime, "sha512")
	assert.False(t, ok, "algorithm mismatch must be a miss")

	// Exact match still hits
	_, ok = cache.Lookup("/data/c.bin", 777, mtime, "sha256")
	assert.True(t, ok)
}

func TestHashCache_OverwriteReplacesEntry(t *testing.T) {
	cache := openTestCache(t)
	oldTime := time.Unix(1700000000, 0)
	newTime := oldTime.Add(time.Hour)

	cache.Store(HashEntry{Path: "/d.bin", Size: 1, MTimeNS: oldTime.UnixNano(), Algo: "sha256", Digest: "old"})
	require.NoError(t, cache.Flush())
	cache.Store(HashEntry{Path: "/d.bin", Size: 2, MTimeNS: newTime.UnixNano(), Algo: "sha256", Digest: "new"})
	require.NoError(t, cache.Flush())

	_, ok := cache.Lookup("/d.bin", 1, oldTime, "sha256")
	assert.False(t, ok, "stale entry must be gone after overwrite")

	digest, ok := cache.Lookup("/d.bin", 2, newTime, "sha256")
	require.True(t, ok)
	assert.Equal(t, "new", digest)
}

func TestHashCache_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Unix(1700000000, 0)

	cache, err := OpenHashCache(dir)
	require.NoError(t, err)
	cache.Store(HashEntry{Path: "/e.bin", Size: 5, MTimeNS: mtime.UnixNano(), Algo: "sha256", Digest: "feed"})
	require.NoError(t, cache.Close())

	reopened, err := OpenHashCache(dir)
	require.NoError(t, err)
	defer reopened.Close()

	digest, ok := reopened.Lookup("/e.bin", 5, mtime, "sha256")
	require.True(t, ok)
	assert.Equal(t, "feed", digest)
}

func TestHashCache_CorruptDatabaseDegradesToCold(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CacheDBName),
		[]byte("this is not a sqlite database"), 0644))

	cache, err := OpenHashCache(dir)
	require.NoError(t, err, "corruption must never be fatal")
	defer cache.Close()

	// Either the file was recreated (healthy) or the cache is cold; both
	// are acceptable, crashing is not. A healthy recreated cache must
	// behave normally.
	if cache.DegradedError() == nil {
		mtime := time.Unix(1700000000, 0)
		cache.Store(HashEntry{Path: "/f.bin", Size: 9, MTimeNS: mtime.UnixNano(), Algo: "sha256", Digest: "ab"})
		require.NoError(t, cache.Flush())
		_, ok := cache.Lookup("/f.bin", 9, mtime, "sha256")
		assert.True(t, ok)
	} else {
		_, ok := cache.Lookup("/f.bin", 9, time.Now(), "sha256")
		assert.False(t, ok)
	}
}

func TestHashCache_LenClearPrune(t *testing.T) {
	dir := t.TempDir()
	cache, err := OpenHashCache(dir)
	require.NoError(t, err)
	defer cache.Close()

	existing := writeTestFile(t, dir, "real.bin", []byte("content"))
	mtime := time.Unix(1700000000, 0)

	cache.Store(HashEntry{Path: existing, Size: 7, MTimeNS: mtime.UnixNano(), Algo: "sha256", Digest: "11"})
	cache.Store(HashEntry{Path: filepath.Join(dir, "gone.bin"), Size: 7, MTimeNS: mtime.UnixNano(), Algo: "sha256", Digest: "22"})
	require.NoError(t, cache.Flush())

	count, err := cache.Len()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	pruned, err := cache.Prune()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pruned, "only the missing file's entry should be pruned")

	count, err = cache.Len()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, cache.Clear())
	count, err = cache.Len()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func writeTestFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}
