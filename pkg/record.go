package dupescan

import (
	"path/filepath"
	"strings"
	"time"
)

// FileRecord describes a regular file found by the scanner. Records are
// immutable once captured for a run; the path is the unique key.
type FileRecord struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`

	// Device and inode, used by the scanner to suppress hard links.
	// Zero when the platform does not expose them.
	Dev uint64 `json:"-"`
	Ino uint64 `json:"-"`
}

// Depth returns the directory nesting depth of the record's path.
func (r FileRecord) Depth() int {
	p := filepath.ToSlash(filepath.Clean(r.Path))
	p = strings.TrimPrefix(p, "/")
	if p == "" || p == "." {
		return 0
	}
	return strings.Count(p, "/")
}

// Reason identifies the resolution rule that selected a group's keeper.
type Reason string

const (
	ReasonKeepKeyword Reason = "keep-keyword"
	ReasonDeeperPath  Reason = "deeper-path"
	ReasonNewestFile  Reason = "newest-file"
)

// DuplicateGroup is a resolved set of byte-identical files: exactly one
// keeper, the rest deletable. Always has at least two members.
type DuplicateGroup struct {
	Digest string       `json:"digest"`
	Size   int64        `json:"size"`
	Keep   FileRecord   `json:"keep"`
	Delete []FileRecord `json:"delete"`
	Reason Reason       `json:"reason"`

	// BytesReclaimable is Size * len(Delete); all members share one size.
	BytesReclaimable int64 `json:"bytes_reclaimable"`
}

// Members returns the total number of files in the group.
func (g *DuplicateGroup) Members() int {
	return 1 + len(g.Delete)
}

// DetectionStats aggregates counters for a single detection pass. Read-only
// after the run reaches Done.
type DetectionStats struct {
	FilesScanned     int   `json:"files_scanned"`
	SizeGroups       int   `json:"size_groups"`
	FilesSampled     int   `json:"files_sampled"`
	FilesHashed      int   `json:"files_hashed"`
	CacheHits        int   `json:"cache_hits"`
	DuplicateGroups  int   `json:"duplicate_groups"`
	DuplicateFiles   int   `json:"duplicate_files"`
	BytesReclaimable int64 `json:"bytes_reclaimable"`
}

// Result is the immutable outcome of one Engine run.
type Result struct {
	Groups []DuplicateGroup `json:"groups"`
	Stats  DetectionStats   `json:"stats"`
	Errors []*FileError     `json:"errors,omitempty"`
}
