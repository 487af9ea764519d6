package dupescan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// ScanConfig defines the rules for filesystem enumeration.
type ScanConfig struct {
	// MinSize excludes files below this many bytes (default
	// DefaultMinFileSize when negative; 0 disables the filter).
	MinSize int64

	// SkipImages excludes common image extensions from detection.
	SkipImages bool

	// ExcludeDirs are directory names skipped entirely (e.g. ".git").
	ExcludeDirs []string
}

// ScanStats counts what the scanner saw and filtered out.
type ScanStats struct {
	FilesWalked      int `json:"files_walked"`
	SkippedSmall     int `json:"skipped_small"`
	SkippedImages    int `json:"skipped_images"`
	SkippedHardLinks int `json:"skipped_hard_links"`
}

type devino struct {
	dev, ino uint64
}

// Scanner enumerates regular files under a root directory and produces the
// FileRecord sequence the engine consumes. Symlinks and non-regular files
// are excluded, and second and later hard links to an already-seen inode
// are dropped: deleting a hard link reclaims nothing, so the engine should
// never see it as a duplicate candidate.
type Scanner struct {
	cfg        ScanConfig
	excludeSet map[string]struct{}
	seen       map[devino]struct{}
	stats      ScanStats
}

// NewScanner creates a scanner with the given rules. Always excludes the
// scanner's own metadata directory.
func NewScanner(cfg ScanConfig) *Scanner {
	if cfg.MinSize < 0 {
		cfg.MinSize = DefaultMinFileSize
	}

	exMap := make(map[string]struct{}, len(cfg.ExcludeDirs)+1)
	for _, e := range cfg.ExcludeDirs {
		exMap[e] = struct{}{}
	}
	exMap[ConfigDir] = struct{}{}

	return &Scanner{
		cfg:        cfg,
		excludeSet: exMap,
		seen:       make(map[devino]struct{}),
	}
}

// Stats returns the counters accumulated so far.
func (s *Scanner) Stats() ScanStats {
	return s.stats
}

// Scan walks rootDir and returns file records in walk order. Unreadable
// entries are skipped, not fatal; only a missing or unreadable root aborts.
func (s *Scanner) Scan(rootDir string) ([]FileRecord, error) {
	defer VerboseEnter()()

	var records []FileRecord

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootDir {
				return fmt.Errorf("failed to scan %s: %w", rootDir, err)
			}
			VerboseLog(2, "skipping unreadable entry %s: %v", path, err)
			return nil
		}

		if d.IsDir() {
			if _, ok := s.excludeSet[d.Name()]; ok {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		s.stats.FilesWalked++

		if s.cfg.SkipImages {
			if _, ok := imageExtensions[strings.ToLower(filepath.Ext(path))]; ok {
				s.stats.SkippedImages++
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			VerboseLog(2, "failed to stat %s: %v", path, err)
			return nil
		}
		if info.Size() < s.cfg.MinSize {
			s.stats.SkippedSmall++
			return nil
		}

		rec := FileRecord{
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}

		var st unix.Stat_t
		if err := unix.Stat(path, &st); err == nil {
			rec.Dev = uint64(st.Dev)
			rec.Ino = uint64(st.Ino)
			id := devino{dev: rec.Dev, ino: rec.Ino}
			if _, dup := s.seen[id]; dup {
				s.stats.SkippedHardLinks++
				return nil
			}
			s.seen[id] = struct{}{}
		}

		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}

	VerboseLog(1, "scan of %s: %d files walked, %d candidates",
		rootDir, s.stats.FilesWalked, len(records))
	return records, nil
}
