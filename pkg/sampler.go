package dupescan

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Sampler computes cheap head/middle/tail fingerprints of large files.
// Fingerprints are a pre-filter only: distinct fingerprints prove files
// differ, but colliding fingerprints must still be confirmed by FullDigest.
type Sampler struct {
	// Threshold is the size above which files are fingerprinted before any
	// full hash. Files at or below it skip straight to the full digest.
	Threshold int64

	// Window is the base number of bytes read at each of the three sample
	// offsets. Larger files scale it up; see windowSize.
	Window int64
}

// NewSampler returns a sampler with the default threshold and window.
func NewSampler() *Sampler {
	return &Sampler{
		Threshold: DefaultSampleThreshold,
		Window:    DefaultSampleWindow,
	}
}

// ShouldSample reports whether a file of the given size gets a fingerprint
// pass before full hashing.
func (s *Sampler) ShouldSample(size int64) bool {
	return size > s.Threshold
}

// windowSize scales the per-offset sample window with file size. The scale
// points only tune the false-collision rate fed into full-digest
// confirmation.
func (s *Sampler) windowSize(fileSize int64) int64 {
	const gib = 1024 * 1024 * 1024
	switch {
	case fileSize < 1*gib:
		return s.Window
	case fileSize < 5*gib:
		return 4 * s.Window
	default:
		return 16 * s.Window
	}
}

// Fingerprint reads the head, middle and tail windows of the file and
// returns an xxhash64 over them. The file size is mixed in so truncated
// reads of differently sized files cannot alias, although callers only ever
// compare fingerprints within one size group.
func (s *Sampler) Fingerprint(path string, size int64) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	window := s.windowSize(size)
	if window > size {
		window = size
	}

	offsets := []int64{0, size/2 - window/2, size - window}
	digest := xxhash.New()

	var sizeBuf [8]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], uint64(size))
	_, _ = digest.Write(sizeBuf[:])

	buf := make([]byte, window)
	var prevEnd int64
	for _, off := range offsets {
		// Windows overlap for small-ish files; skip the covered part.
		if off < prevEnd {
			off = prevEnd
		}
		if off >= size {
			break
		}
		n, err := file.ReadAt(buf[:min64(window, size-off)], off)
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("failed to sample file %s at offset %d: %w", path, off, err)
		}
		_, _ = digest.Write(buf[:n])
		prevEnd = off + int64(n)
	}

	return digest.Sum64(), nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
