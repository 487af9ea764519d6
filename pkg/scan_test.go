package dupescan

import (
	"os"
	"path/filepath"
	"testing"
)

func scanPaths(records []FileRecord) map[string]bool {
	set := make(map[string]bool, len(records))
	for _, r := range records {
		set[filepath.Base(r.Path)] = true
	}
	return set
}

func TestScannerFindsRegularFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", []byte("hello"))
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "sub"), "b.txt", []byte("world"))

	records, err := NewScanner(ScanConfig{}).Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}

	paths := scanPaths(records)
	if !paths["a.txt"] || !paths["b.txt"] {
		t.Errorf("records missing expected files: %v", paths)
	}
	for _, r := range records {
		if r.Size <= 0 {
			t.Errorf("%s: size not captured", r.Path)
		}
		if r.ModTime.IsZero() {
			t.Errorf("%s: mtime not captured", r.Path)
		}
	}
}

func TestScannerMinSizeFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "tiny.txt", []byte("x"))
	writeFile(t, dir, "big.bin", make([]byte, 2048))

	scanner := NewScanner(ScanConfig{MinSize: 100})
	records, err := scanner.Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(records) != 1 || filepath.Base(records[0].Path) != "big.bin" {
		t.Errorf("min-size filter kept wrong set: %v", scanPaths(records))
	}
	if got := scanner.Stats().SkippedSmall; got != 1 {
		t.Errorf("SkippedSmall = %d, want 1", got)
	}
}

func TestScannerSkipImages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "photo.JPG", make([]byte, 512))
	writeFile(t, dir, "photo.png", make([]byte, 512))
	writeFile(t, dir, "doc.txt", make([]byte, 512))

	scanner := NewScanner(ScanConfig{SkipImages: true})
	records, err := scanner.Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(records) != 1 || filepath.Base(records[0].Path) != "doc.txt" {
		t.Errorf("image filter kept wrong set: %v", scanPaths(records))
	}
	if got := scanner.Stats().SkippedImages; got != 2 {
		t.Errorf("SkippedImages = %d, want 2 (extension match must be case-insensitive)", got)
	}
}

func TestScannerExcludesDirectories(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{".git", "node_modules", ConfigDir, "keep"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			t.Fatal(err)
		}
		writeFile(t, filepath.Join(dir, sub), "f.bin", make([]byte, 256))
	}

	scanner := NewScanner(ScanConfig{ExcludeDirs: []string{".git", "node_modules"}})
	records, err := scanner.Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1: %v", len(records), scanPaths(records))
	}
	if filepath.Dir(records[0].Path) != filepath.Join(dir, "keep") {
		t.Errorf("unexpected surviving record: %s", records[0].Path)
	}
}

func TestScannerDropsSecondHardLink(t *testing.T) {
	dir := t.TempDir()
	original := filepath.Join(dir, "original.bin")
	writeFile(t, dir, "original.bin", make([]byte, 1024))

	link := filepath.Join(dir, "z-link.bin")
	if err := os.Link(original, link); err != nil {
		t.Skipf("hard links unsupported here: %v", err)
	}

	scanner := NewScanner(ScanConfig{})
	records, err := scanner.Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (one inode, one candidate)", len(records))
	}
	if got := scanner.Stats().SkippedHardLinks; got != 1 {
		t.Errorf("SkippedHardLinks = %d, want 1", got)
	}
}

func TestScannerIgnoresSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.bin")
	writeFile(t, dir, "target.bin", make([]byte, 512))

	if err := os.Symlink(target, filepath.Join(dir, "alias.bin")); err != nil {
		t.Skipf("symlinks unsupported here: %v", err)
	}

	records, err := NewScanner(ScanConfig{}).Scan(dir)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(records) != 1 || filepath.Base(records[0].Path) != "target.bin" {
		t.Errorf("symlink leaked into records: %v", scanPaths(records))
	}
}

func TestScannerMissingRootIsFatal(t *testing.T) {
	_, err := NewScanner(ScanConfig{}).Scan(filepath.Join(t.TempDir(), "no-such-dir"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}
