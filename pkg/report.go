package dupescan

import (
	"time"
)

// Report is the read-only data handed to external renderers. The engine
// does no formatting itself; the CLI (or any other consumer) decides how to
// present it.
type Report struct {
	Root        string           `json:"root"`
	GeneratedAt time.Time        `json:"generated_at"`
	Duration    string           `json:"duration"`
	Scan        ScanStats        `json:"scan"`
	Stats       DetectionStats   `json:"stats"`
	Groups      []DuplicateGroup `json:"groups"`
	Errors      []*FileError     `json:"errors,omitempty"`
	Deletion    *DeletionReport  `json:"deletion,omitempty"`
}

// NewReport assembles a report from one detection pass.
func NewReport(root string, scanStats ScanStats, result *Result, started time.Time) *Report {
	return &Report{
		Root:        root,
		GeneratedAt: time.Now(),
		Duration:    time.Since(started).Round(time.Millisecond).String(),
		Scan:        scanStats,
		Stats:       result.Stats,
		Groups:      result.Groups,
		Errors:      result.Errors,
	}
}
