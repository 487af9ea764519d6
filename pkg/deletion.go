package dupescan

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
)

// DeletionOutcome is the per-file result of one delete (or previewed
// delete).
type DeletionOutcome struct {
	Path    string     `json:"path"`
	Bytes   int64      `json:"bytes"`
	Deleted bool       `json:"deleted"`
	Err     *FileError `json:"error,omitempty"`
}

// DeletionReport aggregates one Apply call. Outcomes are ordered by group
// and then by path within the group, never by completion order, so preview
// and execute reports line up exactly.
type DeletionReport struct {
	Preview        bool              `json:"preview"`
	FilesDeleted   int               `json:"files_deleted"`
	BytesReclaimed int64             `json:"bytes_reclaimed"`
	FilesFailed    int               `json:"files_failed"`
	Outcomes       []DeletionOutcome `json:"outcomes"`
}

// Failures returns the failed outcomes' errors.
func (r *DeletionReport) Failures() []*FileError {
	var errs []*FileError
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errs
}

// Executor performs (or previews) the deletions decided by resolution. Each
// deletion is independent: one failure never blocks the rest of its group or
// other groups.
type Executor struct {
	workers int
}

// NewExecutor creates an executor; workers <= 0 selects the default
// parallelism.
func NewExecutor(workers int) *Executor {
	if workers <= 0 {
		workers = DefaultHashWorkers
	}
	return &Executor{workers: workers}
}

// Apply deletes every Delete member of every group. In preview mode no
// filesystem mutation happens but the report carries the same paths and
// byte counts an execute run would. Cancelling ctx stops dispatching new
// deletions; files not attempted are reported as not deleted without an
// error.
func (e *Executor) Apply(ctx context.Context, groups []DuplicateGroup, preview bool) *DeletionReport {
	defer VerboseEnter()()

	report := &DeletionReport{Preview: preview}

	// Pre-size the outcome table so parallel completion order cannot
	// reorder the report.
	var total int
	for _, g := range groups {
		total += len(g.Delete)
	}
	report.Outcomes = make([]DeletionOutcome, total)

	idx := 0
	var eg errgroup.Group
	eg.SetLimit(e.workers)
	for _, group := range groups {
		for _, rec := range group.Delete {
			slot := &report.Outcomes[idx]
			idx++
			slot.Path = rec.Path
			slot.Bytes = rec.Size

			if preview {
				slot.Deleted = true
				continue
			}
			if ctx.Err() != nil {
				continue
			}
			eg.Go(func() error {
				if err := os.Remove(slot.Path); err != nil {
					slot.Err = newFileError(slot.Path, KindIO,
						fmt.Errorf("failed to delete: %w", err))
					return nil
				}
				slot.Deleted = true
				return nil
			})
		}
	}
	eg.Wait()

	for _, o := range report.Outcomes {
		switch {
		case o.Err != nil:
			report.FilesFailed++
		case o.Deleted:
			report.FilesDeleted++
			report.BytesReclaimed += o.Bytes
		}
	}

	if !preview {
		VerboseLog(1, "deleted %d files (%s reclaimed), %d failures",
			report.FilesDeleted, FormatBytes(report.BytesReclaimed), report.FilesFailed)
	}
	return report
}
