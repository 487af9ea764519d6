package dupescan

import (
	"fmt"
)

// GroupBySize partitions records into groups sharing an identical byte size,
// preserving first-seen order within each group. Single-member groups are
// dropped before returning; they cannot contain duplicates and must not be
// hashed. Records with a non-positive size are rejected per-record as
// InvalidInput errors.
func GroupBySize(records []FileRecord) (map[int64][]FileRecord, []*FileError) {
	bySize := make(map[int64][]FileRecord)
	var errs []*FileError

	for _, rec := range records {
		if rec.Size <= 0 {
			errs = append(errs, newFileError(rec.Path, KindInvalidInput,
				fmt.Errorf("invalid file size %d", rec.Size)))
			continue
		}
		bySize[rec.Size] = append(bySize[rec.Size], rec)
	}

	for size, group := range bySize {
		if len(group) < 2 {
			delete(bySize, size)
		}
	}

	return bySize, errs
}
