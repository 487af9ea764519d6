package dupescan

import (
	"testing"
	"time"
)

func rec(path string, size int64) FileRecord {
	return FileRecord{Path: path, Size: size, ModTime: time.Unix(1700000000, 0)}
}

func TestGroupBySize_PartitionsStrictlyBySize(t *testing.T) {
	records := []FileRecord{
		rec("a.bin", 100),
		rec("b.bin", 100),
		rec("c.bin", 200),
		rec("d.bin", 200),
		rec("e.bin", 300),
	}

	groups, errs := GroupBySize(records)
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	if len(groups) != 2 {
		t.Fatalf("expected 2 multi-member groups, got %d", len(groups))
	}

	for size, group := range groups {
		for _, r := range group {
			if r.Size != size {
				t.Errorf("record %s (size %d) landed in group %d", r.Path, r.Size, size)
			}
		}
	}
}

func TestGroupBySize_DropsSingletons(t *testing.T) {
	groups, errs := GroupBySize([]FileRecord{rec("only.bin", 42)})
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(groups) != 0 {
		t.Errorf("singleton group should be dropped, got %d groups", len(groups))
	}
}

func TestGroupBySize_PreservesDiscoveryOrder(t *testing.T) {
	records := []FileRecord{
		rec("first.bin", 50),
		rec("second.bin", 50),
		rec("third.bin", 50),
	}

	groups, _ := GroupBySize(records)
	group := groups[50]
	if len(group) != 3 {
		t.Fatalf("expected 3 members, got %d", len(group))
	}
	for i, want := range []string{"first.bin", "second.bin", "third.bin"} {
		if group[i].Path != want {
			t.Errorf("position %d: expected %s, got %s", i, want, group[i].Path)
		}
	}
}

func TestGroupBySize_RejectsInvalidSizes(t *testing.T) {
	records := []FileRecord{
		rec("bad.bin", -1),
		rec("empty.bin", 0),
		rec("ok1.bin", 10),
		rec("ok2.bin", 10),
	}

	groups, errs := GroupBySize(records)
	if len(errs) != 2 {
		t.Fatalf("expected 2 input errors, got %d", len(errs))
	}
	for _, fe := range errs {
		if fe.Kind != KindInvalidInput {
			t.Errorf("expected InvalidInput, got %s", fe.Kind)
		}
	}
	if len(groups[10]) != 2 {
		t.Errorf("valid records should still group, got %v", groups)
	}
}
