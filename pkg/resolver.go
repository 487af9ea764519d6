package dupescan

import (
	"fmt"
	"sort"
	"strings"
)

// resolutionRule narrows a candidate set. A rule either leaves the
// candidates untouched (no opinion), or returns the subset it prefers. The
// first rule whose subset is a single record decides the group and supplies
// the Reason; a subset of two or more falls through to the next rule.
type resolutionRule struct {
	reason Reason
	apply  func(r *Resolver, candidates []FileRecord) []FileRecord
}

// Resolver selects the keeper within a group of confirmed-identical files.
// Pure decision logic over already-known metadata; no I/O.
type Resolver struct {
	// KeepKeyword is matched case-insensitively anywhere in the path.
	KeepKeyword string

	rules []resolutionRule
}

// NewResolver returns a resolver with the standard rule order:
// keep-keyword, then deeper-path, then newest-file. Remaining ties are
// broken by lexicographic path order for determinism.
func NewResolver(keepKeyword string) *Resolver {
	if keepKeyword == "" {
		keepKeyword = DefaultKeepKeyword
	}
	r := &Resolver{KeepKeyword: keepKeyword}
	r.rules = []resolutionRule{
		{reason: ReasonKeepKeyword, apply: (*Resolver).applyKeepKeyword},
		{reason: ReasonDeeperPath, apply: (*Resolver).applyDeeperPath},
		{reason: ReasonNewestFile, apply: (*Resolver).applyNewestFile},
	}
	return r
}

// Resolve picks exactly one keeper from a group of byte-identical records
// and classifies the rest as deletable. The group must have at least two
// members, all of the same size.
func (r *Resolver) Resolve(digest string, records []FileRecord) (DuplicateGroup, error) {
	if len(records) < 2 {
		return DuplicateGroup{}, fmt.Errorf("duplicate group needs at least 2 members, got %d", len(records))
	}

	candidates := records
	reason := ReasonNewestFile
	for _, rule := range r.rules {
		subset := rule.apply(r, candidates)
		if len(subset) == 0 {
			// Rule had no opinion; candidates stand.
			continue
		}
		candidates = subset
		if len(candidates) == 1 {
			reason = rule.reason
			break
		}
	}

	if len(candidates) > 1 {
		// Total order over paths guarantees determinism.
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].Path < candidates[j].Path
		})
	}
	keep := candidates[0]

	size := records[0].Size
	group := DuplicateGroup{
		Digest: digest,
		Size:   size,
		Keep:   keep,
		Reason: reason,
	}
	for _, rec := range records {
		if rec.Path == keep.Path {
			continue
		}
		group.Delete = append(group.Delete, rec)
	}
	sort.Slice(group.Delete, func(i, j int) bool {
		return group.Delete[i].Path < group.Delete[j].Path
	})
	group.BytesReclaimable = size * int64(len(group.Delete))

	return group, nil
}

// applyKeepKeyword prefers records whose path contains the keyword. Returns
// nil (no opinion) when nothing matches.
func (r *Resolver) applyKeepKeyword(candidates []FileRecord) []FileRecord {
	keyword := strings.ToLower(r.KeepKeyword)
	var matched []FileRecord
	for _, rec := range candidates {
		if strings.Contains(strings.ToLower(rec.Path), keyword) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// applyDeeperPath prefers the records with the greatest directory nesting
// depth, reading deeper placement as more deliberate organization.
func (r *Resolver) applyDeeperPath(candidates []FileRecord) []FileRecord {
	maxDepth := -1
	for _, rec := range candidates {
		if d := rec.Depth(); d > maxDepth {
			maxDepth = d
		}
	}
	var deepest []FileRecord
	for _, rec := range candidates {
		if rec.Depth() == maxDepth {
			deepest = append(deepest, rec)
		}
	}
	return deepest
}

// applyNewestFile prefers the records with the latest modification time.
func (r *Resolver) applyNewestFile(candidates []FileRecord) []FileRecord {
	newest := candidates[0].ModTime
	for _, rec := range candidates[1:] {
		if rec.ModTime.After(newest) {
			newest = rec.ModTime
		}
	}
	var latest []FileRecord
	for _, rec := range candidates {
		if rec.ModTime.Equal(newest) {
			latest = append(latest, rec)
		}
	}
	return latest
}
