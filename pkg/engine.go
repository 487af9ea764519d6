package dupescan

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// runState tracks the engine's single pass through its phases. States only
// move forward; a fresh run needs a fresh Engine.
type runState int

const (
	stateIdle runState = iota
	stateGrouping
	stateHashing
	stateResolving
	stateDone
)

// EngineOptions configures a detection pass. Zero values select defaults.
type EngineOptions struct {
	// Cache is the persistent hash cache. Nil disables caching for the run.
	Cache *HashCache

	// Sampler controls large-file fingerprinting. Nil selects NewSampler.
	Sampler *Sampler

	// Resolver selects keepers. Nil selects NewResolver(DefaultKeepKeyword).
	Resolver *Resolver

	// Algorithm names the full-digest algorithm (default "sha256").
	Algorithm string

	// HashWorkers bounds concurrent hashing (default DefaultHashWorkers).
	HashWorkers int

	// HashBuffer is the streaming read buffer size in bytes.
	HashBuffer int
}

// Engine coordinates size grouping, hashing with the cache, equality
// confirmation and resolution for one detection pass. Safe to use from one
// goroutine; the hashing it spawns internally is bounded by HashWorkers.
type Engine struct {
	cache    *HashCache
	sampler  *Sampler
	resolver *Resolver
	algo     *HashAlgorithm
	workers  int
	bufSize  int

	mu    sync.Mutex
	state runState
}

// NewEngine creates a single-use detection engine.
func NewEngine(opts EngineOptions) (*Engine, error) {
	name := opts.Algorithm
	if name == "" {
		name = "sha256"
	}
	algo, err := GetHashAlgorithm(name)
	if err != nil {
		return nil, err
	}

	sampler := opts.Sampler
	if sampler == nil {
		sampler = NewSampler()
	}
	resolver := opts.Resolver
	if resolver == nil {
		resolver = NewResolver(DefaultKeepKeyword)
	}
	workers := opts.HashWorkers
	if workers <= 0 {
		workers = DefaultHashWorkers
	}
	bufSize := opts.HashBuffer
	if bufSize <= 0 {
		bufSize = DefaultHashBufferSize
	}

	return &Engine{
		cache:    opts.Cache,
		sampler:  sampler,
		resolver: resolver,
		algo:     algo,
		workers:  workers,
		bufSize:  bufSize,
		state:    stateIdle,
	}, nil
}

// Detect runs the full pass over the scanner's records and returns the
// resolved duplicate groups, statistics and accumulated per-file errors.
//
// Per-file I/O failures never abort the run; they are returned in
// Result.Errors. Cancelling ctx stops dispatching new hash work and lets
// in-flight hashes finish, so the cache is never left mid-write; size
// groups not yet hashed are simply absent from the result.
func (e *Engine) Detect(ctx context.Context, records []FileRecord) (*Result, error) {
	defer VerboseEnter()()

	if records == nil {
		return nil, fmt.Errorf("no file records supplied")
	}
	if err := e.transition(stateIdle, stateGrouping); err != nil {
		return nil, err
	}

	result := &Result{}
	result.Stats.FilesScanned = len(records)

	bySize, inputErrs := GroupBySize(records)
	result.Errors = append(result.Errors, inputErrs...)
	result.Stats.SizeGroups = len(bySize)
	VerboseLog(1, "grouped %d files into %d candidate size groups", len(records), len(bySize))

	if err := e.transition(stateGrouping, stateHashing); err != nil {
		return nil, err
	}

	// Deterministic group order regardless of map iteration.
	sizes := make([]int64, 0, len(bySize))
	for size := range bySize {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

	var confirmed []confirmedGroup
	for _, size := range sizes {
		if ctx.Err() != nil {
			VerboseLog(1, "run cancelled, %d size groups left unhashed", len(sizes))
			break
		}
		group := bySize[size]

		candidates := group
		if e.sampler.ShouldSample(size) {
			candidates = e.fingerprintFilter(ctx, group, result)
		}
		if len(candidates) < 2 {
			continue
		}

		for _, sub := range e.confirmByDigest(ctx, candidates, result) {
			if len(sub.records) >= 2 {
				confirmed = append(confirmed, sub)
			}
		}
	}

	if err := e.transition(stateHashing, stateResolving); err != nil {
		return nil, err
	}

	for _, sub := range confirmed {
		group, err := e.resolver.Resolve(sub.digest, sub.records)
		if err != nil {
			// Cannot happen for >=2 members; guard anyway.
			return nil, fmt.Errorf("failed to resolve group %s: %w", sub.digest, err)
		}
		result.Groups = append(result.Groups, group)
	}

	sort.Slice(result.Groups, func(i, j int) bool {
		if result.Groups[i].BytesReclaimable != result.Groups[j].BytesReclaimable {
			return result.Groups[i].BytesReclaimable > result.Groups[j].BytesReclaimable
		}
		return result.Groups[i].Keep.Path < result.Groups[j].Keep.Path
	})

	result.Stats.DuplicateGroups = len(result.Groups)
	for _, g := range result.Groups {
		result.Stats.DuplicateFiles += len(g.Delete)
		result.Stats.BytesReclaimable += g.BytesReclaimable
	}

	if e.cache != nil {
		if err := e.cache.Flush(); err != nil {
			VerboseLog(1, "final cache flush failed: %v", err)
		}
	}

	if err := e.transition(stateResolving, stateDone); err != nil {
		return nil, err
	}
	VerboseLog(1, "detection done: %d duplicate groups, %d deletable files",
		result.Stats.DuplicateGroups, result.Stats.DuplicateFiles)

	return result, nil
}

// confirmedGroup is a set of records proven byte-identical by full digest.
type confirmedGroup struct {
	digest  string
	records []FileRecord
}

// fingerprintFilter computes sample fingerprints concurrently and keeps only
// records whose fingerprint collides with another in the same size group.
// Distinct fingerprints prove distinct content; collisions still need the
// full digest.
func (e *Engine) fingerprintFilter(ctx context.Context, group []FileRecord, result *Result) []FileRecord {
	type fpOutcome struct {
		fp  uint64
		err error
	}
	outcomes := make([]fpOutcome, len(group))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range group {
		if ctx.Err() != nil {
			break
		}
		i := i
		rec := group[i]
		g.Go(func() error {
			fp, err := e.sampler.Fingerprint(rec.Path, rec.Size)
			outcomes[i] = fpOutcome{fp: fp, err: err}
			return nil
		})
	}
	g.Wait()

	buckets := make(map[uint64]int)
	for i, out := range outcomes {
		if out.err != nil {
			result.Errors = append(result.Errors,
				newFileError(group[i].Path, KindIO, out.err))
			continue
		}
		result.Stats.FilesSampled++
		buckets[out.fp]++
	}

	var colliding []FileRecord
	for i, out := range outcomes {
		if out.err == nil && buckets[out.fp] >= 2 {
			colliding = append(colliding, group[i])
		}
	}
	if IsDebugEnabled("hash") {
		VerboseLog(3, "fingerprint filter: %d of %d large files kept", len(colliding), len(group))
	}
	return colliding
}

// confirmByDigest computes (or looks up) the authoritative full digest for
// every candidate and partitions them by digest. Failed files are recorded
// and excluded.
func (e *Engine) confirmByDigest(ctx context.Context, candidates []FileRecord, result *Result) []confirmedGroup {
	type digestOutcome struct {
		digest string
		cached bool
		err    error
	}
	outcomes := make([]digestOutcome, len(candidates))

	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range candidates {
		if ctx.Err() != nil {
			break
		}
		i := i
		rec := candidates[i]
		g.Go(func() error {
			if e.cache != nil {
				if digest, ok := e.cache.Lookup(rec.Path, rec.Size, rec.ModTime, e.algo.Name); ok {
					outcomes[i] = digestOutcome{digest: digest, cached: true}
					return nil
				}
			}
			digest, err := FullDigest(rec.Path, e.algo, e.bufSize)
			if err != nil {
				outcomes[i] = digestOutcome{err: err}
				return nil
			}
			if e.cache != nil {
				e.cache.Store(HashEntry{
					Path:    rec.Path,
					Size:    rec.Size,
					MTimeNS: rec.ModTime.UnixNano(),
					Algo:    e.algo.Name,
					Digest:  digest,
				})
			}
			outcomes[i] = digestOutcome{digest: digest}
			return nil
		})
	}
	g.Wait()

	// Partition in discovery order so group membership order is stable.
	byDigest := make(map[string][]FileRecord)
	var order []string
	for i, out := range outcomes {
		switch {
		case out.err != nil:
			result.Errors = append(result.Errors,
				newFileError(candidates[i].Path, KindIO, out.err))
		case out.digest == "":
			// Dispatch stopped by cancellation before this file.
		default:
			if out.cached {
				result.Stats.CacheHits++
			} else {
				result.Stats.FilesHashed++
			}
			if _, seen := byDigest[out.digest]; !seen {
				order = append(order, out.digest)
			}
			byDigest[out.digest] = append(byDigest[out.digest], candidates[i])
		}
	}

	groups := make([]confirmedGroup, 0, len(order))
	for _, digest := range order {
		groups = append(groups, confirmedGroup{digest: digest, records: byDigest[digest]})
	}
	return groups
}

// transition advances the state machine, rejecting reuse or out-of-order
// phases.
func (e *Engine) transition(from, to runState) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != from {
		return fmt.Errorf("engine is single-use: expected state %d, in state %d", from, e.state)
	}
	e.state = to
	return nil
}
