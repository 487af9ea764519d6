package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	dupescan "github.com/mattkeenan/dupescan/pkg"
)

// defaultExcludes are directory names never worth descending into.
var defaultExcludes = []string{".git", "node_modules", ".svn"}

// runDetect performs a full detection pass over root: load config, scan,
// hash with the cache, resolve. The returned report carries everything the
// renderers and the clean command need.
func runDetect(ctx context.Context, root string) (*dupescan.Report, *dupescan.Config, error) {
	root = filepath.Clean(root)
	metaDir := filepath.Join(root, dupescan.ConfigDir)

	cfg, err := dupescan.LoadConfig(metaDir)
	if err != nil {
		return nil, nil, err
	}

	// Config-file verbosity applies unless the flag already raised it.
	if vc := cfg.GetVerboseConfig(); dupescan.GetVerboseLevel() == 0 && vc.Level > 0 {
		dupescan.SetVerboseLevel(vc.Level)
		dupescan.SetDebugFlags(vc.Debug)
	}

	scanCfg := cfg.GetScanConfig()
	minSize, err := dupescan.ParseHumanSize(scanCfg.MinSize)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid scan.min_size: %w", err)
	}

	scanner := dupescan.NewScanner(dupescan.ScanConfig{
		MinSize:     minSize,
		SkipImages:  scanCfg.SkipImages,
		ExcludeDirs: defaultExcludes,
	})
	records, err := scanner.Scan(root)
	if err != nil {
		return nil, nil, err
	}

	sampling := cfg.GetSamplingConfig()
	threshold, err := dupescan.ParseHumanSize(sampling.Threshold)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid sampling.threshold: %w", err)
	}
	window, err := dupescan.ParseHumanSize(sampling.Window)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid sampling.window: %w", err)
	}

	perf := cfg.GetPerformanceConfig()
	bufSize, err := dupescan.ParseHumanSize(perf.HashBuffer)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid performance.hash_buffer: %w", err)
	}

	cache, err := dupescan.OpenHashCache(metaDir)
	if err != nil {
		return nil, nil, err
	}
	defer cache.Close()

	engine, err := dupescan.NewEngine(dupescan.EngineOptions{
		Cache:       cache,
		Sampler:     &dupescan.Sampler{Threshold: threshold, Window: window},
		Resolver:    dupescan.NewResolver(cfg.GetResolverConfig().KeepKeyword),
		Algorithm:   cfg.GetHashConfig().Default,
		HashWorkers: perf.HashWorkers,
		HashBuffer:  int(bufSize),
	})
	if err != nil {
		return nil, nil, err
	}

	started := time.Now()
	result, err := engine.Detect(ctx, records)
	if err != nil {
		return nil, nil, err
	}

	return dupescan.NewReport(root, scanner.Stats(), result, started), cfg, nil
}
