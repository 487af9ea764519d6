package main

import (
	"fmt"
	"path/filepath"

	dupescan "github.com/mattkeenan/dupescan/pkg"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or maintain the hash cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats [dir]",
	Short: "Show hash cache entry count",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCacheAt(args)
		if err != nil {
			return err
		}
		defer cache.Close()

		count, err := cache.Len()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d cached file hashes\n", count)
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [dir]",
	Short: "Drop every cached hash",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCacheAt(args)
		if err != nil {
			return err
		}
		defer cache.Close()

		if err := cache.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
		return nil
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune [dir]",
	Short: "Drop cached hashes for files that no longer exist",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, err := openCacheAt(args)
		if err != nil {
			return err
		}
		defer cache.Close()

		pruned, err := cache.Prune()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d stale entries.\n", pruned)
		return nil
	},
}

func openCacheAt(args []string) (*dupescan.HashCache, error) {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	return dupescan.OpenHashCache(filepath.Join(root, dupescan.ConfigDir))
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)
}
