package main

import (
	"fmt"
	"os"

	dupescan "github.com/mattkeenan/dupescan/pkg"
	"github.com/spf13/cobra"
)

var (
	flagVerbose int
	flagDebug   string
)

var rootCmd = &cobra.Command{
	Use:   "dupescan",
	Short: "Find and remove byte-identical duplicate files",
	Long: `dupescan detects exact duplicate files in a directory tree and resolves
which copy to keep.

Files are grouped by size, large files are fingerprinted cheaply, and only
real candidates are fully hashed. Full digests are cached in
.dupescan/hashes.db so repeated runs skip unchanged files.

The keeper of each duplicate group is chosen by policy: paths containing the
keep keyword win, then deeper paths, then the newest file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		dupescan.SetVerboseLevel(flagVerbose)
		dupescan.SetDebugFlags(flagDebug)
	},
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&flagVerbose, "verbose", "v", 0, "verbose level (0-3)")
	rootCmd.PersistentFlags().StringVar(&flagDebug, "debug", "", "debug flags, comma-separated (e.g. hash,cache)")

	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dupescan: %v\n", err)
		os.Exit(1)
	}
}
