package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	dupescan "github.com/mattkeenan/dupescan/pkg"
	"github.com/spf13/cobra"
)

var (
	cleanExecute bool
	cleanYes     bool
	cleanFormat  string
)

var cleanCmd = &cobra.Command{
	Use:   "clean [dir]",
	Short: "Detect duplicates and delete the redundant copies",
	Long: `Detect duplicates and delete every copy except the resolved keeper.

Without --execute this is a preview: the report shows exactly which files
would be deleted and how many bytes would be reclaimed, but nothing is
touched. With --execute the deletions are performed after confirmation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		ctx := signalContext()
		report, cfg, err := runDetect(ctx, root)
		if err != nil {
			return err
		}

		preview := !cleanExecute
		if !preview && !cleanYes {
			ok, err := confirmDeletion(len(report.Groups), report.Stats.DuplicateFiles,
				report.Stats.BytesReclaimable)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted; nothing deleted.")
				return nil
			}
		}

		exec := dupescan.NewExecutor(cfg.GetPerformanceConfig().HashWorkers)
		report.Deletion = exec.Apply(ctx, report.Groups, preview)

		format := cleanFormat
		if format == "" {
			format = cfg.GetOutputConfig().Format
		}
		return renderReport(cmd.OutOrStdout(), report, format)
	},
}

// confirmDeletion is the explicit gate in front of destructive mode. The
// engine itself never prompts.
func confirmDeletion(groups, files int, bytes int64) (bool, error) {
	fmt.Fprintf(os.Stderr, "About to delete %d files across %d groups, reclaiming %s.\n",
		files, groups, dupescan.FormatBytes(bytes))
	fmt.Fprint(os.Stderr, "Type 'yes' to continue: ")

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "yes", nil
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanExecute, "execute", false, "actually delete files (default is preview)")
	cleanCmd.Flags().BoolVar(&cleanYes, "yes", false, "skip the confirmation prompt")
	cleanCmd.Flags().StringVar(&cleanFormat, "format", "", "output format: human or json (default from config)")
}
