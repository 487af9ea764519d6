package main

import (
	"github.com/spf13/cobra"
)

var findFormat string

var findCmd = &cobra.Command{
	Use:   "find [dir]",
	Short: "Detect duplicate files and report them (no deletion)",
	Args:  cobra.MaximumNArgs(1),
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

		format := findFormat
		if format == "" {
			format = cfg.GetOutputConfig().Format
		}
		return renderReport(cmd.OutOrStdout(), report, format)
	},
}

func init() {
	findCmd.Flags().StringVar(&findFormat, "format", "", "output format: human or json (default from config)")
}
