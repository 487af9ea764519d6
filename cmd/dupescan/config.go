package main

import (
	"fmt"
	"path/filepath"
	"strings"

	dupescan "github.com/mattkeenan/dupescan/pkg"
	"github.com/spf13/cobra"
)

var configDir string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read or change dupescan settings",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfigAt()
		if err != nil {
			return err
		}

		all := cfg.GetAllConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", cfg.Path())
		fmt.Fprintf(out, "filehash.default = %s\n", all.Hash.Default)
		fmt.Fprintf(out, "sampling.threshold = %s\n", all.Sampling.Threshold)
		fmt.Fprintf(out, "sampling.window = %s\n", all.Sampling.Window)
		fmt.Fprintf(out, "resolver.keep_keyword = %s\n", all.Resolver.KeepKeyword)
		fmt.Fprintf(out, "performance.hash_workers = %d\n", all.Performance.HashWorkers)
		fmt.Fprintf(out, "performance.hash_buffer = %s\n", all.Performance.HashBuffer)
		fmt.Fprintf(out, "scan.min_size = %s\n", all.Scan.MinSize)
		fmt.Fprintf(out, "scan.skip_images = %t\n", all.Scan.SkipImages)
		fmt.Fprintf(out, "output.format = %s\n", all.Output.Format)
		fmt.Fprintf(out, "verbose.level = %d\n", all.Verbose.Level)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <section.key>",
	Short: "Read one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, key, err := splitConfigKey(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfigAt()
		if err != nil {
			return err
		}
		value, ok := cfg.Get(section, key)
		if !ok {
			return fmt.Errorf("no such setting: %s", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <section.key> <value>",
	Short: "Change one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, key, err := splitConfigKey(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadConfigAt()
		if err != nil {
			return err
		}
		if err := cfg.Set(section, key, args[1]); err != nil {
			return err
		}
		return cfg.Save()
	},
}

func loadConfigAt() (*dupescan.Config, error) {
	return dupescan.LoadConfig(filepath.Join(configDir, dupescan.ConfigDir))
}

func splitConfigKey(arg string) (string, string, error) {
	parts := strings.SplitN(arg, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("setting must be section.key, got %q", arg)
	}
	return parts[0], parts[1], nil
}

func init() {
	configCmd.PersistentFlags().StringVar(&configDir, "dir", ".", "tree whose configuration to use")
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}
