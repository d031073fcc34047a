// Command equate inspects, checks and explains assertion
// expressions, and browses the failures recorded by test runs.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"digital.vasic.equate/pkg/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "equate",
		Short:         "Structured assertions with decomposed diagnostics",
		Long:          `equate parses, checks and explains assertion expressions and reports recorded failures`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().String("config", "", "YAML configuration file (default $EQUATE_CONFIG)")

	root.AddCommand(
		newParseCmd(),
		newExplainCmd(),
		newCheckCmd(),
		newHistoryCmd(),
		newMonitorCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "equate:", err)
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// stdoutFile returns the command's output when it is a file.
func stdoutFile(cmd *cobra.Command) *os.File {
	f, _ := cmd.OutOrStdout().(*os.File)
	return f
}

// useColor resolves the --color flag for output to f.
func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch mode {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto", "":
		if _, ok := os.LookupEnv("NO_COLOR"); ok {
			return false, nil
		}
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color %q (must be auto, on or off)", mode)
	}
}

// loadConfig returns the configuration named by --config, or the
// one of the environment.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		return config.FromEnvironment()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(config.NewEnvLoader()); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}
