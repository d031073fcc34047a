package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"digital.vasic.equate/pkg/lint"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [paths...]",
		Short: "Report malformed assertions in Go source",
		Long: `Check finds assertion calls whose expression is a string literal and
reports syntax errors and operand counts that do not match the expression.
Settings are read from the nearest equate.toml`,
		RunE: runCheck,
	}
	cmd.Flags().StringSlice("comparator", nil, "comparator names registered at run time")
	cmd.Flags().StringSlice("exclude", nil, "glob patterns of paths to skip")
	cmd.Flags().Int("workers", 0, "files checked at once (default from equate.toml, else 8)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var opts []lint.Option
	manifest, ok, err := loadManifest(paths[0])
	if err != nil {
		return err
	}
	if ok {
		opts = append(opts,
			lint.WithComparators(manifest.Config.Check.Comparators...),
			lint.WithExclude(manifest.Config.Check.Exclude...),
		)
		if w := manifest.Config.Check.Workers; w > 0 {
			opts = append(opts, lint.WithWorkers(w))
		}
	}

	names, err := cmd.Flags().GetStringSlice("comparator")
	if err != nil {
		return fmt.Errorf("failed to get comparator flag: %w", err)
	}
	exclude, err := cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return fmt.Errorf("failed to get exclude flag: %w", err)
	}
	workers, err := cmd.Flags().GetInt("workers")
	if err != nil {
		return fmt.Errorf("failed to get workers flag: %w", err)
	}
	opts = append(opts, lint.WithComparators(names...), lint.WithExclude(exclude...))
	if workers > 0 {
		opts = append(opts, lint.WithWorkers(workers))
	}

	problems, err := lint.NewChecker(opts...).CheckPaths(cmd.Context(), paths)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, p := range problems {
		fmt.Fprintln(out, p.String())
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d malformed assertion(s)", len(problems))
	}
	return nil
}
