package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"digital.vasic.equate/pkg/equate"
	"digital.vasic.equate/pkg/render"
	"digital.vasic.equate/pkg/report"
)

// explainLocation stands for the command line in explain reports.
var explainLocation = render.Location{File: "<command line>", Line: 1, Col: 1}

func newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [flags] <expression>",
		Short: "Evaluate a constant expression and explain a failure",
		Long: `Explain evaluates an expression whose leaves are all Go constants and
prints the diagnostic it would produce, or ok when it holds`,
		Args: cobra.ExactArgs(1),
		RunE: runExplain,
	}
	cmd.Flags().String("style", "", "value style (go|spew|plain), default from configuration")
	return cmd
}

func runExplain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if style, _ := cmd.Flags().GetString("style"); style != "" {
		cfg.Style = style
	}
	colored, err := useColor(cmd, stdoutFile(cmd))
	if err != nil {
		return err
	}
	opts, err := cfg.RenderOptions(colored)
	if err != nil {
		return err
	}

	e := equate.New(equate.WithRenderOptions(opts))
	c, err := e.Compile(args[0])
	if err != nil {
		return err
	}
	if n := c.Operands(); n > 0 {
		var names []string
		for _, l := range c.Program().OperandLeaves() {
			names = append(names, l.Text)
		}
		return fmt.Errorf("explain needs constant leaves, %d are not: %s",
			n, strings.Join(names, ", "))
	}

	failure, err := e.Evaluate(explainLocation, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if failure == nil {
		fmt.Fprintln(out, "ok")
		return nil
	}
	fmt.Fprintln(out, failure.Report)
	return report.ErrAssertionFailed
}
