package main

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the equate version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			colored, err := useColor(cmd, stdoutFile(cmd))
			if err != nil {
				return err
			}
			renderVersion(cmd.OutOrStdout(), colored)
			return nil
		},
	}
}

func renderVersion(out io.Writer, colored bool) {
	name := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)
	for _, c := range []*color.Color{name, dim} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	v := version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	fmt.Fprintf(out, "%s %s %s\n", name.Sprint("equate"), v,
		dim.Sprintf("(%s %s/%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH))
}
