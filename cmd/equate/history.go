package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"digital.vasic.equate/pkg/equate"
	"digital.vasic.equate/pkg/report"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [flags]",
		Short: "Summarize recorded assertion failures",
		Long: `History reads the failure history written by test runs (the history
setting, or EQUATE_HISTORY) and prints a summary per assertion`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
	cmd.Flags().String("file", "", "history file (default from configuration)")
	cmd.Flags().String("format", "text", "output format (text|json|markdown|html)")
	cmd.Flags().String("save", "", "also save JSON and Markdown summaries to this directory")
	cmd.AddCommand(newArchiveCmd())
	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	path, err := historyPath(cmd)
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	reporter, err := report.NewReporter(format)
	if err != nil {
		return err
	}

	entries, err := report.ReadHistory(path)
	if err != nil {
		return err
	}
	summary := report.BuildSummary(entries)
	if err := reporter.Write(cmd.OutOrStdout(), summary); err != nil {
		return err
	}

	if dir, _ := cmd.Flags().GetString("save"); dir != "" {
		return report.SaveSummary(summary, dir)
	}
	return nil
}

// historyPath returns the --file flag, or the configured history.
func historyPath(cmd *cobra.Command) (string, error) {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return "", fmt.Errorf("failed to get file flag: %w", err)
	}
	if path != "" {
		return path, nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	if cfg.History == "" {
		return "", errors.New("no history file: pass --file or set EQUATE_HISTORY")
	}
	return cfg.History, nil
}

func newArchiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive [flags]",
		Short: "List the latest failure of each assertion",
		Args:  cobra.NoArgs,
		RunE:  runArchive,
	}
	cmd.Flags().String("dir", "", "archive directory (default from configuration)")
	cmd.Flags().Bool("reports", false, "print the full report of each failure")
	cmd.Flags().Bool("drop", false, "delete every archived failure")
	return cmd
}

func runArchive(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return fmt.Errorf("failed to get dir flag: %w", err)
	}
	if dir == "" {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir = cfg.Archive
	}
	if dir == "" {
		return errors.New("no archive: pass --dir or set EQUATE_ARCHIVE")
	}

	archive, err := openArchiveDir(dir)
	if err != nil {
		return err
	}
	if drop, _ := cmd.Flags().GetBool("drop"); drop {
		return archive.DropAll()
	}

	records, err := archive.List()
	if err != nil {
		return err
	}
	reports, _ := cmd.Flags().GetBool("reports")
	writeArchive(cmd.OutOrStdout(), records, reports)
	return nil
}

func openArchiveDir(dir string) (*report.Archive, error) {
	if dir == equate.ArchiveCache {
		return report.OpenArchive(equate.ArchiveApp)
	}
	return report.NewArchive(dir)
}

func writeArchive(w io.Writer, records []*report.ArchiveRecord, reports bool) {
	if len(records) == 0 {
		fmt.Fprintln(w, "no archived failures")
		return
	}
	for _, r := range records {
		fmt.Fprintf(w, "%s  %s  %s\n",
			r.Time.UTC().Format(time.RFC3339), r.Location, r.Expression)
		if reports {
			fmt.Fprintln(w, r.Report)
			fmt.Fprintln(w)
		}
	}
}
