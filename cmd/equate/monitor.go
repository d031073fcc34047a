package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"digital.vasic.equate/pkg/logging"
	"digital.vasic.equate/pkg/monitor"
	"digital.vasic.equate/pkg/report"
)

const defaultMonitorAddr = "127.0.0.1:9321"

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor [flags]",
		Short: "Serve recorded failures live over WebSocket",
		Long: `Monitor follows the failure history and streams each new failure to
WebSocket clients at /ws. /events, /dashboard and /health serve snapshots`,
		Args: cobra.NoArgs,
		RunE: runMonitor,
	}
	cmd.Flags().String("addr", "", "listen address (default monitor_addr, else "+defaultMonitorAddr+")")
	cmd.Flags().String("file", "", "history file (default from configuration)")
	cmd.Flags().Duration("interval", time.Second, "history poll interval")
	return cmd
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path, err := historyPath(cmd)
	if err != nil {
		return err
	}
	addr, _ := cmd.Flags().GetString("addr")
	if addr == "" {
		addr = cfg.MonitorAddr
	}
	if addr == "" {
		addr = defaultMonitorAddr
	}
	interval, err := cmd.Flags().GetDuration("interval")
	if err != nil {
		return fmt.Errorf("failed to get interval flag: %w", err)
	}

	logger := logging.NewConsoleLoggerTo(cmd.ErrOrStderr(), cfg.Log.Verbose)
	collector := monitor.NewEventCollector(monitor.DefaultCapacity)
	srv := monitor.NewServer(addr, collector, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	go followHistory(ctx, path, collector, interval, logger)
	return srv.Start(ctx)
}

// followHistory emits every entry of the history at path, then
// polls it for appended entries until ctx is done. A truncated
// history restarts from its first entry.
func followHistory(
	ctx context.Context,
	path string,
	collector *monitor.EventCollector,
	interval time.Duration,
	logger logging.Logger,
) {
	seen := 0
	poll := func() {
		entries, err := report.ReadHistory(path)
		if err != nil {
			logger.Warn("read history failed", logging.ErrorField(err))
			return
		}
		if len(entries) < seen {
			collector.Reset()
			seen = 0
		}
		for _, e := range entries[seen:] {
			collector.Emit(historyEvent(e))
		}
		seen = len(entries)
	}

	poll()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			poll()
		}
	}
}

func historyEvent(e report.HistoricalEntry) monitor.Event {
	return monitor.Event{
		Type:       monitor.EventFailure,
		File:       e.Location.File,
		Line:       e.Location.Line,
		Col:        e.Location.Col,
		Expression: e.Expression,
		Message:    e.Message,
		Report:     e.Report,
		Timestamp:  e.Timestamp,
	}
}
