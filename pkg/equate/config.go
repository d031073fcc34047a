package equate

import (
	"context"
	"os"

	"digital.vasic.equate/pkg/config"
	"digital.vasic.equate/pkg/logging"
	"digital.vasic.equate/pkg/monitor"
	"digital.vasic.equate/pkg/report"
)

// ArchiveApp names the cache directory of ArchiveCache.
const ArchiveApp = "equate"

// ArchiveCache selects the user cache directory as archive.
const ArchiveCache = "cache"

// FromConfig creates an Engine from cfg. The history file, the
// failure archive and the live monitor are enabled when configured.
// opts are applied after the configured options.
func FromConfig(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ropts, err := cfg.RenderOptions(cfg.UseColor(os.Stderr))
	if err != nil {
		return nil, err
	}
	logger, err := cfg.NewLogger()
	if err != nil {
		return nil, err
	}

	base := []Option{WithRenderOptions(ropts)}
	if _, null := logger.(logging.NullLogger); !null {
		base = append(base, WithLogger(logger))
	}
	if cfg.History != "" {
		base = append(base, WithObserver(report.HistoryObserver{Path: cfg.History}))
	}
	if cfg.Archive != "" {
		archive, err := openArchive(cfg.Archive)
		if err != nil {
			logger.Close()
			return nil, err
		}
		base = append(base, WithObserver(report.ArchiveObserver{Archive: archive}))
	}
	if cfg.MonitorAddr != "" {
		base = append(base, monitorOptions(cfg.MonitorAddr, logger)...)
	}

	return New(append(base, opts...)...), nil
}

func openArchive(dir string) (*report.Archive, error) {
	if dir == ArchiveCache {
		return report.OpenArchive(ArchiveApp)
	}
	return report.NewArchive(dir)
}

// monitorOptions starts a monitor server on addr and streams the
// engine's failures to it. The server stops on Engine.Close.
func monitorOptions(addr string, logger logging.Logger) []Option {
	collector := monitor.NewEventCollector(monitor.DefaultCapacity)
	srv := monitor.NewServer(addr, collector, logger)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := srv.Start(ctx); err != nil {
			logger.Error("monitor stopped", logging.ErrorField(err))
		}
	}()

	return []Option{
		WithObserver(report.MonitorObserver{Collector: collector}),
		WithCloser(func() error {
			defer cancel()
			return srv.Stop(ctx)
		}),
	}
}

func fromEnvironment() (*Engine, error) {
	cfg, err := config.FromEnvironment()
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg)
}
