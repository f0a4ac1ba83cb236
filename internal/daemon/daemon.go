// Package daemon runs generation cycles on a fixed schedule, reloading the
// configuration when the config file changes and exposing Prometheus
// metrics when configured.
package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/reportgen/internal/config"
	"git.home.luguber.info/inful/reportgen/internal/events"
	"git.home.luguber.info/inful/reportgen/internal/generate"
	"git.home.luguber.info/inful/reportgen/internal/logfields"
	"git.home.luguber.info/inful/reportgen/internal/metrics"
	"git.home.luguber.info/inful/reportgen/internal/render"
)

// DefaultInterval is used when the daemon section does not set one.
const DefaultInterval = 5 * time.Minute

// Daemon periodically regenerates all reports.
type Daemon struct {
	configPath string

	mu  sync.Mutex
	cfg *config.Config

	reloadPending atomic.Bool

	scheduler  *Scheduler
	watcher    *ConfigWatcher
	publisher  events.Publisher
	rec        metrics.Recorder
	metricsSrv *http.Server
}

// NewDaemon creates a daemon for the given configuration file.
func NewDaemon(cfg *config.Config, configPath string) (*Daemon, error) {
	d := &Daemon{
		configPath: configPath,
		cfg:        cfg,
		rec:        metrics.Noop{},
	}

	if cfg.Metrics != nil {
		reg := prom.NewRegistry()
		d.rec = metrics.NewPrometheusRecorder(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		d.metricsSrv = &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
	}

	if cfg.Events != nil {
		pub, err := events.NewNATSPublisher(cfg.Events.URL, cfg.Events.Subject)
		if err != nil {
			return nil, fmt.Errorf("failed to create events publisher: %w", err)
		}
		d.publisher = pub
	}

	return d, nil
}

// Start begins the generation schedule and the config watcher. It returns
// once everything is running; cancellation of ctx stops the loops.
func (d *Daemon) Start(ctx context.Context) error {
	interval := DefaultInterval
	if d.cfg.Daemon != nil && d.cfg.Daemon.Interval != "" {
		parsed, err := time.ParseDuration(d.cfg.Daemon.Interval)
		if err != nil {
			return fmt.Errorf("invalid daemon interval %q: %w", d.cfg.Daemon.Interval, err)
		}
		if parsed <= 0 {
			return fmt.Errorf("daemon interval must be positive, got %q", d.cfg.Daemon.Interval)
		}
		interval = parsed
	}

	scheduler, err := NewScheduler(interval, func() { d.runOnce(ctx) })
	if err != nil {
		return err
	}
	d.scheduler = scheduler

	watcher, err := NewConfigWatcher(d.configPath, d.markReload)
	if err != nil {
		return err
	}
	d.watcher = watcher
	if err := d.watcher.Start(ctx); err != nil {
		return err
	}

	if d.metricsSrv != nil {
		go func() {
			slog.Info("Serving metrics", "listen", d.metricsSrv.Addr)
			if err := d.metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", logfields.Error(err))
			}
		}()
	}

	d.scheduler.Start(ctx)
	slog.Info("Daemon started", slog.Duration("interval", interval))
	return nil
}

// Stop shuts everything down gracefully.
func (d *Daemon) Stop(ctx context.Context) error {
	var firstErr error
	if d.scheduler != nil {
		if err := d.scheduler.Stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.metricsSrv != nil {
		if err := d.metricsSrv.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.publisher != nil {
		if err := d.publisher.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// markReload flags the configuration for reload on the next cycle. Applying
// it lazily keeps a half-written config file from killing a running cycle.
func (d *Daemon) markReload() {
	d.reloadPending.Store(true)
	slog.Info("Configuration reload scheduled for next cycle")
}

// runOnce executes one generation cycle.
func (d *Daemon) runOnce(ctx context.Context) {
	if d.reloadPending.Swap(false) {
		if cfg, err := config.Load(d.configPath); err != nil {
			slog.Error("Failed to reload configuration, keeping previous",
				logfields.Error(err))
		} else {
			d.mu.Lock()
			d.cfg = cfg
			d.mu.Unlock()
			slog.Info("Configuration reloaded")
		}
	}

	d.mu.Lock()
	cfg := d.cfg
	d.mu.Unlock()

	runner := generate.NewRunner(cfg, render.NewTemplateRenderer(), d.rec)
	summary, err := runner.Run(ctx, 0)
	if err != nil {
		slog.Error("Generation run failed", logfields.Error(err))
		return
	}

	if d.publisher != nil {
		if err := d.publisher.PublishRunCompleted(summary); err != nil {
			slog.Warn("Failed to publish run summary", logfields.Error(err))
		}
	}
}
