package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samvad-hq/scrafurl/internal/config"
	"github.com/samvad-hq/scrafurl/internal/domain"
	"github.com/samvad-hq/scrafurl/internal/logger"
	"github.com/samvad-hq/scrafurl/internal/runner"
	"github.com/samvad-hq/scrafurl/internal/storage"
	"github.com/samvad-hq/scrafurl/pkg/collection"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
	"github.com/samvad-hq/scrafurl/pkg/reporters"
)

// Monitor runs a request collection once or on a fixed interval, journaling
// and reporting every exchange.
type Monitor struct {
	cfg      *config.Config
	client   *httpclient.Client
	journal  storage.Journal
	fanout   *reporters.Fanout
	runner   *runner.Runner
	interval time.Duration
	log      logger.Logger
}

// NewMonitor wires client, journal and reporters from cfg.
func NewMonitor(ctx context.Context, cfg *config.Config, log logger.Logger) (*Monitor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	journal, err := OpenJournal(cfg, log)
	if err != nil {
		return nil, errors.Join(err, fanout.Close())
	}

	client, err := NewClient(cfg, log)
	if err != nil {
		return nil, errors.Join(err, journal.Close(), fanout.Close())
	}

	return &Monitor{
		cfg:      cfg,
		client:   client,
		journal:  journal,
		fanout:   fanout,
		runner:   runner.New(client, journal, fanout, log),
		interval: cfg.RunInterval,
		log:      log,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*reporters.Fanout, error) {
	if cfg.ReportersFile == "" {
		return reporters.NewFanout(nil), nil
	}

	reg, err := reporters.LoadRegistry(cfg.ReportersFile)
	if err != nil {
		return nil, fmt.Errorf("load reporters registry: %w", err)
	}
	enabled := reg.Enabled()
	reps, err := reporters.BuildAll(ctx, reporters.DefaultRegistry(SharedEngine(cfg, log)), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build reporters: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("reporters registry loaded", "reporters_meta", map[string]any{
		"count":     len(summaries),
		"reporters": summaries,
	})
	return reporters.NewFanout(reps), nil
}

// Interval returns the pause between passes. Zero means a single pass.
func (m *Monitor) Interval() time.Duration {
	if m == nil {
		return 0
	}
	return m.interval
}

// SetInterval overrides the configured run interval. Zero runs once.
func (m *Monitor) SetInterval(d time.Duration) {
	if m != nil && d >= 0 {
		m.interval = d
	}
}

// Run executes col once, or every interval until ctx is cancelled. In
// interval mode failed passes are logged and the loop continues.
func (m *Monitor) Run(ctx context.Context, col *collection.Collection) error {
	if m == nil || m.runner == nil {
		return fmt.Errorf("monitor is not initialized")
	}
	if col == nil || len(col.Entries) == 0 {
		return fmt.Errorf("no requests to run")
	}

	if m.interval <= 0 {
		_, err := m.RunOnce(ctx, col)
		return err
	}

	m.log.InfoObj("monitor loop starting", "monitor_state", map[string]any{
		"requests":        len(col.Entries),
		"reporters_count": m.fanout.Size(),
		"run_interval":    m.interval.String(),
	})

	if _, err := m.RunOnce(ctx, col); err != nil {
		m.log.ErrorObj("initial run failed", "error", err.Error())
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.log.InfoObj("monitor loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if _, err := m.RunOnce(ctx, col); err != nil {
				m.log.ErrorObj("scheduled run failed", "error", err.Error())
			}
		}
	}
}

// RunOnce executes col a single time and returns the resulting exchanges.
func (m *Monitor) RunOnce(ctx context.Context, col *collection.Collection) ([]domain.Exchange, error) {
	if m == nil || m.runner == nil {
		return nil, fmt.Errorf("monitor is not initialized")
	}
	if col == nil {
		return nil, fmt.Errorf("no requests to run")
	}
	start := time.Now()
	out, err := m.runner.Run(ctx, col)
	m.log.InfoObj("run completed", "run_meta", map[string]any{
		"requests":   len(col.Entries),
		"elapsed_ms": time.Since(start).Milliseconds(),
		"failed":     err != nil,
	})
	return out, err
}

// Close releases the client, journal and reporters.
func (m *Monitor) Close() error {
	if m == nil {
		return nil
	}
	return errors.Join(m.client.Close(), m.journal.Close(), m.fanout.Close())
}
