package app

import (
	"fmt"
	"sync"

	"github.com/samvad-hq/scrafurl/internal/config"
	"github.com/samvad-hq/scrafurl/internal/logger"
	"github.com/samvad-hq/scrafurl/internal/storage"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

// engineCache builds the process engine on first use and hands the same
// one to every later caller.
type engineCache struct {
	once   sync.Once
	build  func(httpclient.EngineConfig) httpclient.Engine
	engine httpclient.Engine
}

func (c *engineCache) get(cfg httpclient.EngineConfig) httpclient.Engine {
	c.once.Do(func() {
		c.engine = c.build(cfg)
	})
	return c.engine
}

var processEngine = &engineCache{
	build: func(cfg httpclient.EngineConfig) httpclient.Engine {
		return httpclient.NewRestyEngine(cfg)
	},
}

// SharedEngine returns the transport engine every client in the process runs
// on. The first caller's engine settings win; later configs only change the
// per-client options.
func SharedEngine(cfg *config.Config, log logger.Logger) httpclient.Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	return processEngine.get(cfg.EngineConfig(log))
}

// NewClient builds a client on the shared engine. extra options are applied
// after the configured ones.
func NewClient(cfg *config.Config, log logger.Logger, extra ...httpclient.Option) (*httpclient.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	engine := SharedEngine(cfg, log)
	opts := append(cfg.ClientOptions(engine, log), extra...)
	client, err := httpclient.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init http client: %w", err)
	}
	return client, nil
}

// OpenJournal opens the configured exchange journal.
func OpenJournal(cfg *config.Config, log logger.Logger) (storage.Journal, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	journal, err := storage.NewJournal(cfg.JournalType, cfg.JournalPath, storage.Options{
		TTL:             cfg.JournalTTL,
		CleanupInterval: cfg.JournalCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	log.InfoObj("journal initialized", "journal_config", map[string]any{
		"type":                     cfg.JournalType,
		"path":                     cfg.JournalPath,
		"ttl_seconds":              int(cfg.JournalTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.JournalCleanupInterval.Seconds()),
	})
	return journal, nil
}
