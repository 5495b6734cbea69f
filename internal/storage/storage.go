package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/scrafurl/internal/domain"
)

// Package storage keeps a local, expiring journal of exchanges.

// Journal records exchanges and lists the most recent ones.
type Journal interface {
	Close() error
	Record(ex domain.Exchange) error
	Recent(limit int) ([]domain.Exchange, error)
}

// Options controls retention characteristics for concrete journal implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

const (
	defaultTTL             = 7 * 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewJournal creates the configured journal backend.
func NewJournal(typ, path string, opts Options) (Journal, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopJournal{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt journal requires a path")
		}
		j, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unsupported journal type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopJournal struct{}

func (noopJournal) Close() error                          { return nil }
func (noopJournal) Record(domain.Exchange) error          { return nil }
func (noopJournal) Recent(int) ([]domain.Exchange, error) { return nil, nil }
