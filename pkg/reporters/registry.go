package reporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

// Builder creates a Reporter from a config entry.
type Builder func(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error)

// Registry maps reporter types to builders.
type Registry interface {
	Register(typ string, builder Builder)
	ReporterFor(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error)
}

type registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) Registry {
	r := &registry{builders: make(map[string]Builder)}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// Register associates a builder with a reporter type.
func (r *registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}

	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// ReporterFor builds the reporter for the provided config.
func (r *registry) ReporterFor(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("reporter %q has no type configured", cfg.ID)
	}

	r.mu.RLock()
	builder := r.builders[strings.ToLower(cfg.Type)]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no reporter registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg, log)
}

// DefaultRegistry wires up the built-in reporters. HTTP reporters run on
// engine, or on httpclient.DefaultEngine when engine is nil.
func DefaultRegistry(engine httpclient.Engine) Registry {
	return NewRegistry(map[string]Builder{
		TypeHTTP:   HTTPBuilder(engine),
		TypeSQS:    newSQSReporter,
		TypeSNS:    newSNSReporter,
		TypePubSub: newPubSubReporter,
	})
}

// BuildAll instantiates reporters for cfgs. Reporters built before a
// failure are closed.
func BuildAll(ctx context.Context, reg Registry, cfgs []ReporterConfig, log Logger) ([]Reporter, error) {
	if reg == nil || len(cfgs) == 0 {
		return nil, nil
	}

	out := make([]Reporter, 0, len(cfgs))
	for _, cfg := range cfgs {
		rep, err := reg.ReporterFor(ctx, cfg, log)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("build reporter %q: %w", cfg.ID, err), closeAll(out))
		}
		out = append(out, rep)
	}
	return out, nil
}

func closeAll(reps []Reporter) error {
	var errs []error
	for _, r := range reps {
		if c, ok := r.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close reporter %q: %w", r.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}
