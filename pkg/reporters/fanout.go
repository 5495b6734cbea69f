package reporters

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/scrafurl/internal/domain"
)

// Fanout delivers each exchange to every configured reporter.
type Fanout struct {
	reporters []Reporter
}

// NewFanout builds a dispatcher over reps, skipping nil entries.
func NewFanout(reps []Reporter) *Fanout {
	cp := make([]Reporter, 0, len(reps))
	for _, r := range reps {
		if r == nil {
			continue
		}
		cp = append(cp, r)
	}
	return &Fanout{reporters: cp}
}

// Report forwards ex to every reporter and returns how many accepted it.
func (f *Fanout) Report(ctx context.Context, ex domain.Exchange) (int, error) {
	if f == nil || len(f.reporters) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, r := range f.reporters {
		if err := r.Report(ctx, ex); err != nil {
			errs = append(errs, fmt.Errorf("%s reporter[%s]: %w", r.Type(), r.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active reporters.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.reporters)
}

// Close releases reporters that hold resources.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeAll(f.reporters)
}
