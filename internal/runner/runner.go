package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/scrafurl/internal/domain"
	"github.com/samvad-hq/scrafurl/internal/extract"
	"github.com/samvad-hq/scrafurl/internal/logger"
	"github.com/samvad-hq/scrafurl/pkg/collection"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

// Runner executes collection entries one after another on a single client.
type Runner struct {
	client   Client
	recorder Recorder
	reporter ExchangeReporter
	log      logger.Logger
	now      func() time.Time
}

// New wires a runner. recorder and reporter are optional.
func New(client Client, recorder Recorder, reporter ExchangeReporter, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Runner{
		client:   client,
		recorder: recorder,
		reporter: reporter,
		log:      log,
		now:      time.Now,
	}
}

// Run executes every entry in order, pausing for each entry's delay. It stops
// early when ctx is cancelled and returns the exchanges completed so far
// together with every failure joined.
func (r *Runner) Run(ctx context.Context, col *collection.Collection) ([]domain.Exchange, error) {
	if r == nil || r.client == nil {
		return nil, fmt.Errorf("runner is not initialized")
	}
	if col == nil || len(col.Entries) == 0 {
		return nil, fmt.Errorf("no requests to run")
	}

	out := make([]domain.Exchange, 0, len(col.Entries))
	var errs []error

	for i, entry := range col.Entries {
		select {
		case <-ctx.Done():
			return out, errors.Join(append(errs, ctx.Err())...)
		default:
		}

		ex, err := r.Execute(ctx, entry)
		out = append(out, ex)
		if err != nil {
			errs = append(errs, err)
		}

		if d := entry.Delay(); d > 0 && i < len(col.Entries)-1 {
			timer := time.NewTimer(d)
			select {
			case <-ctx.Done():
				timer.Stop()
				return out, errors.Join(append(errs, ctx.Err())...)
			case <-timer.C:
			}
		}
	}

	r.log.InfoObj("collection run completed", "run_result", map[string]any{
		"requests": len(out),
		"failures": len(errs),
	})
	return out, errors.Join(errs...)
}

// Execute performs a single entry, records it and reports it. The returned
// error covers transport failures, unexpected statuses and sink failures.
func (r *Runner) Execute(ctx context.Context, entry collection.Entry) (domain.Exchange, error) {
	start := r.now()
	r.client.Do(entry.Verb(), entry.URL, entry.Body, entry.Headers...)

	body := r.client.ResponseBody()
	ex := domain.Exchange{
		ID:         uuid.NewString(),
		Name:       entry.Name,
		Method:     entry.Method,
		URL:        entry.URL,
		StatusCode: r.client.ResponseCode(),
		BodyBytes:  len(body),
		Duration:   r.now().Sub(start),
		At:         start.UTC(),
	}

	var errs []error
	if err := r.client.Err(); err != nil {
		ex.Error = err.Error()
		errs = append(errs, fmt.Errorf("request %q: %w", entry.Name, err))
	} else if !ex.Completed() {
		ex.Error = "no response"
		errs = append(errs, fmt.Errorf("request %q: no response", entry.Name))
	} else if entry.ExpectStatus != 0 && ex.StatusCode != entry.ExpectStatus {
		ex.Error = fmt.Sprintf("expected status %d, got %d", entry.ExpectStatus, ex.StatusCode)
		errs = append(errs, fmt.Errorf("request %q: %s", entry.Name, ex.Error))
	}

	if entry.Select != "" && ex.Completed() {
		values, err := extract.Select(body, entry.Select, entry.Attr)
		if err != nil {
			r.log.WarnObj("body extraction failed", "extract_error", map[string]any{
				"name":  entry.Name,
				"error": err.Error(),
			})
		}
		ex.Extracted = values
	}

	r.log.DebugObj("request finished", "exchange", map[string]any{
		"name":        ex.Name,
		"method":      ex.Method,
		"url":         ex.URL,
		"status_code": ex.StatusCode,
		"body_bytes":  ex.BodyBytes,
		"elapsed_ms":  ex.Duration.Milliseconds(),
	})

	if r.recorder != nil {
		if err := r.recorder.Record(ex); err != nil {
			errs = append(errs, fmt.Errorf("record %q: %w", entry.Name, err))
		}
	}
	if r.reporter != nil {
		if _, err := r.reporter.Report(ctx, ex); err != nil {
			r.log.ErrorObj("exchange report failed", "report_error", map[string]any{
				"name":  entry.Name,
				"error": err.Error(),
			})
			errs = append(errs, fmt.Errorf("report %q: %w", entry.Name, err))
		}
	}

	return ex, errors.Join(errs...)
}

var _ Client = (*httpclient.Client)(nil)
