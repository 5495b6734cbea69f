package reporters

import (
	"context"

	"github.com/samvad-hq/scrafurl/internal/domain"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

// Package reporters forwards exchange records to downstream sinks (HTTP, SQS, SNS, Pub/Sub).

// Reporter sends an exchange record to a single sink.
type Reporter interface {
	ID() string
	Type() string
	Report(ctx context.Context, ex domain.Exchange) error
}

// Logger is the logging surface reporters rely on.
type Logger = httpclient.Logger

func ensureLogger(log Logger) Logger {
	if log == nil {
		return nopLogger{}
	}
	return log
}

type nopLogger struct{}

func (nopLogger) InfoObj(string, string, any)  {}
func (nopLogger) DebugObj(string, string, any) {}
func (nopLogger) WarnObj(string, string, any)  {}
func (nopLogger) ErrorObj(string, string, any) {}
