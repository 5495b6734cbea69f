package runner

import (
	"context"

	"github.com/samvad-hq/scrafurl/internal/domain"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

// Client is the request surface the runner drives. *httpclient.Client satisfies it.
type Client interface {
	Do(method httpclient.Method, url, body string, headers ...string)
	ResponseCode() int
	ResponseBody() []byte
	Err() error
}

// Recorder persists completed exchanges.
type Recorder interface {
	Record(ex domain.Exchange) error
}

// ExchangeReporter forwards exchanges downstream and returns how many sinks accepted them.
type ExchangeReporter interface {
	Report(ctx context.Context, ex domain.Exchange) (int, error)
}
