package reporters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/scrafurl/internal/domain"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

const jsonContentType = "Content-Type: application/json"

// httpReporter posts exchange records through an httpclient.Client.
// The client is not safe for concurrent use, so calls are serialized.
type httpReporter struct {
	id      string
	method  httpclient.Method
	url     string
	headers []string

	mu     sync.Mutex
	client *httpclient.Client
	log    Logger
}

// HTTPBuilder returns a Builder whose clients share engine. A nil engine
// falls back to httpclient.DefaultEngine.
func HTTPBuilder(engine httpclient.Engine) Builder {
	return func(ctx context.Context, cfg ReporterConfig, log Logger) (Reporter, error) {
		return newHTTPReporter(ctx, engine, cfg, log)
	}
}

func newHTTPReporter(_ context.Context, engine httpclient.Engine, cfg ReporterConfig, log Logger) (Reporter, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("reporter %q missing http configuration", cfg.ID)
	}
	method, err := httpclient.ParseMethod(cfg.HTTP.Method)
	if err != nil {
		return nil, fmt.Errorf("reporter %q: %w", cfg.ID, err)
	}
	version, err := httpclient.ParseHTTPVersion(cfg.HTTP.HTTPVersion)
	if err != nil {
		return nil, fmt.Errorf("reporter %q: %w", cfg.ID, err)
	}

	log = ensureLogger(log)
	opts := []httpclient.Option{
		httpclient.WithHTTPVersion(version),
		httpclient.WithTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		httpclient.WithLogger(log),
	}
	if engine != nil {
		opts = append(opts, httpclient.WithEngine(engine))
	}
	client, err := httpclient.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("reporter %q: %w", cfg.ID, err)
	}

	headers := cfg.HTTP.Headers
	if !mentionsHeader(headers, "Content-Type") {
		headers = append([]string{jsonContentType}, headers...)
	}

	return &httpReporter{
		id:      cfg.ID,
		method:  method,
		url:     cfg.HTTP.URL,
		headers: headers,
		client:  client,
		log:     log,
	}, nil
}

func (h *httpReporter) ID() string   { return h.id }
func (h *httpReporter) Type() string { return TypeHTTP }

func (h *httpReporter) Report(ctx context.Context, ex domain.Exchange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(ex)
	if err != nil {
		return fmt.Errorf("marshal exchange: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.client.Do(h.method, h.url, string(payload), h.headers...)
	code := h.client.ResponseCode()
	if code == httpclient.NoResponse {
		if err := h.client.Err(); err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		return fmt.Errorf("http request: no response from %s", h.url)
	}
	if code < 200 || code > 299 {
		return fmt.Errorf("http response status %d: %s", code, readBodySnippet(h.client.ResponseBody()))
	}
	h.log.DebugObj("http reporter delivered exchange", "reporter_http_delivery", map[string]any{
		"reporter_id": h.id,
		"status_code": code,
	})
	return nil
}

// Close releases the underlying client.
func (h *httpReporter) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.client.Close()
}

// mentionsHeader reports whether any line names the given header.
func mentionsHeader(lines []string, name string) bool {
	for _, l := range lines {
		i := strings.IndexAny(l, ":;")
		if i > 0 && strings.EqualFold(strings.TrimSpace(l[:i]), name) {
			return true
		}
	}
	return false
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
