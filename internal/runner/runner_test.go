package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/scrafurl/internal/domain"
	"github.com/samvad-hq/scrafurl/pkg/collection"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

type call struct {
	method  httpclient.Method
	url     string
	body    string
	headers []string
}

// fakeClient answers from a table keyed by URL.
type fakeClient struct {
	calls     []call
	responses map[string]fakeResponse
	last      fakeResponse
}

type fakeResponse struct {
	code int
	body string
	err  error
}

func (f *fakeClient) Do(method httpclient.Method, url, body string, headers ...string) {
	f.calls = append(f.calls, call{method: method, url: url, body: body, headers: headers})
	f.last = f.responses[url]
}
func (f *fakeClient) ResponseCode() int    { return f.last.code }
func (f *fakeClient) ResponseBody() []byte { return []byte(f.last.body) }
func (f *fakeClient) Err() error           { return f.last.err }

type fakeRecorder struct {
	records []domain.Exchange
	err     error
}

func (f *fakeRecorder) Record(ex domain.Exchange) error {
	f.records = append(f.records, ex)
	return f.err
}

type fakeReporter struct {
	reports []domain.Exchange
	err     error
}

func (f *fakeReporter) Report(_ context.Context, ex domain.Exchange) (int, error) {
	f.reports = append(f.reports, ex)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func parse(t *testing.T, raw string) *collection.Collection {
	t.Helper()
	col, err := collection.Parse([]byte(raw), ".yaml")
	if err != nil {
		t.Fatalf("parse collection: %v", err)
	}
	return col
}

func TestRunExecutesEntriesInOrder(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		"http://a.test":       {code: 200, body: `<a href="/x">X</a>`},
		"http://b.test/items": {code: 201},
	}}
	rec := &fakeRecorder{}
	rep := &fakeReporter{}
	col := parse(t, `
requests:
  - name: page
    url: http://a.test
    select: a
    attr: href
  - name: create
    method: POST
    url: http://b.test/items
    body: '{"n":1}'
    headers: ["Content-Type: application/json", "X-Id: 1"]
    expect_status: 201
`)

	out, err := New(client, rec, rep, nil).Run(context.Background(), col)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 2 || len(rec.records) != 2 || len(rep.reports) != 2 {
		t.Fatalf("unexpected counts out=%d records=%d reports=%d", len(out), len(rec.records), len(rep.reports))
	}
	if client.calls[1].method != httpclient.MethodPost || client.calls[1].body != `{"n":1}` {
		t.Fatalf("unexpected second call %+v", client.calls[1])
	}
	if got := client.calls[1].headers; len(got) != 2 || got[1] != "X-Id: 1" {
		t.Fatalf("headers not passed in order: %v", got)
	}
	if len(out[0].Extracted) != 1 || out[0].Extracted[0] != "/x" {
		t.Fatalf("unexpected extraction %v", out[0].Extracted)
	}
	if out[0].ID == "" || out[0].ID == out[1].ID {
		t.Fatalf("expected unique exchange ids")
	}
}

func TestRunAggregatesFailures(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{
		"http://down.test":  {code: httpclient.NoResponse, err: errors.New("connection refused")},
		"http://wrong.test": {code: 500},
		"http://ok.test":    {code: 200},
	}}
	rec := &fakeRecorder{}
	col := parse(t, `
requests:
  - name: down
    url: http://down.test
  - name: wrong
    url: http://wrong.test
    expect_status: 200
  - name: ok
    url: http://ok.test
`)

	out, err := New(client, rec, nil, nil).Run(context.Background(), col)
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
	for _, want := range []string{`"down"`, `"wrong"`} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
	if strings.Contains(err.Error(), `"ok"`) {
		t.Fatalf("error should not mention the successful request: %v", err)
	}
	if len(out) != 3 || out[0].Completed() || out[0].Error == "" {
		t.Fatalf("unexpected exchanges %+v", out)
	}
	if len(rec.records) != 3 {
		t.Fatalf("expected every exchange to be recorded, got %d", len(rec.records))
	}
}

func TestExecuteReportsSinkErrors(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{"http://a.test": {code: 200}}}
	rep := &fakeReporter{err: errors.New("sink down")}

	ex, err := New(client, nil, rep, nil).Execute(context.Background(), collection.Entry{Name: "a", Method: "GET", URL: "http://a.test"})
	if err == nil || !strings.Contains(err.Error(), "sink down") {
		t.Fatalf("expected reporter error, got %v", err)
	}
	if ex.StatusCode != 200 {
		t.Fatalf("unexpected status %d", ex.StatusCode)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	client := &fakeClient{responses: map[string]fakeResponse{}}
	col := parse(t, `
requests:
  - name: a
    url: http://a.test
    delay_ms: 5000
  - name: b
    url: http://b.test
`)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	out, err := New(client, nil, nil, nil).Run(ctx, col)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
	if len(out) != 1 || len(client.calls) != 1 {
		t.Fatalf("expected only the first request to run, got %d", len(client.calls))
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("delay was not interrupted")
	}
}

func TestRunRejectsEmptyCollection(t *testing.T) {
	if _, err := New(&fakeClient{}, nil, nil, nil).Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil collection")
	}
	var r *Runner
	if _, err := r.Run(context.Background(), &collection.Collection{}); err == nil {
		t.Fatalf("expected error for nil runner")
	}
}
