package reporters

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samvad-hq/scrafurl/internal/domain"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

var testEngine = httpclient.NewRestyEngine(httpclient.EngineConfig{InitScope: httpclient.InitNothing})

func TestHTTPReporterSuccess(t *testing.T) {
	var got domain.Exchange
	var contentType, custom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		custom = r.Header.Get("X-Test")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	rep, err := newHTTPReporter(context.Background(), testEngine, sanitizeConfig(ReporterConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPConfig{URL: srv.URL, Headers: []string{"X-Test: 1"}},
	}), nil)
	if err != nil {
		t.Fatalf("newHTTPReporter: %v", err)
	}
	defer rep.(*httpReporter).Close()

	if err := rep.Report(context.Background(), domain.Exchange{Name: "health", StatusCode: 200}); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if got.Name != "health" || got.StatusCode != 200 {
		t.Fatalf("unexpected payload %+v", got)
	}
	if contentType != "application/json" || custom != "1" {
		t.Fatalf("unexpected headers content-type=%q x-test=%q", contentType, custom)
	}
}

func TestHTTPReporterKeepsExplicitContentType(t *testing.T) {
	var contentType []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Values("Content-Type")
	}))
	defer srv.Close()

	rep, err := newHTTPReporter(context.Background(), testEngine, sanitizeConfig(ReporterConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPConfig{URL: srv.URL, Method: "put", Headers: []string{"content-type: application/x-ndjson"}},
	}), nil)
	if err != nil {
		t.Fatalf("newHTTPReporter: %v", err)
	}
	defer rep.(*httpReporter).Close()

	if err := rep.Report(context.Background(), domain.Exchange{}); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if len(contentType) != 1 || contentType[0] != "application/x-ndjson" {
		t.Fatalf("unexpected content-type %v", contentType)
	}
}

func TestHTTPReporterErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	rep, err := newHTTPReporter(context.Background(), testEngine, sanitizeConfig(ReporterConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPConfig{URL: srv.URL, TimeoutSeconds: 1},
	}), nil)
	if err != nil {
		t.Fatalf("newHTTPReporter: %v", err)
	}
	defer rep.(*httpReporter).Close()

	if err := rep.Report(context.Background(), domain.Exchange{}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}

func TestHTTPReporterErrorWithoutResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rep, err := newHTTPReporter(context.Background(), testEngine, sanitizeConfig(ReporterConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPConfig{URL: url, TimeoutSeconds: 1},
	}), nil)
	if err != nil {
		t.Fatalf("newHTTPReporter: %v", err)
	}
	defer rep.(*httpReporter).Close()

	if err := rep.Report(context.Background(), domain.Exchange{}); err == nil {
		t.Fatalf("expected error when no response arrives")
	}
}

func TestMentionsHeader(t *testing.T) {
	lines := []string{"X-A: 1", "content-type;"}
	if !mentionsHeader(lines, "Content-Type") {
		t.Fatalf("expected content-type to be found")
	}
	if mentionsHeader(lines, "Accept") {
		t.Fatalf("did not expect accept to be found")
	}
}
