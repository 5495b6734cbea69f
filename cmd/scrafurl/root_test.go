package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/samvad-hq/scrafurl/internal/config"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	color.NoColor = true
	return &config.Config{
		AppName:                "scrafurl",
		DefaultScheme:          "http",
		Version:                httpclient.HTTPVersionDefault,
		Scope:                  httpclient.InitNothing,
		JournalType:            "bbolt",
		JournalPath:            filepath.Join(t.TempDir(), "journal.db"),
		JournalTTL:             time.Hour,
		JournalCleanupInterval: time.Hour,
	}
}

func execute(t *testing.T, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(cfg, nil)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/echo":
			body, _ := io.ReadAll(r.Body)
			w.Header().Set("X-Method", r.Method)
			_, _ = w.Write([]byte(r.Method + " " + r.Header.Get("X-Trace") + " " + string(body)))
		case "/page":
			_, _ = w.Write([]byte(`<html><head><title>Page</title></head><body><a href="/one">1</a><a href="/two">2</a></body></html>`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRootCommandPrintsBody(t *testing.T) {
	srv := newServer(t)

	out, _, err := execute(t, testConfig(t), "-d", "payload", "-H", "X-Trace: abc", srv.URL+"/echo")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "POST abc payload" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRootCommandIncludeAndMethod(t *testing.T) {
	srv := newServer(t)

	out, _, err := execute(t, testConfig(t), "-i", "-X", "delete", srv.URL+"/missing")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out, "HTTP 404 Not Found\n\n") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRootCommandSelect(t *testing.T) {
	srv := newServer(t)

	out, _, err := execute(t, testConfig(t), "--select", "a", "--attr", "href", srv.URL+"/page")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "/one\n/two\n" {
		t.Fatalf("unexpected output %q", out)
	}

	out, _, err = execute(t, testConfig(t), "--meta", srv.URL+"/page")
	if err != nil {
		t.Fatalf("execute meta: %v", err)
	}
	if !strings.Contains(out, `"title": "Page"`) {
		t.Fatalf("unexpected meta output %q", out)
	}
}

func TestRootCommandNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, stderr, err := execute(t, testConfig(t), url)
	if !errors.Is(err, errNoResponse) {
		t.Fatalf("expected errNoResponse, got %v", err)
	}
	if !strings.Contains(stderr, "scrafurl:") {
		t.Fatalf("expected transport error on stderr, got %q", stderr)
	}
}

func TestRootCommandRejectsBadFlags(t *testing.T) {
	cfg := testConfig(t)
	for _, args := range [][]string{
		{"-X", "HEAD", "http://x.test"},
		{"--http", "0.9", "http://x.test"},
		{"--attr", "href", "http://x.test"},
		{"--scheme", "ftp", "x.test"},
	} {
		if _, _, err := execute(t, cfg, args...); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestRunAndHistoryCommands(t *testing.T) {
	srv := newServer(t)
	cfg := testConfig(t)

	file := filepath.Join(t.TempDir(), "checks.yaml")
	content := "requests:\n  - name: page\n    url: " + srv.URL + "/page\n    expect_status: 200\n  - name: gone\n    url: " + srv.URL + "/gone\n    expect_status: 200\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatalf("write collection: %v", err)
	}

	out, _, err := execute(t, cfg, "run", file)
	if err == nil {
		t.Fatalf("expected failure for the missing page")
	}
	if !strings.Contains(out, "ok   page") || !strings.Contains(out, "FAIL gone") {
		t.Fatalf("unexpected run output %q", out)
	}

	out, _, err = execute(t, cfg, "history", "--limit", "1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "gone") || strings.Contains(out, "page") {
		t.Fatalf("unexpected history output %q", out)
	}
}

func TestHistoryRequiresJournal(t *testing.T) {
	cfg := testConfig(t)
	cfg.JournalType = "none"
	if _, _, err := execute(t, cfg, "history"); err == nil {
		t.Fatalf("expected error when journal is disabled")
	}
}

func TestRootCommandSitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<urlset><url><loc>https://example.com/a</loc></url></urlset>`))
	}))
	defer srv.Close()

	out, _, err := execute(t, testConfig(t), "--sitemap", srv.URL)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "https://example.com/a\n" {
		t.Fatalf("unexpected output %q", out)
	}
}
