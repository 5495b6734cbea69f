package httpclient

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"testing/iotest"
)

func TestParseHTTPVersion(t *testing.T) {
	cases := map[string]HTTPVersion{
		"":     HTTPVersionDefault,
		"1.1":  HTTPVersion11,
		"2":    HTTPVersion2,
		"2TLS": HTTPVersion2TLS,
		"3":    HTTPVersion3,
	}
	for in, want := range cases {
		got, err := ParseHTTPVersion(in)
		if err != nil || got != want {
			t.Fatalf("ParseHTTPVersion(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseHTTPVersion("0.9"); err == nil {
		t.Fatalf("expected error for unknown version")
	}
}

func TestParseInitScope(t *testing.T) {
	if s, err := ParseInitScope(""); err != nil || s != InitDefault {
		t.Fatalf("empty scope = %q, %v", s, err)
	}
	if s, err := ParseInitScope("NOTHING"); err != nil || s != InitNothing {
		t.Fatalf("nothing scope = %q, %v", s, err)
	}
	if _, err := ParseInitScope("all"); err == nil {
		t.Fatalf("expected error for unknown scope")
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod(" patch ")
	if err != nil || m != MethodPatch {
		t.Fatalf("ParseMethod = %q, %v", m, err)
	}
	if !m.CarriesBody() || MethodGet.CarriesBody() {
		t.Fatalf("unexpected CarriesBody result")
	}
	if _, err := ParseMethod("OPTIONS"); err == nil {
		t.Fatalf("expected error for unsupported method")
	}
}

func TestEngineRequiresInit(t *testing.T) {
	engine := NewRestyEngine(EngineConfig{InitScope: InitNothing})
	if _, err := engine.NewHandle(HandleOptions{}); !errors.Is(err, errEngineNotInitialized) {
		t.Fatalf("expected errEngineNotInitialized, got %v", err)
	}
}

func TestEngineBuildsTransportPerVersion(t *testing.T) {
	engine := NewRestyEngine(EngineConfig{InitScope: InitNothing})
	if err := engine.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer engine.Cleanup()

	for _, v := range []HTTPVersion{HTTPVersionDefault, HTTPVersion11, HTTPVersion2, HTTPVersion2TLS, HTTPVersion3} {
		first, err := engine.transportFor(v)
		if err != nil {
			t.Fatalf("transportFor(%s): %v", v, err)
		}
		second, _ := engine.transportFor(v)
		if first != second {
			t.Fatalf("handles for %s should share a transport", v)
		}
	}

	rt, _ := engine.transportFor(HTTPVersion11)
	t11, ok := rt.(*http.Transport)
	if !ok || t11.TLSNextProto == nil || len(t11.TLSNextProto) != 0 {
		t.Fatalf("http/1.1 transport must disable h2 negotiation")
	}

	rt, _ = engine.transportFor(HTTPVersion3)
	if _, ok := rt.(*h3Fallback); !ok {
		t.Fatalf("http/3 transport has type %T", rt)
	}
}

func TestEngineCleanupDropsTransports(t *testing.T) {
	engine := NewRestyEngine(EngineConfig{InitScope: InitNothing})
	if err := engine.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := engine.transportFor(HTTPVersionDefault); err != nil {
		t.Fatalf("transportFor: %v", err)
	}
	engine.Cleanup()
	if len(engine.transports) != 0 {
		t.Fatalf("expected transports released, got %d", len(engine.transports))
	}
	if _, err := engine.NewHandle(HandleOptions{}); err == nil {
		t.Fatalf("expected error after cleanup")
	}
}

func TestHandleResolve(t *testing.T) {
	h := &restyHandle{scheme: "https"}

	got, err := h.resolve("example.com/path")
	if err != nil || got != "https://example.com/path" {
		t.Fatalf("resolve = %q, %v", got, err)
	}
	got, err = h.resolve("example.com/login?next=http://x")
	if err != nil || got != "https://example.com/login?next=http://x" {
		t.Fatalf("resolve with scheme in query = %q, %v", got, err)
	}
	if _, err := h.resolve("file:///etc/passwd"); !errors.Is(err, ErrSchemeNotAllowed) {
		t.Fatalf("expected ErrSchemeNotAllowed, got %v", err)
	}
	if _, err := h.resolve("  "); !errors.Is(err, ErrTransport) {
		t.Fatalf("expected ErrTransport for empty url, got %v", err)
	}
}

type chunkRecorder struct {
	chunks [][]byte
}

func (c *chunkRecorder) Write(p []byte) (int, error) {
	c.chunks = append(c.chunks, append([]byte(nil), p...))
	return len(p), nil
}

func TestDrainChunksAndKeepsPartialData(t *testing.T) {
	src := strings.NewReader(strings.Repeat("a", MaxWriteSize+10))
	rec := &chunkRecorder{}
	if err := drain(src, rec); err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(rec.chunks) != 2 || len(rec.chunks[0]) != MaxWriteSize || len(rec.chunks[1]) != 10 {
		t.Fatalf("unexpected chunking: %d chunks", len(rec.chunks))
	}

	var sink bytes.Buffer
	broken := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(errors.New("reset")))
	if err := drain(broken, &sink); err == nil {
		t.Fatalf("expected read error")
	}
	if sink.String() != "partial" {
		t.Fatalf("partial data lost: %q", sink.String())
	}
}
