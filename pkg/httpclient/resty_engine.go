package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	maxRedirects     = 10
	dialTimeout      = 30 * time.Second
	tcpKeepAlive     = 30 * time.Second
	idleConnTimeout  = 90 * time.Second
	maxIdleConns     = 100
	handshakeTimeout = 10 * time.Second
)

// InitScope controls how much process-wide setup the engine does in Init.
type InitScope string

const (
	// InitDefault loads the system TLS roots once at Init.
	InitDefault InitScope = "default"
	// InitNothing defers all TLS setup to the transport's lazy defaults.
	InitNothing InitScope = "nothing"
)

// ParseInitScope accepts "default" and "nothing"; empty means default.
func ParseInitScope(s string) (InitScope, error) {
	switch scope := InitScope(strings.ToLower(strings.TrimSpace(s))); scope {
	case "", InitDefault:
		return InitDefault, nil
	case InitNothing:
		return InitNothing, nil
	default:
		return "", fmt.Errorf("unknown init scope %q", s)
	}
}

// EngineConfig configures a RestyEngine.
type EngineConfig struct {
	InitScope InitScope
	// Debug turns on resty's request/response dumps.
	Debug  bool
	Logger Logger
}

var errEngineNotInitialized = errors.New("engine not initialized")

// schemePrefix matches an explicit scheme at the start of a URL.
var schemePrefix = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://`)

// RestyEngine is the default Engine, built on resty and net/http. Handles
// requesting the same HTTP version share one transport and its keep-alive pool.
type RestyEngine struct {
	cfg EngineConfig
	log Logger

	mu          sync.Mutex
	initialized bool
	dialer      *net.Dialer
	tlsConfig   *tls.Config
	transports  map[HTTPVersion]http.RoundTripper
}

// NewRestyEngine creates an engine. Init must run before handles are acquired;
// New takes care of that through the process-wide lifecycle.
func NewRestyEngine(cfg EngineConfig) *RestyEngine {
	if cfg.InitScope == "" {
		cfg.InitScope = InitDefault
	}
	return &RestyEngine{
		cfg:        cfg,
		log:        ensureLogger(cfg.Logger),
		transports: make(map[HTTPVersion]http.RoundTripper),
	}
}

var defaultEngine struct {
	once   sync.Once
	engine *RestyEngine
}

// DefaultEngine returns the shared engine used when no engine is configured.
func DefaultEngine() Engine {
	defaultEngine.once.Do(func() {
		defaultEngine.engine = NewRestyEngine(EngineConfig{})
	})
	return defaultEngine.engine
}

// Init builds the shared dialer and, for InitDefault, the TLS root pool.
func (e *RestyEngine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.dialer = &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: tcpKeepAlive,
		Control:   fastOpenControl,
	}

	if e.cfg.InitScope == InitDefault {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return fmt.Errorf("load system tls roots: %w", err)
		}
		e.tlsConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	}

	e.initialized = true
	e.log.DebugObj("transport engine initialized", "engine", map[string]any{
		"init_scope": string(e.cfg.InitScope),
	})
	return nil
}

// Cleanup closes idle connections on every transport the engine built.
func (e *RestyEngine) Cleanup() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for v, rt := range e.transports {
		closeTransport(rt)
		delete(e.transports, v)
	}
	e.initialized = false
	e.log.DebugObj("transport engine cleaned up", "engine", map[string]any{
		"init_scope": string(e.cfg.InitScope),
	})
}

// NewHandle creates a resty-backed handle.
func (e *RestyEngine) NewHandle(opts HandleOptions) (Handle, error) {
	scheme := strings.ToLower(strings.TrimSpace(opts.DefaultScheme))
	if scheme == "" {
		scheme = defaultScheme
	}
	if !allowedScheme(scheme) {
		return nil, fmt.Errorf("%w: default scheme %q", ErrSchemeNotAllowed, scheme)
	}

	rt, err := e.transportFor(opts.HTTPVersion)
	if err != nil {
		return nil, err
	}

	log := e.log
	if opts.Logger != nil {
		log = opts.Logger
	}

	h := &restyHandle{
		scheme:  scheme,
		timeout: opts.Timeout,
		log:     log,
		code:    NoResponse,
	}

	c := resty.New()
	c.SetTransport(rt)
	c.SetCookieJar(nil)
	c.SetRetryCount(0)
	c.SetLogger(restyLogger{log: log})
	c.SetDebug(e.cfg.Debug)
	c.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects), resty.RedirectPolicyFunc(checkRedirectScheme))
	c.SetPreRequestHook(h.attachHeaders)
	h.client = c

	return h, nil
}

func (e *RestyEngine) transportFor(v HTTPVersion) (http.RoundTripper, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.initialized {
		return nil, errEngineNotInitialized
	}
	if rt, ok := e.transports[v]; ok {
		return rt, nil
	}
	rt, err := e.buildTransport(v)
	if err != nil {
		return nil, fmt.Errorf("build http %s transport: %w", v, err)
	}
	e.transports[v] = rt
	return rt, nil
}

func allowedScheme(scheme string) bool {
	return scheme == "http" || scheme == "https"
}

func checkRedirectScheme(req *http.Request, _ []*http.Request) error {
	if !allowedScheme(req.URL.Scheme) {
		return fmt.Errorf("%w: redirect to %q", ErrSchemeNotAllowed, req.URL.Scheme)
	}
	return nil
}

type headerListKey struct{}

// restyHandle is one resty client plus the state of its last request.
type restyHandle struct {
	client  *resty.Client
	scheme  string
	timeout time.Duration
	log     Logger
	code    int
}

func (h *restyHandle) Perform(req *Request, sink io.Writer) error {
	h.code = NoResponse
	if h.client == nil {
		return fmt.Errorf("%w: handle closed", ErrTransport)
	}

	target, err := h.resolve(req.URL)
	if err != nil {
		return err
	}

	ctx := context.WithValue(context.Background(), headerListKey{}, req.Headers)
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	r := h.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)
	if req.Method.CarriesBody() {
		r.SetBody(req.Body)
	}

	resp, err := r.Execute(string(req.Method), target)
	if resp != nil {
		if raw := resp.RawBody(); raw != nil {
			defer raw.Close()
		}
	}
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, req.Method, target, err)
	}

	h.code = resp.StatusCode()
	if err := drain(resp.RawBody(), sink); err != nil {
		return fmt.Errorf("%w: read %s %s: %w", ErrTransport, req.Method, target, err)
	}
	return nil
}

func (h *restyHandle) ResponseCode() int { return h.code }

func (h *restyHandle) Close() error {
	h.client = nil
	return nil
}

// resolve applies the default scheme and rejects anything but http and https.
func (h *restyHandle) resolve(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty url", ErrTransport)
	}
	if !schemePrefix.MatchString(raw) {
		raw = h.scheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: parse url: %w", ErrTransport, err)
	}
	if scheme := strings.ToLower(u.Scheme); !allowedScheme(scheme) {
		return "", fmt.Errorf("%w: %w: %q", ErrTransport, ErrSchemeNotAllowed, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: url %q has no host", ErrTransport, raw)
	}
	return u.String(), nil
}

// attachHeaders runs on the built *http.Request so the caller's header lines
// replace anything resty inferred, Content-Type included.
func (h *restyHandle) attachHeaders(_ *resty.Client, r *http.Request) error {
	r.Header.Del("Content-Type")

	list, _ := r.Context().Value(headerListKey{}).(HeaderList)
	if dropped := list.Apply(r); len(dropped) > 0 {
		h.log.DebugObj("header lines dropped", "headers_dropped", map[string]any{
			"url":   r.URL.String(),
			"lines": dropped,
		})
	}
	return nil
}

var chunkPool = sync.Pool{
	New: func() any {
		b := make([]byte, MaxWriteSize)
		return &b
	},
}

// drain hands src to sink one chunk at a time. Whatever arrived before a read
// error stays in the sink.
func drain(src io.Reader, sink io.Writer) error {
	if src == nil {
		return nil
	}
	bufp := chunkPool.Get().(*[]byte)
	defer chunkPool.Put(bufp)
	buf := *bufp

	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := sink.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
