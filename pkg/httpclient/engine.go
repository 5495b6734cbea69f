package httpclient

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NoResponse is the status reported when no HTTP response was observed,
// either because no request has completed yet or because the transport failed.
const NoResponse = 0

// MaxWriteSize bounds a single chunk handed to the response sink.
// It is also the capacity reserved for the response buffer up front.
const MaxWriteSize = 16 * 1024

// Method designates the HTTP verb of a request.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
	MethodDelete Method = http.MethodDelete
)

// CarriesBody reports whether the verb sends a request payload.
func (m Method) CarriesBody() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch:
		return true
	default:
		return false
	}
}

// ParseMethod maps a verb name to a supported Method.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToUpper(strings.TrimSpace(s))); m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported method %q", s)
	}
}

// Request is the transient descriptor built for a single verb call.
type Request struct {
	Method  Method
	URL     string
	Body    []byte
	Headers HeaderList
}

// HTTPVersion is the protocol preference a handle negotiates with.
type HTTPVersion int

const (
	// HTTPVersionDefault leaves negotiation to the transport defaults.
	HTTPVersionDefault HTTPVersion = iota
	HTTPVersion11
	// HTTPVersion2 attempts HTTP/2 and falls back to HTTP/1.1.
	HTTPVersion2
	// HTTPVersion2TLS attempts HTTP/2 over TLS only; cleartext stays on HTTP/1.1.
	HTTPVersion2TLS
	// HTTPVersion3 attempts HTTP/3 for https URLs and falls back to TCP.
	HTTPVersion3
)

// ParseHTTPVersion accepts "", "1.1", "2", "2tls" and "3".
func ParseHTTPVersion(s string) (HTTPVersion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return HTTPVersionDefault, nil
	case "1.1", "http/1.1":
		return HTTPVersion11, nil
	case "2", "http/2":
		return HTTPVersion2, nil
	case "2tls", "http/2-tls":
		return HTTPVersion2TLS, nil
	case "3", "http/3":
		return HTTPVersion3, nil
	default:
		return HTTPVersionDefault, fmt.Errorf("unknown http version %q", s)
	}
}

func (v HTTPVersion) String() string {
	switch v {
	case HTTPVersion11:
		return "1.1"
	case HTTPVersion2:
		return "2"
	case HTTPVersion2TLS:
		return "2tls"
	case HTTPVersion3:
		return "3"
	default:
		return "default"
	}
}

// HandleOptions configures a handle at acquisition time.
type HandleOptions struct {
	// DefaultScheme is prepended to URLs that carry no scheme.
	DefaultScheme string
	HTTPVersion   HTTPVersion
	// Timeout bounds a whole request. Zero means no timeout.
	Timeout time.Duration
	Logger  Logger
}

// Engine is the transport capability set a Client is built on.
// Implementations must be comparable; the lifecycle tracks them by identity.
type Engine interface {
	// Init performs the engine's process-wide setup. It is called at most once.
	Init() error
	// Cleanup tears down process-wide state. It is called at most once.
	Cleanup()
	NewHandle(opts HandleOptions) (Handle, error)
}

// Handle is one reusable request context owned by a single Client.
type Handle interface {
	// Perform executes req synchronously, writing every received chunk to sink.
	Perform(req *Request, sink io.Writer) error
	// ResponseCode returns the status of the most recent Perform, or NoResponse.
	ResponseCode() int
	Close() error
}

// SinkFunc adapts a function to the io.Writer a handle streams into.
type SinkFunc func(p []byte) (int, error)

func (f SinkFunc) Write(p []byte) (int, error) { return f(p) }
