package httpclient

import "time"

const defaultScheme = "http"

type clientOptions struct {
	engine Engine
	handle HandleOptions
}

// Option customizes a Client at construction.
type Option func(*clientOptions)

// WithEngine selects the transport engine. DefaultEngine is used otherwise.
func WithEngine(e Engine) Option {
	return func(o *clientOptions) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithDefaultScheme sets the scheme assumed for URLs written without one.
func WithDefaultScheme(scheme string) Option {
	return func(o *clientOptions) {
		if scheme != "" {
			o.handle.DefaultScheme = scheme
		}
	}
}

// WithHTTPVersion selects the protocol preference.
func WithHTTPVersion(v HTTPVersion) Option {
	return func(o *clientOptions) {
		o.handle.HTTPVersion = v
	}
}

// WithTimeout bounds every request. Requests are unbounded by default.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		if d > 0 {
			o.handle.Timeout = d
		}
	}
}

// WithLogger attaches a logger for transport diagnostics.
func WithLogger(log Logger) Option {
	return func(o *clientOptions) {
		o.handle.Logger = log
	}
}

func buildOptions(opts []Option) clientOptions {
	o := clientOptions{
		handle: HandleOptions{DefaultScheme: defaultScheme},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.engine == nil {
		o.engine = DefaultEngine()
	}
	o.handle.Logger = ensureLogger(o.handle.Logger)
	return o
}
