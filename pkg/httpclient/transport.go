package httpclient

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"golang.org/x/net/http2"
)

const (
	h2ReadIdleTimeout = 30 * time.Second
	h2PingTimeout     = 15 * time.Second
)

// buildTransport returns the round tripper for one HTTP version preference.
// Callers hold e.mu.
func (e *RestyEngine) buildTransport(v HTTPVersion) (http.RoundTripper, error) {
	switch v {
	case HTTPVersionDefault:
		t := e.tcpTransport()
		t.ForceAttemptHTTP2 = true
		return t, nil
	case HTTPVersion11:
		t := e.tcpTransport()
		// A non-nil empty map keeps net/http from negotiating h2.
		t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
		return t, nil
	case HTTPVersion2, HTTPVersion2TLS:
		return e.h2Transport()
	case HTTPVersion3:
		tcp, err := e.h2Transport()
		if err != nil {
			return nil, err
		}
		h3 := &http3.Transport{
			TLSClientConfig: e.tlsConfig.Clone(),
			QUICConfig:      &quic.Config{KeepAlivePeriod: tcpKeepAlive},
		}
		return &h3Fallback{h3: h3, tcp: tcp}, nil
	default:
		return nil, fmt.Errorf("unknown http version %d", int(v))
	}
}

func (e *RestyEngine) tcpTransport() *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           e.dialer.DialContext,
		TLSClientConfig:       e.tlsConfig.Clone(),
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       idleConnTimeout,
		TLSHandshakeTimeout:   handshakeTimeout,
		ExpectContinueTimeout: time.Second,
	}
}

// h2Transport negotiates HTTP/2 over TLS through ALPN and keeps idle
// connections alive with pings. Cleartext requests stay on HTTP/1.1.
func (e *RestyEngine) h2Transport() (*http.Transport, error) {
	t := e.tcpTransport()
	t2, err := http2.ConfigureTransports(t)
	if err != nil {
		return nil, fmt.Errorf("configure http2: %w", err)
	}
	t2.ReadIdleTimeout = h2ReadIdleTimeout
	t2.PingTimeout = h2PingTimeout
	return t, nil
}

// h3Fallback sends https requests over QUIC and everything else, or anything
// QUIC could not deliver, over TCP.
type h3Fallback struct {
	h3  *http3.Transport
	tcp *http.Transport
}

func (f *h3Fallback) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme != "https" {
		return f.tcp.RoundTrip(req)
	}
	resp, err := f.h3.RoundTrip(req)
	if err == nil {
		return resp, nil
	}
	if req.Body != nil && req.Body != http.NoBody {
		if req.GetBody == nil {
			return nil, err
		}
		body, gerr := req.GetBody()
		if gerr != nil {
			return nil, err
		}
		req = req.Clone(req.Context())
		req.Body = body
	}
	return f.tcp.RoundTrip(req)
}

func (f *h3Fallback) CloseIdleConnections() {
	f.tcp.CloseIdleConnections()
	_ = f.h3.Close()
}

func closeTransport(rt http.RoundTripper) {
	if c, ok := rt.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}
