// Package httpclient is a small synchronous HTTP client built around one
// reusable transport handle. Verb methods never fail loudly: callers inspect
// ResponseCode, ResponseBody and Err after each call.
package httpclient

import (
	"bytes"
	"errors"
	"fmt"
)

// Client issues requests over a single handle and keeps the last response.
// A Client is not safe for concurrent verb calls and must not be copied.
type Client struct {
	_ noCopy

	handle Handle
	log    Logger
	body   bytes.Buffer
	code   int
	err    error
}

// New acquires a handle from the configured engine, running the engine's
// process-wide setup first if no other client has done so.
//
// On failure New returns an inert client alongside an error wrapping
// ErrInitialization. Verb calls on an inert client do nothing.
func New(opts ...Option) (*Client, error) {
	o := buildOptions(opts)
	c := &Client{log: o.handle.Logger, code: NoResponse}

	if err := global.ensure(o.engine); err != nil {
		return c, fmt.Errorf("%w: %w", ErrInitialization, err)
	}

	h, err := o.engine.NewHandle(o.handle)
	if err != nil {
		return c, fmt.Errorf("%w: acquire handle: %w", ErrInitialization, err)
	}
	if h == nil {
		return c, fmt.Errorf("%w: engine returned no handle", ErrInitialization)
	}

	c.handle = h
	c.body.Grow(MaxWriteSize)
	return c, nil
}

// Close releases the handle. The client becomes inert.
func (c *Client) Close() error {
	if c == nil || c.handle == nil {
		return nil
	}
	err := c.handle.Close()
	c.handle = nil
	c.body.Reset()
	return err
}

// Get issues a GET request. Lines sharing a header name keep their order;
// distinct names go out in the order net/http writes them, sorted by name.
func (c *Client) Get(url string, headers ...string) {
	c.perform(MethodGet, url, nil, headers)
}

// Post issues a POST request with body sent as-is.
func (c *Client) Post(url, body string, headers ...string) {
	c.perform(MethodPost, url, []byte(body), headers)
}

// Put issues a PUT request with body sent as-is.
func (c *Client) Put(url, body string, headers ...string) {
	c.perform(MethodPut, url, []byte(body), headers)
}

// Patch issues a PATCH request with body sent as-is.
func (c *Client) Patch(url, body string, headers ...string) {
	c.perform(MethodPatch, url, []byte(body), headers)
}

// Delete issues a DELETE request.
func (c *Client) Delete(url string, headers ...string) {
	c.perform(MethodDelete, url, nil, headers)
}

// Do dispatches by method. Unsupported methods are recorded in Err.
func (c *Client) Do(method Method, url, body string, headers ...string) {
	switch method {
	case MethodGet, MethodDelete:
		c.perform(method, url, nil, headers)
	case MethodPost, MethodPut, MethodPatch:
		c.perform(method, url, []byte(body), headers)
	default:
		if c == nil {
			return
		}
		c.body.Reset()
		c.code = NoResponse
		c.err = fmt.Errorf("unsupported method %q", method)
	}
}

// ResponseCode returns the status of the most recent request, or NoResponse.
func (c *Client) ResponseCode() int {
	if c == nil {
		return NoResponse
	}
	return c.code
}

// ResponseBody returns the bytes received by the most recent request. The
// slice is only valid until the next verb call or Close.
func (c *Client) ResponseBody() []byte {
	if c == nil {
		return nil
	}
	return c.body.Bytes()
}

// Err returns the transport failure of the most recent request, if any.
func (c *Client) Err() error {
	if c == nil {
		return nil
	}
	return c.err
}

func (c *Client) perform(method Method, url string, body []byte, headers []string) {
	if c == nil {
		return
	}
	c.body.Reset()
	c.code = NoResponse
	c.err = nil
	if c.handle == nil {
		return
	}

	list := NewHeaderList(headers...)
	defer list.Release()

	req := &Request{
		Method:  method,
		URL:     url,
		Body:    body,
		Headers: list,
	}

	err := c.handle.Perform(req, SinkFunc(c.body.Write))
	c.code = c.handle.ResponseCode()
	if err == nil {
		return
	}
	if !errors.Is(err, ErrTransport) {
		err = fmt.Errorf("%w: %w", ErrTransport, err)
	}
	c.err = err
	c.log.DebugObj("request did not complete", "request_error", map[string]any{
		"method":         string(method),
		"url":            url,
		"received_bytes": c.body.Len(),
		"error":          err.Error(),
	})
}

// noCopy lets go vet's copylocks check flag copies of a Client.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
