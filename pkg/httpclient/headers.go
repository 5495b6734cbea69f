package httpclient

import (
	"net/http"
	"strings"
	"sync"
)

// HeaderList is an ordered set of literal header lines attached to one request.
// Lines are expected in "Name: value" form and are not validated.
type HeaderList struct {
	lines *[]string
}

var headerPool = sync.Pool{
	New: func() any {
		s := make([]string, 0, 8)
		return &s
	},
}

// NewHeaderList builds a list from lines in call order. Zero lines yield an
// empty list, meaning the transport defaults apply.
func NewHeaderList(lines ...string) HeaderList {
	if len(lines) == 0 {
		return HeaderList{}
	}
	buf := headerPool.Get().(*[]string)
	*buf = append((*buf)[:0], lines...)
	return HeaderList{lines: buf}
}

// Len returns the number of lines.
func (h HeaderList) Len() int {
	if h.lines == nil {
		return 0
	}
	return len(*h.lines)
}

// Lines returns the header lines in order.
func (h HeaderList) Lines() []string {
	if h.lines == nil {
		return nil
	}
	return *h.lines
}

// Release hands the backing storage back for reuse. The list must not be
// used afterwards.
func (h *HeaderList) Release() {
	if h.lines == nil {
		return
	}
	clear(*h.lines)
	*h.lines = (*h.lines)[:0]
	headerPool.Put(h.lines)
	h.lines = nil
}

// Apply writes the lines onto an outgoing request. Any value already present
// for a name the list mentions is replaced. It returns the lines the
// transport cannot express, which are dropped.
//
//	"Name: value"  appends a value
//	"Name:"        removes the transport default for Name
//	"Name;"        sends Name with an empty value
//	"Host: x"      overrides the request host
func (h HeaderList) Apply(req *http.Request) (dropped []string) {
	fields := make([]headerField, 0, h.Len())
	for _, line := range h.Lines() {
		f, ok := parseHeaderLine(line)
		if !ok {
			dropped = append(dropped, line)
			continue
		}
		req.Header.Del(f.name)
		fields = append(fields, f)
	}

	for _, f := range fields {
		switch {
		case f.remove && f.name == "User-Agent":
			// net/http skips the default agent when the key holds an empty value.
			req.Header[f.name] = []string{""}
		case f.remove:
			req.Header.Del(f.name)
		case f.name == "Host":
			req.Host = f.value
		default:
			req.Header[f.name] = append(req.Header[f.name], f.value)
		}
	}
	return dropped
}

type headerField struct {
	name   string
	value  string
	remove bool
}

func parseHeaderLine(line string) (headerField, bool) {
	if i := strings.IndexByte(line, ':'); i >= 0 {
		name := http.CanonicalHeaderKey(strings.TrimSpace(line[:i]))
		if name == "" {
			return headerField{}, false
		}
		value := strings.TrimSpace(line[i+1:])
		return headerField{name: name, value: value, remove: value == ""}, true
	}
	if name, ok := strings.CutSuffix(strings.TrimSpace(line), ";"); ok && name != "" {
		return headerField{name: http.CanonicalHeaderKey(strings.TrimSpace(name))}, true
	}
	return headerField{}, false
}
