package collection

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samvad-hq/scrafurl/pkg/httpclient"
	"gopkg.in/yaml.v3"
)

// Package collection loads named request sets (YAML/JSON) for batch runs.

// Entry is one named request in a collection.
type Entry struct {
	Name         string   `json:"name" yaml:"name"`
	Method       string   `json:"method" yaml:"method"`
	URL          string   `json:"url" yaml:"url"`
	Body         string   `json:"body" yaml:"body"`
	Headers      []string `json:"headers" yaml:"headers"`
	DelayMs      int      `json:"delay_ms" yaml:"delay_ms"`
	ExpectStatus int      `json:"expect_status" yaml:"expect_status"`
	Select       string   `json:"select" yaml:"select"`
	Attr         string   `json:"attr" yaml:"attr"`
}

// Collection is an ordered list of entries.
type Collection struct {
	Entries []Entry `json:"requests" yaml:"requests"`

	index map[string]int
}

// Load reads, sanitizes and validates a collection file.
func Load(path string) (*Collection, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("collection file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open collection file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read collection file: %w", err)
	}

	return Parse(raw, filepath.Ext(path))
}

// Parse decodes collection bytes. ext selects the decoder; empty tries YAML then JSON.
func Parse(data []byte, ext string) (*Collection, error) {
	col, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	if len(col.Entries) == 0 {
		return nil, errors.New("collection contains no requests")
	}

	col.index = make(map[string]int, len(col.Entries))
	for i := range col.Entries {
		e := sanitizeEntry(col.Entries[i])
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("request[%d]: %w", i, err)
		}
		if _, exists := col.index[e.Name]; exists {
			return nil, fmt.Errorf("duplicate request name %q", e.Name)
		}
		col.Entries[i] = e
		col.index[e.Name] = i
	}
	return col, nil
}

// Lookup returns the entry with the given name.
func (c *Collection) Lookup(name string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	i, ok := c.index[strings.TrimSpace(name)]
	if !ok {
		return Entry{}, false
	}
	return c.Entries[i], true
}

type unmarshalFn func([]byte, any) error

func decode(data []byte, ext string) (*Collection, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  []string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
		{name: "json", ext: []string{".json"}, fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && !contains(d.ext, ext) {
			continue
		}
		var col Collection
		if err := d.fn(data, &col); err != nil {
			errs = append(errs, fmt.Errorf("decode %s collection: %w", d.name, err))
			continue
		}
		return &col, nil
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, fmt.Errorf("collection format %q not recognized (expected YAML or JSON)", ext)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sanitizeEntry(e Entry) Entry {
	e.Name = strings.TrimSpace(e.Name)
	e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
	if e.Method == "" {
		e.Method = string(httpclient.MethodGet)
	}
	e.URL = strings.TrimSpace(e.URL)
	e.Select = strings.TrimSpace(e.Select)
	e.Attr = strings.TrimSpace(e.Attr)
	if e.DelayMs < 0 {
		e.DelayMs = 0
	}
	return e
}

func validateEntry(e Entry) error {
	if e.Name == "" {
		return errors.New("name is required")
	}
	if e.URL == "" {
		return fmt.Errorf("url is required for request %q", e.Name)
	}
	if _, err := httpclient.ParseMethod(e.Method); err != nil {
		return fmt.Errorf("request %q: %w", e.Name, err)
	}
	if e.ExpectStatus != 0 && (e.ExpectStatus < 100 || e.ExpectStatus > 599) {
		return fmt.Errorf("expect_status %d out of range for request %q", e.ExpectStatus, e.Name)
	}
	if e.Attr != "" && e.Select == "" {
		return fmt.Errorf("attr requires select for request %q", e.Name)
	}
	return nil
}

// Delay returns the pause to observe after this entry.
func (e Entry) Delay() time.Duration {
	return time.Duration(e.DelayMs) * time.Millisecond
}

// Verb returns the entry's method. Entries are validated on load.
func (e Entry) Verb() httpclient.Method {
	m, _ := httpclient.ParseMethod(e.Method)
	return m
}
