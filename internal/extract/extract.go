package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxBodyBytes caps how much of a response body is parsed.
const MaxBodyBytes = 1 << 20 // 1 MiB

// PageMeta is the OpenGraph summary of an HTML page.
type PageMeta struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Empty reports whether no metadata was found.
func (m PageMeta) Empty() bool {
	return m.Title == "" && m.Description == "" && m.ImageURL == ""
}

// Resolve makes relative URLs in m absolute against base.
func (m PageMeta) Resolve(base string) PageMeta {
	m.ImageURL = resolveURL(m.ImageURL, base)
	return m
}

// Select returns the trimmed text of every node matching selector, or the
// value of attr when attr is set. Empty values are skipped.
func Select(body []byte, selector, attr string) ([]string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return nil, fmt.Errorf("empty selector")
	}

	doc, err := parse(body)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find(selector).Each(func(_ int, node *goquery.Selection) {
		var val string
		if attr != "" {
			val, _ = node.Attr(attr)
		} else {
			val = node.Text()
		}
		if val = strings.TrimSpace(val); val != "" {
			out = append(out, val)
		}
	})
	return out, nil
}

// Meta extracts OpenGraph metadata, falling back to <title> and the
// description meta tag.
func Meta(body []byte) (PageMeta, error) {
	doc, err := parse(body)
	if err != nil {
		return PageMeta{}, err
	}

	content := func(sel string) string {
		if node := doc.Find(sel).First(); node.Length() > 0 {
			if val, ok := node.Attr("content"); ok {
				return strings.TrimSpace(val)
			}
		}
		return ""
	}

	return PageMeta{
		Title: firstNonEmpty(
			content(`meta[property="og:title"]`),
			doc.Find("title").First().Text(),
		),
		Description: firstNonEmpty(
			content(`meta[property="og:description"]`),
			content(`meta[name="description"]`),
		),
		ImageURL: content(`meta[property="og:image"]`),
	}, nil
}

func parse(body []byte) (*goquery.Document, error) {
	if len(body) > MaxBodyBytes {
		body = body[:MaxBodyBytes]
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

func resolveURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
