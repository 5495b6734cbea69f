package extract

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// sitemap covers both <urlset> documents and <sitemapindex> files; each
// lists its targets in <loc> elements.
type sitemap struct {
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// Sitemap returns the <loc> URLs of a sitemap or sitemap index, in document
// order with blanks and duplicates dropped.
func Sitemap(body []byte) ([]string, error) {
	if len(body) > MaxBodyBytes {
		return nil, fmt.Errorf("sitemap larger than %d bytes", MaxBodyBytes)
	}

	var sm sitemap
	if err := xml.NewDecoder(bytes.NewReader(body)).Decode(&sm); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	seen := make(map[string]struct{}, len(sm.URLs)+len(sm.Sitemaps))
	out := make([]string, 0, len(sm.URLs)+len(sm.Sitemaps))
	for _, entry := range append(sm.URLs, sm.Sitemaps...) {
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" {
			continue
		}
		if _, dup := seen[loc]; dup {
			continue
		}
		seen[loc] = struct{}{}
		out = append(out, loc)
	}
	return out, nil
}
