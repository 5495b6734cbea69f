package extract

import (
	"reflect"
	"testing"
)

func TestSitemapListsLocations(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc> https://example.com/a </loc></url>
  <url><loc></loc></url>
  <url><loc>https://example.com/b</loc></url>
  <url><loc>https://example.com/a</loc></url>
</urlset>`)

	got, err := Sitemap(body)
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if want := []string{"https://example.com/a", "https://example.com/b"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestSitemapIndex(t *testing.T) {
	body := []byte(`<sitemapindex><sitemap><loc>https://example.com/news.xml</loc></sitemap></sitemapindex>`)

	got, err := Sitemap(body)
	if err != nil {
		t.Fatalf("Sitemap: %v", err)
	}
	if len(got) != 1 || got[0] != "https://example.com/news.xml" {
		t.Fatalf("unexpected index entries %v", got)
	}
}

func TestSitemapRejectsInvalidXML(t *testing.T) {
	if _, err := Sitemap([]byte("<urlset><url>")); err == nil {
		t.Fatalf("expected parse error")
	}
}
