package analyzer

import (
	"math"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse URL %q: %v", raw, err)
	}
	return u
}

func TestExtractBasicPage(t *testing.T) {
	markup := `<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<script src="/a.js"></script>
<script src="/b.js"></script>
</head>
<body>
<h1>Hello</h1>
<img src="/1.png"><img src="/2.png"><img src="/3.png">
</body>
</html>`

	m := Extract(markup, mustParse(t, "https://example.com"))

	if !m.HasH1 {
		t.Error("expected HasH1 to be true")
	}
	if !m.UniqueH1 {
		t.Error("expected UniqueH1 to be true")
	}
	if m.ImgCount != 3 {
		t.Errorf("expected 3 images, got %d", m.ImgCount)
	}
	if m.ImgWithAltCount != 0 {
		t.Errorf("expected 0 images with alt, got %d", m.ImgWithAltCount)
	}
	if m.ScriptCount != 2 {
		t.Errorf("expected 2 scripts, got %d", m.ScriptCount)
	}
	if m.InlineStyleCount != 0 {
		t.Errorf("expected 0 inline styles, got %d", m.InlineStyleCount)
	}
	if !m.IsHTTPS {
		t.Error("expected IsHTTPS to be true")
	}
	if !m.HasViewport {
		t.Error("expected HasViewport to be true")
	}
	if !m.HasCharset {
		t.Error("expected HasCharset to be true")
	}
	if m.HasLang {
		t.Error("expected HasLang to be false")
	}
	if m.HasTitle {
		t.Error("expected HasTitle to be false")
	}
	if m.HasDescription {
		t.Error("expected HasDescription to be false")
	}
}

func TestExtractDeterministic(t *testing.T) {
	markup := `<html lang="en"><head><title>T</title></head><body><h1>A</h1><a href="/x">x</a></body></html>`
	src := mustParse(t, "https://example.com")

	first := Extract(markup, src)
	second := Extract(markup, src)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction is not deterministic:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestExtractLinkClassification(t *testing.T) {
	markup := `<html><body>
<a href="https://example.com/about">same host</a>
<a href="https://other.com/page">other host</a>
<a href="/contact">root relative</a>
<a href="docs/guide.html">relative</a>
<a href="#section">fragment</a>
<a href="mailto:team@example.com">mail</a>
</body></html>`

	m := Extract(markup, mustParse(t, "https://example.com/index.html"))

	if m.TotalLinks != 6 {
		t.Errorf("expected 6 total links, got %d", m.TotalLinks)
	}
	if m.InternalLinks != 3 {
		t.Errorf("expected 3 internal links, got %d", m.InternalLinks)
	}
	if m.ExternalLinks != 1 {
		t.Errorf("expected 1 external link, got %d", m.ExternalLinks)
	}
}

func TestExtractUniqueH1(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   bool
	}{
		{"single H1 with text", "<h1>Topic</h1>", true},
		{"no H1", "<p>nothing</p>", false},
		{"two H1s", "<h1>One</h1><h1>Two</h1>", false},
		{"single empty H1", "<h1>   </h1>", false},
	}

	src := mustParse(t, "https://example.com")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Extract("<html><body>"+tt.markup+"</body></html>", src)
			if m.UniqueH1 != tt.want {
				t.Errorf("UniqueH1 = %t, want %t", m.UniqueH1, tt.want)
			}
		})
	}
}

func TestExtractFlags(t *testing.T) {
	markup := `<html lang="en"><head>
<title>My Page</title>
<meta name="description" content="A description.">
<meta name="robots" content="index,follow">
<meta property="og:title" content="My Page">
<link rel="canonical" href="https://example.com/">
<link rel="stylesheet" href="/main.css">
<script type="application/ld+json">{"@type":"WebSite"}</script>
<style>body{margin:0}</style>
</head><body></body></html>`

	m := Extract(markup, mustParse(t, "http://example.com"))

	if m.Title != "My Page" {
		t.Errorf("Title = %q, want %q", m.Title, "My Page")
	}
	if m.Description != "A description." {
		t.Errorf("Description = %q", m.Description)
	}
	if !m.HasRobotsMeta {
		t.Error("expected HasRobotsMeta")
	}
	if !m.HasOpenGraph {
		t.Error("expected HasOpenGraph")
	}
	if !m.HasCanonical {
		t.Error("expected HasCanonical")
	}
	if !m.HasStructuredData {
		t.Error("expected HasStructuredData")
	}
	if !m.HasLang {
		t.Error("expected HasLang")
	}
	if m.StylesheetCount != 1 {
		t.Errorf("StylesheetCount = %d, want 1", m.StylesheetCount)
	}
	if m.InlineStyleCount != 1 {
		t.Errorf("InlineStyleCount = %d, want 1", m.InlineStyleCount)
	}
	if m.IsHTTPS {
		t.Error("expected IsHTTPS to be false for http URL")
	}
}

func TestExtractTextRatio(t *testing.T) {
	markup := `<html><head><script>var hidden = "ignored";</script></head><body><p>Hello   world</p></body></html>`
	m := Extract(markup, mustParse(t, "https://example.com"))

	want := int(math.Round(100 * float64(len("Hello world")) / float64(len(markup))))
	if m.TextRatio != want {
		t.Errorf("TextRatio = %d, want %d", m.TextRatio, want)
	}

	empty := Extract("", mustParse(t, "https://example.com"))
	if empty.TextRatio != 0 {
		t.Errorf("TextRatio for empty markup = %d, want 0", empty.TextRatio)
	}
}

func TestExtractTruncatesMarkup(t *testing.T) {
	markup := "<html><body>" + strings.Repeat("a", MaxMarkupLength) + "</body></html>"
	m := Extract(markup, mustParse(t, "https://example.com"))

	if m.HTMLSize != MaxMarkupLength {
		t.Errorf("HTMLSize = %d, want %d", m.HTMLSize, MaxMarkupLength)
	}
}
