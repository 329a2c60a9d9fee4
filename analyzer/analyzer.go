package analyzer

import (
	"math"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxMarkupLength bounds how much of a fetched document is inspected.
// Anything past this point is ignored to cap extraction cost.
const MaxMarkupLength = 200_000

// Extract derives PageMetrics from raw markup and its source URL.
// It never fails: malformed markup under-counts, a feature that is
// absent yields the zero value for its field. The source URL must
// already be validated as http or https.
func Extract(markup string, src *url.URL) PageMetrics {
	if len(markup) > MaxMarkupLength {
		markup = markup[:MaxMarkupLength]
	}

	m := PageMetrics{
		URL:      src.String(),
		HTMLSize: len(markup),
		IsHTTPS:  strings.EqualFold(src.Scheme, "https"),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		// net/html tolerates arbitrary markup; this only happens on
		// reader failure, which a string reader cannot produce.
		return m
	}

	m.Title = strings.TrimSpace(doc.Find("title").First().Text())
	m.HasTitle = m.Title != ""

	extractMeta(doc, &m)
	extractHeadings(doc, &m)
	extractImages(doc, &m)
	extractResources(doc, &m)
	extractLinks(doc, src, &m)

	if _, ok := doc.Find("html").First().Attr("lang"); ok {
		m.HasLang = true
	}
	if doc.Find("[itemscope], [itemtype]").Length() > 0 {
		m.HasStructuredData = true
	}

	m.TextRatio = textRatio(doc, len(markup))

	return m
}

// extractMeta walks meta tags once; attribute names are lowercased by
// the parser but attribute values are compared case-insensitively.
func extractMeta(doc *goquery.Document, m *PageMetrics) {
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		switch strings.ToLower(strings.TrimSpace(s.AttrOr("name", ""))) {
		case "description":
			if !m.HasDescription {
				m.Description = strings.TrimSpace(s.AttrOr("content", ""))
				m.HasDescription = m.Description != ""
			}
		case "viewport":
			m.HasViewport = true
		case "robots":
			m.HasRobotsMeta = true
		}

		if _, ok := s.Attr("charset"); ok {
			m.HasCharset = true
		}
		if strings.EqualFold(strings.TrimSpace(s.AttrOr("http-equiv", "")), "content-type") {
			m.HasCharset = true
		}
		if strings.HasPrefix(strings.ToLower(s.AttrOr("property", "")), "og:") {
			m.HasOpenGraph = true
		}
	})
}

func extractHeadings(doc *goquery.Document, m *PageMetrics) {
	m.H2Count = doc.Find("h2").Length()
	m.H3Count = doc.Find("h3").Length()

	distinct := make(map[string]struct{})
	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		m.H1Count++
		if text := strings.TrimSpace(s.Text()); text != "" {
			distinct[text] = struct{}{}
		}
	})
	m.HasH1 = m.H1Count > 0
	// A page earns uniqueH1 only for a single H1 carrying non-empty text.
	m.UniqueH1 = m.H1Count == 1 && len(distinct) == 1
}

func extractImages(doc *goquery.Document, m *PageMetrics) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		m.ImgCount++
		if alt := strings.TrimSpace(s.AttrOr("alt", "")); alt != "" {
			m.ImgWithAltCount++
		}
	})
}

func extractResources(doc *goquery.Document, m *PageMetrics) {
	m.ScriptCount = doc.Find("script").Length()
	m.InlineStyleCount = doc.Find("style").Length()

	doc.Find("link").Each(func(_ int, s *goquery.Selection) {
		switch strings.ToLower(strings.TrimSpace(s.AttrOr("rel", ""))) {
		case "stylesheet":
			m.StylesheetCount++
		case "canonical":
			m.HasCanonical = true
		}
	})

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if strings.EqualFold(strings.TrimSpace(s.AttrOr("type", "")), "application/ld+json") {
			m.HasStructuredData = true
		}
	})
}

// extractLinks classifies every anchor with an href. Absolute URLs are
// internal when they share the source hostname; relative paths are
// internal; pure fragments and malformed or opaque targets count toward
// the total without landing in either bucket.
func extractLinks(doc *goquery.Document, src *url.URL, m *PageMetrics) {
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		m.TotalLinks++

		href := strings.TrimSpace(s.AttrOr("href", ""))
		if strings.HasPrefix(href, "#") {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		if ref.Host != "" {
			if strings.EqualFold(ref.Hostname(), src.Hostname()) {
				m.InternalLinks++
			} else {
				m.ExternalLinks++
			}
			return
		}
		if ref.Scheme != "" {
			// Opaque targets like mailto: or javascript: point nowhere
			// on this site.
			return
		}
		m.InternalLinks++
	})
}

// textRatio strips script and style contents plus all remaining tags,
// collapses whitespace, and relates the surviving text to the raw
// markup length. Must run after every other extraction since it
// mutates the document.
func textRatio(doc *goquery.Document, rawLen int) int {
	if rawLen == 0 {
		return 0
	}
	doc.Find("script, style").Remove()
	text := strings.Join(strings.Fields(doc.Text()), " ")
	return int(math.Round(100 * float64(len(text)) / float64(rawLen)))
}
