package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pageinsight/backend/analyzer"
	"github.com/pageinsight/backend/vitals"
)

const systemPrompt = "You are an expert web auditor. You evaluate pages for SEO, performance, " +
	"accessibility and general best practices from structural signals. " +
	"Respond with a single JSON object and nothing else."

// Composer turns PageMetrics into an Analysis, preferring the
// generative pipeline and degrading to the deterministic fallback
// whenever the completion is missing or structurally invalid.
type Composer struct {
	generator Generator
	maxTokens int
	logger    *slog.Logger
}

// NewComposer builds a Composer. A nil generator routes every request
// straight to the fallback scorer.
func NewComposer(generator Generator, maxTokens int, logger *slog.Logger) *Composer {
	return &Composer{generator: generator, maxTokens: maxTokens, logger: logger}
}

// Compose produces the Analysis for the given metrics and attaches the
// already-normalized vitals. It never fails; every generation problem
// is absorbed by FallbackScore. The second return reports whether the
// generative path produced the result.
func (c *Composer) Compose(ctx context.Context, m analyzer.PageMetrics, cwv vitals.CoreWebVitals) (Analysis, bool) {
	a, generated := c.generate(ctx, m, cwv)
	if !generated {
		a = FallbackScore(m)
	}
	a.Vitals = cwv
	return a, generated
}

// candidate mirrors the requested schema with pointers so missing
// sections are detectable after decoding.
type candidate struct {
	Scores          *Scores          `json:"scores"`
	Findings        []Finding        `json:"findings"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         string           `json:"summary"`
}

func (c *Composer) generate(ctx context.Context, m analyzer.PageMetrics, cwv vitals.CoreWebVitals) (Analysis, bool) {
	if c.generator == nil {
		return Analysis{}, false
	}

	text, err := c.generator.Complete(ctx, systemPrompt, buildPrompt(m, cwv.PerformanceScore), c.maxTokens)
	if err != nil {
		c.logger.Warn("generation failed, using fallback", "url", m.URL, "error", err)
		return Analysis{}, false
	}

	raw, ok := extractJSON(text)
	if !ok {
		c.logger.Warn("no JSON object in completion, using fallback", "url", m.URL)
		return Analysis{}, false
	}

	var cand candidate
	if err := json.Unmarshal([]byte(raw), &cand); err != nil {
		c.logger.Warn("completion JSON invalid, using fallback", "url", m.URL, "error", err)
		return Analysis{}, false
	}
	if cand.Scores == nil || cand.Findings == nil || cand.Recommendations == nil {
		c.logger.Warn("completion schema incomplete, using fallback", "url", m.URL)
		return Analysis{}, false
	}

	return Analysis{
		Scores:          clampScores(*cand.Scores),
		Findings:        cand.Findings,
		Recommendations: cand.Recommendations,
		Summary:         cand.Summary,
	}, true
}

// buildPrompt encodes every PageMetrics field deterministically. The
// requested schema excludes Core Web Vitals: those are measured
// separately and attached by the composer.
func buildPrompt(m analyzer.PageMetrics, perfScore *int) string {
	var b strings.Builder

	b.WriteString("Analyze this webpage from its extracted structural metrics.\n\n")
	fmt.Fprintf(&b, "URL: %s\n", m.URL)
	fmt.Fprintf(&b, "Title: %q (present: %t)\n", m.Title, m.HasTitle)
	fmt.Fprintf(&b, "Meta description: %q (present: %t)\n", m.Description, m.HasDescription)
	fmt.Fprintf(&b, "Headings: %d H1, %d H2, %d H3 (has H1: %t, unique H1: %t)\n",
		m.H1Count, m.H2Count, m.H3Count, m.HasH1, m.UniqueH1)
	fmt.Fprintf(&b, "Images: %d total, %d with alt text\n", m.ImgCount, m.ImgWithAltCount)
	fmt.Fprintf(&b, "Resources: %d scripts, %d stylesheets, %d inline style blocks\n",
		m.ScriptCount, m.StylesheetCount, m.InlineStyleCount)
	fmt.Fprintf(&b, "Markup size: %d bytes, text-to-markup ratio: %d%%\n", m.HTMLSize, m.TextRatio)
	fmt.Fprintf(&b, "Links: %d total, %d internal, %d external\n",
		m.TotalLinks, m.InternalLinks, m.ExternalLinks)
	fmt.Fprintf(&b, "Viewport meta: %t, charset: %t, canonical: %t, robots meta: %t\n",
		m.HasViewport, m.HasCharset, m.HasCanonical, m.HasRobotsMeta)
	fmt.Fprintf(&b, "Open Graph: %t, structured data: %t, lang attribute: %t, HTTPS: %t\n",
		m.HasOpenGraph, m.HasStructuredData, m.HasLang, m.IsHTTPS)
	if perfScore != nil {
		fmt.Fprintf(&b, "Measured aggregate performance score: %d/100\n", *perfScore)
	}

	b.WriteString("\nRespond with one JSON object of this exact shape:\n")
	b.WriteString(`{"scores":{"seo":0-100,"performance":0-100,"accessibility":0-100,"bestPractices":0-100},`)
	b.WriteString(`"findings":[{"severity":"positive|warning|critical","category":"...","title":"...","description":"..."}],`)
	b.WriteString(`"recommendations":[{"priority":"high|medium|low","title":"...","description":"...","impact":"..."}],`)
	b.WriteString(`"summary":"..."}`)
	b.WriteString("\nDo not include Core Web Vitals; they are measured separately.")

	return b.String()
}

// extractJSON returns the first top-level {...} substring, tracking
// string literals so braces inside them do not end the object early.
func extractJSON(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func clampScores(s Scores) Scores {
	s.SEO = clampRange(s.SEO)
	s.Performance = clampRange(s.Performance)
	s.Accessibility = clampRange(s.Accessibility)
	s.BestPractices = clampRange(s.BestPractices)
	return s
}

func clampRange(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
