package report

import (
	"fmt"

	"github.com/pageinsight/backend/analyzer"
)

// FallbackScore computes a deterministic Analysis from PageMetrics.
// The point table is fixed: downstream consumers compare scores across
// runs, so changing any weight is a breaking change.
func FallbackScore(m analyzer.PageMetrics) Analysis {
	a := Analysis{
		Scores: Scores{
			SEO:           fallbackSEO(m),
			Performance:   fallbackPerformance(m),
			Accessibility: fallbackAccessibility(m),
			BestPractices: fallbackBestPractices(m),
		},
		Findings:        fallbackFindings(m),
		Recommendations: fallbackRecommendations(m),
	}
	a.Summary = summarize(a.Findings)
	return a
}

func summarize(findings []Finding) string {
	var critical, warnings int
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			critical++
		case SeverityWarning:
			warnings++
		}
	}
	return fmt.Sprintf(
		"Automated analysis found %d critical issue(s) and %d warning(s). Review the recommendations below to improve this page.",
		critical, warnings)
}

func fallbackSEO(m analyzer.PageMetrics) int {
	score := 50
	if m.HasTitle {
		score += 10
	}
	if m.HasDescription {
		score += 10
	}
	if m.HasH1 {
		score += 10
	}
	if m.HasCanonical {
		score += 5
	}
	if m.HasOpenGraph {
		score += 5
	}
	if m.UniqueH1 {
		score += 10
	}
	return clamp(score)
}

func fallbackPerformance(m analyzer.PageMetrics) int {
	score := 70
	if m.HTMLSize < 50_000 {
		score += 10
	}
	if m.ScriptCount < 10 {
		score += 10
	}
	if m.InlineStyleCount == 0 {
		score += 10
	}
	return clamp(score)
}

func fallbackAccessibility(m analyzer.PageMetrics) int {
	score := 50
	if m.ImgCount > 0 && m.ImgWithAltCount == m.ImgCount {
		score += 30
	} else if m.ImgWithAltCount > m.ImgCount/2 {
		score += 15
	}
	if m.HasLang {
		score += 10
	}
	if m.HasViewport {
		score += 10
	}
	return clamp(score)
}

func fallbackBestPractices(m analyzer.PageMetrics) int {
	score := 60
	if m.IsHTTPS {
		score += 15
	}
	if m.HasCharset {
		score += 10
	}
	if m.HasViewport {
		score += 15
	}
	return clamp(score)
}

func fallbackFindings(m analyzer.PageMetrics) []Finding {
	var findings []Finding

	if !m.HasTitle {
		findings = append(findings, Finding{
			Severity:    SeverityCritical,
			Category:    "seo",
			Title:       "Missing page title",
			Description: "The page has no <title> element. Search engines rely on it for ranking and display.",
		})
	}
	if !m.HasDescription {
		findings = append(findings, Finding{
			Severity:    SeverityWarning,
			Category:    "seo",
			Title:       "Missing meta description",
			Description: "Without a meta description, search engines pick an arbitrary text snippet for results.",
		})
	}
	if !m.HasH1 {
		findings = append(findings, Finding{
			Severity:    SeverityCritical,
			Category:    "seo",
			Title:       "Missing H1 heading",
			Description: "The page has no H1 heading to signal its main topic.",
		})
	}
	if m.ImgWithAltCount < m.ImgCount {
		findings = append(findings, Finding{
			Severity:    SeverityWarning,
			Category:    "accessibility",
			Title:       "Images without alt text",
			Description: fmt.Sprintf("%d of %d images have no alt attribute.", m.ImgCount-m.ImgWithAltCount, m.ImgCount),
		})
	}
	if !m.IsHTTPS {
		findings = append(findings, Finding{
			Severity:    SeverityCritical,
			Category:    "best-practices",
			Title:       "Not served over HTTPS",
			Description: "The page is served over plain HTTP. Browsers flag it as not secure.",
		})
	} else {
		findings = append(findings, Finding{
			Severity:    SeverityPositive,
			Category:    "best-practices",
			Title:       "Served over HTTPS",
			Description: "The page is delivered over a secure connection.",
		})
	}
	if m.HasTitle {
		findings = append(findings, Finding{
			Severity:    SeverityPositive,
			Category:    "seo",
			Title:       "Page title present",
			Description: "The page declares a title element.",
		})
	}

	return findings
}

func fallbackRecommendations(m analyzer.PageMetrics) []Recommendation {
	var recs []Recommendation

	if !m.HasCanonical {
		recs = append(recs, Recommendation{
			Priority:    PriorityMedium,
			Title:       "Add a canonical link",
			Description: "Declare <link rel=\"canonical\"> to consolidate duplicate-content signals.",
			Impact:      "Prevents ranking dilution across URL variants.",
		})
	}
	if !m.HasOpenGraph {
		recs = append(recs, Recommendation{
			Priority:    PriorityMedium,
			Title:       "Add Open Graph tags",
			Description: "og: meta tags control how the page renders when shared on social platforms.",
			Impact:      "Improves click-through from shared links.",
		})
	}
	if m.ScriptCount > 15 {
		recs = append(recs, Recommendation{
			Priority:    PriorityHigh,
			Title:       "Reduce script count",
			Description: fmt.Sprintf("The page loads %d scripts. Bundle or defer non-critical ones.", m.ScriptCount),
			Impact:      "Fewer scripts shorten parse and execution time.",
		})
	}
	if !m.HasStructuredData {
		recs = append(recs, Recommendation{
			Priority:    PriorityLow,
			Title:       "Add structured data",
			Description: "JSON-LD or microdata lets search engines show rich results for this page.",
			Impact:      "Enables rich snippets in search results.",
		})
	}

	return recs
}

func clamp(score int) int {
	if score > 100 {
		return 100
	}
	return score
}
