package report

import (
	"strings"
	"testing"

	"github.com/pageinsight/backend/analyzer"
)

func TestFallbackScoreScenario(t *testing.T) {
	// Page with one H1, three alt-less images, two scripts, viewport and
	// charset declared, served over HTTPS, no title or description.
	m := analyzer.PageMetrics{
		URL:         "https://example.com",
		HasH1:       true,
		H1Count:     1,
		UniqueH1:    true,
		ImgCount:    3,
		ScriptCount: 2,
		HTMLSize:    1200,
		IsHTTPS:     true,
		HasViewport: true,
		HasCharset:  true,
	}

	a := FallbackScore(m)

	if a.Scores.SEO != 70 {
		t.Errorf("SEO = %d, want 70", a.Scores.SEO)
	}
	if a.Scores.Performance != 100 {
		t.Errorf("Performance = %d, want 100", a.Scores.Performance)
	}
	if a.Scores.Accessibility != 60 {
		t.Errorf("Accessibility = %d, want 60", a.Scores.Accessibility)
	}
	if a.Scores.BestPractices != 100 {
		t.Errorf("BestPractices = %d, want 100", a.Scores.BestPractices)
	}
}

func TestFallbackScoreBounds(t *testing.T) {
	inputs := []analyzer.PageMetrics{
		{},
		{HasTitle: true, HasDescription: true, HasH1: true, UniqueH1: true, HasCanonical: true, HasOpenGraph: true},
		{IsHTTPS: true, HasCharset: true, HasViewport: true, HasLang: true, ImgCount: 4, ImgWithAltCount: 4},
		{HTMLSize: 500_000, ScriptCount: 40, InlineStyleCount: 9},
	}

	for _, m := range inputs {
		a := FallbackScore(m)
		for name, score := range map[string]int{
			"seo":           a.Scores.SEO,
			"performance":   a.Scores.Performance,
			"accessibility": a.Scores.Accessibility,
			"bestPractices": a.Scores.BestPractices,
		} {
			if score < 0 || score > 100 {
				t.Errorf("%s score %d out of [0,100] for input %+v", name, score, m)
			}
		}
	}
}

func TestFallbackAccessibilityAltBonus(t *testing.T) {
	t.Run("AllCovered", func(t *testing.T) {
		a := FallbackScore(analyzer.PageMetrics{ImgCount: 4, ImgWithAltCount: 4})
		if a.Scores.Accessibility != 80 {
			t.Errorf("Accessibility = %d, want 80", a.Scores.Accessibility)
		}
	})
	t.Run("MajorityCovered", func(t *testing.T) {
		a := FallbackScore(analyzer.PageMetrics{ImgCount: 4, ImgWithAltCount: 3})
		if a.Scores.Accessibility != 65 {
			t.Errorf("Accessibility = %d, want 65", a.Scores.Accessibility)
		}
	})
	t.Run("NoImages", func(t *testing.T) {
		a := FallbackScore(analyzer.PageMetrics{})
		if a.Scores.Accessibility != 50 {
			t.Errorf("Accessibility = %d, want 50", a.Scores.Accessibility)
		}
	})
}

func TestFallbackFindingsOrder(t *testing.T) {
	// Bare page over HTTP trips every negative finding.
	a := FallbackScore(analyzer.PageMetrics{ImgCount: 2})

	wantSeverities := []string{
		SeverityCritical, // missing title
		SeverityWarning,  // missing description
		SeverityCritical, // missing H1
		SeverityWarning,  // images without alt
		SeverityCritical, // not HTTPS
	}
	if len(a.Findings) != len(wantSeverities) {
		t.Fatalf("got %d findings, want %d: %+v", len(a.Findings), len(wantSeverities), a.Findings)
	}
	for i, want := range wantSeverities {
		if a.Findings[i].Severity != want {
			t.Errorf("finding %d severity = %q, want %q", i, a.Findings[i].Severity, want)
		}
	}

	if !strings.Contains(a.Summary, "3 critical") || !strings.Contains(a.Summary, "2 warning") {
		t.Errorf("summary does not report finding counts: %q", a.Summary)
	}
}

func TestFallbackPositiveFindings(t *testing.T) {
	a := FallbackScore(analyzer.PageMetrics{HasTitle: true, Title: "T", IsHTTPS: true, HasH1: true, HasDescription: true})

	var positives int
	for _, f := range a.Findings {
		if f.Severity == SeverityPositive {
			positives++
		}
	}
	if positives != 2 {
		t.Errorf("got %d positive findings, want 2 (HTTPS and title)", positives)
	}
}

func TestFallbackRecommendations(t *testing.T) {
	a := FallbackScore(analyzer.PageMetrics{ScriptCount: 20})

	wantPriorities := []string{
		PriorityMedium, // canonical
		PriorityMedium, // open graph
		PriorityHigh,   // script count
		PriorityLow,    // structured data
	}
	if len(a.Recommendations) != len(wantPriorities) {
		t.Fatalf("got %d recommendations, want %d", len(a.Recommendations), len(wantPriorities))
	}
	for i, want := range wantPriorities {
		if a.Recommendations[i].Priority != want {
			t.Errorf("recommendation %d priority = %q, want %q", i, a.Recommendations[i].Priority, want)
		}
	}

	full := FallbackScore(analyzer.PageMetrics{HasCanonical: true, HasOpenGraph: true, HasStructuredData: true, ScriptCount: 3})
	if len(full.Recommendations) != 0 {
		t.Errorf("expected no recommendations for a well-formed page, got %+v", full.Recommendations)
	}
}
