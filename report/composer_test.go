package report

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/pageinsight/backend/analyzer"
	"github.com/pageinsight/backend/vitals"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) Complete(_ context.Context, _, prompt string, _ int) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func testComposer(g Generator) *Composer {
	return NewComposer(g, 2048, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const validCompletion = `Here is the analysis you asked for:
{"scores":{"seo":81,"performance":64,"accessibility":90,"bestPractices":77},
"findings":[{"severity":"warning","category":"seo","title":"t","description":"d"}],
"recommendations":[{"priority":"high","title":"t","description":"d","impact":"i"}],
"summary":"Decent page."}`

func TestComposeGeneratedPath(t *testing.T) {
	gen := &fakeGenerator{text: validCompletion}
	m := analyzer.PageMetrics{URL: "https://example.com", HasTitle: true, Title: "T"}
	cwv := vitals.Unavailable()

	a, generated := testComposer(gen).Compose(context.Background(), m, cwv)

	if !generated {
		t.Fatal("expected the generated path to be used")
	}
	if a.Scores.SEO != 81 || a.Scores.BestPractices != 77 {
		t.Errorf("scores not taken from completion: %+v", a.Scores)
	}
	if a.Summary != "Decent page." {
		t.Errorf("Summary = %q", a.Summary)
	}
	if !reflect.DeepEqual(a.Vitals, cwv) {
		t.Error("composer must attach the supplied vitals")
	}
}

func TestComposeFallsBack(t *testing.T) {
	m := analyzer.PageMetrics{URL: "https://example.com"}

	tests := []struct {
		name string
		gen  Generator
	}{
		{"nil generator", nil},
		{"generator error", &fakeGenerator{err: errors.New("boom")}},
		{"no JSON object", &fakeGenerator{text: "sorry, I cannot help with that"}},
		{"malformed JSON", &fakeGenerator{text: `{"scores": not json}`}},
		{"missing scores", &fakeGenerator{text: `{"findings":[],"recommendations":[],"summary":"s"}`}},
		{"missing findings", &fakeGenerator{text: `{"scores":{"seo":1,"performance":1,"accessibility":1,"bestPractices":1},"recommendations":[],"summary":"s"}`}},
		{"missing recommendations", &fakeGenerator{text: `{"scores":{"seo":1,"performance":1,"accessibility":1,"bestPractices":1},"findings":[],"summary":"s"}`}},
	}

	want := FallbackScore(m)
	want.Vitals = vitals.Failed()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, generated := testComposer(tt.gen).Compose(context.Background(), m, vitals.Failed())
			if generated {
				t.Fatal("expected fallback path")
			}
			if !reflect.DeepEqual(a, want) {
				t.Errorf("fallback result mismatch:\ngot  %+v\nwant %+v", a, want)
			}
		})
	}
}

func TestComposeClampsGeneratedScores(t *testing.T) {
	gen := &fakeGenerator{text: `{"scores":{"seo":140,"performance":-5,"accessibility":50,"bestPractices":100},"findings":[],"recommendations":[],"summary":"s"}`}

	a, generated := testComposer(gen).Compose(context.Background(), analyzer.PageMetrics{}, vitals.Unavailable())
	if !generated {
		t.Fatal("expected generated path")
	}
	if a.Scores.SEO != 100 || a.Scores.Performance != 0 {
		t.Errorf("scores not clamped: %+v", a.Scores)
	}
}

func TestBuildPromptCoversMetrics(t *testing.T) {
	gen := &fakeGenerator{text: validCompletion}
	m := analyzer.PageMetrics{
		URL:         "https://example.com/page",
		Title:       "Welcome",
		ScriptCount: 7,
		TotalLinks:  12,
	}
	score := 88
	cwv := vitals.CoreWebVitals{Source: vitals.SourceMeasured, PerformanceScore: &score}

	testComposer(gen).Compose(context.Background(), m, cwv)

	for _, fragment := range []string{"https://example.com/page", "Welcome", "7 scripts", "12 total", "88/100"} {
		if !strings.Contains(gen.prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
	if !strings.Contains(gen.prompt, "Do not include Core Web Vitals") {
		t.Error("prompt must exclude vitals from the requested schema")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain object", `{"a":1}`, `{"a":1}`, true},
		{"prose around object", `ok: {"a":1} done`, `{"a":1}`, true},
		{"nested braces", `{"a":{"b":2}}`, `{"a":{"b":2}}`, true},
		{"brace inside string", `{"a":"}"}`, `{"a":"}"}`, true},
		{"escaped quote inside string", `{"a":"\"}"}`, `{"a":"\"}"}`, true},
		{"no object", "nothing here", "", false},
		{"unterminated", `{"a":1`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractJSON(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("extractJSON(%q) = %q, %t; want %q, %t", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestNewReport(t *testing.T) {
	m := analyzer.PageMetrics{URL: "https://example.com", Title: "T", Description: "D"}
	a := FallbackScore(m)

	first := New(m, a)
	second := New(m, a)

	if first.ID == "" || first.ID == second.ID {
		t.Error("report IDs must be unique and non-empty")
	}
	if first.URL != m.URL || first.Title != "T" || first.Description != "D" {
		t.Errorf("report fields not copied from metrics: %+v", first)
	}
	if first.CreatedAt.IsZero() {
		t.Error("CreatedAt must be set")
	}
}
