package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageinsight/backend/analyzer"
	"github.com/pageinsight/backend/vitals"
)

// Severity levels for findings.
const (
	SeverityPositive = "positive"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Priority levels for recommendations.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Scores carries the four category scores, each in [0,100].
type Scores struct {
	SEO           int `json:"seo"`
	Performance   int `json:"performance"`
	Accessibility int `json:"accessibility"`
	BestPractices int `json:"bestPractices"`
}

// Finding is one observed issue or strength.
type Finding struct {
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Recommendation is one suggested improvement.
type Recommendation struct {
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// Analysis is the scored report body, either generated or computed by
// the fallback scorer. Vitals are always attached by the composer.
type Analysis struct {
	Scores          Scores               `json:"scores"`
	Findings        []Finding            `json:"findings"`
	Recommendations []Recommendation     `json:"recommendations"`
	Summary         string               `json:"summary"`
	Vitals          vitals.CoreWebVitals `json:"coreWebVitals"`
}

// Report is the persisted unit of history. Immutable once created.
type Report struct {
	ID          string               `json:"id"`
	URL         string               `json:"url"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Analysis    Analysis             `json:"analysis"`
	Metrics     analyzer.PageMetrics `json:"metrics"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// New assembles a Report from extraction output and its analysis.
func New(m analyzer.PageMetrics, a Analysis) Report {
	return Report{
		ID:          uuid.NewString(),
		URL:         m.URL,
		Title:       m.Title,
		Description: m.Description,
		Analysis:    a,
		Metrics:     m,
		CreatedAt:   time.Now().UTC(),
	}
}
