package vitals

// Status buckets a metric's quality.
type Status string

const (
	StatusGood             Status = "good"
	StatusNeedsImprovement Status = "needs-improvement"
	StatusPoor             Status = "poor"
	StatusUnavailable      Status = "unavailable"
)

// Source tags where the vitals came from. Only real measurement and
// absence are reachable; no estimated provenance exists.
type Source string

const (
	SourceMeasured    Source = "measured"
	SourceUnavailable Source = "unavailable"
)

// Metric is one normalized Core Web Vital.
type Metric struct {
	Status       Status   `json:"status"`
	DisplayValue string   `json:"displayValue"`
	RawScore     *float64 `json:"rawScore,omitempty"`
}

// CoreWebVitals is the uniform shape every measurement outcome maps to.
// Invariant: Source == SourceUnavailable implies every metric status is
// StatusUnavailable.
type CoreWebVitals struct {
	LCP  *Metric `json:"lcp,omitempty"`
	FID  *Metric `json:"fid,omitempty"`
	CLS  *Metric `json:"cls,omitempty"`
	FCP  *Metric `json:"fcp,omitempty"`
	TTFB *Metric `json:"ttfb,omitempty"`

	PerformanceScore *int   `json:"performanceScore,omitempty"`
	SpeedIndex       string `json:"speedIndex,omitempty"`

	Source Source `json:"source"`
}
