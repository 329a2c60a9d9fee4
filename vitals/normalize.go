package vitals

import (
	"fmt"
	"math"
)

// Degraded-mode messages. They must stay distinguishable so callers can
// tell a missing credential from a failed measurement.
const (
	msgNoCredential      = "PageSpeed API key not configured"
	msgMeasurementFailed = "PageSpeed measurement failed"
)

// pagespeedResponse mirrors the slice of the PageSpeed Insights v5
// payload this service reads.
type pagespeedResponse struct {
	LighthouseResult struct {
		Categories struct {
			Performance struct {
				Score *float64 `json:"score"`
			} `json:"performance"`
		} `json:"categories"`
		Audits map[string]audit `json:"audits"`
	} `json:"lighthouseResult"`
	LoadingExperience struct {
		Metrics map[string]fieldMetric `json:"metrics"`
	} `json:"loadingExperience"`
}

type audit struct {
	Score        *float64 `json:"score"`
	DisplayValue string   `json:"displayValue"`
	NumericValue *float64 `json:"numericValue"`
}

// fieldMetric is a real-user (CrUX) percentile with its bucket.
type fieldMetric struct {
	Percentile float64 `json:"percentile"`
	Category   string  `json:"category"`
}

// unavailable builds the fully degraded shape with one shared message.
func unavailable(message string) CoreWebVitals {
	metric := func() *Metric {
		return &Metric{Status: StatusUnavailable, DisplayValue: message}
	}
	return CoreWebVitals{
		LCP:    metric(),
		FID:    metric(),
		CLS:    metric(),
		FCP:    metric(),
		TTFB:   metric(),
		Source: SourceUnavailable,
	}
}

// Unavailable reports the degraded mode used when no credential exists.
func Unavailable() CoreWebVitals {
	return unavailable(msgNoCredential)
}

// Failed reports the degraded mode used when the measurement call broke.
func Failed() CoreWebVitals {
	return unavailable(msgMeasurementFailed)
}

// normalize maps a successful PageSpeed response to CoreWebVitals,
// preferring field (real-user) data over lab audits per metric.
func normalize(resp *pagespeedResponse) CoreWebVitals {
	field := resp.LoadingExperience.Metrics
	audits := resp.LighthouseResult.Audits

	cwv := CoreWebVitals{
		LCP:    pickMetric(field, "LARGEST_CONTENTFUL_PAINT_MS", audits, "largest-contentful-paint", formatMillis),
		FID:    pickMetric(field, "FIRST_INPUT_DELAY_MS", audits, "max-potential-fid", formatMillis),
		CLS:    pickMetric(field, "CUMULATIVE_LAYOUT_SHIFT_SCORE", audits, "cumulative-layout-shift", formatShift),
		FCP:    pickMetric(field, "FIRST_CONTENTFUL_PAINT_MS", audits, "first-contentful-paint", formatMillis),
		TTFB:   pickMetric(field, "EXPERIMENTAL_TIME_TO_FIRST_BYTE", audits, "server-response-time", formatMillis),
		Source: SourceMeasured,
	}

	if score := resp.LighthouseResult.Categories.Performance.Score; score != nil {
		rounded := int(math.Round(*score * 100))
		cwv.PerformanceScore = &rounded
	}
	if si, ok := audits["speed-index"]; ok {
		cwv.SpeedIndex = si.DisplayValue
	}

	return cwv
}

func pickMetric(field map[string]fieldMetric, fieldKey string, audits map[string]audit, auditKey string, format func(float64) string) *Metric {
	if fm, ok := field[fieldKey]; ok {
		return &Metric{
			Status:       statusFromCategory(fm.Category),
			DisplayValue: format(fieldValue(fieldKey, fm.Percentile)),
		}
	}

	la, ok := audits[auditKey]
	if !ok || la.Score == nil {
		return &Metric{Status: StatusUnavailable, DisplayValue: "unavailable"}
	}

	display := la.DisplayValue
	if display == "" && la.NumericValue != nil {
		display = format(*la.NumericValue)
	}
	return &Metric{
		Status:       statusFromScore(la.Score),
		DisplayValue: display,
		RawScore:     la.Score,
	}
}

// statusFromScore buckets a Lighthouse 0-1 quality score.
func statusFromScore(score *float64) Status {
	switch {
	case score == nil:
		return StatusUnavailable
	case *score >= 0.9:
		return StatusGood
	case *score >= 0.5:
		return StatusNeedsImprovement
	default:
		return StatusPoor
	}
}

// statusFromCategory buckets a CrUX field-data category.
func statusFromCategory(category string) Status {
	switch category {
	case "FAST":
		return StatusGood
	case "AVERAGE":
		return StatusNeedsImprovement
	case "SLOW":
		return StatusPoor
	default:
		return StatusUnavailable
	}
}

// fieldValue converts a CrUX percentile to the metric's native unit.
// CLS percentiles arrive multiplied by 100.
func fieldValue(fieldKey string, percentile float64) float64 {
	if fieldKey == "CUMULATIVE_LAYOUT_SHIFT_SCORE" {
		return percentile / 100
	}
	return percentile
}

func formatMillis(v float64) string {
	return fmt.Sprintf("%dms", int(math.Round(v)))
}

func formatShift(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
