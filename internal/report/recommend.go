package report

import "fmt"

// Recommendations evaluates three first-match ladders (mean latency, p95
// latency, success rate) and appends two affirmations when the mean is
// under 100ms and the success rate is above 99%.
func Recommendations(avgMs, p95Ms, successRate float64) []string {
	recs := make([]string, 0, 5)

	switch {
	case avgMs < 50:
		recs = append(recs, fmt.Sprintf("Excellent average response time (%.1fms) - well within target", avgMs))
	case avgMs < 100:
		recs = append(recs, fmt.Sprintf("Good average response time (%.1fms) - room for minor optimisation", avgMs))
	case avgMs < 200:
		recs = append(recs, fmt.Sprintf("Fair average response time (%.1fms) - consider caching or query optimisation", avgMs))
	default:
		recs = append(recs, fmt.Sprintf("Average response time (%.1fms) needs improvement - profile the slowest endpoints", avgMs))
	}

	switch {
	case p95Ms < 100:
		recs = append(recs, "Consistent performance: 95% of requests complete in under 100ms")
	case p95Ms < 200:
		recs = append(recs, fmt.Sprintf("Acceptable tail latency: p95 is %.1fms", p95Ms))
	default:
		recs = append(recs, fmt.Sprintf("High tail latency: p95 is %.1fms - investigate slow outliers", p95Ms))
	}

	switch {
	case successRate >= 99.9:
		recs = append(recs, fmt.Sprintf("Outstanding reliability: %.2f%% success rate", successRate))
	case successRate >= 99:
		recs = append(recs, fmt.Sprintf("Excellent reliability: %.2f%% success rate", successRate))
	case successRate >= 95:
		recs = append(recs, fmt.Sprintf("Good reliability: %.2f%% success rate - review failing endpoints", successRate))
	default:
		recs = append(recs, fmt.Sprintf("Investigate errors: success rate is only %.2f%%", successRate))
	}

	if avgMs < 100 && successRate > 99 {
		recs = append(recs,
			"System is performing well under the tested load",
			"Current configuration is suitable for production traffic at this level",
		)
	}

	return recs
}
