package app

import (
	"fmt"
	"math"
	"strconv"

	"flex_reviews/internal/domain"
)

// Correlation computes the Pearson product-moment coefficient over two
// paired series. Degenerate input (length mismatch, empty series, zero
// variance) yields 0 rather than NaN: "no correlation" is the sentinel.
func Correlation(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) == 0 {
		return 0
	}

	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var num, sqX, sqY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		num += dx * dy
		sqX += dx * dx
		sqY += dy * dy
	}

	denom := math.Sqrt(sqX * sqY)
	if denom == 0 {
		return 0
	}
	return num / denom
}

// CorrelationInsight renders a short interpretation for tooltips.
func CorrelationInsight(score, propertyAvg, guestAvg float64) string {
	if score < -0.3 {
		if propertyAvg < 4.0 && guestAvg >= 4.5 {
			return "Low property ratings + high guest ratings = Property has issues that need fixing"
		}
		return "Negative correlation detected: Investigate divergent trends"
	}
	if score > 0.6 {
		return "Strong positive correlation: Property and guest quality move together"
	}
	return "Moderate correlation: Property and guest quality are somewhat independent"
}

// CalculatePropertyCorrelation pairs each property's direction averages
// (0-5 scale) and correlates them across the portfolio. Properties missing
// rated reviews in either direction contribute no sample.
func CalculatePropertyCorrelation(properties []domain.PropertyWithReviews) domain.CorrelationStat {
	var xs, ys []float64
	for _, p := range properties {
		gth := ratedValues(filterDirection(p.Reviews, domain.GuestToHost))
		htg := ratedValues(filterDirection(p.Reviews, domain.HostToGuest))
		if len(gth) == 0 || len(htg) == 0 {
			continue
		}
		xs = append(xs, toFiveScale(mean(gth)))
		ys = append(ys, toFiveScale(mean(htg)))
	}
	score := Correlation(xs, ys)
	return domain.CorrelationStat{
		Score:      score,
		SampleSize: len(xs),
		Insight:    CorrelationInsight(score, mean(xs), mean(ys)),
	}
}

// GuestRiskScore derives a bounded 0-100 risk score from a guest's history.
// Baseline 50, additive independent adjustments, clamped. Deterministic and
// auditable: same history, same assessment, always. AverageRating is on the
// 0-5 scale.
func GuestRiskScore(h domain.GuestHistory) domain.GuestRiskAssessment {
	flags := []string{}
	score := 50

	switch {
	case h.AverageRating >= 4.5:
		score -= 30
	case h.AverageRating >= 4.0:
		score -= 15
	case h.AverageRating >= 3.5:
		score += 10
		flags = append(flags, "Below average rating history")
	default:
		score += 30
		flags = append(flags, "Poor rating history (<3.5)")
	}

	switch {
	case h.IncidentCount > 2:
		score += 30
		flags = append(flags, fmt.Sprintf("%d previous incidents", h.IncidentCount))
	case h.IncidentCount > 0:
		score += 15
		flags = append(flags, fmt.Sprintf("%d previous incident(s)", h.IncidentCount))
	}

	if h.DamageCount > 0 {
		score += 20
		flags = append(flags, fmt.Sprintf("%d damage report(s), £%s total",
			h.DamageCount, strconv.FormatFloat(h.TotalDamageCost, 'f', -1, 64)))
	}

	// Experience bonus stacks with the rating adjustment.
	if h.TotalStays > 10 && h.AverageRating >= 4.0 {
		score -= 10
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	var level domain.RiskLevel
	var recommendation string
	switch {
	case score < 30:
		level, recommendation = domain.RiskLow, "Accept"
	case score < 60:
		level, recommendation = domain.RiskMedium, "Review carefully"
	default:
		level, recommendation = domain.RiskHigh, "Decline"
	}

	return domain.GuestRiskAssessment{
		Score:          score,
		Level:          level,
		Flags:          flags,
		Recommendation: recommendation,
	}
}
