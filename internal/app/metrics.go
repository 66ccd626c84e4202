package app

import (
	"math"
	"sort"
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

// Aggregation conventions:
//   - averages are means of non-nil overallRating values on the canonical
//     0-10 scale, rounded to one decimal; 0 is the empty-set sentinel
//   - classification (severity, quadrant, at-risk) happens on the 0-5
//     scale; toFiveScale is the single conversion point
//   - grouping is insertion-ordered so output never depends on map
//     iteration order

const (
	trendWindow     = 30 * 24 * time.Hour
	atRiskThreshold = 4.0 // 0-5 scale, 30-day average
	highRiskRating  = 3.0 // 0-5 scale, single review
)

func toFiveScale(r float64) float64 { return r / 2 }

func filterDirection(reviews []domain.NormalizedReview, d domain.Direction) []domain.NormalizedReview {
	out := make([]domain.NormalizedReview, 0, len(reviews))
	for _, r := range reviews {
		if r.Direction == d {
			out = append(out, r)
		}
	}
	return out
}

func ratedValues(reviews []domain.NormalizedReview) []float64 {
	vals := make([]float64, 0, len(reviews))
	for _, r := range reviews {
		if r.OverallRating != nil {
			vals = append(vals, *r.OverallRating)
		}
	}
	return vals
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// AverageRating is the mean of non-nil ratings, one decimal, 0 when empty.
func AverageRating(reviews []domain.NormalizedReview) float64 {
	return roundTenth(mean(ratedValues(reviews)))
}

func windowReviews(reviews []domain.NormalizedReview, from, to time.Time) []domain.NormalizedReview {
	out := make([]domain.NormalizedReview, 0, len(reviews))
	for _, r := range reviews {
		if !r.SubmittedAt.Before(from) && r.SubmittedAt.Before(to) {
			out = append(out, r)
		}
	}
	return out
}

// CalculateTrend compares the last 30 days against the 30 days before
// that. An empty window substitutes the all-time average for that side, so
// sparse data does not manufacture spurious trends.
func CalculateTrend(reviews []domain.NormalizedReview, now time.Time) domain.Trend {
	recent := windowReviews(reviews, now.Add(-trendWindow), now)
	previous := windowReviews(reviews, now.Add(-2*trendWindow), now.Add(-trendWindow))
	allTime := AverageRating(reviews)

	recentAvg := allTime
	if len(ratedValues(recent)) > 0 {
		recentAvg = AverageRating(recent)
	}
	previousAvg := allTime
	if len(ratedValues(previous)) > 0 {
		previousAvg = AverageRating(previous)
	}

	delta := roundTenth(recentAvg - previousAvg)
	switch {
	case delta > 0.1:
		return domain.Trend{Direction: domain.TrendUp, Delta: delta}
	case delta < -0.1:
		return domain.Trend{Direction: domain.TrendDown, Delta: delta}
	default:
		return domain.Trend{Direction: domain.TrendStable, Delta: delta}
	}
}

// highRiskRate is the percentage of host-to-guest reviews rating the guest
// below 3.0/5.
func highRiskRate(reviews []domain.NormalizedReview) int {
	if len(reviews) == 0 {
		return 0
	}
	low := 0
	for _, r := range reviews {
		if r.OverallRating != nil && toFiveScale(*r.OverallRating) < highRiskRating {
			low++
		}
	}
	return int(float64(low)/float64(len(reviews))*100 + 0.5)
}

func approvedCount(reviews []domain.NormalizedReview) int {
	n := 0
	for _, r := range reviews {
		if r.ApprovedForWebsite {
			n++
		}
	}
	return n
}

// CalculateBidirectionalMetrics folds one review set into per-direction
// averages, counts and trends.
func CalculateBidirectionalMetrics(reviews []domain.NormalizedReview, now time.Time) domain.BidirectionalMetrics {
	gth := filterDirection(reviews, domain.GuestToHost)
	htg := filterDirection(reviews, domain.HostToGuest)

	return domain.BidirectionalMetrics{
		GuestToHost: domain.DirectionMetrics{
			AverageRating: AverageRating(gth),
			ReviewCount:   len(gth),
			ApprovedCount: approvedCount(gth),
			Trend:         CalculateTrend(gth, now),
		},
		HostToGuest: domain.DirectionMetrics{
			AverageRating: AverageRating(htg),
			ReviewCount:   len(htg),
			HighRiskRate:  highRiskRate(htg),
			Trend:         CalculateTrend(htg, now),
		},
	}
}

// CalculateDistribution buckets reviews into 1-5 stars by ceil(rating/2).
// Results outside [1,5] are clipped; unrated reviews are skipped.
func CalculateDistribution(reviews []domain.NormalizedReview) []domain.DistributionBucket {
	buckets := make([]domain.DistributionBucket, 5)
	for i := range buckets {
		buckets[i].Stars = i + 1
	}
	for _, r := range reviews {
		if r.OverallRating == nil {
			continue
		}
		stars := int(math.Ceil(*r.OverallRating / 2))
		if stars < 1 {
			stars = 1
		}
		if stars > 5 {
			stars = 5
		}
		if r.Direction == domain.GuestToHost {
			buckets[stars-1].GuestToHost++
		} else {
			buckets[stars-1].HostToGuest++
		}
	}
	return buckets
}

// CalculateMonthlySeries buckets per-direction monthly averages for the
// last monthsBack calendar months, oldest first. Empty months stay 0.
func CalculateMonthlySeries(reviews []domain.NormalizedReview, monthsBack int, now time.Time) []domain.MonthlyPoint {
	if monthsBack <= 0 {
		monthsBack = 6
	}
	type bucket struct {
		label string
		gth   []float64
		htg   []float64
	}
	buckets := make([]bucket, monthsBack)
	for i := 0; i < monthsBack; i++ {
		m := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, i-monthsBack+1, 0)
		buckets[i].label = m.Format("Jan 2006")
	}

	for _, r := range reviews {
		if r.OverallRating == nil {
			continue
		}
		t := r.SubmittedAt.UTC()
		diff := (now.Year()-t.Year())*12 + int(now.Month()) - int(t.Month())
		if diff < 0 || diff >= monthsBack {
			continue
		}
		b := &buckets[monthsBack-1-diff]
		if r.Direction == domain.GuestToHost {
			b.gth = append(b.gth, *r.OverallRating)
		} else {
			b.htg = append(b.htg, *r.OverallRating)
		}
	}

	out := make([]domain.MonthlyPoint, monthsBack)
	for i, b := range buckets {
		out[i] = domain.MonthlyPoint{
			Month:       b.label,
			GuestToHost: roundTenth(mean(b.gth)),
			HostToGuest: roundTenth(mean(b.htg)),
		}
	}
	return out
}

// CalculateChannelBreakdown tallies reviews per channel in first-seen
// order.
func CalculateChannelBreakdown(reviews []domain.NormalizedReview) []domain.ChannelStat {
	index := map[string]int{}
	var stats []domain.ChannelStat
	ratings := map[string][]float64{}

	for _, r := range reviews {
		ch := r.Channel
		if ch == "" {
			ch = "unknown"
		}
		i, ok := index[ch]
		if !ok {
			i = len(stats)
			index[ch] = i
			stats = append(stats, domain.ChannelStat{Channel: ch})
		}
		stats[i].Count++
		if r.OverallRating != nil {
			ratings[ch] = append(ratings[ch], *r.OverallRating)
		}
	}
	for i := range stats {
		stats[i].AverageRating = roundTenth(mean(ratings[stats[i].Channel]))
	}
	return stats
}

// CountQuadrants classifies each property's direction averages (0-5 scale)
// through the legacy quadrant rule and tallies the portfolio.
func CountQuadrants(properties []domain.PropertyWithReviews) domain.QuadrantCounts {
	var counts domain.QuadrantCounts
	for _, p := range properties {
		if len(p.Reviews) == 0 {
			continue
		}
		gthAvg := toFiveScale(AverageRating(filterDirection(p.Reviews, domain.GuestToHost)))
		htgAvg := toFiveScale(AverageRating(filterDirection(p.Reviews, domain.HostToGuest)))
		switch CalculatePropertyHealth(gthAvg, htgAvg).Quadrant {
		case domain.QuadrantWellManaged:
			counts.WellManaged++
		case domain.QuadrantScreeningIssue:
			counts.ScreeningIssue++
		case domain.QuadrantPropertyIssue:
			counts.PropertyIssue++
		case domain.QuadrantSystemicFailure:
			counts.SystemicFailure++
		default:
			counts.NeedsImprovement++
		}
	}
	return counts
}

// propertyAtRisk reports whether either direction's 30-day average falls
// below 4.0/5. Directions with no rated reviews in the window do not count.
func propertyAtRisk(p domain.PropertyWithReviews, now time.Time) bool {
	recent := windowReviews(p.Reviews, now.Add(-trendWindow), now)
	for _, d := range []domain.Direction{domain.GuestToHost, domain.HostToGuest} {
		rs := ratedValues(filterDirection(recent, d))
		if len(rs) > 0 && toFiveScale(mean(rs)) < atRiskThreshold {
			return true
		}
	}
	return false
}

// CountAtRisk counts properties with a recent low average in either
// direction.
func CountAtRisk(properties []domain.PropertyWithReviews, now time.Time) int {
	n := 0
	for _, p := range properties {
		if propertyAtRisk(p, now) {
			n++
		}
	}
	return n
}

func citySlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.Join(strings.Fields(name), " ")), " ", "-")
}

// CalculateCityMetrics rolls the portfolio up per city. Grouping is
// insertion-ordered and the result is sorted by property count descending
// (name ascending on ties) so output is deterministic. A single at-risk
// property forces the city's worst-case color to red regardless of the
// city averages: worst-case-wins applied one level up.
func CalculateCityMetrics(properties []domain.PropertyWithReviews, now time.Time) []domain.CityMetrics {
	type group struct {
		name  string
		props []domain.PropertyWithReviews
	}
	index := map[string]int{}
	var groups []group
	for _, p := range properties {
		city := p.City
		if city == "" {
			city = "Unknown"
		}
		i, ok := index[city]
		if !ok {
			i = len(groups)
			index[city] = i
			groups = append(groups, group{name: city})
		}
		groups[i].props = append(groups[i].props, p)
	}

	out := make([]domain.CityMetrics, 0, len(groups))
	for _, g := range groups {
		var all []domain.NormalizedReview
		for _, p := range g.props {
			all = append(all, p.Reviews...)
		}
		gth := filterDirection(all, domain.GuestToHost)
		htg := filterDirection(all, domain.HostToGuest)

		gthAvg := AverageRating(gth)
		htgAvg := AverageRating(htg)

		approvalRate := 0.0
		if len(gth) > 0 {
			approvalRate = roundTenth(float64(approvedCount(gth)) / float64(len(gth)) * 100)
		}

		atRisk := CountAtRisk(g.props, now)
		health := CalculatePropertyHealth(toFiveScale(gthAvg), toFiveScale(htgAvg))

		worstColor := health.WorstCase.Color
		if atRisk > 0 {
			worstColor = domain.ColorRed
		}

		out = append(out, domain.CityMetrics{
			CityName:              g.name,
			CitySlug:              citySlug(g.name),
			PropertyCount:         len(g.props),
			TotalReviews:          len(all),
			AverageRating:         AverageRating(all),
			ApprovalRate:          approvalRate,
			HealthStatus:          health.Quadrant,
			GuestToHostAvg:        gthAvg,
			HostToGuestAvg:        htgAvg,
			WorstCaseColor:        worstColor,
			PropertySeverityLabel: health.PropertySeverity.Label,
			GuestSeverityLabel:    health.GuestSeverity.Label,
			PropertiesAtRisk:      atRisk,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PropertyCount != out[j].PropertyCount {
			return out[i].PropertyCount > out[j].PropertyCount
		}
		return out[i].CityName < out[j].CityName
	})
	return out
}

// CalculatePortfolioKPIs folds the whole portfolio into headline numbers.
func CalculatePortfolioKPIs(properties []domain.PropertyWithReviews, now time.Time) domain.PortfolioKPIs {
	var all []domain.NormalizedReview
	for _, p := range properties {
		all = append(all, p.Reviews...)
	}
	gth := filterDirection(all, domain.GuestToHost)
	htg := filterDirection(all, domain.HostToGuest)

	return domain.PortfolioKPIs{
		TotalProperties:  len(properties),
		TotalReviews:     len(all),
		AverageRating:    AverageRating(all),
		GuestToHostAvg:   AverageRating(gth),
		HostToGuestAvg:   AverageRating(htg),
		ApprovedCount:    approvedCount(gth),
		PropertiesAtRisk: CountAtRisk(properties, now),
		GuestToHostCount: len(gth),
		HostToGuestCount: len(htg),
	}
}

// BuildDashboard assembles the full dashboard payload from one portfolio
// read.
func BuildDashboard(properties []domain.PropertyWithReviews, now time.Time) domain.DashboardView {
	var all []domain.NormalizedReview
	for _, p := range properties {
		all = append(all, p.Reviews...)
	}
	return domain.DashboardView{
		KPIs:          CalculatePortfolioKPIs(properties, now),
		Bidirectional: CalculateBidirectionalMetrics(all, now),
		Quadrants:     CountQuadrants(properties),
		Distribution:  CalculateDistribution(all),
		Monthly:       CalculateMonthlySeries(all, 6, now),
		Channels:      CalculateChannelBreakdown(all),
		Correlation:   CalculatePropertyCorrelation(properties),
	}
}
