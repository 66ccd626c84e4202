package app_test

import (
	"math"
	"strings"
	"testing"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

func TestCorrelation(t *testing.T) {
	// Perfect positive and negative correlation.
	if got := app.Correlation([]float64{1, 2, 3}, []float64{2, 4, 6}); math.Abs(got-1) > 1e-9 {
		t.Fatalf("perfect positive: got %v", got)
	}
	if got := app.Correlation([]float64{1, 2, 3}, []float64{6, 4, 2}); math.Abs(got+1) > 1e-9 {
		t.Fatalf("perfect negative: got %v", got)
	}

	// Degenerate inputs yield 0, never NaN.
	for name, in := range map[string][2][]float64{
		"empty":         {{}, {}},
		"mismatch":      {{1, 2}, {1}},
		"zero variance": {{3, 3, 3}, {1, 2, 3}},
	} {
		if got := app.Correlation(in[0], in[1]); got != 0 {
			t.Errorf("%s: got %v, want 0", name, got)
		}
	}
}

func TestCorrelationInsight(t *testing.T) {
	if got := app.CorrelationInsight(-0.5, 3.8, 4.7); !strings.Contains(got, "Property has issues") {
		t.Fatalf("unexpected insight: %q", got)
	}
	if got := app.CorrelationInsight(-0.5, 4.5, 4.5); !strings.Contains(got, "Negative correlation") {
		t.Fatalf("unexpected insight: %q", got)
	}
	if got := app.CorrelationInsight(0.8, 4.5, 4.5); !strings.Contains(got, "Strong positive") {
		t.Fatalf("unexpected insight: %q", got)
	}
	if got := app.CorrelationInsight(0.2, 4.5, 4.5); !strings.Contains(got, "Moderate") {
		t.Fatalf("unexpected insight: %q", got)
	}
}

func TestCalculatePropertyCorrelation(t *testing.T) {
	mkProp := func(name string, gth, htg float64) domain.PropertyWithReviews {
		return domain.PropertyWithReviews{
			Property: domain.Property{Name: name},
			Reviews: []domain.NormalizedReview{
				review(name+"-g", domain.GuestToHost, gth, testNow),
				review(name+"-h", domain.HostToGuest, htg, testNow),
			},
		}
	}
	// Direction averages move together: strong positive correlation.
	props := []domain.PropertyWithReviews{
		mkProp("a", 9.8, 9.6),
		mkProp("b", 8.6, 8.4),
		mkProp("c", 7.0, 6.8),
		// No host-to-guest side: contributes no sample.
		{
			Property: domain.Property{Name: "d"},
			Reviews:  []domain.NormalizedReview{review("d-g", domain.GuestToHost, 9, testNow)},
		},
	}
	stat := app.CalculatePropertyCorrelation(props)
	if stat.SampleSize != 3 {
		t.Fatalf("SampleSize = %d, want 3", stat.SampleSize)
	}
	if stat.Score <= 0.6 {
		t.Fatalf("Score = %v, want strong positive", stat.Score)
	}
	if !strings.Contains(stat.Insight, "Strong positive") {
		t.Fatalf("Insight = %q", stat.Insight)
	}

	// Fewer than two samples is degenerate: zero, not NaN.
	stat = app.CalculatePropertyCorrelation(props[:1])
	if stat.Score != 0 || stat.SampleSize != 1 {
		t.Fatalf("degenerate stat = %+v", stat)
	}
}

func TestGuestRiskScore_Levels(t *testing.T) {
	// Spotless record: 50 - 30 = 20, low.
	a := app.GuestRiskScore(domain.GuestHistory{AverageRating: 4.8, TotalStays: 5})
	if a.Score != 20 || a.Level != domain.RiskLow || a.Recommendation != "Accept" {
		t.Fatalf("spotless: %+v", a)
	}
	if len(a.Flags) != 0 {
		t.Fatalf("spotless guest should carry no flags: %v", a.Flags)
	}

	// Middling record: 50 - 15 = 35, medium.
	a = app.GuestRiskScore(domain.GuestHistory{AverageRating: 4.2, TotalStays: 3})
	if a.Score != 35 || a.Level != domain.RiskMedium || a.Recommendation != "Review carefully" {
		t.Fatalf("middling: %+v", a)
	}

	// Poor rating plus damage: 50 + 30 + 15 + 20 = 100 capped, high.
	a = app.GuestRiskScore(domain.GuestHistory{
		AverageRating:   2.5,
		TotalStays:      4,
		IncidentCount:   1,
		DamageCount:     1,
		TotalDamageCost: 350,
	})
	if a.Score != 100 || a.Level != domain.RiskHigh || a.Recommendation != "Decline" {
		t.Fatalf("risky: %+v", a)
	}
	joined := strings.Join(a.Flags, "|")
	if !strings.Contains(joined, "Poor rating history (<3.5)") {
		t.Fatalf("missing rating flag: %v", a.Flags)
	}
	if !strings.Contains(joined, "1 previous incident(s)") {
		t.Fatalf("missing incident flag: %v", a.Flags)
	}
	if !strings.Contains(joined, "£350 total") {
		t.Fatalf("missing damage flag: %v", a.Flags)
	}
}

func TestGuestRiskScore_Adjustments(t *testing.T) {
	// Experience bonus stacks: 50 - 30 - 10 = 10.
	a := app.GuestRiskScore(domain.GuestHistory{AverageRating: 4.7, TotalStays: 12})
	if a.Score != 10 {
		t.Fatalf("experienced guest score = %d, want 10", a.Score)
	}
	// No bonus below the rating bar, however many stays.
	a = app.GuestRiskScore(domain.GuestHistory{AverageRating: 3.6, TotalStays: 20})
	if a.Score != 60 {
		t.Fatalf("score = %d, want 60", a.Score)
	}

	// More than two incidents escalates: 50 - 30 + 30 = 50.
	a = app.GuestRiskScore(domain.GuestHistory{AverageRating: 4.8, IncidentCount: 3, TotalStays: 5})
	if a.Score != 50 {
		t.Fatalf("score = %d, want 50", a.Score)
	}
	if !strings.Contains(strings.Join(a.Flags, "|"), "3 previous incidents") {
		t.Fatalf("missing escalated incident flag: %v", a.Flags)
	}
}

func TestGuestRiskScore_Deterministic(t *testing.T) {
	h := domain.GuestHistory{AverageRating: 3.2, TotalStays: 2, IncidentCount: 1, DamageCount: 1, TotalDamageCost: 80.5}
	first := app.GuestRiskScore(h)
	for i := 0; i < 5; i++ {
		again := app.GuestRiskScore(h)
		if again.Score != first.Score || again.Level != first.Level || len(again.Flags) != len(first.Flags) {
			t.Fatalf("assessment drifted: %+v vs %+v", first, again)
		}
	}
}
