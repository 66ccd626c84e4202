package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flex_reviews/internal/domain"
)

const (
	dashboardCacheKey = "dashboard"
	citiesCacheKey    = "cities"
	defaultReviewSort = "-submitted_at"
)

func reviewsCacheKey(propertyID int64, limit int, sort string) string {
	return fmt.Sprintf("reviews:%d:%d:%s", propertyID, limit, sort)
}

// DashboardService serves the read side with read-through caching. All
// derived numbers are recomputed from the stored reviews on every cache
// miss; nothing derived is ever persisted.
type DashboardService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time
}

func NewDashboardService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{repo: r, cache: c, cacheTTL: ttl, now: time.Now}
}

func (s *DashboardService) Dashboard(ctx context.Context) (domain.DashboardView, error) {
	var view domain.DashboardView
	if ok, _ := s.cache.Get(ctx, dashboardCacheKey, &view); ok {
		return view, nil
	}
	props, err := s.repo.ListPropertiesWithReviews(ctx)
	if err != nil {
		return domain.DashboardView{}, err
	}
	view = BuildDashboard(props, s.now().UTC())
	_ = s.cache.Set(ctx, dashboardCacheKey, view, int(s.cacheTTL.Seconds()))
	return view, nil
}

func (s *DashboardService) Cities(ctx context.Context) ([]domain.CityMetrics, error) {
	var out []domain.CityMetrics
	if ok, _ := s.cache.Get(ctx, citiesCacheKey, &out); ok {
		return out, nil
	}
	props, err := s.repo.ListPropertiesWithReviews(ctx)
	if err != nil {
		return nil, err
	}
	out = CalculateCityMetrics(props, s.now().UTC())
	_ = s.cache.Set(ctx, citiesCacheKey, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

func (s *DashboardService) PropertyReviews(ctx context.Context, slug string, pg domain.PageQuery) (domain.ReviewsPage, error) {
	prop, err := s.repo.GetPropertyBySlug(ctx, slug)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	key := reviewsCacheKey(prop.ID, pg.Limit, pg.Sort)
	var page domain.ReviewsPage
	if ok, _ := s.cache.Get(ctx, key, &page); ok {
		return page, nil
	}

	page, err = s.repo.ListReviews(ctx, prop.ID, pg)
	if err != nil {
		return domain.ReviewsPage{}, err
	}

	// Cache a private copy so callers mutating the returned page cannot
	// poison the cached value.
	cp := deepCopyReviewsPage(page)
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return page, nil
}

// GuestRisk folds a guest's stored history through the risk scoring rule.
func (s *DashboardService) GuestRisk(ctx context.Context, guestPlatformID string) (domain.GuestRiskAssessment, error) {
	hist, err := s.repo.GuestHistory(ctx, guestPlatformID)
	if err != nil {
		return domain.GuestRiskAssessment{}, err
	}
	return GuestRiskScore(hist), nil
}

func deepCopyReviewsPage(in domain.ReviewsPage) domain.ReviewsPage {
	out := domain.ReviewsPage{NextCursor: in.NextCursor}
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.NormalizedReview, n)
		copy(out.Items, in.Items)
	}
	return out
}
