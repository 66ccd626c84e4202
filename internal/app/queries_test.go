package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	props []domain.PropertyWithReviews
	page  domain.ReviewsPage
	hist  domain.GuestHistory

	listCalls     int
	upsertedProps []domain.Property
	upserted      map[int64][]domain.NormalizedReview
	incidents     []domain.IncidentRecord
	approvals     map[string]bool
}

func (f *fakeRepo) UpsertProperty(ctx context.Context, p domain.Property) (int64, error) {
	f.upsertedProps = append(f.upsertedProps, p)
	return int64(len(f.upsertedProps)), nil
}
func (f *fakeRepo) UpsertReviews(ctx context.Context, propertyID int64, rs []domain.NormalizedReview) error {
	if f.upserted == nil {
		f.upserted = map[int64][]domain.NormalizedReview{}
	}
	f.upserted[propertyID] = append(f.upserted[propertyID], rs...)
	return nil
}
func (f *fakeRepo) UpsertIncidents(ctx context.Context, incs []domain.IncidentRecord) error {
	f.incidents = append(f.incidents, incs...)
	return nil
}
func (f *fakeRepo) SetApproval(ctx context.Context, reviewID string, approved bool) error {
	if f.approvals == nil {
		f.approvals = map[string]bool{}
	}
	f.approvals[reviewID] = approved
	return nil
}
func (f *fakeRepo) SetApprovalBulk(ctx context.Context, reviewIDs []string, approved bool) error {
	for _, id := range reviewIDs {
		if err := f.SetApproval(ctx, id, approved); err != nil {
			return err
		}
	}
	return nil
}
func (f *fakeRepo) GetPropertyBySlug(ctx context.Context, slug string) (domain.Property, error) {
	for _, p := range f.props {
		if p.Slug == slug {
			return p.Property, nil
		}
	}
	return domain.Property{}, domain.ErrNotFound
}
func (f *fakeRepo) ListPropertiesWithReviews(ctx context.Context) ([]domain.PropertyWithReviews, error) {
	f.listCalls++
	return f.props, nil
}
func (f *fakeRepo) ListReviews(ctx context.Context, propertyID int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	return f.page, nil
}
func (f *fakeRepo) GuestHistory(ctx context.Context, guestPlatformID string) (domain.GuestHistory, error) {
	if guestPlatformID == "unknown" {
		return domain.GuestHistory{}, domain.ErrNotFound
	}
	return f.hist, nil
}

type fakeCache struct {
	store   map[string]any
	deleted []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *domain.DashboardView:
		*d = v.(domain.DashboardView)
	case *[]domain.CityMetrics:
		*d = v.([]domain.CityMetrics)
	case *domain.ReviewsPage:
		*d = v.(domain.ReviewsPage)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	delete(c.store, key)
	return nil
}

func portfolio() []domain.PropertyWithReviews {
	return []domain.PropertyWithReviews{
		{
			Property: domain.Property{ID: 1, Name: "Loft A", Slug: "loft-a", City: "London"},
			Reviews: []domain.NormalizedReview{
				review("1", domain.GuestToHost, 9.6, testNow.Add(-24*time.Hour)),
				review("2", domain.HostToGuest, 9.0, testNow.Add(-24*time.Hour)),
			},
		},
	}
}

// ---- tests ----

func TestDashboard_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{props: portfolio()}
	cache := &fakeCache{}
	q := app.NewDashboardService(repo, cache, 10*time.Minute)

	view, err := q.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if view.KPIs.TotalProperties != 1 || view.KPIs.TotalReviews != 2 {
		t.Fatalf("unexpected view: %+v", view.KPIs)
	}
	if repo.listCalls != 1 {
		t.Fatalf("listCalls = %d, want 1", repo.listCalls)
	}

	// Hit: the repo is not consulted again.
	if _, err := q.Dashboard(context.Background()); err != nil {
		t.Fatalf("err: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("cache hit still queried the repo (%d calls)", repo.listCalls)
	}
}

func TestCities_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{props: portfolio()}
	cache := &fakeCache{}
	q := app.NewDashboardService(repo, cache, 10*time.Minute)

	cities, err := q.Cities(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(cities) != 1 || cities[0].CityName != "London" {
		t.Fatalf("unexpected cities: %+v", cities)
	}
	if _, err := q.Cities(context.Background()); err != nil {
		t.Fatalf("err: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("cache hit still queried the repo (%d calls)", repo.listCalls)
	}
}

func TestPropertyReviews(t *testing.T) {
	repo := &fakeRepo{
		props: portfolio(),
		page: domain.ReviewsPage{Items: []domain.NormalizedReview{
			review("1", domain.GuestToHost, 9.6, testNow),
		}},
	}
	cache := &fakeCache{}
	q := app.NewDashboardService(repo, cache, 10*time.Minute)

	page, err := q.PropertyReviews(context.Background(), "loft-a", domain.PageQuery{Limit: 50, Sort: "-submitted_at"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}

	// Mutating the returned page must not poison the cached copy.
	page.Items[0].GuestName = "mutated"
	again, err := q.PropertyReviews(context.Background(), "loft-a", domain.PageQuery{Limit: 50, Sort: "-submitted_at"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if again.Items[0].GuestName == "mutated" {
		t.Fatal("caller mutation leaked into the cache")
	}

	if _, err := q.PropertyReviews(context.Background(), "no-such-slug", domain.PageQuery{Limit: 50}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestGuestRisk(t *testing.T) {
	repo := &fakeRepo{hist: domain.GuestHistory{AverageRating: 4.8, TotalStays: 5}}
	q := app.NewDashboardService(repo, &fakeCache{}, time.Minute)

	a, err := q.GuestRisk(context.Background(), "airbnb-guest-1")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if a.Level != domain.RiskLow || a.Score != 20 {
		t.Fatalf("unexpected assessment: %+v", a)
	}

	if _, err := q.GuestRisk(context.Background(), "unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
