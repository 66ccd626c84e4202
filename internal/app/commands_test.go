package app_test

import (
	"context"
	"errors"
	"testing"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

type fakeHostaway struct {
	resp domain.HostawayResponse
	err  error
}

func (f *fakeHostaway) FetchReviews(ctx context.Context) (domain.HostawayResponse, error) {
	return f.resp, f.err
}

type fakePlaces struct {
	det domain.PlaceDetails
	err error
}

func (f *fakePlaces) PlaceDetails(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	return f.det, f.err
}

func hostawayPayload() domain.HostawayResponse {
	return domain.HostawayResponse{
		Status: "success",
		Result: []domain.RawHostawayReview{
			{ID: 1, Type: domain.GuestToHost, Rating: pf(9), SubmittedAt: "2024-01-01 10:00:00", ListingName: "Loft A", GuestName: "Ana"},
			{ID: 2, Type: domain.GuestToHost, Rating: pf(8), SubmittedAt: "2024-01-02 10:00:00", ListingName: "Loft B", GuestName: "Bob"},
			{ID: 3, Type: domain.HostToGuest, Rating: pf(10), SubmittedAt: "2024-01-03 10:00:00", ListingName: "Loft A", GuestName: "Cae"},
		},
		Incidents: []domain.IncidentRecord{
			{GuestPlatformID: "g-1", PropertyName: "Loft A", Date: "2024-01-04", Type: "damage", Cost: 50},
		},
	}
}

func TestIngestHostaway_GroupsPerListing(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{}
	ing := app.NewIngestionService(&fakeHostaway{resp: hostawayPayload()}, nil, repo, cache)

	n, err := ing.IngestHostaway(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if n != 3 {
		t.Fatalf("written = %d, want 3", n)
	}

	// First-seen listing order: Loft A before Loft B.
	if len(repo.upsertedProps) != 2 {
		t.Fatalf("want 2 property upserts, got %d", len(repo.upsertedProps))
	}
	if repo.upsertedProps[0].Name != "Loft A" || repo.upsertedProps[1].Name != "Loft B" {
		t.Fatalf("order = %q, %q", repo.upsertedProps[0].Name, repo.upsertedProps[1].Name)
	}
	// Loft A got reviews 1 and 3, Loft B got review 2.
	if got := repo.upserted[1]; len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("loft A batch: %+v", got)
	}
	if got := repo.upserted[2]; len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("loft B batch: %+v", got)
	}
	if len(repo.incidents) != 1 || repo.incidents[0].GuestPlatformID != "g-1" {
		t.Fatalf("incidents: %+v", repo.incidents)
	}

	// The rollup caches were dropped.
	del := map[string]bool{}
	for _, k := range cache.deleted {
		del[k] = true
	}
	if !del["dashboard"] || !del["cities"] {
		t.Fatalf("dashboard caches not invalidated: %v", cache.deleted)
	}
}

func TestFetchNormalizedHostaway_Sources(t *testing.T) {
	// Live data wins.
	ing := app.NewIngestionService(&fakeHostaway{resp: hostawayPayload()}, nil, &fakeRepo{}, nil)
	rs, source, err := ing.FetchNormalizedHostaway(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if source != "hostaway-api-live" || len(rs) != 3 {
		t.Fatalf("source = %q, %d reviews", source, len(rs))
	}

	// Empty live response falls back to the snapshot.
	ing = app.NewIngestionService(&fakeHostaway{resp: domain.HostawayResponse{Status: "success"}}, nil, &fakeRepo{}, nil)
	ing.SetSnapshot(hostawayPayload())
	rs, source, err = ing.FetchNormalizedHostaway(context.Background())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if source != "hostaway-snapshot" || len(rs) != 3 {
		t.Fatalf("source = %q, %d reviews", source, len(rs))
	}

	// Auth failure also falls back.
	ing = app.NewIngestionService(&fakeHostaway{err: domain.ErrUnauthorized}, nil, &fakeRepo{}, nil)
	ing.SetSnapshot(hostawayPayload())
	if _, source, err = ing.FetchNormalizedHostaway(context.Background()); err != nil || source != "hostaway-snapshot" {
		t.Fatalf("source = %q, err = %v", source, err)
	}

	// No snapshot and nothing upstream: surfaced as ErrEmptyUpstream.
	ing = app.NewIngestionService(&fakeHostaway{resp: domain.HostawayResponse{}}, nil, &fakeRepo{}, nil)
	if _, _, err = ing.FetchNormalizedHostaway(context.Background()); !errors.Is(err, domain.ErrEmptyUpstream) {
		t.Fatalf("want ErrEmptyUpstream, got %v", err)
	}

	// Network failure with no snapshot bubbles the raw error.
	netErr := errors.New("connection refused")
	ing = app.NewIngestionService(&fakeHostaway{err: netErr}, nil, &fakeRepo{}, nil)
	if _, _, err = ing.FetchNormalizedHostaway(context.Background()); !errors.Is(err, netErr) {
		t.Fatalf("want the raw network error, got %v", err)
	}
}

func TestIngestGooglePlace(t *testing.T) {
	repo := &fakeRepo{}
	pl := &fakePlaces{det: domain.PlaceDetails{
		Name:   "The Shoreditch Flat",
		Rating: 4.6,
		Reviews: []domain.GoogleReview{
			{AuthorName: "John", Rating: 5, Text: "Great", Time: 1700000000},
			{AuthorName: "Mary", Rating: 4, Text: "Good", Time: 1700001000},
		},
	}}
	ing := app.NewIngestionService(nil, pl, repo, &fakeCache{})

	n, err := ing.IngestGooglePlace(context.Background(), "ChIJabc", "Loft A - Central London")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if n != 2 {
		t.Fatalf("written = %d, want 2", n)
	}
	if len(repo.upsertedProps) != 1 || repo.upsertedProps[0].Name != "Loft A - Central London" {
		t.Fatalf("property: %+v", repo.upsertedProps)
	}
	got := repo.upserted[1]
	if len(got) != 2 || got[0].Source != domain.SourceGoogle {
		t.Fatalf("reviews: %+v", got)
	}

	// Empty listing name adopts the place's own name.
	repo = &fakeRepo{}
	ing = app.NewIngestionService(nil, pl, repo, &fakeCache{})
	if _, err := ing.IngestGooglePlace(context.Background(), "ChIJabc", ""); err != nil {
		t.Fatalf("err: %v", err)
	}
	if repo.upsertedProps[0].Name != "The Shoreditch Flat" {
		t.Fatalf("property: %+v", repo.upsertedProps)
	}

	// Upstream not-found propagates.
	ing = app.NewIngestionService(nil, &fakePlaces{err: domain.ErrNotFound}, &fakeRepo{}, nil)
	if _, err := ing.IngestGooglePlace(context.Background(), "ChIJnope", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestApprovalService(t *testing.T) {
	repo := &fakeRepo{}
	cache := &fakeCache{store: map[string]any{
		"dashboard": domain.DashboardView{},
		"cities":    []domain.CityMetrics{},
	}}
	appr := app.NewApprovalService(repo, cache)

	if err := appr.SetApproval(context.Background(), "7453", true); err != nil {
		t.Fatalf("err: %v", err)
	}
	if !repo.approvals["7453"] {
		t.Fatal("approval not persisted")
	}
	if _, ok := cache.store["dashboard"]; ok {
		t.Fatal("dashboard cache not invalidated")
	}
	if _, ok := cache.store["cities"]; ok {
		t.Fatal("cities cache not invalidated")
	}

	if err := appr.SetApprovalBulk(context.Background(), []string{"1", "2"}, false); err != nil {
		t.Fatalf("err: %v", err)
	}
	if repo.approvals["1"] || repo.approvals["2"] {
		t.Fatal("bulk unapprove not persisted")
	}
	// Empty input is a no-op, not an error.
	if err := appr.SetApprovalBulk(context.Background(), nil, true); err != nil {
		t.Fatalf("err: %v", err)
	}
}
