package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

// IngestionService pulls raw reviews from the providers, normalizes them
// and persists the canonical records. A static snapshot payload can be
// attached as a fallback for sandboxed Hostaway accounts that return
// nothing.
type IngestionService struct {
	hostaway domain.HostawayClient
	places   domain.PlacesClient
	repo     domain.ReviewRepository
	cache    domain.Cache
	snapshot *domain.HostawayResponse
}

func NewIngestionService(h domain.HostawayClient, p domain.PlacesClient, r domain.ReviewRepository, c domain.Cache) *IngestionService {
	return &IngestionService{hostaway: h, places: p, repo: r, cache: c}
}

// SetSnapshot attaches the fallback payload used when the live API errors
// or comes back empty.
func (s *IngestionService) SetSnapshot(resp domain.HostawayResponse) {
	s.snapshot = &resp
}

// fetchHostaway returns the live payload when it has content, otherwise
// the snapshot. The second return names the data source for telemetry.
func (s *IngestionService) fetchHostaway(ctx context.Context) (domain.HostawayResponse, string, error) {
	if s.hostaway != nil {
		resp, err := s.hostaway.FetchReviews(ctx)
		switch {
		case err == nil && len(resp.Result) > 0:
			return resp, "hostaway-api-live", nil
		case err == nil:
			log.Warn().Msg("hostaway returned no reviews (sandboxed account?), falling back to snapshot")
		case errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrForbidden):
			log.Warn().Err(err).Msg("hostaway rejected the request, falling back to snapshot")
		default:
			// Network/5xx style failures still fall back when a snapshot
			// exists; with none, bubble up.
			if s.snapshot == nil {
				return domain.HostawayResponse{}, "", err
			}
			log.Warn().Err(err).Msg("hostaway fetch failed, falling back to snapshot")
		}
	}
	if s.snapshot == nil {
		return domain.HostawayResponse{}, "", domain.ErrEmptyUpstream
	}
	return *s.snapshot, "hostaway-snapshot", nil
}

// FetchNormalizedHostaway is the passthrough used by the reviews API: it
// fetches and normalizes without persisting anything.
func (s *IngestionService) FetchNormalizedHostaway(ctx context.Context) ([]domain.NormalizedReview, string, error) {
	resp, source, err := s.fetchHostaway(ctx)
	if err != nil {
		return nil, "", err
	}
	return NormalizeHostawayReviews(resp.Result), source, nil
}

// IngestHostaway fetches, normalizes and persists the Hostaway payload,
// grouping records per listing so each batch lands under its property.
// Returns the number of reviews written.
func (s *IngestionService) IngestHostaway(ctx context.Context) (int, error) {
	resp, source, err := s.fetchHostaway(ctx)
	if err != nil {
		return 0, err
	}
	normalized := NormalizeHostawayReviews(resp.Result)

	// Insertion-ordered grouping by listing name.
	index := map[string]int{}
	type batch struct {
		listing string
		reviews []domain.NormalizedReview
	}
	var batches []batch
	for _, rv := range normalized {
		i, ok := index[rv.ListingName]
		if !ok {
			i = len(batches)
			index[rv.ListingName] = i
			batches = append(batches, batch{listing: rv.ListingName})
		}
		batches[i].reviews = append(batches[i].reviews, rv)
	}

	written := 0
	for _, b := range batches {
		propID, err := s.repo.UpsertProperty(ctx, ResolveProperty(b.listing))
		if err != nil {
			return written, fmt.Errorf("upsert property %q: %w", b.listing, err)
		}
		if err := s.repo.UpsertReviews(ctx, propID, b.reviews); err != nil {
			return written, fmt.Errorf("upsert reviews for %q: %w", b.listing, err)
		}
		written += len(b.reviews)
		s.invalidateReviews(ctx, propID)
	}

	if len(resp.Incidents) > 0 {
		if err := s.repo.UpsertIncidents(ctx, resp.Incidents); err != nil {
			return written, fmt.Errorf("upsert incidents: %w", err)
		}
	}

	s.invalidateDashboards(ctx)
	log.Info().Str("source", source).Int("reviews", written).Int("incidents", len(resp.Incidents)).Msg("hostaway ingest done")
	return written, nil
}

// FetchNormalizedGoogle fetches and normalizes one place's reviews without
// persisting them. An empty listingName uses the place's own name.
func (s *IngestionService) FetchNormalizedGoogle(ctx context.Context, placeID, listingName string) ([]domain.NormalizedReview, error) {
	if s.places == nil {
		return nil, errors.New("places client not configured")
	}
	det, err := s.places.PlaceDetails(ctx, placeID)
	if err != nil {
		return nil, err
	}
	if listingName == "" {
		listingName = det.Name
	}
	return NormalizeGoogleReviews(det.Reviews, listingName, placeID), nil
}

// IngestGooglePlace fetches one place's reviews and persists them under
// the given listing. An empty listingName uses the place's own name.
func (s *IngestionService) IngestGooglePlace(ctx context.Context, placeID, listingName string) (int, error) {
	normalized, err := s.FetchNormalizedGoogle(ctx, placeID, listingName)
	if err != nil {
		return 0, err
	}
	if len(normalized) == 0 {
		return 0, nil
	}
	listingName = normalized[0].ListingName

	propID, err := s.repo.UpsertProperty(ctx, ResolveProperty(listingName))
	if err != nil {
		return 0, fmt.Errorf("upsert property %q: %w", listingName, err)
	}
	if err := s.repo.UpsertReviews(ctx, propID, normalized); err != nil {
		return 0, fmt.Errorf("upsert google reviews for %q: %w", listingName, err)
	}

	s.invalidateReviews(ctx, propID)
	s.invalidateDashboards(ctx)
	log.Info().Str("placeId", placeID).Int("reviews", len(normalized)).Msg("google ingest done")
	return len(normalized), nil
}

func (s *IngestionService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, dashboardCacheKey)
	_ = s.cache.Del(ctx, citiesCacheKey)
}

func (s *IngestionService) invalidateReviews(ctx context.Context, propertyID int64) {
	if s.cache == nil {
		return
	}
	// The API defaults to limit=50 sorted newest-first; clear the common
	// variants too.
	for _, lim := range []int{50, 100, 200} {
		_ = s.cache.Del(ctx, reviewsCacheKey(propertyID, lim, defaultReviewSort))
	}
}

// ApprovalService owns the only mutation of ApprovedForWebsite. The
// normalization core never touches the flag.
type ApprovalService struct {
	repo  domain.ReviewRepository
	cache domain.Cache
}

func NewApprovalService(r domain.ReviewRepository, c domain.Cache) *ApprovalService {
	return &ApprovalService{repo: r, cache: c}
}

func (s *ApprovalService) SetApproval(ctx context.Context, reviewID string, approved bool) error {
	if err := s.repo.SetApproval(ctx, reviewID, approved); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ApprovalService) SetApprovalBulk(ctx context.Context, reviewIDs []string, approved bool) error {
	if len(reviewIDs) == 0 {
		return nil
	}
	if err := s.repo.SetApprovalBulk(ctx, reviewIDs, approved); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ApprovalService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	// Approval moves the approved counts on the rollups; per-property
	// review pages age out via TTL.
	_ = s.cache.Del(ctx, dashboardCacheKey)
	_ = s.cache.Del(ctx, citiesCacheKey)
}
