package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrEmptyUpstream = errors.New("upstream returned no reviews")
)

type ReviewRepository interface {
	// Write paths
	UpsertProperty(ctx context.Context, p Property) (int64, error)
	UpsertReviews(ctx context.Context, propertyID int64, rs []NormalizedReview) error
	UpsertIncidents(ctx context.Context, incs []IncidentRecord) error
	SetApproval(ctx context.Context, reviewID string, approved bool) error
	SetApprovalBulk(ctx context.Context, reviewIDs []string, approved bool) error

	// Read paths
	GetPropertyBySlug(ctx context.Context, slug string) (Property, error)
	ListPropertiesWithReviews(ctx context.Context) ([]PropertyWithReviews, error)
	ListReviews(ctx context.Context, propertyID int64, pg PageQuery) (ReviewsPage, error)
	GuestHistory(ctx context.Context, guestPlatformID string) (GuestHistory, error)
}

type HostawayClient interface {
	FetchReviews(ctx context.Context) (HostawayResponse, error)
}

type PlacesClient interface {
	PlaceDetails(ctx context.Context, placeID string) (PlaceDetails, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
