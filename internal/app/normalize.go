package app

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"flex_reviews/internal/domain"
)

const (
	anonymousGuest = "Anonymous"

	hostawayTimeLayout = "2006-01-02 15:04:05"
)

// roundTenth rounds to one decimal, half away from zero.
func roundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}

// averageFromCategories derives an overall rating from category ratings.
// Categories arrive on the 0-10 scale and the result stays on 0-10; the
// 0-5 display scale exists only at the classification boundary.
// Returns nil when there are no categories to average.
func averageFromCategories(cats []domain.CategoryRating) *float64 {
	if len(cats) == 0 {
		return nil
	}
	sum := 0.0
	for _, c := range cats {
		sum += c.Rating
	}
	avg := roundTenth(sum / float64(len(cats)))
	return &avg
}

// parseHostawayTime interprets "YYYY-MM-DD HH:MM:SS" as UTC. Unparseable
// input falls back to the current instant so one bad record cannot sink a
// whole batch; the fallback is logged rather than silently absorbed.
func parseHostawayTime(s string) time.Time {
	t, err := time.ParseInLocation(hostawayTimeLayout, s, time.UTC)
	if err != nil {
		log.Warn().Str("submittedAt", s).Err(err).Msg("unparseable review timestamp, using current time")
		return time.Now().UTC()
	}
	return t
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// NormalizeHostawayReview maps one raw Hostaway record into the canonical
// shape. Missing optional fields get semantic defaults; structural validity
// is the decode boundary's problem, not ours.
func NormalizeHostawayReview(raw domain.RawHostawayReview) domain.NormalizedReview {
	rating := raw.Rating
	if rating == nil {
		rating = averageFromCategories(raw.ReviewCategory)
	}

	guestName := raw.GuestName
	if guestName == "" {
		guestName = anonymousGuest
	}

	channel := raw.Channel
	if channel == "" {
		channel = string(domain.SourceHostaway)
	}

	cats := make([]domain.CategoryRating, len(raw.ReviewCategory))
	copy(cats, raw.ReviewCategory)

	rv := domain.NormalizedReview{
		ID:              strconv.FormatInt(raw.ID, 10),
		Direction:       raw.Type,
		Source:          domain.SourceHostaway,
		ListingName:     raw.ListingName,
		GuestName:       guestName,
		GuestEmail:      ptrStr(raw.GuestEmail),
		GuestPlatformID: ptrStr(raw.GuestPlatformID),
		SubmittedAt:     parseHostawayTime(raw.SubmittedAt),
		Channel:         channel,
		OverallRating:   rating,
		Categories:      cats,
		PublicReview:    raw.PublicReview,
		// Publication always requires an explicit approval action.
		ApprovedForWebsite: false,
	}

	// Host-to-guest extras carry no meaning on property reviews.
	if raw.Type == domain.HostToGuest {
		rv.WouldHostAgain = raw.WouldHostAgain
		reported := raw.Incident != nil
		rv.IncidentReported = &reported
	}
	return rv
}

// NormalizeHostawayReviews maps a batch: N in, N out, same order. No
// filtering or deduplication here; dedup is an external concern on ID.
func NormalizeHostawayReviews(raws []domain.RawHostawayReview) []domain.NormalizedReview {
	out := make([]domain.NormalizedReview, 0, len(raws))
	for _, r := range raws {
		out = append(out, NormalizeHostawayReview(r))
	}
	return out
}

// NormalizeGoogleReviews maps Google Places reviews into the canonical
// shape. Native ratings are 1-5 and are doubled onto the 0-10 scale.
// Google only yields property-directed reviews and no category breakdown.
// The composite ID keeps records unique within and across fetches.
func NormalizeGoogleReviews(reviews []domain.GoogleReview, listingName, placeID string) []domain.NormalizedReview {
	out := make([]domain.NormalizedReview, 0, len(reviews))
	for i, r := range reviews {
		rating := r.Rating * 2

		guestName := r.AuthorName
		if guestName == "" {
			guestName = anonymousGuest
		}

		out = append(out, domain.NormalizedReview{
			ID:                 fmt.Sprintf("google-%s-%d-%d", placeID, r.Time, i),
			Direction:          domain.GuestToHost,
			Source:             domain.SourceGoogle,
			ListingName:        listingName,
			GuestName:          guestName,
			SubmittedAt:        time.Unix(r.Time, 0).UTC(),
			Channel:            string(domain.SourceGoogle),
			OverallRating:      &rating,
			Categories:         []domain.CategoryRating{},
			PublicReview:       r.Text,
			ApprovedForWebsite: false,
		})
	}
	return out
}
