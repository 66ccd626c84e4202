package domain

import "time"

// Direction tells which way a review points: a guest reviewing the
// property, or the host reviewing the guest after checkout.
type Direction string

const (
	GuestToHost Direction = "guest-to-host"
	HostToGuest Direction = "host-to-guest"
)

type Source string

const (
	SourceHostaway Source = "hostaway"
	SourceGoogle   Source = "google"
)

type CategoryRating struct {
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
}

// NormalizedReview is the canonical review shape every provider payload is
// mapped into. Ratings are on the 0-10 scale regardless of source.
// ApprovedForWebsite always starts false; only an explicit approval command
// flips it.
type NormalizedReview struct {
	ID                 string           `json:"id"`
	Direction          Direction        `json:"direction"`
	Source             Source           `json:"source"`
	ListingName        string           `json:"listingName"`
	GuestName          string           `json:"guestName"`
	GuestEmail         *string          `json:"guestEmail,omitempty"`
	GuestPlatformID    *string          `json:"guestPlatformId,omitempty"`
	SubmittedAt        time.Time        `json:"submittedAt"`
	Channel            string           `json:"channel"`
	OverallRating      *float64         `json:"overallRating"`
	Categories         []CategoryRating `json:"categories"`
	PublicReview       string           `json:"publicReview"`
	ApprovedForWebsite bool             `json:"approvedForWebsite"`
	WouldHostAgain     *bool            `json:"wouldHostAgain,omitempty"`
	IncidentReported   *bool            `json:"incidentReported,omitempty"`
}

// ---- raw provider payloads (decoded, never mutated) ----

type RawHostawayReview struct {
	ID              int64            `json:"id"`
	Type            Direction        `json:"type"`
	Status          string           `json:"status"`
	Rating          *float64         `json:"rating"`
	PublicReview    string           `json:"publicReview"`
	ReviewCategory  []CategoryRating `json:"reviewCategory"`
	SubmittedAt     string           `json:"submittedAt"` // "2020-08-21 22:45:14", UTC
	GuestName       string           `json:"guestName,omitempty"`
	GuestEmail      string           `json:"guestEmail,omitempty"`
	GuestPlatformID string           `json:"guestPlatformId,omitempty"`
	ListingName     string           `json:"listingName"`
	Channel         string           `json:"channel,omitempty"`
	WouldHostAgain  *bool            `json:"wouldHostAgain,omitempty"`
	Incident        *Incident        `json:"incident,omitempty"`
}

type Incident struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
	Resolved    bool    `json:"resolved"`
}

// IncidentRecord is a standalone incident entry from the Hostaway response
// envelope, keyed to a guest rather than a single review.
type IncidentRecord struct {
	GuestPlatformID string  `json:"guestPlatformId"`
	PropertyName    string  `json:"propertyName"`
	Date            string  `json:"date"`
	Type            string  `json:"type"`
	Description     string  `json:"description"`
	Cost            float64 `json:"cost"`
	Resolved        bool    `json:"resolved"`
}

type HostawayResponse struct {
	Status    string              `json:"status"`
	Result    []RawHostawayReview `json:"result"`
	Incidents []IncidentRecord    `json:"incidents,omitempty"`
}

type GoogleReview struct {
	AuthorName      string  `json:"author_name"`
	Rating          float64 `json:"rating"` // native 1-5 scale
	Text            string  `json:"text"`
	Time            int64   `json:"time"` // unix seconds
	ProfilePhotoURL string  `json:"profile_photo_url,omitempty"`
	RelativeTime    string  `json:"relative_time_description,omitempty"`
}

type PlaceDetails struct {
	Name             string         `json:"name"`
	Rating           float64        `json:"rating"`
	UserRatingsTotal int            `json:"user_ratings_total"`
	Reviews          []GoogleReview `json:"reviews"`
}
