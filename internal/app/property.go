package app

import (
	"regexp"
	"strings"

	"flex_reviews/internal/domain"
)

// Cities the portfolio currently operates in. Listings that name none of
// them are spread across the set by a stable hash so the assignment never
// flaps between ingests.
var portfolioCities = []string{"London", "Paris", "Algiers", "Lisbon"}

var (
	slugCleanRE    = regexp.MustCompile(`[^a-z0-9]+`)
	locationTailRE = regexp.MustCompile(`- (.+)$`)
)

// Slugify turns "2B N1 A - 29 Shoreditch Heights" into
// "2b-n1-a-29-shoreditch-heights".
func Slugify(name string) string {
	s := slugCleanRE.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// ResolveProperty derives a Property record from a listing name: slug,
// location tail and inferred city.
func ResolveProperty(listingName string) domain.Property {
	location := "London"
	if m := locationTailRE.FindStringSubmatch(listingName); m != nil {
		location = m[1]
	}

	city := ""
	for _, c := range portfolioCities {
		if strings.Contains(strings.ToLower(location), strings.ToLower(c)) {
			city = c
			break
		}
	}
	if city == "" {
		sum := 0
		for _, ch := range listingName {
			sum += int(ch)
		}
		city = portfolioCities[sum%len(portfolioCities)]
	}

	return domain.Property{
		Name:        listingName,
		Slug:        Slugify(listingName),
		City:        city,
		Address:     location,
		Description: "Beautiful property in " + location,
	}
}
