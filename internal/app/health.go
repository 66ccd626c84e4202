package app

import (
	"fmt"

	"flex_reviews/internal/domain"
)

// Classification thresholds on the 0-5 display scale. Property thresholds
// track the Superhost standard; guest thresholds are looser at the top
// because screening catches problems earlier than renovations do.
const (
	propertyExcellentMin = 4.7
	propertyCriticalMax  = 4.0

	guestExcellentMin  = 4.5
	guestCriticalMax   = 4.0
	quadrantUpperBound = 4.5
	quadrantLowerBound = 4.0
)

// EvaluatePropertySeverity classifies a property rating (0-5 scale) into a
// severity tier. Total over the reals: out-of-range input is neither
// clamped nor rejected.
func EvaluatePropertySeverity(rating float64) domain.MetricSeverity {
	switch {
	case rating >= propertyExcellentMin:
		return domain.MetricSeverity{
			Level:       0,
			Color:       domain.ColorGreen,
			Label:       "Excellent",
			Description: fmt.Sprintf("Property rating %.1f/5.0 is at Superhost tier (>=4.7). Maintain standards.", rating),
		}
	case rating >= propertyCriticalMax:
		return domain.MetricSeverity{
			Level:       1,
			Color:       domain.ColorYellow,
			Label:       "Needs Improvement",
			Description: fmt.Sprintf("Property rating %.1f/5.0 is acceptable but below premium (4.0-4.69). Work toward >=4.7.", rating),
		}
	default:
		return domain.MetricSeverity{
			Level:       2,
			Color:       domain.ColorRed,
			Label:       "Critical",
			Description: fmt.Sprintf("Property rating %.1f/5.0 is in the bottom 4%% of the market (<4.0). URGENT: fix immediately.", rating),
		}
	}
}

// EvaluateGuestSeverity classifies a guest-quality rating (0-5 scale).
func EvaluateGuestSeverity(rating float64) domain.MetricSeverity {
	switch {
	case rating >= guestExcellentMin:
		return domain.MetricSeverity{
			Level:       0,
			Color:       domain.ColorGreen,
			Label:       "Excellent Guests",
			Description: fmt.Sprintf("Guest quality %.1f/5.0 is excellent (>=4.5). No screening issues.", rating),
		}
	case rating >= guestCriticalMax:
		return domain.MetricSeverity{
			Level:       1,
			Color:       domain.ColorOrange,
			Label:       "Screening Needed",
			Description: fmt.Sprintf("Guest quality %.1f/5.0 needs attention (4.0-4.49). Review acceptance criteria.", rating),
		}
	default:
		return domain.MetricSeverity{
			Level:       2,
			Color:       domain.ColorRed,
			Label:       "Critical Guests",
			Description: fmt.Sprintf("Guest quality %.1f/5.0 is critical (<4.0). URGENT: tighten screening immediately.", rating),
		}
	}
}

// CalculatePropertyHealth combines the two independent severities. The
// worse level wins; on a tie the property side leads. A single bad metric
// always surfaces at its own severity, never diluted by the other side.
// Both inputs are on the 0-5 scale.
func CalculatePropertyHealth(propertyRating, guestRating float64) domain.PropertyHealth {
	propSev := EvaluatePropertySeverity(propertyRating)
	guestSev := EvaluateGuestSeverity(guestRating)

	worst := guestSev
	if propSev.Level >= guestSev.Level {
		worst = propSev
	}

	// Legacy quadrant: crosses raw ratings against its own 4.5/4.0
	// thresholds, independent of the severity tiers above.
	var quadrant domain.Quadrant
	switch {
	case propertyRating >= quadrantUpperBound && guestRating >= quadrantUpperBound:
		quadrant = domain.QuadrantWellManaged
	case propertyRating >= quadrantUpperBound && guestRating < quadrantLowerBound:
		quadrant = domain.QuadrantScreeningIssue
	case propertyRating < quadrantLowerBound && guestRating >= quadrantUpperBound:
		quadrant = domain.QuadrantPropertyIssue
	case propertyRating < quadrantLowerBound && guestRating < quadrantLowerBound:
		quadrant = domain.QuadrantSystemicFailure
	default:
		quadrant = domain.QuadrantNeedsImprovement
	}

	var recommendation string
	switch {
	case propSev.Level >= 1 && guestSev.Level >= 1:
		recommendation = fmt.Sprintf("BOTH metrics need attention: %s AND %s", propSev.Description, guestSev.Description)
	case propSev.Level >= 1:
		recommendation = "Property needs attention: " + propSev.Description
	case guestSev.Level >= 1:
		recommendation = "Guests need attention: " + guestSev.Description
	default:
		recommendation = "Excellent performance on both property quality and guest screening. Maintain current standards."
	}

	return domain.PropertyHealth{
		Quadrant:         quadrant,
		PropertyRating:   propertyRating,
		GuestRating:      guestRating,
		PropertySeverity: propSev,
		GuestSeverity:    guestSev,
		WorstCase:        worst,
		Recommendation:   recommendation,
	}
}
