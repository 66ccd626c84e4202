package domain

type SeverityColor string

const (
	ColorGreen  SeverityColor = "green"
	ColorYellow SeverityColor = "yellow"
	ColorOrange SeverityColor = "orange"
	ColorRed    SeverityColor = "red"
)

// MetricSeverity classifies one metric in isolation. Level 0 is excellent,
// 2 is critical. Recomputed on every evaluation, never persisted.
type MetricSeverity struct {
	Level       int           `json:"level"`
	Color       SeverityColor `json:"color"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
}

// Quadrant is the legacy four/five-way classification kept for
// backward-compatible labeling. It crosses raw rating thresholds and is
// independent of the worst-case severity system.
type Quadrant string

const (
	QuadrantWellManaged      Quadrant = "well-managed"
	QuadrantScreeningIssue   Quadrant = "screening-issue"
	QuadrantPropertyIssue    Quadrant = "property-issue"
	QuadrantSystemicFailure  Quadrant = "systemic-failure"
	QuadrantNeedsImprovement Quadrant = "needs-improvement"
)

// PropertyHealth is a pure function of two ratings on the 0-5 scale.
// WorstCase is the more severe of the two independent severities, so a
// single bad metric is never diluted by averaging with a good one.
type PropertyHealth struct {
	Quadrant         Quadrant       `json:"quadrant"`
	PropertyRating   float64        `json:"propertyRating"`
	GuestRating      float64        `json:"guestRating"`
	PropertySeverity MetricSeverity `json:"propertySeverity"`
	GuestSeverity    MetricSeverity `json:"guestSeverity"`
	WorstCase        MetricSeverity `json:"worstCase"`
	Recommendation   string         `json:"recommendation"`
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// GuestHistory summarizes a guest's track record. AverageRating is on the
// 0-5 scale.
type GuestHistory struct {
	AverageRating   float64 `json:"averageRating"`
	TotalStays      int     `json:"totalStays"`
	IncidentCount   int     `json:"incidentCount"`
	DamageCount     int     `json:"damageCount"`
	TotalDamageCost float64 `json:"totalDamageCost"`
}

type GuestRiskAssessment struct {
	Score          int       `json:"score"` // 0-100, higher is riskier
	Level          RiskLevel `json:"level"`
	Flags          []string  `json:"flags"`
	Recommendation string    `json:"recommendation"`
}
