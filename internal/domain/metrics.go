package domain

type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

type Trend struct {
	Direction TrendDirection `json:"direction"`
	Delta     float64        `json:"delta"`
}

// DirectionMetrics are per-direction aggregates. AverageRating is on the
// canonical 0-10 scale. ApprovedCount is only populated for guest-to-host
// sets, HighRiskRate (percent of guests rated below 3.0/5) only for
// host-to-guest sets.
type DirectionMetrics struct {
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
	ApprovedCount int     `json:"approvedCount,omitempty"`
	HighRiskRate  int     `json:"highRiskRate,omitempty"`
	Trend         Trend   `json:"trend"`
}

type BidirectionalMetrics struct {
	GuestToHost DirectionMetrics `json:"guestToHost"`
	HostToGuest DirectionMetrics `json:"hostToGuest"`
}

type DistributionBucket struct {
	Stars       int `json:"stars"` // 1..5
	GuestToHost int `json:"guestToHost"`
	HostToGuest int `json:"hostToGuest"`
}

type MonthlyPoint struct {
	Month       string  `json:"month"` // "Jan 2026"
	GuestToHost float64 `json:"guestToHost"`
	HostToGuest float64 `json:"hostToGuest"`
}

type ChannelStat struct {
	Channel       string  `json:"channel"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"averageRating"`
}

type QuadrantCounts struct {
	WellManaged      int `json:"wellManaged"`
	ScreeningIssue   int `json:"screeningIssue"`
	PropertyIssue    int `json:"propertyIssue"`
	SystemicFailure  int `json:"systemicFailure"`
	NeedsImprovement int `json:"needsImprovement"`
}

type CityMetrics struct {
	CityName              string        `json:"cityName"`
	CitySlug              string        `json:"citySlug"`
	PropertyCount         int           `json:"propertyCount"`
	TotalReviews          int           `json:"totalReviews"`
	AverageRating         float64       `json:"averageRating"`
	ApprovalRate          float64       `json:"approvalRate"`
	HealthStatus          Quadrant      `json:"healthStatus"`
	GuestToHostAvg        float64       `json:"guestToHostAvg"`
	HostToGuestAvg        float64       `json:"hostToGuestAvg"`
	WorstCaseColor        SeverityColor `json:"worstCaseColor"`
	PropertySeverityLabel string        `json:"propertySeverityLabel"`
	GuestSeverityLabel    string        `json:"guestSeverityLabel"`
	PropertiesAtRisk      int           `json:"propertiesAtRisk"`
}

type PortfolioKPIs struct {
	TotalProperties  int     `json:"totalProperties"`
	TotalReviews     int     `json:"totalReviews"`
	AverageRating    float64 `json:"averageRating"`
	GuestToHostAvg   float64 `json:"guestToHostAvg"`
	HostToGuestAvg   float64 `json:"hostToGuestAvg"`
	ApprovedCount    int     `json:"approvedCount"`
	PropertiesAtRisk int     `json:"propertiesAtRisk"`
	GuestToHostCount int     `json:"guestToHostCount"`
	HostToGuestCount int     `json:"hostToGuestCount"`
}

// CorrelationStat relates property quality to guest quality across the
// portfolio: one paired sample per property with reviews in both
// directions.
type CorrelationStat struct {
	Score      float64 `json:"score"` // Pearson, [-1, 1], 0 when degenerate
	SampleSize int     `json:"sampleSize"`
	Insight    string  `json:"insight"`
}

// DashboardView is the composite payload behind the dashboard endpoint.
type DashboardView struct {
	KPIs          PortfolioKPIs        `json:"kpis"`
	Bidirectional BidirectionalMetrics `json:"bidirectional"`
	Quadrants     QuadrantCounts       `json:"quadrants"`
	Distribution  []DistributionBucket `json:"distribution"`
	Monthly       []MonthlyPoint       `json:"monthly"`
	Channels      []ChannelStat        `json:"channels"`
	Correlation   CorrelationStat      `json:"correlation"`
}
