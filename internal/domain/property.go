package domain

type Property struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

type PropertyWithReviews struct {
	Property
	Reviews []NormalizedReview `json:"reviews"`
}

type PageQuery struct {
	Limit  int
	Cursor *string
	Sort   string
}

type ReviewsPage struct {
	Items      []NormalizedReview `json:"items"`
	NextCursor *string            `json:"nextCursor,omitempty"`
}
