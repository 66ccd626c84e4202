package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"flex_reviews/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}

// incident dates arrive as strings; anything unparseable stores NULL
// rather than failing the whole batch.
func incidentDate(s string) any {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return nil
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertProperty(ctx context.Context, p domain.Property) (int64, error) {
	res, err := r.db.ExecContext(ctx, upsertPropertySQL,
		p.Name, p.Slug, p.City, p.Address, p.Description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) UpsertReviews(ctx context.Context, propertyID int64, rs []domain.NormalizedReview) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*16)
	for _, rv := range rs {
		cats, _ := json.Marshal(rv.Categories)
		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.ID,
			propertyID,
			string(rv.Direction),
			string(rv.Source),
			rv.ListingName,
			rv.GuestName,
			valStr(rv.GuestEmail),
			valStr(rv.GuestPlatformID),
			rv.SubmittedAt.UTC(),
			rv.Channel,
			valF64(rv.OverallRating),
			string(cats),
			rv.PublicReview,
			rv.ApprovedForWebsite,
			valBool(rv.WouldHostAgain),
			valBool(rv.IncidentReported),
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) UpsertIncidents(ctx context.Context, incs []domain.IncidentRecord) error {
	for _, inc := range incs {
		_, err := r.db.ExecContext(ctx, upsertIncidentSQL,
			inc.GuestPlatformID,
			inc.PropertyName,
			incidentDate(inc.Date),
			inc.Type,
			inc.Description,
			inc.Cost,
			inc.Resolved,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) SetApproval(ctx context.Context, reviewID string, approved bool) error {
	res, err := r.db.ExecContext(ctx, setApprovalSQL, approved, reviewID)
	if err != nil {
		return err
	}
	// RowsAffected is 0 both for a missing row and for a no-op update, so
	// only fall through to an existence check.
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM reviews WHERE id = ?`, reviewID).Scan(&one)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	return err
}

func (r *Repo) SetApprovalBulk(ctx context.Context, reviewIDs []string, approved bool) error {
	if len(reviewIDs) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(reviewIDs)), ",")
	args := make([]any, 0, len(reviewIDs)+1)
	args = append(args, approved)
	for _, id := range reviewIDs {
		args = append(args, id)
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE reviews SET approved_for_website = ? WHERE id IN (`+placeholders+`)`,
		args...)
	return err
}

func (r *Repo) GetPropertyBySlug(ctx context.Context, slug string) (domain.Property, error) {
	var p domain.Property
	err := r.db.QueryRowContext(ctx, getPropertyBySlugSQL, slug).Scan(
		&p.ID, &p.Name, &p.Slug, &p.City, &p.Address, &p.Description)
	if err == sql.ErrNoRows {
		return domain.Property{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Property{}, err
	}
	return p, nil
}

func (r *Repo) ListPropertiesWithReviews(ctx context.Context) ([]domain.PropertyWithReviews, error) {
	rows, err := r.db.QueryContext(ctx, listPropertiesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PropertyWithReviews
	idx := map[int64]int{}
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.City, &p.Address, &p.Description); err != nil {
			return nil, err
		}
		idx[p.ID] = len(out)
		out = append(out, domain.PropertyWithReviews{Property: p})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rrows, err := r.db.QueryContext(ctx, listAllReviewsSQL)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()

	for rrows.Next() {
		rv, propID, err := scanReview(rrows)
		if err != nil {
			return nil, err
		}
		if i, ok := idx[propID]; ok {
			out[i].Reviews = append(out[i].Reviews, rv)
		}
	}
	if err := rrows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) ListReviews(ctx context.Context, propertyID int64, pg domain.PageQuery) (domain.ReviewsPage, error) {
	limit := pg.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listReviewsSQL, propertyID, limit)
	if err != nil {
		return domain.ReviewsPage{}, err
	}
	defer rows.Close()

	var out []domain.NormalizedReview
	for rows.Next() {
		rv, _, err := scanReview(rows)
		if err != nil {
			return domain.ReviewsPage{}, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return domain.ReviewsPage{}, err
	}
	return domain.ReviewsPage{Items: out}, nil
}

func (r *Repo) GuestHistory(ctx context.Context, guestPlatformID string) (domain.GuestHistory, error) {
	var h domain.GuestHistory
	var avg10 float64
	err := r.db.QueryRowContext(ctx, guestStaysSQL, guestPlatformID).
		Scan(&h.TotalStays, &avg10)
	if err != nil {
		return domain.GuestHistory{}, err
	}
	h.AverageRating = avg10 / 2 // stored 0-10, exposed 0-5

	err = r.db.QueryRowContext(ctx, guestIncidentsSQL, guestPlatformID).
		Scan(&h.IncidentCount, &h.DamageCount, &h.TotalDamageCost)
	if err != nil {
		return domain.GuestHistory{}, err
	}
	if h.TotalStays == 0 && h.IncidentCount == 0 {
		return domain.GuestHistory{}, domain.ErrNotFound
	}
	return h, nil
}

func scanReview(rows *sql.Rows) (domain.NormalizedReview, int64, error) {
	var rv domain.NormalizedReview
	var (
		propID      int64
		direction   string
		source      string
		email       sql.NullString
		platformID  sql.NullString
		submittedAt time.Time
		rating      sql.NullFloat64
		catsRaw     sql.RawBytes
		wouldHost   sql.NullBool
		incident    sql.NullBool
	)
	if err := rows.Scan(
		&rv.ID,
		&propID,
		&direction,
		&source,
		&rv.ListingName,
		&rv.GuestName,
		&email,
		&platformID,
		&submittedAt,
		&rv.Channel,
		&rating,
		&catsRaw,
		&rv.PublicReview,
		&rv.ApprovedForWebsite,
		&wouldHost,
		&incident,
	); err != nil {
		return domain.NormalizedReview{}, 0, err
	}

	rv.Direction = domain.Direction(direction)
	rv.Source = domain.Source(source)
	rv.SubmittedAt = submittedAt.UTC()
	if email.Valid {
		s := email.String
		rv.GuestEmail = &s
	}
	if platformID.Valid {
		s := platformID.String
		rv.GuestPlatformID = &s
	}
	if rating.Valid {
		f := rating.Float64
		rv.OverallRating = &f
	}
	if len(catsRaw) > 0 {
		_ = json.Unmarshal(catsRaw, &rv.Categories)
	}
	if rv.Categories == nil {
		rv.Categories = []domain.CategoryRating{}
	}
	if wouldHost.Valid {
		b := wouldHost.Bool
		rv.WouldHostAgain = &b
	}
	if incident.Valid {
		b := incident.Bool
		rv.IncidentReported = &b
	}
	return rv, propID, nil
}
