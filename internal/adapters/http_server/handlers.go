package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"flex_reviews/internal/app"
	"flex_reviews/internal/domain"
)

type Handlers struct {
	Q    *app.DashboardService
	Ing  *app.IngestionService
	Appr *app.ApprovalService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/reviews/hostaway", h.hostawayReviews)
	s.mux.Get("/v1/reviews/google", h.googleReviews)
	s.mux.Get("/v1/dashboard", h.dashboard)
	s.mux.Get("/v1/cities", h.cities)
	s.mux.Get("/v1/properties/{slug}/reviews", h.propertyReviews)
	s.mux.Get("/v1/guests/{platformId}/risk", h.guestRisk)
	s.mux.Post("/v1/reviews/{id}/approval", h.setApproval)
	s.mux.Post("/v1/reviews/approval", h.setApprovalBulk)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable sends v with an ETag and honors If-None-Match.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// hostawayReviews is the fetch-and-normalize passthrough: live data when
// the provider has any, the configured snapshot otherwise. Nothing is
// persisted here.
func (h *Handlers) hostawayReviews(w http.ResponseWriter, r *http.Request) {
	reviews, source, err := h.Ing.FetchNormalizedHostaway(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrEmptyUpstream) {
			writeProblem(w, http.StatusBadGateway, "No Reviews", "upstream returned no reviews and no snapshot is configured")
			return
		}
		writeProblem(w, http.StatusBadGateway, "Upstream Error", err.Error())
		return
	}
	w.Header().Set("X-Data-Source", source)
	w.Header().Set("X-Review-Count", strconv.Itoa(len(reviews)))
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handlers) googleReviews(w http.ResponseWriter, r *http.Request) {
	placeID := r.URL.Query().Get("placeId")
	if placeID == "" {
		writeProblem(w, http.StatusBadRequest, "Missing Parameter", "placeId parameter is required")
		return
	}
	listing := r.URL.Query().Get("listing")

	reviews, err := h.Ing.FetchNormalizedGoogle(r.Context(), placeID, listing)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "place not found")
			return
		}
		writeProblem(w, http.StatusBadGateway, "Upstream Error", err.Error())
		return
	}
	w.Header().Set("X-Review-Count", strconv.Itoa(len(reviews)))
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.Q.Dashboard(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Dashboard Failed", err.Error())
		return
	}
	writeCacheable(w, r, view)
}

func (h *Handlers) cities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Q.Cities(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Cities Failed", err.Error())
		return
	}
	writeCacheable(w, r, cities)
}

func (h *Handlers) propertyReviews(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
			return
		}
		limit = l
	}

	// Newest first; aligns with the DB index on (property_id, submitted_at, id)
	page, err := h.Q.PropertyReviews(r.Context(), slug, domain.PageQuery{Limit: limit, Sort: "-submitted_at"})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "property not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Reviews Failed", err.Error())
		return
	}
	writeCacheable(w, r, page)
}

func (h *Handlers) guestRisk(w http.ResponseWriter, r *http.Request) {
	platformID := chi.URLParam(r, "platformId")
	assessment, err := h.Q.GuestRisk(r.Context(), platformID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "guest not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Risk Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

type approvalRequest struct {
	Approved bool `json:"approved"`
}

type bulkApprovalRequest struct {
	ReviewIDs []string `json:"reviewIds"`
	Approved  bool     `json:"approved"`
}

func (h *Handlers) setApproval(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected {\"approved\": bool}")
		return
	}
	if err := h.Appr.SetApproval(r.Context(), id, req.Approved); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
			return
		}
		writeProblem(w, http.StatusInternalServerError, "Approval Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "approved": req.Approved})
}

func (h *Handlers) setApprovalBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "expected {\"reviewIds\": [...], \"approved\": bool}")
		return
	}
	if len(req.ReviewIDs) == 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "reviewIds must not be empty")
		return
	}
	if err := h.Appr.SetApprovalBulk(r.Context(), req.ReviewIDs, req.Approved); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Approval Failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": len(req.ReviewIDs), "approved": req.Approved})
}
