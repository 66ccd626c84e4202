package mysql

// The LAST_INSERT_ID(id) trick makes LastInsertId return the existing row's
// id on the duplicate path, so find-or-create is one round trip.
const upsertPropertySQL = `
INSERT INTO properties
  (name, slug, city, address, description)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  id          = LAST_INSERT_ID(id),
  city        = VALUES(city),
  address     = VALUES(address),
  description = VALUES(description),
  updated_at  = CURRENT_TIMESTAMP
`

const insertReviewsPrefix = "INSERT INTO reviews\n" +
	"  (id, property_id, direction, source, listing_name, guest_name, guest_email, guest_platform_id,\n" +
	"   submitted_at, channel, overall_rating, categories, public_review,\n" +
	"   approved_for_website, would_host_again, incident_reported)\nVALUES "

// approved_for_website is deliberately absent from the update list: the
// flag belongs to the approval commands and must survive re-ingest.
const insertReviewsOnDup = " ON DUPLICATE KEY UPDATE\n" +
	"  listing_name      = VALUES(listing_name),\n" +
	"  guest_name        = VALUES(guest_name),\n" +
	"  guest_email       = COALESCE(VALUES(guest_email), reviews.guest_email),\n" +
	"  guest_platform_id = COALESCE(VALUES(guest_platform_id), reviews.guest_platform_id),\n" +
	"  submitted_at      = VALUES(submitted_at),\n" +
	"  channel           = VALUES(channel),\n" +
	"  overall_rating    = COALESCE(VALUES(overall_rating), reviews.overall_rating),\n" +
	"  categories        = VALUES(categories),\n" +
	"  public_review     = VALUES(public_review),\n" +
	"  would_host_again  = COALESCE(VALUES(would_host_again), reviews.would_host_again),\n" +
	"  incident_reported = COALESCE(VALUES(incident_reported), reviews.incident_reported)\n"

const upsertIncidentSQL = `
INSERT INTO incidents
  (guest_platform_id, property_name, occurred_at, type, description, cost, resolved)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  description = VALUES(description),
  cost        = VALUES(cost),
  resolved    = VALUES(resolved)
`

const setApprovalSQL = `UPDATE reviews SET approved_for_website = ? WHERE id = ?`

const getPropertyBySlugSQL = `
SELECT id, name, slug, city, address, description
FROM properties
WHERE slug = ?
`

const listPropertiesSQL = `
SELECT id, name, slug, city, address, description
FROM properties
ORDER BY id
`

const listAllReviewsSQL = `
SELECT id, property_id, direction, source, listing_name, guest_name, guest_email, guest_platform_id,
       submitted_at, channel, overall_rating, categories, public_review,
       approved_for_website, would_host_again, incident_reported
FROM reviews
ORDER BY property_id, submitted_at DESC, id DESC
`

const listReviewsSQL = `
SELECT id, property_id, direction, source, listing_name, guest_name, guest_email, guest_platform_id,
       submitted_at, channel, overall_rating, categories, public_review,
       approved_for_website, would_host_again, incident_reported
FROM reviews
WHERE property_id = ?
ORDER BY submitted_at DESC, id DESC
LIMIT ?
`

const guestStaysSQL = `
SELECT COUNT(*), COALESCE(AVG(overall_rating), 0)
FROM reviews
WHERE direction = 'host-to-guest' AND guest_platform_id = ?
`

const guestIncidentsSQL = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN type = 'damage' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN type = 'damage' THEN cost ELSE 0 END), 0)
FROM incidents
WHERE guest_platform_id = ?
`
