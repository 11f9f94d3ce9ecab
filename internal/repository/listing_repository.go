package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"olongapo-directory/internal/domain"

	"github.com/google/uuid"
)

// SortMode selects the tertiary ordering of search results. Premium and
// featured listings are always pinned ahead of the requested mode.
type SortMode string

const (
	SortFeatured SortMode = "featured"
	SortNewest   SortMode = "newest"
	SortNameAsc  SortMode = "name_asc"
	SortNameDesc SortMode = "name_desc"
)

// maxMapPins caps the reduced map projection so a wide bounding box
// cannot pull the whole table.
const maxMapPins = 500

// SearchParams carries an already-resolved filter set for one search.
// Nil/empty members omit their clause entirely.
type SearchParams struct {
	Query         string
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	BarangayIDs   []uuid.UUID
	FeaturedOnly  bool
	Bounds        *domain.GeoBounds
	Sort          SortMode
	Page          int
	Limit         int
}

// ListingRepository defines the interface for listing data access
type ListingRepository interface {
	Search(ctx context.Context, params SearchParams) ([]*domain.Listing, int, error)
	SearchMap(ctx context.Context, params SearchParams) ([]*domain.MapPin, error)
	SuggestBusinesses(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error)
	HoursForDay(ctx context.Context, listingIDs []uuid.UUID, dayOfWeek int) (map[uuid.UUID]domain.OperatingHours, error)
	ActiveCategoryIDs(ctx context.Context) ([]uuid.UUID, error)
}

type listingRepository struct {
	db *sql.DB
}

// NewListingRepository creates a new instance of ListingRepository
func NewListingRepository(db *sql.DB) ListingRepository {
	return &listingRepository{db: db}
}

// buildWhere composes the filter clauses in their fixed precedence order.
// The approved+active baseline is always present; every other clause is
// appended only when its filter value is set. alias qualifies the
// listings columns when the query joins other tables ("l." or "").
func buildWhere(params SearchParams, alias string) (string, []interface{}) {
	clauses := []string{alias + "status = 'approved'", alias + "is_active = TRUE"}
	args := []interface{}{}
	argIndex := 1

	if strings.TrimSpace(params.Query) != "" {
		clauses = append(clauses, fmt.Sprintf("(%sname ILIKE $%d OR %sdescription ILIKE $%d)", alias, argIndex, alias, argIndex))
		args = append(args, "%"+params.Query+"%")
		argIndex++
	}

	if params.CategoryID != nil {
		clauses = append(clauses, fmt.Sprintf("%scategory_id = $%d", alias, argIndex))
		args = append(args, *params.CategoryID)
		argIndex++
	}

	if params.SubcategoryID != nil {
		clauses = append(clauses, fmt.Sprintf("%ssubcategory_id = $%d", alias, argIndex))
		args = append(args, *params.SubcategoryID)
		argIndex++
	}

	if len(params.BarangayIDs) > 0 {
		placeholders := make([]string, len(params.BarangayIDs))
		for i, id := range params.BarangayIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, id)
			argIndex++
		}
		clauses = append(clauses, fmt.Sprintf("%sbarangay_id IN (%s)", alias, strings.Join(placeholders, ", ")))
	}

	if params.FeaturedOnly {
		clauses = append(clauses, alias+"is_featured = TRUE")
	}

	if params.Bounds != nil {
		clauses = append(clauses, alias+"latitude IS NOT NULL", alias+"longitude IS NOT NULL")
		clauses = append(clauses, fmt.Sprintf("%slatitude BETWEEN $%d AND $%d", alias, argIndex, argIndex+1))
		args = append(args, params.Bounds.South, params.Bounds.North)
		argIndex += 2
		clauses = append(clauses, fmt.Sprintf("%slongitude BETWEEN $%d AND $%d", alias, argIndex, argIndex+1))
		args = append(args, params.Bounds.West, params.Bounds.East)
		argIndex += 2
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// orderBy maps a sort mode to its ORDER BY clause. Premium and featured
// listings lead regardless of mode; id ASC is the final tie-break so
// identical filters always page identically.
func orderBy(sort SortMode, alias string) string {
	var key string
	switch sort {
	case SortNewest:
		key = alias + "created_at DESC"
	case SortNameAsc:
		key = alias + "name ASC"
	case SortNameDesc:
		key = alias + "name DESC"
	default:
		key = alias + "created_at DESC"
	}
	return fmt.Sprintf("ORDER BY %sis_premium DESC, %sis_featured DESC, %s, %sid ASC", alias, alias, key, alias)
}

// Search runs the composed listing query and returns one page of rows
// plus the total count over the same filter set. A page past the end
// returns an empty slice with the correct total.
func (r *listingRepository) Search(ctx context.Context, params SearchParams) ([]*domain.Listing, int, error) {
	whereClause, args := buildWhere(params, "")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM listings %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count listings: %w", err)
	}

	offset := (params.Page - 1) * params.Limit

	query := fmt.Sprintf(`
		SELECT id, slug, name, description, category_id, subcategory_id, barangay_id,
		       address, phone, image_url, latitude, longitude, status, is_active,
		       is_featured, is_premium, created_at
		FROM listings
		%s
		%s
		LIMIT $%d OFFSET $%d
	`, whereClause, orderBy(params.Sort, ""), len(args)+1, len(args)+2)

	args = append(args, params.Limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search listings: %w", err)
	}
	defer rows.Close()

	listings := []*domain.Listing{}
	for rows.Next() {
		listing := &domain.Listing{}
		err := rows.Scan(
			&listing.ID,
			&listing.Slug,
			&listing.Name,
			&listing.Description,
			&listing.CategoryID,
			&listing.SubcategoryID,
			&listing.BarangayID,
			&listing.Address,
			&listing.Phone,
			&listing.ImageURL,
			&listing.Latitude,
			&listing.Longitude,
			&listing.Status,
			&listing.IsActive,
			&listing.IsFeatured,
			&listing.IsPremium,
			&listing.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, listing)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating listings: %w", err)
	}

	return listings, total, nil
}

// SearchMap runs the same filter set with the reduced pin projection.
// Pagination is replaced by a hard cap; rows without coordinates never
// appear because the bounds clauses exclude NULLs.
func (r *listingRepository) SearchMap(ctx context.Context, params SearchParams) ([]*domain.MapPin, error) {
	whereClause, args := buildWhere(params, "l.")

	query := fmt.Sprintf(`
		SELECT l.id, l.name, l.slug, l.latitude, l.longitude,
		       c.name AS category_name, COALESCE(sc.name, '') AS subcategory_name,
		       l.image_url
		FROM listings l
		JOIN categories c ON c.id = l.category_id
		LEFT JOIN categories sc ON sc.id = l.subcategory_id
		%s AND l.latitude IS NOT NULL AND l.longitude IS NOT NULL
		%s
		LIMIT %d
	`, whereClause, orderBy(params.Sort, "l."), maxMapPins)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query map pins: %w", err)
	}
	defer rows.Close()

	pins := []*domain.MapPin{}
	for rows.Next() {
		pin := &domain.MapPin{}
		err := rows.Scan(
			&pin.ID,
			&pin.Name,
			&pin.Slug,
			&pin.Latitude,
			&pin.Longitude,
			&pin.CategoryName,
			&pin.SubcategoryName,
			&pin.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan map pin: %w", err)
		}
		pins = append(pins, pin)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating map pins: %w", err)
	}

	return pins, nil
}

// SuggestBusinesses returns up to limit approved+active business names
// matching the prefix, case-insensitive
func (r *listingRepository) SuggestBusinesses(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	query := `
		SELECT id, name, slug
		FROM listings
		WHERE status = 'approved' AND is_active = TRUE AND name ILIKE $1
		ORDER BY is_premium DESC, name ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, "%"+prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest businesses: %w", err)
	}
	defer rows.Close()

	suggestions := []domain.Suggestion{}
	for rows.Next() {
		var s domain.Suggestion
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating suggestions: %w", err)
	}

	return suggestions, nil
}

// HoursForDay fetches the operating-hours rows for the given listings on
// one weekday, keyed by listing id. Listings without a row for that day
// are simply absent from the map.
func (r *listingRepository) HoursForDay(ctx context.Context, listingIDs []uuid.UUID, dayOfWeek int) (map[uuid.UUID]domain.OperatingHours, error) {
	hours := map[uuid.UUID]domain.OperatingHours{}
	if len(listingIDs) == 0 {
		return hours, nil
	}

	placeholders := make([]string, len(listingIDs))
	args := []interface{}{dayOfWeek}
	for i, id := range listingIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	query := fmt.Sprintf(`
		SELECT listing_id, day_of_week, opens_at, closes_at, is_closed
		FROM operating_hours
		WHERE day_of_week = $1 AND listing_id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operating hours: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h domain.OperatingHours
		if err := rows.Scan(&h.ListingID, &h.DayOfWeek, &h.OpensAt, &h.ClosesAt, &h.IsClosed); err != nil {
			return nil, fmt.Errorf("failed to scan operating hours: %w", err)
		}
		hours[h.ListingID] = h
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operating hours: %w", err)
	}

	return hours, nil
}

// ActiveCategoryIDs returns the category id of every approved+active
// listing, one element per listing, for count aggregation
func (r *listingRepository) ActiveCategoryIDs(ctx context.Context) ([]uuid.UUID, error) {
	query := `
		SELECT category_id
		FROM listings
		WHERE status = 'approved' AND is_active = TRUE
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query listing category ids: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan category id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category ids: %w", err)
	}

	return ids, nil
}
