package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"olongapo-directory/internal/domain"

	"github.com/google/uuid"
)

// BarangayRepository defines the interface for barangay data access
type BarangayRepository interface {
	ResolveSlugs(ctx context.Context, citySlug string, slugs []string) ([]uuid.UUID, error)
	ListActive(ctx context.Context, citySlug string) ([]*domain.Barangay, error)
}

type barangayRepository struct {
	db *sql.DB
}

// NewBarangayRepository creates a new instance of BarangayRepository
func NewBarangayRepository(db *sql.DB) BarangayRepository {
	return &barangayRepository{db: db}
}

// ResolveSlugs maps barangay slugs to ids within one city. Resolution is
// case-insensitive and best-effort: slugs that do not match an active
// barangay are dropped, never reported as an error.
func (r *barangayRepository) ResolveSlugs(ctx context.Context, citySlug string, slugs []string) ([]uuid.UUID, error) {
	if len(slugs) == 0 {
		return []uuid.UUID{}, nil
	}

	placeholders := make([]string, len(slugs))
	args := []interface{}{citySlug}
	for i, slug := range slugs {
		placeholders[i] = fmt.Sprintf("LOWER($%d)", i+2)
		args = append(args, slug)
	}

	query := fmt.Sprintf(`
		SELECT b.id
		FROM barangays b
		JOIN cities c ON c.id = b.city_id
		WHERE b.is_active = TRUE
		  AND c.is_active = TRUE
		  AND LOWER(c.slug) = LOWER($1)
		  AND LOWER(b.slug) IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve barangay slugs: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan barangay id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating barangay ids: %w", err)
	}

	return ids, nil
}

// ListActive retrieves the active barangays of one city in name order
func (r *barangayRepository) ListActive(ctx context.Context, citySlug string) ([]*domain.Barangay, error) {
	query := `
		SELECT b.id, b.slug, b.name, b.city_id, b.is_active
		FROM barangays b
		JOIN cities c ON c.id = b.city_id
		WHERE b.is_active = TRUE AND c.is_active = TRUE AND LOWER(c.slug) = LOWER($1)
		ORDER BY b.name ASC
	`

	rows, err := r.db.QueryContext(ctx, query, citySlug)
	if err != nil {
		return nil, fmt.Errorf("failed to list barangays: %w", err)
	}
	defer rows.Close()

	barangays := []*domain.Barangay{}
	for rows.Next() {
		barangay := &domain.Barangay{}
		err := rows.Scan(
			&barangay.ID,
			&barangay.Slug,
			&barangay.Name,
			&barangay.CityID,
			&barangay.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan barangay: %w", err)
		}
		barangays = append(barangays, barangay)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating barangays: %w", err)
	}

	return barangays, nil
}
