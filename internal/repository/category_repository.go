package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"olongapo-directory/internal/domain"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	FindActiveBySlug(ctx context.Context, slug string) (*domain.Category, error)
	ListActive(ctx context.Context, topLevelOnly bool) ([]*domain.Category, error)
	SuggestByName(ctx context.Context, prefix string, limit int, subcategories bool) ([]domain.Suggestion, error)
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

// FindActiveBySlug looks up an active category by slug, case-insensitive.
// Inactive categories resolve as ErrCategoryNotFound.
func (r *categoryRepository) FindActiveBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := `
		SELECT id, slug, name, icon, parent_id, sort_order, is_active, created_at
		FROM categories
		WHERE LOWER(slug) = LOWER($1) AND is_active = TRUE
	`

	category := &domain.Category{}
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&category.ID,
		&category.Slug,
		&category.Name,
		&category.Icon,
		&category.ParentID,
		&category.SortOrder,
		&category.IsActive,
		&category.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category by slug: %w", err)
	}

	return category, nil
}

// ListActive retrieves all active categories in display order, parents
// and subcategories together unless topLevelOnly is set
func (r *categoryRepository) ListActive(ctx context.Context, topLevelOnly bool) ([]*domain.Category, error) {
	query := `
		SELECT id, slug, name, icon, parent_id, sort_order, is_active, created_at
		FROM categories
		WHERE is_active = TRUE
	`
	if topLevelOnly {
		query += " AND parent_id IS NULL"
	}
	query += " ORDER BY sort_order ASC, name ASC"

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*domain.Category{}
	for rows.Next() {
		category := &domain.Category{}
		err := rows.Scan(
			&category.ID,
			&category.Slug,
			&category.Name,
			&category.Icon,
			&category.ParentID,
			&category.SortOrder,
			&category.IsActive,
			&category.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

// SuggestByName returns up to limit active category names matching the
// prefix. subcategories=false matches top-level categories only,
// subcategories=true matches children only.
func (r *categoryRepository) SuggestByName(ctx context.Context, prefix string, limit int, subcategories bool) ([]domain.Suggestion, error) {
	parentClause := "parent_id IS NULL"
	if subcategories {
		parentClause = "parent_id IS NOT NULL"
	}

	query := fmt.Sprintf(`
		SELECT id, name, slug
		FROM categories
		WHERE is_active = TRUE AND %s AND name ILIKE $1
		ORDER BY sort_order ASC, name ASC
		LIMIT $2
	`, parentClause)

	rows, err := r.db.QueryContext(ctx, query, "%"+prefix+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest categories: %w", err)
	}
	defer rows.Close()

	suggestions := []domain.Suggestion{}
	for rows.Next() {
		var s domain.Suggestion
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug); err != nil {
			return nil, fmt.Errorf("failed to scan category suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category suggestions: %w", err)
	}

	return suggestions, nil
}
