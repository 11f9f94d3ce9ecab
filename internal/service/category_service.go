package service

import (
	"context"
	"fmt"

	"olongapo-directory/internal/domain"
	"olongapo-directory/internal/repository"

	"github.com/google/uuid"
)

// CategoryService produces the annotated category list for directory pages
type CategoryService interface {
	CategoriesWithCounts(ctx context.Context, topLevelOnly bool) ([]*domain.CategoryWithCount, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	listingRepo  repository.ListingRepository
}

// NewCategoryService creates a new instance of CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository, listingRepo repository.ListingRepository) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		listingRepo:  listingRepo,
	}
}

// CategoriesWithCounts annotates every active category with its listing
// count, recomputed per request from the live listing set
func (s *categoryService) CategoriesWithCounts(ctx context.Context, topLevelOnly bool) ([]*domain.CategoryWithCount, error) {
	categories, err := s.categoryRepo.ListActive(ctx, topLevelOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	categoryIDs, err := s.listingRepo.ActiveCategoryIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	return CountListings(categories, categoryIDs, !topLevelOnly), nil
}

// CountListings annotates categories with listing counts. categoryIDs
// holds one element per visible listing. With rollUp set, each child's
// direct count is added into its parent; the child itself keeps its
// direct count, so a parent reports its own listings plus its
// children's, never deeper. Categories with no listings stay in the
// result with a zero count.
func CountListings(categories []*domain.Category, categoryIDs []uuid.UUID, rollUp bool) []*domain.CategoryWithCount {
	direct := make(map[uuid.UUID]int, len(categories))
	for _, id := range categoryIDs {
		direct[id]++
	}

	totals := make(map[uuid.UUID]int, len(categories))
	for _, category := range categories {
		totals[category.ID] = direct[category.ID]
	}

	if rollUp {
		for _, category := range categories {
			if category.ParentID != nil {
				totals[*category.ParentID] += direct[category.ID]
			}
		}
	}

	annotated := make([]*domain.CategoryWithCount, len(categories))
	for i, category := range categories {
		annotated[i] = &domain.CategoryWithCount{
			Category:     *category,
			ListingCount: totals[category.ID],
		}
	}
	return annotated
}
