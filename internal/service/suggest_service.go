package service

import (
	"context"

	"olongapo-directory/internal/domain"
	"olongapo-directory/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// MinSuggestionPrefix is the shortest prefix that triggers lookups
	MinSuggestionPrefix = 2

	// suggestionsPerGroup bounds each sub-collection to keep typeahead
	// payloads small
	suggestionsPerGroup = 5
)

// Suggestions is the composed typeahead result
type Suggestions struct {
	Businesses    []domain.Suggestion `json:"businesses"`
	Categories    []domain.Suggestion `json:"categories"`
	Subcategories []domain.Suggestion `json:"subcategories"`
}

// SuggestService composes the three typeahead lookups
type SuggestService interface {
	Suggest(ctx context.Context, prefix string) Suggestions
}

type suggestService struct {
	listingRepo  repository.ListingRepository
	categoryRepo repository.CategoryRepository
	logger       *zap.Logger
}

// NewSuggestService creates a new instance of SuggestService
func NewSuggestService(listingRepo repository.ListingRepository, categoryRepo repository.CategoryRepository, logger *zap.Logger) SuggestService {
	return &suggestService{
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// Suggest issues the business, category and subcategory lookups
// concurrently. A prefix shorter than two characters returns empty sets
// without touching the store. A failed sub-lookup degrades its own
// collection to empty; the other two still return.
func (s *suggestService) Suggest(ctx context.Context, prefix string) Suggestions {
	result := Suggestions{
		Businesses:    []domain.Suggestion{},
		Categories:    []domain.Suggestion{},
		Subcategories: []domain.Suggestion{},
	}

	if len(prefix) < MinSuggestionPrefix {
		return result
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		businesses, err := s.listingRepo.SuggestBusinesses(gctx, prefix, suggestionsPerGroup)
		if err != nil {
			s.logger.Warn("business suggestion lookup failed", zap.Error(err))
			return nil
		}
		result.Businesses = businesses
		return nil
	})

	g.Go(func() error {
		categories, err := s.categoryRepo.SuggestByName(gctx, prefix, suggestionsPerGroup, false)
		if err != nil {
			s.logger.Warn("category suggestion lookup failed", zap.Error(err))
			return nil
		}
		result.Categories = categories
		return nil
	})

	g.Go(func() error {
		subcategories, err := s.categoryRepo.SuggestByName(gctx, prefix, suggestionsPerGroup, true)
		if err != nil {
			s.logger.Warn("subcategory suggestion lookup failed", zap.Error(err))
			return nil
		}
		result.Subcategories = subcategories
		return nil
	})

	// Errors never propagate here; each lookup degrades on its own.
	_ = g.Wait()

	return result
}
