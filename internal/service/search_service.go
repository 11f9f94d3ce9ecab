package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"olongapo-directory/internal/domain"
	"olongapo-directory/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrQueryFailed is the single fatal error class of the search core.
	// The underlying cause is attached for logs; callers map it to a 5xx
	// with a generic message.
	ErrQueryFailed = errors.New("query failed")
)

// SearchResult is one page of listings plus the pagination meta computed
// from the independent total count
type SearchResult struct {
	Listings   []*domain.Listing
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// SearchService composes filters, slug resolution and the listing query
type SearchService interface {
	Search(ctx context.Context, filter Filter) (*SearchResult, error)
	SearchMap(ctx context.Context, filter Filter, bounds domain.GeoBounds) ([]*domain.MapPin, error)
}

type searchService struct {
	listingRepo  repository.ListingRepository
	categoryRepo repository.CategoryRepository
	barangayRepo repository.BarangayRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewSearchService creates a new instance of SearchService
func NewSearchService(
	listingRepo repository.ListingRepository,
	categoryRepo repository.CategoryRepository,
	barangayRepo repository.BarangayRepository,
	logger *zap.Logger,
) SearchService {
	return &searchService{
		listingRepo:  listingRepo,
		categoryRepo: categoryRepo,
		barangayRepo: barangayRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// resolveParams turns filter slugs into identifiers. The three slug
// groups resolve concurrently. A category or subcategory slug that does
// not match an active record makes the whole search empty (miss=true);
// unresolved barangay slugs are silently dropped.
func (s *searchService) resolveParams(ctx context.Context, filter Filter) (repository.SearchParams, bool, error) {
	params := repository.SearchParams{
		Query:        filter.Query,
		FeaturedOnly: filter.FeaturedOnly,
		Sort:         filter.Sort,
		Page:         filter.Page,
		Limit:        filter.Limit,
	}

	var (
		categoryID      *uuid.UUID
		subcategoryID   *uuid.UUID
		barangayIDs     []uuid.UUID
		categoryMiss    bool
		subcategoryMiss bool
	)

	g, gctx := errgroup.WithContext(ctx)

	if filter.Category != "" {
		g.Go(func() error {
			category, err := s.categoryRepo.FindActiveBySlug(gctx, filter.Category)
			if err != nil {
				if errors.Is(err, repository.ErrCategoryNotFound) {
					categoryMiss = true
					return nil
				}
				return err
			}
			categoryID = &category.ID
			return nil
		})
	}

	if filter.Subcategory != "" {
		g.Go(func() error {
			subcategory, err := s.categoryRepo.FindActiveBySlug(gctx, filter.Subcategory)
			if err != nil {
				if errors.Is(err, repository.ErrCategoryNotFound) {
					subcategoryMiss = true
					return nil
				}
				return err
			}
			subcategoryID = &subcategory.ID
			return nil
		})
	}

	if len(filter.Barangays) > 0 {
		g.Go(func() error {
			ids, err := s.barangayRepo.ResolveSlugs(gctx, filter.City, filter.Barangays)
			if err != nil {
				return err
			}
			barangayIDs = ids
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return params, false, err
	}

	params.CategoryID = categoryID
	params.SubcategoryID = subcategoryID
	params.BarangayIDs = barangayIDs
	return params, categoryMiss || subcategoryMiss, nil
}

// Search resolves the filter and runs the composed listing query. The
// open-now filter is applied to the returned page after the fetch and
// does not change the pagination total.
func (s *searchService) Search(ctx context.Context, filter Filter) (*SearchResult, error) {
	params, miss, err := s.resolveParams(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	result := &SearchResult{
		Listings: []*domain.Listing{},
		Page:     filter.Page,
		Limit:    filter.Limit,
	}

	if miss {
		return result, nil
	}

	listings, total, err := s.listingRepo.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	if filter.OpenNow {
		listings, err = s.filterOpenNow(ctx, listings)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
		}
	}

	result.Listings = listings
	result.Total = total
	result.TotalPages = (total + filter.Limit - 1) / filter.Limit
	return result, nil
}

// SearchMap resolves the filter and runs the reduced pin query over the
// supplied bounding box
func (s *searchService) SearchMap(ctx context.Context, filter Filter, bounds domain.GeoBounds) ([]*domain.MapPin, error) {
	params, miss, err := s.resolveParams(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	if miss {
		return []*domain.MapPin{}, nil
	}

	params.Bounds = &bounds
	pins, err := s.listingRepo.SearchMap(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	return pins, nil
}

// filterOpenNow keeps only listings whose schedule for today exists, is
// not marked closed, and spans the current local time
func (s *searchService) filterOpenNow(ctx context.Context, listings []*domain.Listing) ([]*domain.Listing, error) {
	if len(listings) == 0 {
		return listings, nil
	}

	ids := make([]uuid.UUID, len(listings))
	for i, listing := range listings {
		ids[i] = listing.ID
	}

	now := s.now()
	hours, err := s.listingRepo.HoursForDay(ctx, ids, int(now.Weekday()))
	if err != nil {
		return nil, err
	}

	open := []*domain.Listing{}
	for _, listing := range listings {
		h, ok := hours[listing.ID]
		if !ok || h.IsClosed {
			continue
		}
		if withinHours(now, h.OpensAt, h.ClosesAt) {
			open = append(open, listing)
		}
	}
	return open, nil
}

// withinHours checks the wall-clock window. A closing time at or before
// the opening time means the window runs past midnight.
func withinHours(now time.Time, opensAt, closesAt string) bool {
	opens, okOpen := parseClock(opensAt)
	closes, okClose := parseClock(closesAt)
	if !okOpen || !okClose {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	if closes <= opens {
		return minute >= opens || minute < closes
	}
	return minute >= opens && minute < closes
}

// parseClock converts "HH:MM" to minutes since midnight
func parseClock(raw string) (int, bool) {
	t, err := time.Parse("15:04", raw)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
