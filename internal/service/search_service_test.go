package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"olongapo-directory/internal/domain"
	"olongapo-directory/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Mock repositories for testing

type mockListingRepository struct {
	listings    []*domain.Listing
	total       int
	searchErr   error
	searchCalls int
	lastParams  repository.SearchParams

	pins    []*domain.MapPin
	mapErr  error
	mapCall int

	hours    map[uuid.UUID]domain.OperatingHours
	hoursErr error

	suggestions  []domain.Suggestion
	suggestErr   error
	suggestCalls int

	categoryIDs    []uuid.UUID
	categoryIDsErr error
}

func (m *mockListingRepository) Search(ctx context.Context, params repository.SearchParams) ([]*domain.Listing, int, error) {
	m.searchCalls++
	m.lastParams = params
	if m.searchErr != nil {
		return nil, 0, m.searchErr
	}
	return m.listings, m.total, nil
}

func (m *mockListingRepository) SearchMap(ctx context.Context, params repository.SearchParams) ([]*domain.MapPin, error) {
	m.mapCall++
	m.lastParams = params
	if m.mapErr != nil {
		return nil, m.mapErr
	}
	return m.pins, nil
}

func (m *mockListingRepository) SuggestBusinesses(ctx context.Context, prefix string, limit int) ([]domain.Suggestion, error) {
	m.suggestCalls++
	if m.suggestErr != nil {
		return nil, m.suggestErr
	}
	if len(m.suggestions) > limit {
		return m.suggestions[:limit], nil
	}
	return m.suggestions, nil
}

func (m *mockListingRepository) HoursForDay(ctx context.Context, listingIDs []uuid.UUID, dayOfWeek int) (map[uuid.UUID]domain.OperatingHours, error) {
	if m.hoursErr != nil {
		return nil, m.hoursErr
	}
	return m.hours, nil
}

func (m *mockListingRepository) ActiveCategoryIDs(ctx context.Context) ([]uuid.UUID, error) {
	if m.categoryIDsErr != nil {
		return nil, m.categoryIDsErr
	}
	return m.categoryIDs, nil
}

type mockCategoryRepository struct {
	bySlug map[string]*domain.Category
	active []*domain.Category

	findErr error
	listErr error

	catSuggestions []domain.Suggestion
	subSuggestions []domain.Suggestion
	catSuggestErr  error
	subSuggestErr  error

	mu           sync.Mutex
	suggestCalls int
}

func (m *mockCategoryRepository) FindActiveBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	category, ok := m.bySlug[strings.ToLower(slug)]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	return category, nil
}

func (m *mockCategoryRepository) ListActive(ctx context.Context, topLevelOnly bool) ([]*domain.Category, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if !topLevelOnly {
		return m.active, nil
	}
	parents := []*domain.Category{}
	for _, category := range m.active {
		if category.ParentID == nil {
			parents = append(parents, category)
		}
	}
	return parents, nil
}

func (m *mockCategoryRepository) SuggestByName(ctx context.Context, prefix string, limit int, subcategories bool) ([]domain.Suggestion, error) {
	m.mu.Lock()
	m.suggestCalls++
	m.mu.Unlock()
	if subcategories {
		if m.subSuggestErr != nil {
			return nil, m.subSuggestErr
		}
		return m.subSuggestions, nil
	}
	if m.catSuggestErr != nil {
		return nil, m.catSuggestErr
	}
	return m.catSuggestions, nil
}

type mockBarangayRepository struct {
	known map[string]uuid.UUID
	err   error
}

func (m *mockBarangayRepository) ResolveSlugs(ctx context.Context, citySlug string, slugs []string) ([]uuid.UUID, error) {
	if m.err != nil {
		return nil, m.err
	}
	ids := []uuid.UUID{}
	for _, slug := range slugs {
		if id, ok := m.known[strings.ToLower(slug)]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockBarangayRepository) ListActive(ctx context.Context, citySlug string) ([]*domain.Barangay, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []*domain.Barangay{}, nil
}

func newTestSearchService(listingRepo *mockListingRepository, categoryRepo *mockCategoryRepository, barangayRepo *mockBarangayRepository) *searchService {
	return NewSearchService(listingRepo, categoryRepo, barangayRepo, zap.NewNop()).(*searchService)
}

func makeListings(n int) []*domain.Listing {
	listings := make([]*domain.Listing, n)
	for i := range listings {
		listings[i] = &domain.Listing{
			ID:         uuid.New(),
			Name:       "Listing",
			Status:     domain.StatusApproved,
			IsActive:   true,
			CategoryID: uuid.New(),
			CreatedAt:  time.Now(),
		}
	}
	return listings
}

func TestSearchPaginationMeta(t *testing.T) {
	listingRepo := &mockListingRepository{listings: makeListings(20), total: 100}
	svc := newTestSearchService(listingRepo, &mockCategoryRepository{}, &mockBarangayRepository{})

	filter := Filter{Query: "pizza", City: DefaultCity, Sort: repository.SortFeatured, Page: 1, Limit: 20}
	result, err := svc.Search(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Listings) != 20 {
		t.Errorf("expected 20 listings, got %d", len(result.Listings))
	}
	if result.Total != 100 {
		t.Errorf("expected total 100, got %d", result.Total)
	}
	if result.TotalPages != 5 {
		t.Errorf("expected 5 total pages, got %d", result.TotalPages)
	}
	if result.Page != 1 {
		t.Errorf("expected page 1, got %d", result.Page)
	}
}

func TestSearchUnresolvedCategoryYieldsEmptyResult(t *testing.T) {
	listingRepo := &mockListingRepository{listings: makeListings(3), total: 3}
	svc := newTestSearchService(listingRepo, &mockCategoryRepository{bySlug: map[string]*domain.Category{}}, &mockBarangayRepository{})

	filter := Filter{Category: "no-such-category", City: DefaultCity, Sort: repository.SortFeatured, Page: 1, Limit: 20}
	result, err := svc.Search(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Listings) != 0 {
		t.Errorf("expected empty result, got %d listings", len(result.Listings))
	}
	if result.Total != 0 || result.TotalPages != 0 {
		t.Errorf("expected zero totals, got total=%d pages=%d", result.Total, result.TotalPages)
	}
	if listingRepo.searchCalls != 0 {
		t.Errorf("expected no listing query for unresolved category, got %d calls", listingRepo.searchCalls)
	}
}

func TestSearchResolvesCategorySlugCaseInsensitive(t *testing.T) {
	categoryID := uuid.New()
	categoryRepo := &mockCategoryRepository{bySlug: map[string]*domain.Category{
		"food": {ID: categoryID, Slug: "food", IsActive: true},
	}}
	listingRepo := &mockListingRepository{}
	svc := newTestSearchService(listingRepo, categoryRepo, &mockBarangayRepository{})

	filter := Filter{Category: "FOOD", City: DefaultCity, Sort: repository.SortFeatured, Page: 1, Limit: 20}
	if _, err := svc.Search(context.Background(), filter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if listingRepo.lastParams.CategoryID == nil || *listingRepo.lastParams.CategoryID != categoryID {
		t.Errorf("expected category id %s in params, got %v", categoryID, listingRepo.lastParams.CategoryID)
	}
}

func TestSearchDropsUnknownBarangaySlugs(t *testing.T) {
	barrettoID := uuid.New()
	barangayRepo := &mockBarangayRepository{known: map[string]uuid.UUID{"barretto": barrettoID}}
	listingRepo := &mockListingRepository{}
	svc := newTestSearchService(listingRepo, &mockCategoryRepository{}, barangayRepo)

	filter := Filter{
		Barangays: []string{"barretto", "unknown-slug"},
		City:      DefaultCity,
		Sort:      repository.SortFeatured,
		Page:      1,
		Limit:     20,
	}
	if _, err := svc.Search(context.Background(), filter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := listingRepo.lastParams.BarangayIDs
	if len(ids) != 1 || ids[0] != barrettoID {
		t.Errorf("expected only the resolved barangay id, got %v", ids)
	}
}

func TestSearchDataAccessFailureIsQueryFailed(t *testing.T) {
	listingRepo := &mockListingRepository{searchErr: errors.New("connection refused")}
	svc := newTestSearchService(listingRepo, &mockCategoryRepository{}, &mockBarangayRepository{})

	filter := Filter{City: DefaultCity, Sort: repository.SortFeatured, Page: 1, Limit: 20}
	_, err := svc.Search(context.Background(), filter)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrQueryFailed) {
		t.Errorf("expected ErrQueryFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected underlying message attached, got %q", err.Error())
	}
}

func TestSearchRepeatedQueryIsIdempotent(t *testing.T) {
	listingRepo := &mockListingRepository{listings: makeListings(5), total: 5}
	svc := newTestSearchService(listingRepo, &mockCategoryRepository{}, &mockBarangayRepository{})

	filter := Filter{Query: "cafe", City: DefaultCity, Sort: repository.SortNewest, Page: 1, Limit: 20}
	first, err := svc.Search(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Search(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Total != second.Total || len(first.Listings) != len(second.Listings) {
		t.Errorf("repeated identical search differed: %d/%d vs %d/%d",
			first.Total, len(first.Listings), second.Total, len(second.Listings))
	}
	for i := range first.Listings {
		if first.Listings[i].ID != second.Listings[i].ID {
			t.Errorf("row %d differs between identical searches", i)
		}
	}
}

func TestSearchOpenNowFiltersPageRows(t *testing.T) {
	open := &domain.Listing{ID: uuid.New(), Name: "Open Cafe", Status: domain.StatusApproved, IsActive: true}
	closedToday := &domain.Listing{ID: uuid.New(), Name: "Closed Cafe", Status: domain.StatusApproved, IsActive: true}
	noHours := &domain.Listing{ID: uuid.New(), Name: "No Hours", Status: domain.StatusApproved, IsActive: true}

	listingRepo := &mockListingRepository{
		listings: []*domain.Listing{open, closedToday, noHours},
		total:    3,
		hours: map[uuid.UUID]domain.OperatingHours{
			open.ID:        {ListingID: open.ID, OpensAt: "08:00", ClosesAt: "22:00"},
			closedToday.ID: {ListingID: closedToday.ID, OpensAt: "08:00", ClosesAt: "22:00", IsClosed: true},
		},
	}
	svc := newTestSearchService(listingRepo, &mockCategoryRepository{}, &mockBarangayRepository{})
	svc.now = func() time.Time {
		return time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	}

	filter := Filter{OpenNow: true, City: DefaultCity, Sort: repository.SortFeatured, Page: 1, Limit: 20}
	result, err := svc.Search(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Listings) != 1 || result.Listings[0].ID != open.ID {
		t.Errorf("expected only the open listing, got %d rows", len(result.Listings))
	}

	// The page total is unaffected by the post-fetch filter
	if result.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Total)
	}
}

func TestSearchMapAppliesBounds(t *testing.T) {
	pin := &domain.MapPin{ID: uuid.New(), Name: "Pinned", Latitude: 14.85, Longitude: 120.30}
	listingRepo := &mockListingRepository{pins: []*domain.MapPin{pin}}
	svc := newTestSearchService(listingRepo, &mockCategoryRepository{}, &mockBarangayRepository{})

	bounds := domain.GeoBounds{North: 14.90, South: 14.80, East: 120.35, West: 120.25}
	filter := Filter{City: DefaultCity, Sort: repository.SortFeatured, Page: 1, Limit: 20}

	pins, err := svc.SearchMap(context.Background(), filter, bounds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pins) != 1 {
		t.Fatalf("expected 1 pin, got %d", len(pins))
	}
	if listingRepo.lastParams.Bounds == nil || *listingRepo.lastParams.Bounds != bounds {
		t.Errorf("expected bounds forwarded to repository, got %v", listingRepo.lastParams.Bounds)
	}
}

func TestWithinHours(t *testing.T) {
	noon := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	lateNight := time.Date(2024, 6, 5, 1, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		now    time.Time
		opens  string
		closes string
		want   bool
	}{
		{"inside window", noon, "08:00", "22:00", true},
		{"before opening", time.Date(2024, 6, 5, 7, 0, 0, 0, time.UTC), "08:00", "22:00", false},
		{"at closing", time.Date(2024, 6, 5, 22, 0, 0, 0, time.UTC), "08:00", "22:00", false},
		{"overnight still open", lateNight, "18:00", "02:00", true},
		{"overnight closed", noon, "18:00", "02:00", false},
		{"malformed hours", noon, "late", "later", false},
	}

	for _, tc := range cases {
		if got := withinHours(tc.now, tc.opens, tc.closes); got != tc.want {
			t.Errorf("%s: withinHours(%s, %q, %q) = %v, want %v", tc.name, tc.now, tc.opens, tc.closes, got, tc.want)
		}
	}
}

func TestBoundsContains(t *testing.T) {
	bounds := domain.GeoBounds{North: 14.90, South: 14.80, East: 120.35, West: 120.25}

	if !bounds.Contains(14.85, 120.30) {
		t.Error("expected point inside bounds to match")
	}
	if bounds.Contains(14.95, 120.30) {
		t.Error("expected point north of bounds to be excluded")
	}
}
