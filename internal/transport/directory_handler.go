package transport

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"olongapo-directory/internal/domain"
	"olongapo-directory/internal/middleware"
	"olongapo-directory/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Meta carries the pagination metadata for listing pages
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
}

// ListingsResponse is the paginated listing-page payload
type ListingsResponse struct {
	Data []*domain.Listing `json:"data"`
	Meta Meta              `json:"meta"`
}

// MapResponse is the pin payload for map-area queries
type MapResponse struct {
	Pins []*domain.MapPin `json:"pins"`
}

// CategoriesResponse is the annotated category list payload
type CategoriesResponse struct {
	Categories []*domain.CategoryWithCount `json:"categories"`
}

// mapBoundsQuery validates the four bounding-box edges of a map query
type mapBoundsQuery struct {
	North float64 `validate:"gte=-90,lte=90,gtfield=South"`
	South float64 `validate:"gte=-90,lte=90"`
	East  float64 `validate:"gte=-180,lte=180"`
	West  float64 `validate:"gte=-180,lte=180"`
}

// DirectoryHandler handles the public search and browse endpoints
type DirectoryHandler struct {
	searchService   service.SearchService
	categoryService service.CategoryService
	suggestService  service.SuggestService
	logger          *zap.Logger
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(
	searchService service.SearchService,
	categoryService service.CategoryService,
	suggestService service.SuggestService,
	logger *zap.Logger,
) *DirectoryHandler {
	return &DirectoryHandler{
		searchService:   searchService,
		categoryService: categoryService,
		suggestService:  suggestService,
		logger:          logger,
	}
}

// RegisterRoutes registers all directory routes
func (h *DirectoryHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/listings", h.ListListings)
		r.Get("/listings/map", h.MapListings)
		r.Get("/categories", h.ListCategories)
		r.Get("/suggestions", h.Suggest)
	})
}

// ListListings handles paginated listing search
func (h *DirectoryHandler) ListListings(w http.ResponseWriter, r *http.Request) {
	filter := service.ParseFilter(r.URL.Query())

	result, err := h.searchService.Search(r.Context(), filter)
	if err != nil {
		h.respondQueryError(w, "listing search failed", err)
		return
	}

	response := ListingsResponse{
		Data: result.Listings,
		Meta: Meta{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	}

	middleware.RespondWithJSON(w, http.StatusOK, response)
}

// MapListings handles the reduced pin query for map rendering
func (h *DirectoryHandler) MapListings(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	bounds, err := parseBounds(params)
	if err != nil {
		h.logger.Debug("Invalid map bounds", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid map bounds")
		return
	}

	filter := service.ParseFilter(params)

	pins, err := h.searchService.SearchMap(r.Context(), filter, bounds)
	if err != nil {
		h.respondQueryError(w, "map search failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, MapResponse{Pins: pins})
}

// ListCategories handles the annotated category list
func (h *DirectoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	topLevelOnly := r.URL.Query().Get("top_level") == "true"

	categories, err := h.categoryService.CategoriesWithCounts(r.Context(), topLevelOnly)
	if err != nil {
		h.respondQueryError(w, "category counts failed", err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

// Suggest handles typeahead suggestions
func (h *DirectoryHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("q")
	suggestions := h.suggestService.Suggest(r.Context(), prefix)
	middleware.RespondWithJSON(w, http.StatusOK, suggestions)
}

// respondQueryError logs the operator-facing cause and returns a generic
// message to the client
func (h *DirectoryHandler) respondQueryError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	if errors.Is(err, service.ErrQueryFailed) {
		middleware.RespondWithError(w, http.StatusInternalServerError, "query failed")
		return
	}
	middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
}

// parseBounds reads and validates the four bounding-box edges. All four
// must be present and well-formed; bounds are a hard requirement of map
// queries, unlike the lenient listing filter.
func parseBounds(params url.Values) (domain.GeoBounds, error) {
	get := func(key string) (float64, error) {
		if !params.Has(key) {
			return 0, errors.New("missing bound: " + key)
		}
		return strconv.ParseFloat(params.Get(key), 64)
	}

	var bounds domain.GeoBounds
	var err error
	if bounds.North, err = get("north"); err != nil {
		return bounds, err
	}
	if bounds.South, err = get("south"); err != nil {
		return bounds, err
	}
	if bounds.East, err = get("east"); err != nil {
		return bounds, err
	}
	if bounds.West, err = get("west"); err != nil {
		return bounds, err
	}

	query := mapBoundsQuery{
		North: bounds.North,
		South: bounds.South,
		East:  bounds.East,
		West:  bounds.West,
	}
	if err := middleware.ValidateRequest(query); err != nil {
		return bounds, err
	}

	return bounds, nil
}
