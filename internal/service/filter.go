package service

import (
	"net/url"
	"strconv"
	"strings"

	"olongapo-directory/internal/repository"
)

const (
	// DefaultCity scopes barangay filters when the request names no city
	DefaultCity = "olongapo"

	// DefaultLimit is the page size applied when none is requested
	DefaultLimit = 20

	// MaxLimit bounds the page size a client can request
	MaxLimit = 100
)

// Filter is the normalized, request-scoped search filter. It is built
// fresh for every request and never persisted.
type Filter struct {
	Query        string
	Category     string
	Subcategory  string
	Barangays    []string
	City         string
	FeaturedOnly bool
	OpenNow      bool
	Sort         repository.SortMode
	Page         int
	Limit        int
}

// ParseFilter converts raw query parameters into a Filter. Parsing is
// total: missing, empty or malformed values fall back to defaults and no
// input ever produces an error.
func ParseFilter(params url.Values) Filter {
	filter := Filter{
		Query:        strings.TrimSpace(params.Get("q")),
		Category:     strings.TrimSpace(params.Get("category")),
		Subcategory:  strings.TrimSpace(params.Get("subcategory")),
		Barangays:    splitSlugs(params.Get("barangay")),
		City:         strings.TrimSpace(params.Get("city")),
		FeaturedOnly: parseBool(params.Get("featured")),
		OpenNow:      parseBool(params.Get("open_now")),
		Sort:         parseSort(params.Get("sort")),
		Page:         parsePositiveInt(params.Get("page"), 1),
		Limit:        parsePositiveInt(params.Get("limit"), DefaultLimit),
	}

	if filter.City == "" {
		filter.City = DefaultCity
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}

	return filter
}

// Values re-serializes the filter to query parameters. Defaults are
// emitted explicitly so a parsed-then-serialized filter parses back to
// an equivalent one.
func (f Filter) Values() url.Values {
	params := url.Values{}
	if f.Query != "" {
		params.Set("q", f.Query)
	}
	if f.Category != "" {
		params.Set("category", f.Category)
	}
	if f.Subcategory != "" {
		params.Set("subcategory", f.Subcategory)
	}
	if len(f.Barangays) > 0 {
		params.Set("barangay", strings.Join(f.Barangays, ","))
	}
	params.Set("city", f.City)
	if f.FeaturedOnly {
		params.Set("featured", "true")
	}
	if f.OpenNow {
		params.Set("open_now", "true")
	}
	params.Set("sort", string(f.Sort))
	params.Set("page", strconv.Itoa(f.Page))
	params.Set("limit", strconv.Itoa(f.Limit))
	return params
}

// splitSlugs splits a comma-separated slug list, dropping empty entries
func splitSlugs(raw string) []string {
	slugs := []string{}
	for _, part := range strings.Split(raw, ",") {
		slug := strings.TrimSpace(part)
		if slug != "" {
			slugs = append(slugs, slug)
		}
	}
	return slugs
}

func parseBool(raw string) bool {
	return raw == "true" || raw == "1"
}

// parseSort falls back to the featured sort for anything unrecognized
func parseSort(raw string) repository.SortMode {
	switch repository.SortMode(raw) {
	case repository.SortNewest, repository.SortNameAsc, repository.SortNameDesc:
		return repository.SortMode(raw)
	default:
		return repository.SortFeatured
	}
}

// parsePositiveInt clamps to at least 1; malformed input takes the fallback
func parsePositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if n < 1 {
		return 1
	}
	return n
}
