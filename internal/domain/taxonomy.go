package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a listing category. Categories form a tree of at
// most two levels: a category with a nil ParentID is top-level, anything
// else is a subcategory of a top-level category.
type Category struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Slug      string     `json:"slug" db:"slug"`
	Name      string     `json:"name" db:"name"`
	Icon      string     `json:"icon" db:"icon"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	SortOrder int        `json:"sort_order" db:"sort_order"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// CategoryWithCount is a category annotated with its listing count.
// For a top-level category the count includes its children's direct
// counts; a subcategory reports only its own.
type CategoryWithCount struct {
	Category
	ListingCount int `json:"listing_count"`
}

// Barangay is a neighborhood used as a location filter dimension
type Barangay struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Slug     string    `json:"slug" db:"slug"`
	Name     string    `json:"name" db:"name"`
	CityID   uuid.UUID `json:"city_id" db:"city_id"`
	IsActive bool      `json:"is_active" db:"is_active"`
}

// City groups barangays; listings are scoped to a city through their barangay
type City struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Slug     string    `json:"slug" db:"slug"`
	Name     string    `json:"name" db:"name"`
	IsActive bool      `json:"is_active" db:"is_active"`
}
