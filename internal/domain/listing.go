package domain

import (
	"time"

	"github.com/google/uuid"
)

// ListingStatus is the moderation state of a listing
type ListingStatus string

const (
	StatusPending  ListingStatus = "pending"
	StatusApproved ListingStatus = "approved"
	StatusRejected ListingStatus = "rejected"
)

// Listing represents a business directory entry
type Listing struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	Slug          string        `json:"slug" db:"slug"`
	Name          string        `json:"name" db:"name"`
	Description   string        `json:"description" db:"description"`
	CategoryID    uuid.UUID     `json:"category_id" db:"category_id"`
	SubcategoryID *uuid.UUID    `json:"subcategory_id,omitempty" db:"subcategory_id"`
	BarangayID    uuid.UUID     `json:"barangay_id" db:"barangay_id"`
	Address       string        `json:"address" db:"address"`
	Phone         string        `json:"phone" db:"phone"`
	ImageURL      string        `json:"image_url" db:"image_url"`
	Latitude      *float64      `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64      `json:"longitude,omitempty" db:"longitude"`
	Status        ListingStatus `json:"status" db:"status"`
	IsActive      bool          `json:"is_active" db:"is_active"`
	IsFeatured    bool          `json:"is_featured" db:"is_featured"`
	IsPremium     bool          `json:"is_premium" db:"is_premium"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// OperatingHours is one listing's schedule for a single weekday.
// DayOfWeek follows time.Weekday (0 = Sunday).
type OperatingHours struct {
	ListingID uuid.UUID `json:"listing_id" db:"listing_id"`
	DayOfWeek int       `json:"day_of_week" db:"day_of_week"`
	OpensAt   string    `json:"opens_at" db:"opens_at"`   // "HH:MM", 24-hour
	ClosesAt  string    `json:"closes_at" db:"closes_at"` // "HH:MM", 24-hour
	IsClosed  bool      `json:"is_closed" db:"is_closed"`
}

// MapPin is the reduced projection used for map rendering
type MapPin struct {
	ID              uuid.UUID `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Slug            string    `json:"slug" db:"slug"`
	Latitude        float64   `json:"latitude" db:"latitude"`
	Longitude       float64   `json:"longitude" db:"longitude"`
	CategoryName    string    `json:"category_name" db:"category_name"`
	SubcategoryName string    `json:"subcategory_name,omitempty" db:"subcategory_name"`
	ImageURL        string    `json:"image_url" db:"image_url"`
}

// GeoBounds is a rectangular map-area filter. Listings without
// coordinates never match a bounds query.
type GeoBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether the point falls inside the box (edges inclusive)
func (b GeoBounds) Contains(lat, lng float64) bool {
	return lat >= b.South && lat <= b.North && lng >= b.West && lng <= b.East
}
