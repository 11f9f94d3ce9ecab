package domain

import "github.com/google/uuid"

// Suggestion is a single typeahead entry (a business, category or
// subcategory name match)
type Suggestion struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	Slug string    `json:"slug" db:"slug"`
}
