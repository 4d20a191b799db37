package domain

import "time"

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the primary key. It satisfies the entity constraint of the
// generic CRUD layer.
func (m BaseModel) GetID() uint { return m.ID }

// PageRequest holds the list query parameters every listing endpoint accepts.
// Search is matched case-insensitively as a substring over the resource's
// designated display fields.
type PageRequest struct {
	Page   int
	Search string
}

// Page is the wire envelope returned by every list endpoint.
//
// Invariants: 1 <= CurrentPage <= LastPage when the filtered collection is
// non-empty; LastPage == 0 and Data empty when it is empty. A fresh envelope
// replaces the previous one entirely on every fetch; it is never patched in
// place.
type Page[T any] struct {
	Data        []T `json:"data"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}
