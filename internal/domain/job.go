package domain

import "time"

// Job is an open position listed on the career page.
type Job struct {
	BaseModel
	Title       string     `gorm:"size:200;not null" json:"title"`
	Slug        string     `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Location    string     `gorm:"size:120" json:"location"`
	Department  string     `gorm:"size:120" json:"department"`
	Summary     string     `gorm:"size:500" json:"summary"`
	Description string     `gorm:"type:text" json:"description"`
	Active      bool       `gorm:"not null" json:"active"`
	ClosesAt    *time.Time `json:"closes_at,omitempty"`
}
