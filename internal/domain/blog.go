package domain

// Blog is a news or marketing article shown on the public site.
// Body holds sanitized rich text and is treated as an opaque string.
// Image is a storage-relative path served under the public storage base.
type Blog struct {
	BaseModel
	Title     string `gorm:"size:200;not null" json:"title"`
	Slug      string `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Excerpt   string `gorm:"size:500" json:"excerpt"`
	Body      string `gorm:"type:text" json:"body"`
	Image     string `gorm:"size:255" json:"image"`
	Published bool   `gorm:"not null;default:false" json:"published"`
	UserID    uint   `gorm:"index" json:"user_id"`
	User      *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
