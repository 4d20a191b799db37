package domain

// Company is a represented brand or group entity shown on the about page.
type Company struct {
	BaseModel
	Name    string `gorm:"size:160;uniqueIndex;not null" json:"name"`
	Slug    string `gorm:"size:180;uniqueIndex;not null" json:"slug"`
	About   string `gorm:"type:text" json:"about"`
	Logo    string `gorm:"size:255" json:"logo"`
	Website string `gorm:"size:255" json:"website"`
}

// Location is a branch or dealership address.
type Location struct {
	BaseModel
	Name      string   `gorm:"size:160;not null" json:"name"`
	Address   string   `gorm:"size:255" json:"address"`
	City      string   `gorm:"size:120;index" json:"city"`
	Phone     string   `gorm:"size:40" json:"phone"`
	Email     string   `gorm:"size:255" json:"email"`
	MapURL    string   `gorm:"size:500" json:"map_url"`
	CompanyID uint     `gorm:"index" json:"company_id"`
	Company   *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}
