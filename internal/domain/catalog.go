package domain

// Category groups products, e.g. "Excavators" or "Wheel Loaders".
// Deleting a category that still has products is refused.
type Category struct {
	BaseModel
	Name        string `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Slug        string `gorm:"size:140;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"size:500" json:"description"`
}

// EquipmentType is a secondary product classification, e.g. "Crawler"
// or "Mini". Deleting a type that still has products is refused.
type EquipmentType struct {
	BaseModel
	Name string `gorm:"size:120;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:140;uniqueIndex;not null" json:"slug"`
}

// TableName keeps the table name short; GORM would otherwise pluralize
// the full struct name.
func (EquipmentType) TableName() string { return "types" }

// Product is a machine in the distributor's catalog. Position drives the
// manual ordering of the public product grid; Image and Brochure are
// storage-relative paths.
type Product struct {
	BaseModel
	Name        string         `gorm:"size:200;not null" json:"name"`
	Slug        string         `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Summary     string         `gorm:"size:500" json:"summary"`
	Description string         `gorm:"type:text" json:"description"`
	Image       string         `gorm:"size:255" json:"image"`
	Brochure    string         `gorm:"size:255" json:"brochure"`
	Position    int            `gorm:"not null;default:0;index" json:"position"`
	Featured    bool           `gorm:"not null;default:false" json:"featured"`
	CategoryID  uint           `gorm:"index" json:"category_id"`
	Category    *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	TypeID      uint           `gorm:"index" json:"type_id"`
	Type        *EquipmentType `gorm:"foreignKey:TypeID" json:"type,omitempty"`
}
