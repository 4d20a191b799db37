package domain

// Quotation statuses. A quotation starts as StatusNew and is moved through
// the pipeline from the back office.
const (
	QuotationStatusNew       = "new"
	QuotationStatusContacted = "contacted"
	QuotationStatusClosed    = "closed"
)

// Message is a contact-form submission. FollowedUp is toggled from the
// back office once the enquiry has been handled.
type Message struct {
	BaseModel
	Name       string `gorm:"size:160;not null" json:"name"`
	Email      string `gorm:"size:255;not null" json:"email"`
	Phone      string `gorm:"size:40" json:"phone"`
	Subject    string `gorm:"size:200" json:"subject"`
	Body       string `gorm:"type:text" json:"body"`
	FollowedUp bool   `gorm:"not null;default:false" json:"followed_up"`
}

// Quotation is a public request for a machine quote, optionally tied to a
// catalog product.
type Quotation struct {
	BaseModel
	Name      string   `gorm:"size:160;not null" json:"name"`
	Email     string   `gorm:"size:255;not null" json:"email"`
	Phone     string   `gorm:"size:40" json:"phone"`
	Company   string   `gorm:"size:160" json:"company"`
	Quantity  int      `gorm:"not null;default:1" json:"quantity"`
	Notes     string   `gorm:"type:text" json:"notes"`
	Status    string   `gorm:"size:20;not null;default:new" json:"status"`
	ProductID uint     `gorm:"index" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
