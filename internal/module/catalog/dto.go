package catalog

// productRequest is the create/update input for a product. The image and
// brochure travel as multipart file fields named "image" and "brochure".
type productRequest struct {
	Name        string `json:"name" form:"name" binding:"required,min=2,max=200"`
	Slug        string `json:"slug" form:"slug" binding:"omitempty,max=220"`
	Summary     string `json:"summary" form:"summary" binding:"omitempty,max=500"`
	Description string `json:"description" form:"description"`
	Featured    bool   `json:"featured" form:"featured"`
	CategoryID  uint   `json:"category_id" form:"category_id" binding:"required,min=1"`
	TypeID      uint   `json:"type_id" form:"type_id" binding:"required,min=1"`
}

// positionRequest moves a product to a new slot in the manual ordering.
type positionRequest struct {
	Position int `json:"position" binding:"min=0"`
}

type categoryRequest struct {
	Name        string `json:"name" form:"name" binding:"required,min=2,max=120"`
	Slug        string `json:"slug" form:"slug" binding:"omitempty,max=140"`
	Description string `json:"description" form:"description" binding:"omitempty,max=500"`
}

type typeRequest struct {
	Name string `json:"name" form:"name" binding:"required,min=2,max=120"`
	Slug string `json:"slug" form:"slug" binding:"omitempty,max=140"`
}
