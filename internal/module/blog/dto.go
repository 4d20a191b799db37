package blog

// blogRequest is the create/update input. Submitted as JSON or as a
// multipart form when an image accompanies the post; the image itself
// travels as the "image" file field with the keep/replace/remove protocol.
type blogRequest struct {
	Title     string `json:"title" form:"title" binding:"required,min=2,max=200"`
	Slug      string `json:"slug" form:"slug" binding:"omitempty,max=220"`
	Excerpt   string `json:"excerpt" form:"excerpt" binding:"omitempty,max=500"`
	Body      string `json:"body" form:"body"`
	Published bool   `json:"published" form:"published"`
}
