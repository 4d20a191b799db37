package user

// createUserRequest is the input for creating a back-office account.
type createUserRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8,max=72"`
	RoleID   uint   `json:"role_id" form:"role_id" binding:"omitempty,min=1"`
}

// updateUserRequest is the input for updating an account. An empty password
// keeps the current one.
type updateUserRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"omitempty,min=8,max=72"`
	RoleID   uint   `json:"role_id" form:"role_id" binding:"omitempty,min=1"`
}

// roleRequest is the input for creating or updating a role. Permissions are
// "<resource>:<action>" strings with action one of read, write, delete.
type roleRequest struct {
	Name        string   `json:"name" form:"name" binding:"required,min=2,max=80"`
	Description string   `json:"description" form:"description" binding:"omitempty,max=255"`
	Permissions []string `json:"permissions" form:"permissions" binding:"omitempty,dive,required"`
}
