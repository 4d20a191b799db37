package domain

// Role is a named set of back-office permissions. Permissions are
// "<resource>:<action>" strings, e.g. "blogs:write". Deleting a role that
// users still hold is refused.
type Role struct {
	BaseModel
	Name        string   `gorm:"size:80;uniqueIndex;not null" json:"name"`
	Description string   `gorm:"size:255" json:"description"`
	Permissions []string `gorm:"serializer:json" json:"permissions"`
}

// User is a back-office account.
type User struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255" json:"-"`
	RoleID       uint   `gorm:"index" json:"role_id"`
	Role         *Role  `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

// PermissionService gates admin routes by user and keeps role definitions in
// sync with the roles resource. A nil service means permission gating is
// disabled and every authenticated user is allowed.
type PermissionService interface {
	// SyncRole creates or updates the role and replaces its permission set.
	SyncRole(roleID, name string, permissions []string) error
	RemoveRole(roleID string) error
	AssignRole(userID, roleID string) error
	UnassignRole(userID, roleID string) error
	// Allows reports whether the user may perform action on resource.
	Allows(userID, resource, action string) bool
	Close() error
}
