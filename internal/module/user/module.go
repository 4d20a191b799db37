// Package user manages back-office accounts and roles. Role definitions and
// user-role assignments are mirrored into the permission service so the
// admin route gate sees changes immediately.
package user

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/crud"
	"github.com/tracnorth/site/internal/domain"
	"github.com/tracnorth/site/internal/middleware"
	"github.com/tracnorth/site/internal/pkg"
)

// Module wires users and roles.
type Module struct {
	users *crud.Repository[domain.User]
	roles *crud.Repository[domain.Role]

	userHandler *crud.Handler[domain.User]
	roleHandler *crud.Handler[domain.Role]

	perms domain.PermissionService
}

// NewModule creates the user module. Panics if db is nil.
func NewModule(db *gorm.DB, perms domain.PermissionService) *Module {
	if db == nil {
		panic("user.NewModule: db must not be nil")
	}

	m := &Module{perms: perms}

	m.users = crud.NewRepository[domain.User](db, crud.Config{
		SearchFields: []string{"name", "email"},
		Preloads:     []string{"Role"},
	})
	m.roles = crud.NewRepository[domain.Role](db, crud.Config{
		SearchFields: []string{"name"},
		Order:        "name asc",
		BeforeDelete: crud.RefuseDeleteWhileReferenced(&domain.User{}, "role_id",
			"cannot delete role with users"),
	})

	m.userHandler = crud.NewHandler(m.users, bindNothing[domain.User])
	m.roleHandler = crud.NewHandler(m.roles, bindNothing[domain.Role])
	return m
}

// Users exposes the user repository so the auth service can share it.
func (m *Module) Users() *crud.Repository[domain.User] { return m.users }

// RegisterRoutes registers user and role admin routes. Reads go through the
// generic handlers; mutations are custom so the permission service stays in
// sync with the database.
func (m *Module) RegisterRoutes(admin, _ *gin.RouterGroup) {
	u := admin.Group("/users", middleware.RequirePermission(m.perms, "users"))
	u.GET("", m.userHandler.List)
	u.GET("/:id", m.userHandler.Get)
	u.POST("", m.createUser)
	u.PUT("/:id", m.updateUser)
	u.DELETE("/:id", m.deleteUser)

	r := admin.Group("/roles", middleware.RequirePermission(m.perms, "roles"))
	r.GET("", m.roleHandler.List)
	r.GET("/:id", m.roleHandler.Get)
	r.POST("", m.createRole)
	r.PUT("/:id", m.updateRole)
	r.DELETE("/:id", m.deleteRole)
}

// SyncRoles replays every stored role into the permission service. Called at
// startup so a restarted process serves the same permissions it persisted.
func (m *Module) SyncRoles(db *gorm.DB) error {
	if m.perms == nil {
		return nil
	}

	var roles []domain.Role
	if err := db.Find(&roles).Error; err != nil {
		return err
	}
	for _, r := range roles {
		if err := m.perms.SyncRole(roleKey(r.ID), r.Name, r.Permissions); err != nil {
			return err
		}
	}

	var users []domain.User
	if err := db.Where("role_id > 0").Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		if err := m.perms.AssignRole(userKey(u.ID), roleKey(u.RoleID)); err != nil {
			return err
		}
	}
	return nil
}

// createUser handles POST /admin/users.
func (m *Module) createUser(c *gin.Context) {
	var req createUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeInternal, "failed to hash password", err))
		return
	}

	u := domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		RoleID:       req.RoleID,
	}

	if err := m.users.Create(c.Request.Context(), &u); err != nil {
		pkg.Error(c, err)
		return
	}

	if err := m.assignRole(u.ID, 0, u.RoleID); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, u)
}

// updateUser handles PUT /admin/users/:id.
func (m *Module) updateUser(c *gin.Context) {
	id, err := crud.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	u, err := m.users.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req updateUserRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	prevRole := u.RoleID
	u.Name = strings.TrimSpace(req.Name)
	u.Email = strings.TrimSpace(req.Email)
	u.RoleID = req.RoleID
	u.Role = nil

	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			pkg.Error(c, domain.NewAppError(domain.CodeInternal, "failed to hash password", err))
			return
		}
		u.PasswordHash = string(hash)
	}

	if err := m.users.Update(c.Request.Context(), u); err != nil {
		pkg.Error(c, err)
		return
	}

	if err := m.assignRole(u.ID, prevRole, u.RoleID); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, u)
}

// deleteUser handles DELETE /admin/users/:id.
func (m *Module) deleteUser(c *gin.Context) {
	id, err := crud.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	u, err := m.users.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := m.users.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	if m.perms != nil && u.RoleID > 0 {
		if err := m.perms.UnassignRole(userKey(id), roleKey(u.RoleID)); err != nil {
			pkg.Error(c, domain.NewAppError(domain.CodeInternal, "failed to update permissions", err))
			return
		}
	}

	pkg.Success(c, nil)
}

// createRole handles POST /admin/roles.
func (m *Module) createRole(c *gin.Context) {
	var req roleRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	r := domain.Role{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Permissions: normalizePermissions(req.Permissions),
	}

	if err := m.roles.Create(c.Request.Context(), &r); err != nil {
		pkg.Error(c, err)
		return
	}

	if err := m.syncRole(&r); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, r)
}

// updateRole handles PUT /admin/roles/:id.
func (m *Module) updateRole(c *gin.Context) {
	id, err := crud.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	r, err := m.roles.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req roleRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	r.Name = strings.TrimSpace(req.Name)
	r.Description = strings.TrimSpace(req.Description)
	r.Permissions = normalizePermissions(req.Permissions)

	if err := m.roles.Update(c.Request.Context(), r); err != nil {
		pkg.Error(c, err)
		return
	}

	if err := m.syncRole(r); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, r)
}

// deleteRole handles DELETE /admin/roles/:id. The repository hook refuses
// the delete while users still hold the role, so the permission service is
// only touched after the row is gone.
func (m *Module) deleteRole(c *gin.Context) {
	id, err := crud.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	if err := m.roles.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	if m.perms != nil {
		if err := m.perms.RemoveRole(roleKey(id)); err != nil {
			pkg.Error(c, domain.NewAppError(domain.CodeInternal, "failed to update permissions", err))
			return
		}
	}

	pkg.Success(c, nil)
}

func (m *Module) syncRole(r *domain.Role) error {
	if m.perms == nil {
		return nil
	}
	if err := m.perms.SyncRole(roleKey(r.ID), r.Name, r.Permissions); err != nil {
		return domain.NewAppError(domain.CodeInternal, "failed to update permissions", err)
	}
	return nil
}

func (m *Module) assignRole(userID, prevRoleID, newRoleID uint) error {
	if m.perms == nil || prevRoleID == newRoleID {
		return nil
	}
	if prevRoleID > 0 {
		if err := m.perms.UnassignRole(userKey(userID), roleKey(prevRoleID)); err != nil {
			return domain.NewAppError(domain.CodeInternal, "failed to update permissions", err)
		}
	}
	if newRoleID > 0 {
		if err := m.perms.AssignRole(userKey(userID), roleKey(newRoleID)); err != nil {
			return domain.NewAppError(domain.CodeInternal, "failed to update permissions", err)
		}
	}
	return nil
}

// normalizePermissions lowercases and deduplicates permission strings.
func normalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func roleKey(id uint) string { return "role-" + strconv.FormatUint(uint64(id), 10) }
func userKey(id uint) string { return strconv.FormatUint(uint64(id), 10) }

// bindNothing satisfies the generic handler for resources whose mutations
// are handled by custom routes.
func bindNothing[T crud.Entity](c *gin.Context, _ *T, _ bool) bool {
	pkg.Error(c, domain.NewAppError(domain.CodeValidation, "unsupported operation", nil))
	return false
}
