package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/simp-lee/rbac"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/config"
	"github.com/tracnorth/site/internal/domain"
)

// rbacPermissions implements domain.PermissionService on top of the rbac
// library. Role permissions are stored as "<resource>:<action>" strings;
// "*" on either side grants the whole axis (the library resolves wildcards
// on both resource and action).
type rbacPermissions struct {
	svc rbac.Service
}

// newPermissionService builds the permission gate from configuration,
// persisting role state in the application database through the library's
// cached SQL storage. Returns nil when RBAC is disabled, which turns off
// route gating entirely.
func newPermissionService(cfg *config.RBACConfig, db *gorm.DB) (domain.PermissionService, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	if db == nil {
		return nil, errors.New("rbac requires a database connection")
	}

	parse := func(key, raw string) (time.Duration, error) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		return d, nil
	}

	roleTTL, err := parse("auth.rbac.cache.role_ttl", cfg.Cache.RoleTTL)
	if err != nil {
		return nil, err
	}
	userTTL, err := parse("auth.rbac.cache.user_role_ttl", cfg.Cache.UserRoleTTL)
	if err != nil {
		return nil, err
	}
	permTTL, err := parse("auth.rbac.cache.permission_ttl", cfg.Cache.PermissionTTL)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB for rbac storage: %w", err)
	}

	svc, err := rbac.New(rbac.WithCachedStorage(sqlDB, &rbac.CacheConfig{
		RoleTTL:      roleTTL,
		UserRoleTTL:  userTTL,
		PermTTL:      permTTL,
		MaxRoles:     cfg.Cache.MaxRoleEntries,
		MaxUserRoles: cfg.Cache.MaxUserEntries,
		MaxUserPerms: cfg.Cache.MaxPermissionEntries,
	}))
	if err != nil {
		return nil, fmt.Errorf("create rbac service: %w", err)
	}

	return &rbacPermissions{svc: svc}, nil
}

// SyncRole replaces the role's permission grants with the given set. The
// role is updated in place so existing user assignments survive a
// permission edit.
func (p *rbacPermissions) SyncRole(roleID, name string, permissions []string) error {
	if err := p.svc.CreateRole(roleID, name, ""); err != nil {
		if !errors.Is(err, rbac.ErrRoleAlreadyExists) {
			return err
		}
		if err := p.svc.UpdateRole(roleID, name, ""); err != nil {
			return err
		}
	}

	// Drop every current grant before re-adding, so removed permissions
	// don't linger.
	current, err := p.svc.GetRolePermissions(roleID)
	if err != nil {
		return err
	}
	for resource := range current {
		if err := p.svc.RemoveRolePermissions(roleID, resource); err != nil {
			return err
		}
	}

	for _, perm := range permissions {
		resource, action := splitPermission(perm)
		if err := p.svc.AddRolePermission(roleID, resource, action); err != nil {
			return err
		}
	}
	return nil
}

func (p *rbacPermissions) RemoveRole(roleID string) error {
	err := p.svc.DeleteRole(roleID)
	if errors.Is(err, rbac.ErrRoleNotFound) {
		return nil
	}
	return err
}

// AssignRole is idempotent: assigning a role the user already holds is not
// an error, so startup replay over persistent storage stays clean.
func (p *rbacPermissions) AssignRole(userID, roleID string) error {
	err := p.svc.AssignRole(userID, roleID)
	if errors.Is(err, rbac.ErrUserAlreadyHasRole) {
		return nil
	}
	return err
}

func (p *rbacPermissions) UnassignRole(userID, roleID string) error {
	err := p.svc.UnassignRole(userID, roleID)
	if errors.Is(err, rbac.ErrUserDoesNotHaveRole) {
		return nil
	}
	return err
}

// Allows reports whether the user may perform action on resource. Errors
// (including a closed service) deny.
func (p *rbacPermissions) Allows(userID, resource, action string) bool {
	ok, err := p.svc.HasPermission(userID, resource, action)
	return err == nil && ok
}

func (p *rbacPermissions) Close() error {
	return p.svc.Close()
}

// splitPermission parses a "<resource>:<action>" grant. A bare resource
// grants every action on it.
func splitPermission(perm string) (resource, action string) {
	resource, action, ok := strings.Cut(perm, ":")
	if !ok || strings.TrimSpace(action) == "" {
		return strings.TrimSpace(resource), "*"
	}
	return strings.TrimSpace(resource), strings.TrimSpace(action)
}
