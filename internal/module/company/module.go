// Package company manages represented brands and their branch locations.
package company

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/crud"
	"github.com/tracnorth/site/internal/domain"
	"github.com/tracnorth/site/internal/middleware"
	"github.com/tracnorth/site/internal/pkg"
	"github.com/tracnorth/site/internal/upload"
)

type companyRequest struct {
	Name    string `json:"name" form:"name" binding:"required,min=2,max=160"`
	Slug    string `json:"slug" form:"slug" binding:"omitempty,max=180"`
	About   string `json:"about" form:"about"`
	Website string `json:"website" form:"website" binding:"omitempty,url,max=255"`
}

type locationRequest struct {
	Name      string `json:"name" form:"name" binding:"required,min=2,max=160"`
	Address   string `json:"address" form:"address" binding:"omitempty,max=255"`
	City      string `json:"city" form:"city" binding:"omitempty,max=120"`
	Phone     string `json:"phone" form:"phone" binding:"omitempty,max=40"`
	Email     string `json:"email" form:"email" binding:"omitempty,email"`
	MapURL    string `json:"map_url" form:"map_url" binding:"omitempty,url,max=500"`
	CompanyID uint   `json:"company_id" form:"company_id" binding:"omitempty,min=1"`
}

// Module wires companies and locations.
type Module struct {
	companies *crud.Repository[domain.Company]
	locations *crud.Repository[domain.Location]

	companyHandler  *crud.Handler[domain.Company]
	locationHandler *crud.Handler[domain.Location]

	storage *upload.Storage
	perms   domain.PermissionService
}

// NewModule creates the company module. Panics if db or storage is nil.
func NewModule(db *gorm.DB, storage *upload.Storage, perms domain.PermissionService) *Module {
	if db == nil {
		panic("company.NewModule: db must not be nil")
	}
	if storage == nil {
		panic("company.NewModule: storage must not be nil")
	}

	m := &Module{storage: storage, perms: perms}

	m.companies = crud.NewRepository[domain.Company](db, crud.Config{
		SearchFields: []string{"name"},
		Order:        "name asc",
		BeforeDelete: crud.RefuseDeleteWhileReferenced(&domain.Location{}, "company_id",
			"cannot delete company with locations"),
	})
	m.locations = crud.NewRepository[domain.Location](db, crud.Config{
		SearchFields: []string{"name", "city"},
		Preloads:     []string{"Company"},
		Order:        "name asc",
	})

	m.companyHandler = crud.NewHandler(m.companies, m.bindCompany)
	m.locationHandler = crud.NewHandler(m.locations, m.bindLocation)
	return m
}

// RegisterRoutes registers company and location admin and public routes.
func (m *Module) RegisterRoutes(admin, public *gin.RouterGroup) {
	c := admin.Group("/companies", middleware.RequirePermission(m.perms, "companies"))
	m.companyHandler.Register(c)

	l := admin.Group("/locations", middleware.RequirePermission(m.perms, "locations"))
	m.locationHandler.Register(l)

	public.GET("/companies", m.publicCompanies)
	public.GET("/locations", m.publicLocations)
}

func (m *Module) bindCompany(c *gin.Context, co *domain.Company, _ bool) bool {
	var req companyRequest
	if !pkg.BindAndValidate(c, &req) {
		return false
	}

	logo, err := m.storage.FileField(c, "logo", "companies", co.Logo)
	if err != nil {
		pkg.Error(c, err)
		return false
	}

	co.Name = strings.TrimSpace(req.Name)
	co.Slug = pkg.Slugify(firstNonEmpty(req.Slug, req.Name))
	co.About = req.About
	co.Website = strings.TrimSpace(req.Website)
	co.Logo = logo
	return true
}

func (m *Module) bindLocation(c *gin.Context, l *domain.Location, _ bool) bool {
	var req locationRequest
	if !pkg.BindAndValidate(c, &req) {
		return false
	}

	l.Name = strings.TrimSpace(req.Name)
	l.Address = strings.TrimSpace(req.Address)
	l.City = strings.TrimSpace(req.City)
	l.Phone = strings.TrimSpace(req.Phone)
	l.Email = strings.TrimSpace(req.Email)
	l.MapURL = strings.TrimSpace(req.MapURL)
	l.CompanyID = req.CompanyID
	return true
}

// publicCompanies handles GET /public/companies.
func (m *Module) publicCompanies(c *gin.Context) {
	result, err := m.companies.List(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// publicLocations handles GET /public/locations.
func (m *Module) publicLocations(c *gin.Context) {
	result, err := m.locations.List(c.Request.Context(), pkg.ParsePageRequest(c))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
