// Package job manages career-page openings: admin CRUD plus the public
// listing restricted to active positions.
package job

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/crud"
	"github.com/tracnorth/site/internal/domain"
	"github.com/tracnorth/site/internal/middleware"
	"github.com/tracnorth/site/internal/pkg"
)

type jobRequest struct {
	Title       string `json:"title" form:"title" binding:"required,min=2,max=200"`
	Slug        string `json:"slug" form:"slug" binding:"omitempty,max=220"`
	Location    string `json:"location" form:"location" binding:"omitempty,max=120"`
	Department  string `json:"department" form:"department" binding:"omitempty,max=120"`
	Summary     string `json:"summary" form:"summary" binding:"omitempty,max=500"`
	Description string `json:"description" form:"description"`
	Active      bool   `json:"active" form:"active"`
	ClosesAt    string `json:"closes_at" form:"closes_at" binding:"omitempty,datetime=2006-01-02"`
}

// Module wires the job resource.
type Module struct {
	repo    *crud.Repository[domain.Job]
	handler *crud.Handler[domain.Job]
	perms   domain.PermissionService
}

// NewModule creates the job module. Panics if db is nil.
func NewModule(db *gorm.DB, perms domain.PermissionService) *Module {
	if db == nil {
		panic("job.NewModule: db must not be nil")
	}

	repo := crud.NewRepository[domain.Job](db, crud.Config{
		SearchFields: []string{"title"},
	})

	m := &Module{repo: repo, perms: perms}
	m.handler = crud.NewHandler(repo, m.bind)
	return m
}

// RegisterRoutes registers job admin and public routes.
func (m *Module) RegisterRoutes(admin, public *gin.RouterGroup) {
	g := admin.Group("/jobs", middleware.RequirePermission(m.perms, "jobs"))
	m.handler.Register(g)

	public.GET("/jobs", m.publicList)
	public.GET("/jobs/:slug", m.publicShow)
}

func (m *Module) bind(c *gin.Context, j *domain.Job, _ bool) bool {
	var req jobRequest
	if !pkg.BindAndValidate(c, &req) {
		return false
	}

	j.Title = strings.TrimSpace(req.Title)
	j.Slug = pkg.Slugify(firstNonEmpty(req.Slug, req.Title))
	j.Location = strings.TrimSpace(req.Location)
	j.Department = strings.TrimSpace(req.Department)
	j.Summary = strings.TrimSpace(req.Summary)
	j.Description = req.Description
	j.Active = req.Active

	j.ClosesAt = nil
	if req.ClosesAt != "" {
		// Format already validated by the datetime binding tag.
		t, _ := time.Parse("2006-01-02", req.ClosesAt)
		j.ClosesAt = &t
	}

	return true
}

// publicList handles GET /public/jobs, active positions only.
func (m *Module) publicList(c *gin.Context) {
	req := pkg.ParsePageRequest(c)

	result, err := m.repo.List(c.Request.Context(), req, activeOnly)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// publicShow handles GET /public/jobs/:slug.
func (m *Module) publicShow(c *gin.Context) {
	j, err := m.repo.GetBySlug(c.Request.Context(), c.Param("slug"), activeOnly)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, j)
}

func activeOnly(db *gorm.DB) *gorm.DB {
	return db.Where("active = ?", true)
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
