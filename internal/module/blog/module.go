package blog

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/crud"
	"github.com/tracnorth/site/internal/domain"
	"github.com/tracnorth/site/internal/middleware"
	"github.com/tracnorth/site/internal/pkg"
	"github.com/tracnorth/site/internal/upload"
)

// Module wires the blog resource: admin CRUD with a publish toggle, and the
// public article listing/detail limited to published posts.
type Module struct {
	repo    *crud.Repository[domain.Blog]
	handler *crud.Handler[domain.Blog]
	storage *upload.Storage
	perms   domain.PermissionService
}

// NewModule creates the blog module. Panics if db or storage is nil.
func NewModule(db *gorm.DB, storage *upload.Storage, perms domain.PermissionService) *Module {
	if db == nil {
		panic("blog.NewModule: db must not be nil")
	}
	if storage == nil {
		panic("blog.NewModule: storage must not be nil")
	}

	repo := crud.NewRepository[domain.Blog](db, crud.Config{
		SearchFields: []string{"title"},
		Preloads:     []string{"User"},
	})

	m := &Module{repo: repo, storage: storage, perms: perms}
	m.handler = crud.NewHandler(repo, m.bind)
	return m
}

// RegisterRoutes registers blog admin and public routes.
func (m *Module) RegisterRoutes(admin, public *gin.RouterGroup) {
	g := admin.Group("/blogs", middleware.RequirePermission(m.perms, "blogs"))
	m.handler.Register(g)
	g.PATCH("/:id/publish", m.togglePublish)

	public.GET("/blogs", m.publicList)
	public.GET("/blogs/:slug", m.publicShow)
}

// bind applies the validated request body and image file to the record.
func (m *Module) bind(c *gin.Context, b *domain.Blog, isUpdate bool) bool {
	var req blogRequest
	if !pkg.BindAndValidate(c, &req) {
		return false
	}

	image, err := m.storage.FileField(c, "image", "blogs", b.Image)
	if err != nil {
		pkg.Error(c, err)
		return false
	}

	b.Title = strings.TrimSpace(req.Title)
	b.Slug = pkg.Slugify(firstNonEmpty(req.Slug, req.Title))
	b.Excerpt = strings.TrimSpace(req.Excerpt)
	b.Body = req.Body
	b.Published = req.Published
	b.Image = image

	if !isUpdate {
		if id, err := strconv.ParseUint(middleware.GetUserID(c), 10, 64); err == nil {
			b.UserID = uint(id)
		}
	}

	return true
}

// togglePublish handles PATCH /admin/blogs/:id/publish.
func (m *Module) togglePublish(c *gin.Context) {
	id, err := crud.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	b, err := m.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := m.repo.UpdateFields(c.Request.Context(), id, map[string]any{
		"published": !b.Published,
	}); err != nil {
		pkg.Error(c, err)
		return
	}

	b.Published = !b.Published
	pkg.Success(c, b)
}

// publicList handles GET /public/blogs, published posts only.
func (m *Module) publicList(c *gin.Context) {
	req := pkg.ParsePageRequest(c)

	result, err := m.repo.List(c.Request.Context(), req, publishedOnly)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// publicShow handles GET /public/blogs/:slug.
func (m *Module) publicShow(c *gin.Context) {
	b, err := m.repo.GetBySlug(c.Request.Context(), c.Param("slug"), publishedOnly)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, b)
}

func publishedOnly(db *gorm.DB) *gorm.DB {
	return db.Where("published = ?", true)
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return a
	}
	return b
}
