// Package catalog manages the machine catalog: products with their manual
// ordering, and the category/type taxonomies whose deletion is refused while
// products still reference them.
package catalog

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

// Module wires products, categories, and equipment types.
type Module struct {
	products   *crud.Repository[domain.Product]
	categories *crud.Repository[domain.Category]
	types      *crud.Repository[domain.EquipmentType]

	productHandler  *crud.Handler[domain.Product]
	categoryHandler *crud.Handler[domain.Category]
	typeHandler     *crud.Handler[domain.EquipmentType]

	storage *upload.Storage
	perms   domain.PermissionService
}

// NewModule creates the catalog module. Panics if db or storage is nil.
func NewModule(db *gorm.DB, storage *upload.Storage, perms domain.PermissionService) *Module {
	if db == nil {
		panic("catalog.NewModule: db must not be nil")
	}
	if storage == nil {
		panic("catalog.NewModule: storage must not be nil")
	}

	m := &Module{storage: storage, perms: perms}

	m.products = crud.NewRepository[domain.Product](db, crud.Config{
		SearchFields: []string{"name"},
		Preloads:     []string{"Category", "Type"},
		Order:        "position asc, id desc",
	})
	m.categories = crud.NewRepository[domain.Category](db, crud.Config{
		SearchFields: []string{"name"},
		Order:        "name asc",
		BeforeDelete: crud.RefuseDeleteWhileReferenced(&domain.Product{}, "category_id",
			"cannot delete category with products"),
	})
	m.types = crud.NewRepository[domain.EquipmentType](db, crud.Config{
		SearchFields: []string{"name"},
		Order:        "name asc",
		BeforeDelete: crud.RefuseDeleteWhileReferenced(&domain.Product{}, "type_id",
			"cannot delete type with products"),
	})

	m.productHandler = crud.NewHandler(m.products, m.bindProduct)
	m.categoryHandler = crud.NewHandler(m.categories, m.bindCategory)
	m.typeHandler = crud.NewHandler(m.types, m.bindType)
	return m
}

// RegisterRoutes registers catalog admin and public routes.
func (m *Module) RegisterRoutes(admin, public *gin.RouterGroup) {
	p := admin.Group("/products", middleware.RequirePermission(m.perms, "products"))
	m.productHandler.Register(p)
	p.PATCH("/:id/position", m.moveProduct)

	c := admin.Group("/categories", middleware.RequirePermission(m.perms, "categories"))
	m.categoryHandler.Register(c)

	t := admin.Group("/types", middleware.RequirePermission(m.perms, "types"))
	m.typeHandler.Register(t)

	public.GET("/products", m.publicProducts)
	public.GET("/products/:slug", m.publicProductShow)
	public.GET("/categories", m.publicCategories)
}

func (m *Module) bindProduct(c *gin.Context, p *domain.Product, isUpdate bool) bool {
	var req productRequest
	if !pkg.BindAndValidate(c, &req) {
		return false
	}

	image, err := m.storage.FileField(c, "image", "products", p.Image)
	if err != nil {
		pkg.Error(c, err)
		return false
	}
	brochure, err := m.storage.FileField(c, "brochure", "products", p.Brochure)
	if err != nil {
		pkg.Error(c, err)
		return false
	}

	p.Name = strings.TrimSpace(req.Name)
	p.Slug = pkg.Slugify(firstNonEmpty(req.Slug, req.Name))
	p.Summary = strings.TrimSpace(req.Summary)
	p.Description = req.Description
	p.Featured = req.Featured
	p.CategoryID = req.CategoryID
	p.TypeID = req.TypeID
	p.Image = image
	p.Brochure = brochure

	if !isUpdate {
		// New products go to the end of the manual ordering.
		var max int
		err := m.products.DB().WithContext(c.Request.Context()).
			Model(&domain.Product{}).
			Select("COALESCE(MAX(position), 0)").Scan(&max).Error
		if err != nil {
			pkg.Error(c, err)
			return false
		}
		p.Position = max + 1
	}

	return true
}

func (m *Module) bindCategory(c *gin.Context, cat *domain.Category, _ bool) bool {
	var req categoryRequest
	if !pkg.BindAndValidate(c, &req) {
		return false
	}

	cat.Name = strings.TrimSpace(req.Name)
	cat.Slug = pkg.Slugify(firstNonEmpty(req.Slug, req.Name))
	cat.Description = strings.TrimSpace(req.Description)
	return true
}

func (m *Module) bindType(c *gin.Context, t *domain.EquipmentType, _ bool) bool {
	var req typeRequest
	if !pkg.BindAndValidate(c, &req) {
		return false
	}

	t.Name = strings.TrimSpace(req.Name)
	t.Slug = pkg.Slugify(firstNonEmpty(req.Slug, req.Name))
	return true
}

// moveProduct handles PATCH /admin/products/:id/position.
func (m *Module) moveProduct(c *gin.Context) {
	id, err := crud.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var req positionRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	if err := m.products.UpdateFields(c.Request.Context(), id, map[string]any{
		"position": req.Position,
	}); err != nil {
		pkg.Error(c, err)
		return
	}

	p, err := m.products.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, p)
}

// publicProducts handles GET /public/products. Supports the same
// page/search contract as the admin listing, plus an optional
// ?category_id= narrowing.
func (m *Module) publicProducts(c *gin.Context) {
	req := pkg.ParsePageRequest(c)

	scopes := []crud.Scope{}
	if catID := strings.TrimSpace(c.Query("category_id")); catID != "" {
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("category_id = ?", catID)
		})
	}

	result, err := m.products.List(c.Request.Context(), req, scopes...)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// publicProductShow handles GET /public/products/:slug.
func (m *Module) publicProductShow(c *gin.Context) {
	p, err := m.products.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, p)
}

// publicCategories handles GET /public/categories.
func (m *Module) publicCategories(c *gin.Context) {
	result, err := m.categories.List(c.Request.Context(), pkg.ParsePageRequest(c))
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
