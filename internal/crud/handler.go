package crud

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tracnorth/site/internal/domain"
	"github.com/tracnorth/site/internal/pkg"
)

// BindFunc parses the request into dst and reports whether binding
// succeeded. On failure the implementation has already written the
// validation response (the pkg.BindAndValidate idiom), so handlers just
// return. For updates dst holds the stored record, which lets file fields
// resolve the keep/replace/remove choice against the existing reference.
type BindFunc[T Entity] func(c *gin.Context, dst *T, isUpdate bool) bool

// Handler serves the five CRUD endpoints for one resource.
type Handler[T Entity] struct {
	repo *Repository[T]
	bind BindFunc[T]
}

// NewHandler creates a Handler over the repository. bind is required.
func NewHandler[T Entity](repo *Repository[T], bind BindFunc[T]) *Handler[T] {
	if repo == nil {
		panic("crud.NewHandler: repository must not be nil")
	}
	if bind == nil {
		panic("crud.NewHandler: bind func must not be nil")
	}
	return &Handler[T]{repo: repo, bind: bind}
}

// Register wires the CRUD routes onto a resource group, e.g.
// admin.Group("/blogs").
func (h *Handler[T]) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// List handles GET /{resource}?page=N&search=term.
func (h *Handler[T]) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c)

	result, err := h.repo.List(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.List(c, result)
}

// Get handles GET /{resource}/:id.
func (h *Handler[T]) Get(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, e)
}

// Create handles POST /{resource}.
func (h *Handler[T]) Create(c *gin.Context) {
	var e T
	if !h.bind(c, &e, false) {
		return
	}

	if err := h.repo.Create(c.Request.Context(), &e); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, e)
}

// Update handles PUT /{resource}/:id. The stored record is loaded first so
// the bind func can apply changes on top of the existing field values.
func (h *Handler[T]) Update(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	e, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if !h.bind(c, e, true) {
		return
	}

	if err := h.repo.Update(c.Request.Context(), e); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, e)
}

// Delete handles DELETE /{resource}/:id. Rows are removed only after the
// repository confirms the delete; a refused delete keeps the record intact
// and surfaces a 409 with the refusal message.
func (h *Handler[T]) Delete(c *gin.Context) {
	id, err := ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// ParseID extracts and validates the "id" URL parameter.
func ParseID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	if id > uint64(^uint(0)) {
		return 0, fmt.Errorf("invalid id: %s", idStr)
	}
	return uint(id), nil
}
