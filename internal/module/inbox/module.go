// Package inbox manages the enquiry pipeline: contact messages and quotation
// requests submitted from the public site, handled from the back office.
package inbox

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/crud"
	"github.com/tracnorth/site/internal/domain"
	"github.com/tracnorth/site/internal/middleware"
	"github.com/tracnorth/site/internal/pkg"
)

type messageRequest struct {
	Name    string `json:"name" form:"name" binding:"required,min=2,max=160"`
	Email   string `json:"email" form:"email" binding:"required,email"`
	Phone   string `json:"phone" form:"phone" binding:"omitempty,max=40"`
	Subject string `json:"subject" form:"subject" binding:"omitempty,max=200"`
	Body    string `json:"body" form:"body" binding:"required"`
}

type quotationRequest struct {
	Name      string `json:"name" form:"name" binding:"required,min=2,max=160"`
	Email     string `json:"email" form:"email" binding:"required,email"`
	Phone     string `json:"phone" form:"phone" binding:"omitempty,max=40"`
	Company   string `json:"company" form:"company" binding:"omitempty,max=160"`
	Quantity  int    `json:"quantity" form:"quantity" binding:"omitempty,min=1"`
	Notes     string `json:"notes" form:"notes"`
	ProductID uint   `json:"product_id" form:"product_id" binding:"omitempty,min=1"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=new contacted closed"`
}

// Module wires messages and quotations.
type Module struct {
	messages   *crud.Repository[domain.Message]
	quotations *crud.Repository[domain.Quotation]

	messageHandler   *crud.Handler[domain.Message]
	quotationHandler *crud.Handler[domain.Quotation]

	perms domain.PermissionService
}

// NewModule creates the inbox module. Panics if db is nil.
func NewModule(db *gorm.DB, perms domain.PermissionService) *Module {
	if db == nil {
		panic("inbox.NewModule: db must not be nil")
	}

	m := &Module{perms: perms}

	m.messages = crud.NewRepository[domain.Message](db, crud.Config{
		SearchFields: []string{"name", "subject"},
	})
	m.quotations = crud.NewRepository[domain.Quotation](db, crud.Config{
		SearchFields: []string{"name", "company"},
		Preloads:     []string{"Product"},
	})

	m.messageHandler = crud.NewHandler(m.messages, m.bindMessage)
	m.quotationHandler = crud.NewHandler(m.quotations, m.bindQuotation)
	return m
}

// RegisterRoutes registers inbox admin routes and the public intake
// endpoints.
func (m *Module) RegisterRoutes(admin, public *gin.RouterGroup) {
	msg := admin.Group("/messages", middleware.RequirePermission(m.perms, "messages"))
	m.messageHandler.Register(msg)
	msg.PATCH("/:id/follow-up", m.toggleFollowUp)

	q := admin.Group("/quotations", middleware.RequirePermission(m.perms, "quotations"))
	m.quotationHandler.Register(q)
	q.PATCH("/:id/status", m.setStatus)

	public.POST("/messages", m.messageHandler.Create)
	public.POST("/quotations", m.quotationHandler.Create)
}

func (m *Module) bindMessage(c *gin.Context, msg *domain.Message, _ bool) bool {
	var req messageRequest
	if !pkg.BindAndValidate(c, &req) {
		return false
	}

	msg.Name = strings.TrimSpace(req.Name)
	msg.Email = strings.TrimSpace(req.Email)
	msg.Phone = strings.TrimSpace(req.Phone)
	msg.Subject = strings.TrimSpace(req.Subject)
	msg.Body = req.Body
	return true
}

func (m *Module) bindQuotation(c *gin.Context, q *domain.Quotation, isUpdate bool) bool {
	var req quotationRequest
	if !pkg.BindAndValidate(c, &req) {
		return false
	}

	q.Name = strings.TrimSpace(req.Name)
	q.Email = strings.TrimSpace(req.Email)
	q.Phone = strings.TrimSpace(req.Phone)
	q.Company = strings.TrimSpace(req.Company)
	q.Notes = req.Notes
	q.ProductID = req.ProductID

	q.Quantity = req.Quantity
	if q.Quantity < 1 {
		q.Quantity = 1
	}
	if !isUpdate {
		q.Status = domain.QuotationStatusNew
	}
	return true
}

// toggleFollowUp handles PATCH /admin/messages/:id/follow-up.
func (m *Module) toggleFollowUp(c *gin.Context) {
	id, err := crud.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	msg, err := m.messages.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := m.messages.UpdateFields(c.Request.Context(), id, map[string]any{
		"followed_up": !msg.FollowedUp,
	}); err != nil {
		pkg.Error(c, err)
		return
	}

	msg.FollowedUp = !msg.FollowedUp
	pkg.Success(c, msg)
}

// setStatus handles PATCH /admin/quotations/:id/status.
func (m *Module) setStatus(c *gin.Context) {
	id, err := crud.ParseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	var req statusRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	if err := m.quotations.UpdateFields(c.Request.Context(), id, map[string]any{
		"status": req.Status,
	}); err != nil {
		pkg.Error(c, err)
		return
	}

	q, err := m.quotations.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, q)
}
