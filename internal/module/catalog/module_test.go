package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/config"
	"github.com/tracnorth/site/internal/domain"
	"github.com/tracnorth/site/internal/pkg"
	"github.com/tracnorth/site/internal/upload"
)

func setupModule(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Category{}, &domain.EquipmentType{}, &domain.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	storage, err := upload.New(&config.UploadConfig{Dir: t.TempDir(), MaxSizeMB: 10})
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	m := NewModule(db, storage, nil)

	r := gin.New()
	m.RegisterRoutes(r.Group("/admin"), r.Group("/public"))
	return r, db
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func seedTaxonomy(t *testing.T, db *gorm.DB) (domain.Category, domain.EquipmentType) {
	t.Helper()
	cat := domain.Category{Name: "Excavators", Slug: "excavators"}
	if err := db.Create(&cat).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	typ := domain.EquipmentType{Name: "Crawler", Slug: "crawler"}
	if err := db.Create(&typ).Error; err != nil {
		t.Fatalf("create type: %v", err)
	}
	return cat, typ
}

func createProduct(t *testing.T, r *gin.Engine, name string, cat domain.Category, typ domain.EquipmentType) domain.Product {
	t.Helper()
	body := fmt.Sprintf(`{"name":%q,"category_id":%d,"type_id":%d}`, name, cat.ID, typ.ID)
	w := doJSON(r, http.MethodPost, "/admin/products", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create product %q: status %d: %s", name, w.Code, w.Body.String())
	}
	var resp struct {
		Data domain.Product `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal product: %v", err)
	}
	return resp.Data
}

func TestCreateProduct_AppendsToOrdering(t *testing.T) {
	r, db := setupModule(t)
	cat, typ := seedTaxonomy(t, db)

	p1 := createProduct(t, r, "ZX85", cat, typ)
	p2 := createProduct(t, r, "ZX135", cat, typ)

	if p1.Position != 1 {
		t.Errorf("first product Position=%d; want 1", p1.Position)
	}
	if p2.Position != 2 {
		t.Errorf("second product Position=%d; want 2", p2.Position)
	}
	if p1.Slug != "zx85" {
		t.Errorf("Slug=%q; want zx85", p1.Slug)
	}
}

func TestCreateProduct_PositionQueryFailureSurfaces(t *testing.T) {
	r, db := setupModule(t)
	cat, typ := seedTaxonomy(t, db)

	// Break the ordering query; the create must report the failure instead
	// of silently writing position 1.
	if err := db.Migrator().DropTable(&domain.Product{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	body := fmt.Sprintf(`{"name":"ZX85","category_id":%d,"type_id":%d}`, cat.ID, typ.ID)
	w := doJSON(r, http.MethodPost, "/admin/products", body)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status=%d; want 500 when the position lookup fails", w.Code)
	}
}

func TestCreateProduct_RequiresTaxonomy(t *testing.T) {
	r, _ := setupModule(t)

	w := doJSON(r, http.MethodPost, "/admin/products", `{"name":"Orphan"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	var resp pkg.ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	for _, field := range []string{"category_id", "type_id"} {
		if _, ok := resp.Errors[field]; !ok {
			t.Errorf("expected %q in errors map, got %v", field, resp.Errors)
		}
	}
}

func TestMoveProduct_UpdatesPositionAndOrdering(t *testing.T) {
	r, db := setupModule(t)
	cat, typ := seedTaxonomy(t, db)

	p1 := createProduct(t, r, "ZX85", cat, typ)
	createProduct(t, r, "ZX135", cat, typ)

	w := doJSON(r, http.MethodPatch, fmt.Sprintf("/admin/products/%d/position", p1.ID), `{"position":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("move: status %d: %s", w.Code, w.Body.String())
	}

	// Listing follows the manual ordering.
	w = doJSON(r, http.MethodGet, "/admin/products", "")
	var page domain.Page[domain.Product]
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}
	if len(page.Data) != 2 {
		t.Fatalf("len(Data)=%d; want 2", len(page.Data))
	}
	if page.Data[0].Name != "ZX135" || page.Data[1].Name != "ZX85" {
		t.Errorf("order=%q,%q; want ZX135 first", page.Data[0].Name, page.Data[1].Name)
	}
}

func TestMoveProduct_NotFound(t *testing.T) {
	r, _ := setupModule(t)

	w := doJSON(r, http.MethodPatch, "/admin/products/99/position", `{"position":1}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestAdminProducts_PreloadTaxonomy(t *testing.T) {
	r, db := setupModule(t)
	cat, typ := seedTaxonomy(t, db)
	p := createProduct(t, r, "ZX85", cat, typ)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/admin/products/%d", p.ID), "")
	var resp struct {
		Data domain.Product `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal product: %v", err)
	}
	if resp.Data.Category == nil || resp.Data.Category.Name != "Excavators" {
		t.Errorf("Category not preloaded: %+v", resp.Data.Category)
	}
	if resp.Data.Type == nil || resp.Data.Type.Name != "Crawler" {
		t.Errorf("Type not preloaded: %+v", resp.Data.Type)
	}
}

func TestDeleteCategory_RefusedWhileProductsReference(t *testing.T) {
	r, db := setupModule(t)
	cat, typ := seedTaxonomy(t, db)
	createProduct(t, r, "ZX85", cat, typ)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/admin/categories/%d", cat.ID), "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}

	var resp pkg.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Message != "cannot delete category with products" {
		t.Errorf("message=%q", resp.Message)
	}
}

func TestDeleteType_RefusedWhileProductsReference(t *testing.T) {
	r, db := setupModule(t)
	cat, typ := seedTaxonomy(t, db)
	createProduct(t, r, "ZX85", cat, typ)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/admin/types/%d", typ.ID), "")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPublicProducts_FiltersByCategory(t *testing.T) {
	r, db := setupModule(t)
	cat, typ := seedTaxonomy(t, db)
	other := domain.Category{Name: "Loaders", Slug: "loaders"}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}

	createProduct(t, r, "ZX85", cat, typ)
	createProduct(t, r, "LX50", other, typ)

	w := doJSON(r, http.MethodGet, fmt.Sprintf("/public/products?category_id=%d", other.ID), "")
	var page domain.Page[domain.Product]
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal page: %v", err)
	}
	if len(page.Data) != 1 || page.Data[0].Name != "LX50" {
		t.Errorf("filtered products=%+v; want only LX50", page.Data)
	}
}

func TestPublicProductShow_BySlug(t *testing.T) {
	r, db := setupModule(t)
	cat, typ := seedTaxonomy(t, db)
	createProduct(t, r, "ZX85", cat, typ)

	w := doJSON(r, http.MethodGet, "/public/products/zx85", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = doJSON(r, http.MethodGet, "/public/products/missing", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for missing slug, got %d", w.Code)
	}
}
