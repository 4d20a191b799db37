package crud

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/domain"
)

// setupTestDB creates an in-memory SQLite database with the catalog tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Category{}, &domain.EquipmentType{}, &domain.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newCategoryRepo(db *gorm.DB) *Repository[domain.Category] {
	return NewRepository[domain.Category](db, Config{
		SearchFields: []string{"name"},
		BeforeDelete: RefuseDeleteWhileReferenced(&domain.Product{}, "category_id",
			"cannot delete category with products"),
	})
}

func seedCategories(t *testing.T, repo *Repository[domain.Category], n int) []domain.Category {
	t.Helper()
	ctx := context.Background()
	out := make([]domain.Category, 0, n)
	for i := 1; i <= n; i++ {
		c := domain.Category{
			Name: fmt.Sprintf("Category %02d", i),
			Slug: fmt.Sprintf("category-%02d", i),
		}
		if err := repo.Create(ctx, &c); err != nil {
			t.Fatalf("seed Create %d: %v", i, err)
		}
		out = append(out, c)
	}
	return out
}

func TestCreateAndGetByID(t *testing.T) {
	repo := newCategoryRepo(setupTestDB(t))
	ctx := context.Background()

	c := domain.Category{Name: "Excavators", Slug: "excavators"}
	if err := repo.Create(ctx, &c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("expected non-zero ID after Create")
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Excavators" || got.Slug != "excavators" {
		t.Errorf("got %+v; want Name=Excavators, Slug=excavators", got)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newCategoryRepo(setupTestDB(t))

	_, err := repo.GetByID(context.Background(), 999)
	if !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_DuplicateSlug(t *testing.T) {
	repo := newCategoryRepo(setupTestDB(t))
	ctx := context.Background()

	c1 := domain.Category{Name: "Excavators", Slug: "dup"}
	if err := repo.Create(ctx, &c1); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	c2 := domain.Category{Name: "Loaders", Slug: "dup"}
	err := repo.Create(ctx, &c2)
	if !domain.IsAlreadyExists(err) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetBySlug(t *testing.T) {
	repo := newCategoryRepo(setupTestDB(t))
	ctx := context.Background()

	c := domain.Category{Name: "Excavators", Slug: "excavators"}
	if err := repo.Create(ctx, &c); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetBySlug(ctx, "excavators")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("ID=%d; want %d", got.ID, c.ID)
	}

	if _, err := repo.GetBySlug(ctx, "missing"); !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound for missing slug, got %v", err)
	}
}

func TestList_PaginatesAndCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository[domain.Category](db, Config{
		SearchFields: []string{"name"},
		PageSize:     10,
		Order:        "id asc",
	})
	seedCategories(t, repo, 25)

	result, err := repo.List(context.Background(), domain.PageRequest{Page: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.CurrentPage != 2 {
		t.Errorf("CurrentPage=%d; want 2", result.CurrentPage)
	}
	if result.TotalPages != 3 {
		t.Errorf("TotalPages=%d; want 3", result.TotalPages)
	}
	if len(result.Items) != 10 {
		t.Fatalf("len(Items)=%d; want 10", len(result.Items))
	}
	if result.Items[0].Name != "Category 11" {
		t.Errorf("first item on page 2 = %q; want Category 11", result.Items[0].Name)
	}
}

func TestList_SearchFiltersCaseInsensitively(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository[domain.Category](db, Config{
		SearchFields: []string{"name"},
		Order:        "id asc",
	})
	ctx := context.Background()

	for i, name := range []string{"Crawler Excavator", "Wheel Loader", "Mini Excavator"} {
		c := domain.Category{Name: name, Slug: fmt.Sprintf("cat-%d", i)}
		if err := repo.Create(ctx, &c); err != nil {
			t.Fatalf("Create %q: %v", name, err)
		}
	}

	result, err := repo.List(ctx, domain.PageRequest{Page: 1, Search: "EXCAVATOR"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("len(Items)=%d; want 2", len(result.Items))
	}
	if result.Items[0].Name != "Crawler Excavator" || result.Items[1].Name != "Mini Excavator" {
		t.Errorf("unexpected matches: %q, %q", result.Items[0].Name, result.Items[1].Name)
	}

	// Unmatched term yields an empty page, not an error.
	empty, err := repo.List(ctx, domain.PageRequest{Page: 1, Search: "bulldozer"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(empty.Items) != 0 || empty.TotalItems != 0 {
		t.Errorf("want empty result, got %d items / %d total", len(empty.Items), empty.TotalItems)
	}
}

func TestList_ClampsPastLastPage(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository[domain.Category](db, Config{
		SearchFields: []string{"name"},
		PageSize:     10,
		Order:        "id asc",
	})
	seedCategories(t, repo, 21)
	ctx := context.Background()

	// Page 9 does not exist; the repository serves the last page instead.
	result, err := repo.List(ctx, domain.PageRequest{Page: 9})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.CurrentPage != 3 {
		t.Errorf("CurrentPage=%d; want clamped to 3", result.CurrentPage)
	}
	if len(result.Items) != 1 {
		t.Errorf("len(Items)=%d; want 1", len(result.Items))
	}
}

func TestList_EmptyCollection(t *testing.T) {
	repo := newCategoryRepo(setupTestDB(t))

	result, err := repo.List(context.Background(), domain.PageRequest{Page: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.CurrentPage != 1 {
		t.Errorf("CurrentPage=%d; want pinned to 1", result.CurrentPage)
	}
	if result.TotalItems != 0 {
		t.Errorf("TotalItems=%d; want 0", result.TotalItems)
	}
	if len(result.Items) != 0 {
		t.Errorf("len(Items)=%d; want 0", len(result.Items))
	}
}

func TestUpdateFields_NotFound(t *testing.T) {
	repo := newCategoryRepo(setupTestDB(t))

	err := repo.UpdateFields(context.Background(), 42, map[string]any{"name": "x"})
	if !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_RefusedWhileReferenced(t *testing.T) {
	db := setupTestDB(t)
	repo := newCategoryRepo(db)
	ctx := context.Background()

	c := domain.Category{Name: "Excavators", Slug: "excavators"}
	if err := repo.Create(ctx, &c); err != nil {
		t.Fatalf("Create category: %v", err)
	}
	p := domain.Product{Name: "ZX85", Slug: "zx85", CategoryID: c.ID}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}

	err := repo.Delete(ctx, c.ID)
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	// The refusal must leave the record in place.
	if _, err := repo.GetByID(ctx, c.ID); err != nil {
		t.Errorf("category should still exist after refused delete: %v", err)
	}

	// Removing the product unblocks the delete.
	if err := db.Delete(&domain.Product{}, p.ID).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Errorf("Delete after unreference: %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := newCategoryRepo(setupTestDB(t))

	err := repo.Delete(context.Background(), 999)
	if !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
