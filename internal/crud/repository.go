// Package crud implements the one list/CRUD mechanism every back-office
// resource shares: paginated searchable listing, detail lookup, create,
// update, and delete with a domain-refusal hook. Each resource module
// instantiates it with its own entity type instead of re-implementing the
// pattern per screen.
package crud

import (
	"context"
	"errors"
	"strings"

	"github.com/simp-lee/pagination"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/domain"
	"github.com/tracnorth/site/internal/pkg"
)

// Entity is the constraint every managed resource satisfies via
// domain.BaseModel.
type Entity interface {
	GetID() uint
}

// Scope narrows a query, e.g. published-only for public listings.
type Scope = func(db *gorm.DB) *gorm.DB

// Config tunes a repository for one resource.
type Config struct {
	// SearchFields are the designated display fields the ?search= term is
	// matched against, case-insensitively.
	SearchFields []string

	// Preloads are relation names loaded with every read.
	Preloads []string

	// Order is the default ORDER BY clause. Defaults to "id desc".
	Order string

	// PageSize overrides the fixed server page size.
	PageSize int

	// BeforeDelete runs inside the delete transaction. Returning an error
	// aborts the delete; a domain.CodeConflict error surfaces to the client
	// as a specific refusal message.
	BeforeDelete func(ctx context.Context, tx *gorm.DB, id uint) error
}

// Repository is a GORM-backed data access layer generic over the entity type.
type Repository[T Entity] struct {
	db  *gorm.DB
	cfg Config
}

// NewRepository creates a Repository for T with the given configuration.
func NewRepository[T Entity](db *gorm.DB, cfg Config) *Repository[T] {
	if cfg.PageSize <= 0 {
		cfg.PageSize = pkg.DefaultPageSize
	}
	if cfg.Order == "" {
		cfg.Order = "id desc"
	}
	return &Repository[T]{db: db, cfg: cfg}
}

// DB exposes the underlying handle for module-specific queries that fall
// outside the generic contract (reordering, toggles).
func (r *Repository[T]) DB() *gorm.DB { return r.db }

// PageSize returns the fixed page size this repository serves.
func (r *Repository[T]) PageSize() int { return r.cfg.PageSize }

// Create inserts a new record.
func (r *Repository[T]) Create(ctx context.Context, e *T) error {
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// GetByID retrieves a record by primary key, with configured preloads.
func (r *Repository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var e T
	if err := r.preload(r.db.WithContext(ctx)).First(&e, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

// GetBy retrieves the first record matching the condition, with configured
// preloads.
func (r *Repository[T]) GetBy(ctx context.Context, query string, args ...any) (*T, error) {
	var e T
	if err := r.preload(r.db.WithContext(ctx)).Where(query, args...).First(&e).Error; err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

// GetBySlug retrieves a record by its slug column, with configured preloads.
// Extra scopes can narrow the lookup, e.g. published-only for public detail
// views.
func (r *Repository[T]) GetBySlug(ctx context.Context, slug string, scopes ...Scope) (*T, error) {
	var e T
	q := r.preload(r.db.WithContext(ctx)).Where("slug = ?", slug)
	for _, sc := range scopes {
		q = q.Scopes(sc)
	}
	if err := q.First(&e).Error; err != nil {
		return nil, mapError(err)
	}
	return &e, nil
}

// List returns one page of records matching the request's search term and
// any extra scopes. The paginator clamps the requested page into the valid
// range computed from the filtered count, so a refetch issued after a delete
// that emptied the last page lands on the new last page rather than
// returning an empty page.
func (r *Repository[T]) List(ctx context.Context, req domain.PageRequest, scopes ...Scope) (*pagination.Pagination[T], error) {
	base := r.db.WithContext(ctx).Model(new(T)).
		Scopes(pkg.Search(req.Search, r.cfg.SearchFields))
	for _, sc := range scopes {
		base = base.Scopes(sc)
	}
	// Both callbacks query off the same base; a new session keeps the
	// count from polluting the slice statement.
	base = base.Session(&gorm.Session{})

	p := pagination.NewPaginator[T](
		pagination.WithItemsPerPage[T](r.cfg.PageSize),
		pagination.WithItemTotalCallback[T](func(context.Context) (int64, error) {
			var total int64
			err := base.Count(&total).Error
			return total, err
		}),
		pagination.WithSliceCallback[T](func(_ context.Context, offset, limit int) ([]T, error) {
			var items []T
			err := r.preload(base).
				Order(r.cfg.Order).
				Offset(offset).Limit(limit).
				Find(&items).Error
			return items, err
		}),
	)

	page := req.Page
	if page < 1 {
		page = 1
	}

	result, err := p.Paginate(ctx, page)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// Update saves changes to an existing record.
func (r *Repository[T]) Update(ctx context.Context, e *T) error {
	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateFields applies a partial column update to a record by ID. Used by
// the PATCH sub-actions (publish, follow-up, position, status).
func (r *Repository[T]) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes a record by ID inside a transaction, running the configured
// BeforeDelete hook first.
func (r *Repository[T]) Delete(ctx context.Context, id uint) error {
	return pkg.WithTx(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if r.cfg.BeforeDelete != nil {
			if err := r.cfg.BeforeDelete(ctx, tx, id); err != nil {
				return err
			}
		}
		result := tx.Delete(new(T), id)
		if result.Error != nil {
			return mapError(result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

// preload applies the configured relation preloads to a query.
func (r *Repository[T]) preload(db *gorm.DB) *gorm.DB {
	for _, p := range r.cfg.Preloads {
		db = db.Preload(p)
	}
	return db
}

// RefuseDeleteWhileReferenced returns a BeforeDelete hook that blocks
// deletion while rows of the referencing model still point at the record,
// e.g. products referencing a category.
func RefuseDeleteWhileReferenced(referencing any, foreignKey, message string) func(ctx context.Context, tx *gorm.DB, id uint) error {
	return func(ctx context.Context, tx *gorm.DB, id uint) error {
		var count int64
		if err := tx.Model(referencing).Where(foreignKey+" = ?", id).Count(&count).Error; err != nil {
			return mapError(err)
		}
		if count > 0 {
			return domain.NewAppError(domain.CodeConflict, message, nil)
		}
		return nil
	}
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
