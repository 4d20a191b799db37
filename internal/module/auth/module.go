package auth

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/tracnorth/site/internal/crud"
	"github.com/tracnorth/site/internal/domain"
)

// AuthModule registers the authentication routes.
type AuthModule struct {
	handler *AuthHandler
}

// NewModule creates a new AuthModule with the given handler.
// Panics if h is nil.
func NewModule(h *AuthHandler) *AuthModule {
	if h == nil {
		panic("auth.NewModule: handler must not be nil")
	}
	return &AuthModule{handler: h}
}

// RegisterRoutes registers auth API routes on the given group. Auth lives
// outside the admin gate so login works without a token.
func (m *AuthModule) RegisterRoutes(auth *gin.RouterGroup) {
	auth.POST("/login", m.handler.Login)
	auth.POST("/register", m.handler.Register)
}

// repoStore adapts the shared generic user repository to the UserStore
// interface.
type repoStore struct {
	repo *crud.Repository[domain.User]
}

// NewUserStore wraps a user repository as a UserStore.
func NewUserStore(repo *crud.Repository[domain.User]) UserStore {
	return repoStore{repo: repo}
}

func (s repoStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.GetBy(ctx, "email = ?", email)
}

func (s repoStore) Create(ctx context.Context, u *domain.User) error {
	return s.repo.Create(ctx, u)
}
