package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/simp-lee/jwt"
	"github.com/simp-lee/logger"
	"gorm.io/gorm"

	"github.com/tracnorth/site/internal/config"
	"github.com/tracnorth/site/internal/domain"
	"github.com/tracnorth/site/internal/middleware"
	"github.com/tracnorth/site/internal/module/auth"
	"github.com/tracnorth/site/internal/module/blog"
	"github.com/tracnorth/site/internal/module/catalog"
	"github.com/tracnorth/site/internal/module/company"
	"github.com/tracnorth/site/internal/module/inbox"
	"github.com/tracnorth/site/internal/module/job"
	"github.com/tracnorth/site/internal/module/user"
	"github.com/tracnorth/site/internal/upload"
)

// App holds the core application dependencies and the HTTP server.
type App struct {
	engine *gin.Engine
	db     *gorm.DB
	logger *logger.Logger
	cfg    *config.Config
	perms  domain.PermissionService
}

type httpServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

var newHTTPServer = func(addr string, handler http.Handler) httpServer {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

var notifyContext = func(parent context.Context, signals ...os.Signal) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}

// New creates and wires a fully configured App from the given Config.
//
// It sets up logging, the database, upload storage, the token and permission
// services, every resource module, middleware, and routes.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	success := false

	// 1. Setup logger.
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}

	if cfg.Server.Mode == gin.DebugMode && cfg.Server.Host == "0.0.0.0" {
		log.Warn("insecure server config: debug mode on 0.0.0.0 may expose debug behavior and permissive CORS")
	}
	defer func() {
		if success {
			return
		}
		if err := log.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}()

	// 2. Setup database with connection pool.
	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return nil, fmt.Errorf("setup database: %w", err)
	}
	defer func() {
		if success {
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", slog.Any("error", err))
		}
	}()

	// 3. AutoMigrate in debug mode only.
	if cfg.Server.Mode == gin.DebugMode {
		if err := db.AutoMigrate(
			&domain.Role{},
			&domain.User{},
			&domain.Blog{},
			&domain.Job{},
			&domain.Category{},
			&domain.EquipmentType{},
			&domain.Product{},
			&domain.Company{},
			&domain.Location{},
			&domain.Message{},
			&domain.Quotation{},
		); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("auto migration completed")
	}

	// 4. Upload storage.
	storage, err := upload.New(&cfg.Upload)
	if err != nil {
		return nil, fmt.Errorf("setup upload storage: %w", err)
	}

	// 5. Token service.
	jwtSvc, err := jwt.New(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("create jwt service: %w", err)
	}
	tokenExpiry, err := time.ParseDuration(cfg.Auth.TokenExpiry)
	if err != nil {
		return nil, fmt.Errorf("invalid auth.token_expiry: %w", err)
	}

	// 6. Permission service. Nil when RBAC is disabled.
	perms, err := newPermissionService(&cfg.Auth.RBAC, db)
	if err != nil {
		return nil, fmt.Errorf("setup permission service: %w", err)
	}

	// 7. Manual dependency injection: repositories → handlers → modules.
	userModule := user.NewModule(db, perms)
	if err := userModule.SyncRoles(db); err != nil {
		return nil, fmt.Errorf("sync roles: %w", err)
	}

	authSvc := auth.NewService(
		jwtSvc,
		auth.NewUserStore(userModule.Users()),
		tokenExpiry,
		cfg.Auth.OpenRegister,
	)
	authModule := auth.NewModule(auth.NewHandler(authSvc))

	modules := []Module{
		blog.NewModule(db, storage, perms),
		job.NewModule(db, perms),
		catalog.NewModule(db, storage, perms),
		company.NewModule(db, storage, perms),
		inbox.NewModule(db, perms),
		userModule,
	}

	// 8. Create Gin engine with custom middleware (not gin.Default()).
	if err := validateGinMode(cfg.Server.Mode); err != nil {
		return nil, err
	}
	gin.SetMode(cfg.Server.Mode)
	engine := gin.New()

	// In release mode, when no allowlist is configured, default to deny
	// cross-origin requests.
	corsConfig := resolveCORSConfig(cfg.Server.Mode, cfg.Server.CORS.AllowOrigins)

	engine.Use(
		middleware.Recovery(log.Logger),
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{
			TrustUpstream: false,
		}),
		middleware.Logger(log.Logger),
		middleware.CORSWithConfig(corsConfig),
	)

	// 9. Register all routes.
	if err := RegisterRoutes(engine, &RouteDeps{
		Modules:    modules,
		AuthModule: authModule,
		JWTService: jwtSvc,
		DB:         db,
		UploadDir:  cfg.Upload.Dir,
		Cache:      &cfg.Server.Cache,
	}); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	success = true
	return &App{
		engine: engine,
		db:     db,
		logger: log,
		cfg:    cfg,
		perms:  perms,
	}, nil
}

func resolveCORSConfig(mode string, configuredAllowOrigins []string) middleware.CORSConfig {
	corsConfig := middleware.DefaultCORSConfig()

	if len(configuredAllowOrigins) > 0 {
		corsConfig.AllowOrigins = configuredAllowOrigins
		return corsConfig
	}

	if mode == gin.ReleaseMode {
		corsConfig.AllowOrigins = []string{}
	}

	return corsConfig
}

func validateGinMode(mode string) error {
	switch mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		return nil
	default:
		return fmt.Errorf("invalid server.mode %q: must be one of %q, %q, %q", mode, gin.DebugMode, gin.ReleaseMode, gin.TestMode)
	}
}

// Run starts the HTTP server and blocks until a shutdown signal is received.
// It performs graceful shutdown with a 5-second timeout and closes the
// database connection and permission service.
func (a *App) Run() error {
	if a == nil {
		return errors.New("app is nil")
	}
	if a.cfg == nil {
		return errors.New("app config is nil")
	}
	if a.engine == nil {
		return errors.New("app engine is nil")
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := newHTTPServer(addr, a.engine)

	// Listen for SIGINT / SIGTERM.
	ctx, stop := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		a.logf().Info("server started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		a.logf().Info("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("server error: %w", err)
	}

	if runErr == nil {
		// Graceful shutdown with 5-second deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logf().Error("server shutdown error", slog.Any("error", err))
		}
	}

	if a.perms != nil {
		if err := a.perms.Close(); err != nil {
			a.logf().Error("permission service close error", slog.Any("error", err))
		}
	}

	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				a.logf().Error("database close error", slog.Any("error", err))
			} else {
				a.logf().Info("database connection closed")
			}
		}
	}

	a.logf().Info("server stopped")
	if a.logger != nil {
		if err := a.logger.Close(); err != nil {
			slog.Error("logger close error", slog.Any("error", err))
		}
	}

	return runErr
}

// logf returns the application logger, falling back to the default slog
// logger so Run never nil-panics in partially constructed tests.
func (a *App) logf() *slog.Logger {
	if a.logger != nil {
		return a.logger.Logger
	}
	return slog.Default()
}
