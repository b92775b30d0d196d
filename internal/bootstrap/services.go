package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/syaquiii/innoventum-sub001/config"
	"github.com/syaquiii/innoventum-sub001/internal/data"
	"github.com/syaquiii/innoventum-sub001/internal/ports"
	"github.com/syaquiii/innoventum-sub001/internal/service"
)

// ServiceDeps contains shared dependencies for building services.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the constructed application services.
type ServiceContainer struct {
	Auth    *service.AuthService
	Catalog *service.CatalogService
	OAuth   ports.OAuthExchanger
}

// NewServices builds the application services from shared dependencies.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	auth, err := BuildAuthService(AuthConfig{
		Auth:        deps.Config.Auth,
		DB:          deps.DB,
		RedisClient: deps.RedisClient,
		Logger:      deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	oauth, err := BuildOAuthProvider(ctx, AuthConfig{
		Auth:   deps.Config.Auth,
		Logger: deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	catalog := service.NewCatalogService(service.CatalogServiceOptions{
		Courses: data.NewCourseRepo(deps.DB),
		Threads: data.NewThreadRepo(deps.DB),
		Mentors: data.NewMentorRepo(deps.DB),
	})

	return ServiceContainer{Auth: auth, Catalog: catalog, OAuth: oauth}, nil
}

// RunMigrations applies pending schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger != nil {
		logger.InfoContext(ctx, "applying database migrations")
	}
	return data.RunMigrations(ctx, db)
}
