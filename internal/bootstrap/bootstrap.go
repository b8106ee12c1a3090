package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/coursehub/internal/app/auth"
	appControllers "github.com/yigit/coursehub/internal/app/controllers"
	appMigrations "github.com/yigit/coursehub/internal/app/migrations"
	appRepos "github.com/yigit/coursehub/internal/app/repositories"
	appRoutes "github.com/yigit/coursehub/internal/app/routes"
	appServices "github.com/yigit/coursehub/internal/app/services"
	"github.com/yigit/coursehub/internal/config"
	"github.com/yigit/coursehub/internal/db"
	appMiddleware "github.com/yigit/coursehub/internal/middleware"
	pkgAuth "github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/filestorage"
	"github.com/yigit/coursehub/internal/pkg/helpers"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/loginguard"
	"github.com/yigit/coursehub/internal/pkg/metrics"
	"github.com/yigit/coursehub/internal/pkg/session"
	"github.com/yigit/coursehub/internal/pkg/websocket"
	"github.com/yigit/coursehub/internal/seed"
)

// Repositories is the set of stores the services are built on. Both the
// PostgreSQL and the in-memory implementations satisfy it.
type Repositories struct {
	Users              appRepos.IUserRepository
	Topics             appRepos.ITopicRepository
	TopicComments      appRepos.ICommentRepository
	Assignments        appRepos.IAssignmentRepository
	AssignmentComments appRepos.ICommentRepository
	Resources          appRepos.IResourceRepository
	ResourceComments   appRepos.ICommentRepository
	Weeks              appRepos.IWeekRepository
	WeekComments       appRepos.ICommentRepository
}

// PostgresRepositories adapts the PostgreSQL repository container.
func PostgresRepositories(r *appRepos.Repositories) Repositories {
	return Repositories{
		Users:              r.UserRepository,
		Topics:             r.TopicRepository,
		TopicComments:      r.TopicCommentRepository,
		Assignments:        r.AssignmentRepository,
		AssignmentComments: r.AssignmentCommentRepository,
		Resources:          r.ResourceRepository,
		ResourceComments:   r.ResourceCommentRepository,
		Weeks:              r.WeekRepository,
		WeekComments:       r.WeekCommentRepository,
	}
}

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos        Repositories
	Hasher       pkgAuth.Hasher
	JWTService   *pkgAuth.JWTService
	AuthzService *appAuth.AuthorizationService
	Metrics      *metrics.Metrics
	FileStorage  filestorage.FileStorage
	Guard        loginguard.Guard
	Hub          *websocket.Hub

	AuthService       *appServices.AuthService
	UserService       appServices.UserService
	TopicService      appServices.TopicService
	AssignmentService appServices.AssignmentService
	ResourceService   appServices.ResourceService
	WeekService       appServices.WeekService

	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:   logger.ParseLevel(cfg.Logging.Level),
		Service: "coursehub",
		Pretty:  cfg.Logging.Format == "text",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	if err := RunMigrations(ctx, database.Pool, cfg.Server.MigrationsDir, lgr); err != nil {
		database.Close()
		return nil, err
	}
	return database.Pool, nil
}

// RunMigrations applies the pending SQL files of dir.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, lgr zerolog.Logger) error {
	lgr.Info().Str("path", dir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(pool, logger.WithComponent("migrator"))
	if err := migrator.MigrateFromDirectory(ctx, dir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")
	return nil
}

// SetupLoginGuard uses Redis when configured and falls back to process memory.
func SetupLoginGuard(cfg *config.Config, lgr zerolog.Logger) (loginguard.Guard, *redis.Client) {
	window := helpers.ParseDuration(cfg.LoginGuard.Window, 15*time.Minute)

	client, err := db.NewRedisClient(cfg)
	if err != nil {
		lgr.Warn().Err(err).Msg("Redis unavailable, keeping login attempts in memory")
	}
	if client == nil {
		return loginguard.NewMemoryGuard(cfg.LoginGuard.MaxAttempts, window), nil
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Login attempts tracked in Redis")
	return loginguard.NewRedisGuard(client, cfg.LoginGuard.MaxAttempts, window), client
}

// BuildDependencies initializes services and controllers on top of repos.
func BuildDependencies(cfg *config.Config, repos Repositories, guard loginguard.Guard, pinger appControllers.Pinger, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Repos:   repos,
		Hasher:  pkgAuth.NewBcryptHasher(),
		Metrics: metrics.New(),
		Guard:   guard,
		Logger:  lgr,
	}

	storage, err := filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.BaseURL()+"/uploads")
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}
	deps.FileStorage = storage

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 2*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(repos.Topics, repos.TopicComments)

	deps.AuthService = appServices.NewAuthService(
		repos.Users,
		deps.JWTService,
		deps.Hasher,
		guard,
		deps.Metrics,
		logger.WithComponent("auth"),
	)
	deps.UserService = appServices.NewUserService(repos.Users, deps.Hasher)
	deps.Hub = websocket.NewHub(cfg.Server.AllowedOrigins, logger.WithComponent("live"))
	deps.TopicService = appServices.NewTopicService(repos.Topics, repos.TopicComments, deps.AuthzService, deps.Hub)
	deps.AssignmentService = appServices.NewAssignmentService(repos.Assignments, repos.AssignmentComments, deps.AuthzService, storage)
	deps.ResourceService = appServices.NewResourceService(repos.Resources, repos.ResourceComments, deps.AuthzService)
	deps.WeekService = appServices.NewWeekService(repos.Weeks, repos.WeekComments, deps.AuthzService)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService)

	deps.Controllers = appRoutes.Controllers{
		Auth:       appControllers.NewAuthController(deps.AuthService, lgr),
		Flash:      appControllers.NewFlashController(),
		Health:     appControllers.NewHealthController(pinger),
		User:       appControllers.NewUserController(deps.UserService),
		Topic:      appControllers.NewTopicController(deps.TopicService, deps.Hub),
		Assignment: appControllers.NewAssignmentController(deps.AssignmentService),
		Resource:   appControllers.NewResourceController(deps.ResourceService),
		Week:       appControllers.NewWeekController(deps.WeekService),
		Dispatch: appControllers.NewDispatchController(
			deps.AuthService,
			deps.UserService,
			deps.TopicService,
			deps.AssignmentService,
			deps.ResourceService,
			deps.WeekService,
		),
	}

	return deps, nil
}

// SeedDefaultAdmin creates the default admin account; failures are logged only.
func SeedDefaultAdmin(ctx context.Context, deps *Dependencies) {
	if _, err := seed.CreateDefaultData(ctx, deps.Repos.Users, deps.Hasher, deps.Logger); err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appMiddleware.RegisterValidation()

	router := gin.New()
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(),
		deps.Metrics.Middleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		session.Middleware(session.Options{
			Name:   cfg.Session.Name,
			Secret: cfg.Session.Secret,
			MaxAge: cfg.Session.MaxAge,
			Secure: cfg.Session.Secure,
		}),
	)

	appRoutes.SetupSwagger(router, cfg.BaseURL())
	router.GET("/metrics", deps.Metrics.Handler())
	router.Static("/uploads", cfg.Server.StoragePath)

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router
}
