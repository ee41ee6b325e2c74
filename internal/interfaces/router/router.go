package router

import (
	"admin-backend/internal/adminapi"
	healthsvc "admin-backend/internal/application/health"
	"admin-backend/internal/application/invitelog"
	"admin-backend/internal/config"
	"admin-backend/internal/infrastructure/database"
	aphandler "admin-backend/internal/interfaces/handlers/accesspolicy"
	healthhandler "admin-backend/internal/interfaces/handlers/health"
	invhandler "admin-backend/internal/interfaces/handlers/invitations"
	projhandler "admin-backend/internal/interfaces/handlers/project"
	"admin-backend/internal/middleware"
	"admin-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with global middleware and routes. The DB is nil when
// DATABASE_URL is unset; the invite log is then disabled.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	rdb, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	app, err := NewApp(cfg, rdb, db)
	if err != nil {
		return nil, nil, nil, err
	}
	return app, db, rdb, nil
}

// NewApp wires routes against already-open Redis and (optional) DB connections.
func NewApp(cfg *config.Config, rdb *redis.Client, db *gorm.DB) (*fiber.App, error) {
	tmpl, err := web.Load()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
		AllowLocal:    cfg.AllowCrossSiteDev,
	}))
	app.Use(middleware.Session(rdb, cfg.SessionSecret))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	checker := &healthsvc.Checker{Rdb: rdb, AdminAPIURL: cfg.AdminAPIBaseURL}
	if db != nil {
		checker.DB = &database.Pinger{DB: db}
	}
	hh := &healthhandler.Handlers{Checker: checker, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)

	api := &adminapi.CachedClient{
		Next: &adminapi.HTTPClient{BaseURL: cfg.AdminAPIBaseURL, Token: cfg.AdminAPIToken},
		Rdb:  rdb,
		TTL:  cfg.ProjectCacheTTL,
	}

	var inviteLog *invitelog.Service
	if db != nil {
		inviteLog = &invitelog.Service{DB: db}
	}

	requireProject := middleware.RequireProject(cfg.DefaultProjectID)

	ih := &invhandler.Handlers{API: api, Templates: tmpl, Log: inviteLog}
	ph := &projhandler.Handlers{API: api, Templates: tmpl}
	admin := app.Group("/admin", requireProject)
	admin.Get("/invite", ih.Show)
	admin.Post("/invite", ih.Submit)
	admin.Get("/project", ph.Show)

	aph := &aphandler.Handlers{API: api}
	apiGroup := app.Group("/api/v1", requireProject)
	apiGroup.Get("/access-policies", aph.Search)
	apiGroup.Get("/invites/recent", ih.Recent)

	return app, nil
}

