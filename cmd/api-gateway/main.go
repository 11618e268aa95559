package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/clinedu/clined-api/api/swagger"
	"github.com/clinedu/clined-api/internal/handler"
	"github.com/clinedu/clined-api/internal/middleware"
	"github.com/clinedu/clined-api/internal/models"
	"github.com/clinedu/clined-api/internal/repository"
	"github.com/clinedu/clined-api/internal/service"
	"github.com/clinedu/clined-api/pkg/cache"
	"github.com/clinedu/clined-api/pkg/config"
	"github.com/clinedu/clined-api/pkg/database"
	"github.com/clinedu/clined-api/pkg/logger"
	corsmiddleware "github.com/clinedu/clined-api/pkg/middleware/cors"
	reqidmiddleware "github.com/clinedu/clined-api/pkg/middleware/requestid"
)

// @title ClinEd API
// @version 0.1.0
// @description Clinical education administration API
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Sites.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, site directory cache disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient)
		}
	}

	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	programRepo := repository.NewProgramRepository(db)
	cohortRepo := repository.NewCohortRepository(db)
	templateRepo := repository.NewRotationTemplateRepository(db)
	siteRepo := repository.NewClinicalSiteRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	rotationRepo := repository.NewRotationRepository(db)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "clined-api",
	})
	programSvc := service.NewProgramService(programRepo, logr)
	cohortSvc := service.NewCohortService(cohortRepo, programRepo, nil, logr)
	templateSvc := service.NewTemplateService(templateRepo, programRepo, siteRepo, nil, logr)
	siteSvc := service.NewSiteService(siteRepo, cacheRepo, cfg.Sites.CacheTTL, nil, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, cohortRepo, templateRepo, siteRepo, rotationRepo, auditRepo, nil, logr)
	generatorSvc := service.NewGeneratorService(assignmentRepo, cohortRepo, templateRepo, rotationRepo, auditRepo, metricsSvc, nil, logr, cfg.Generator.MaxRosterSize)
	rotationSvc := service.NewRotationService(rotationRepo, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(rotationRepo, assignmentRepo, cfg.Exports.MaxRows, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	programHandler := handler.NewProgramHandler(programSvc)
	cohortHandler := handler.NewCohortHandler(cohortSvc)
	templateHandler := handler.NewTemplateHandler(templateSvc)
	siteHandler := handler.NewSiteHandler(siteSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc, generatorSvc)
	rotationHandler := handler.NewRotationHandler(rotationSvc, nil)
	if exportSvc != nil {
		rotationHandler = handler.NewRotationHandler(rotationSvc, exportSvc)
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/auth/me", authHandler.Me)

	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleSchoolAdmin)
	staff := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleSchoolAdmin, models.RolePreceptor)

	authed.GET("/programs", staff, programHandler.List)
	authed.GET("/programs/:id", staff, programHandler.Get)

	authed.GET("/cohorts", staff, cohortHandler.List)
	authed.GET("/cohorts/:id", staff, cohortHandler.Get)
	authed.GET("/cohorts/:id/roster", staff, cohortHandler.Roster)
	authed.POST("/cohorts", admins, cohortHandler.Create)
	authed.PUT("/cohorts/:id", admins, cohortHandler.Update)

	authed.GET("/rotation-templates", staff, templateHandler.List)
	authed.GET("/rotation-templates/:id", staff, templateHandler.Get)
	authed.POST("/rotation-templates", admins, templateHandler.Create)
	authed.PUT("/rotation-templates/:id", admins, templateHandler.Update)

	authed.GET("/clinical-sites", siteHandler.Directory)
	authed.GET("/clinical-sites/:id", siteHandler.Get)
	authed.POST("/clinical-sites", admins, siteHandler.Create)
	authed.PUT("/clinical-sites/:id", admins, siteHandler.Update)

	authed.GET("/cohort-rotations", staff, assignmentHandler.List)
	authed.GET("/cohort-rotations/:id", staff, assignmentHandler.Get)
	authed.POST("/cohort-rotations", admins, assignmentHandler.Create)
	authed.PUT("/cohort-rotations/:id", admins, assignmentHandler.Update)
	authed.DELETE("/cohort-rotations/:id", admins, assignmentHandler.Delete)
	authed.POST("/cohort-rotations/generate", admins,
		middleware.Audit(auditRepo, models.AuditActionRotationGenerate, "cohort_rotation_assignment"),
		assignmentHandler.Generate)
	authed.POST("/cohort-rotations/:id/complete", admins, assignmentHandler.Complete)
	authed.POST("/cohort-rotations/:id/cancel", admins, assignmentHandler.Cancel)
	authed.GET("/cohort-rotations/:id/rotations", staff, rotationHandler.ListByAssignment)
	authed.GET("/cohort-rotations/:id/export", staff, rotationHandler.Export)

	authed.GET("/rotations", rotationHandler.List)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
