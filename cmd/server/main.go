package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edupanel/edupanel-api/api/swagger"
	"github.com/edupanel/edupanel-api/internal/handler"
	"github.com/edupanel/edupanel-api/internal/middleware"
	"github.com/edupanel/edupanel-api/internal/models"
	"github.com/edupanel/edupanel-api/internal/repository"
	"github.com/edupanel/edupanel-api/internal/service"
	"github.com/edupanel/edupanel-api/pkg/cache"
	"github.com/edupanel/edupanel-api/pkg/config"
	"github.com/edupanel/edupanel-api/pkg/database"
	"github.com/edupanel/edupanel-api/pkg/logger"
	corsmiddleware "github.com/edupanel/edupanel-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edupanel/edupanel-api/pkg/middleware/requestid"
)

// @title EduPanel API
// @version 1.0.0
// @description Role-based school management backend
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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck

		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Dashboard.CacheTTL, logr, false)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	liveRequestRepo := repository.NewLiveRequestRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "edupanel-api",
	})
	userSvc := service.NewUserService(userRepo, cacheSvc, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, validate, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, subjectRepo, cacheSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, userRepo, cacheSvc, validate, logr)
	gradeSvc := service.NewGradeService(gradeRepo, userRepo, subjectRepo, cacheSvc, validate, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, cacheSvc, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, validate, logr)
	resourceSvc := service.NewResourceService(resourceRepo, subjectRepo, validate, logr)
	chatSvc := service.NewChatService(messageRepo, userRepo, validate, logr)
	liveRequestSvc := service.NewLiveRequestService(liveRequestRepo, validate, logr)
	reportSvc := service.NewReportService(userRepo, gradeRepo, attendanceRepo, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Users:         userRepo,
		Subjects:      subjectRepo,
		Schedules:     scheduleRepo,
		Announcements: announcementRepo,
		Attendance:    attendanceRepo,
		Grades:        gradeRepo,
		Assignments:   assignmentRepo,
		Resources:     resourceRepo,
		Messages:      messageRepo,
		Cache:         cacheSvc,
		Logger:        logr,
		Config: service.DashboardServiceConfig{
			CacheTTL: cfg.Dashboard.CacheTTL,
		},
	})

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	gradeHandler := handler.NewGradeHandler(gradeSvc)
	announcementHandler := handler.NewAnnouncementHandler(announcementSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	resourceHandler := handler.NewResourceHandler(resourceSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	liveRequestHandler := handler.NewLiveRequestHandler(liveRequestSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
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
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
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

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/refresh", authHandler.Refresh)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.POST("/auth/logout", authHandler.Logout)

	dashboard := protected.Group("/dashboard")
	dashboard.GET("/admin", middleware.RequireRoles(models.RoleAdmin), dashboardHandler.Admin)
	dashboard.GET("/teacher", middleware.RequireRoles(models.RoleTeacher), dashboardHandler.Teacher)
	dashboard.GET("/student", middleware.RequireRoles(models.RoleStudent), dashboardHandler.Student)
	dashboard.GET("/parent", middleware.RequireRoles(models.RoleParent), dashboardHandler.Parent)

	users := protected.Group("/users", middleware.RequireRoles(models.RoleAdmin))
	users.GET("", userHandler.List)
	users.GET("/teachers", userHandler.ListTeachers)
	users.POST("", userHandler.Create)
	users.POST("/link-parent", userHandler.LinkParent)
	users.DELETE("/:id", userHandler.Delete)

	subjects := protected.Group("/subjects")
	subjects.GET("", subjectHandler.List)
	subjects.POST("", middleware.RequireRoles(models.RoleAdmin), subjectHandler.Create)
	subjects.POST("/:id/teachers", middleware.RequireRoles(models.RoleAdmin), subjectHandler.AssignTeacher)
	subjects.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), subjectHandler.Delete)

	schedules := protected.Group("/schedules")
	schedules.GET("", scheduleHandler.List)
	schedules.POST("", middleware.RequireRoles(models.RoleAdmin), scheduleHandler.Create)

	attendance := protected.Group("/attendance", middleware.RequireRoles(models.RoleTeacher))
	attendance.GET("", attendanceHandler.Roster)
	attendance.POST("", attendanceHandler.Save)

	grades := protected.Group("/grades", middleware.RequireRoles(models.RoleTeacher))
	grades.GET("", gradeHandler.Roster)
	grades.POST("", gradeHandler.Save)

	announcements := protected.Group("/announcements")
	announcements.GET("", announcementHandler.List)
	announcements.POST("", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), announcementHandler.Create)

	assignments := protected.Group("/assignments")
	assignments.GET("", assignmentHandler.List)
	assignments.POST("", middleware.RequireRoles(models.RoleTeacher), assignmentHandler.Create)

	resources := protected.Group("/resources")
	resources.GET("", resourceHandler.List)
	resources.POST("", middleware.RequireRoles(models.RoleTeacher), resourceHandler.Create)

	chat := protected.Group("/chat")
	chat.GET("/conversations", chatHandler.Conversations)
	chat.GET("/:contactId", chatHandler.Thread)
	chat.POST("", chatHandler.Send)

	liveRequests := protected.Group("/live-requests")
	liveRequests.GET("", liveRequestHandler.List)
	liveRequests.POST("", middleware.RequireRoles(models.RoleAdmin), liveRequestHandler.Create)
	liveRequests.PATCH("/:id", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher), liveRequestHandler.UpdateStatus)

	reports := protected.Group("/reports", middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher))
	reports.GET("/report-card/:studentId", reportHandler.ReportCard)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
