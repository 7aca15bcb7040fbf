package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/project-hub-api/internal/config"
	"github.com/yukikurage/project-hub-api/internal/constants"
	"github.com/yukikurage/project-hub-api/internal/database"
	"github.com/yukikurage/project-hub-api/internal/events"
	"github.com/yukikurage/project-hub-api/internal/handlers"
	"github.com/yukikurage/project-hub-api/internal/logger"
	"github.com/yukikurage/project-hub-api/internal/middleware"
	"github.com/yukikurage/project-hub-api/internal/realtime"
	"github.com/yukikurage/project-hub-api/internal/repository"
	"github.com/yukikurage/project-hub-api/internal/services"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	zlog, err := logger.New(cfg.GinMode, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Connect to database
	if err := database.Connect(cfg, zlog); err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.Migrate(zlog); err != nil {
		zlog.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := database.MigrateDatabase(database.GetDB(), zlog); err != nil {
		zlog.Fatal("Failed to add indexes", zap.Error(err))
	}

	// Live delivery transport
	publisher, subscriber, closeTransport, err := newLiveTransport(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to set up live transport", zap.Error(err))
	}
	defer closeTransport()
	live := realtime.NewChannel(publisher, cfg.LiveQueueSize, zlog)

	// Repositories
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	depRepo := repository.NewDependencyRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	timeRepo := repository.NewTimeEntryRepository(db)

	// Services
	bus := events.NewBus(zlog)
	notificationService := services.NewNotificationService(taskRepo, userRepo, notificationRepo, live, zlog)
	notificationService.Register(bus)

	taskService := services.NewTaskService(taskRepo, projectRepo, bus, zlog)
	depService := services.NewDependencyService(taskRepo, depRepo, timeRepo, zlog)
	commentService := services.NewCommentService(commentRepo, taskRepo, bus)
	timeService := services.NewTimeEntryService(timeRepo, taskRepo)
	teamService := services.NewTeamService(teamRepo, userRepo)
	projectService := services.NewProjectService(projectRepo, teamRepo, categoryRepo)
	categoryService := services.NewCategoryService(categoryRepo, projectRepo)
	activityService := services.NewActivityService(
		activityRepo,
		projectRepo,
		services.NewDefaultTargetRegistry(taskRepo, projectRepo, commentRepo, teamRepo),
		zlog,
	)

	// Initialize Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zlog))

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,                        // Redis pool size
		"tcp",                     // network type
		cfg.RedisAddr(),           // Redis address from config
		"",                        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		zlog.Fatal("Failed to create Redis store", zap.Error(err))
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS)
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(taskService, depService)
	commentHandler := handlers.NewCommentHandler(commentService)
	timeHandler := handlers.NewTimeEntryHandler(timeService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, subscriber, zlog)
	activityHandler := handlers.NewActivityHandler(activityService)
	teamHandler := handlers.NewTeamHandler(teamService)
	projectHandler := handlers.NewProjectHandler(projectService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Hub API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		// Team routes
		teams := api.Group("/teams")
		{
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("", teamHandler.ListTeams)
			teams.GET("/invitations", teamHandler.ListInvitations)
			teams.GET("/:id", middleware.RequireTeamAccess(), teamHandler.GetTeam)
			teams.PATCH("/:id", middleware.RequireTeamAccess(), middleware.RequireTeamManager(), teamHandler.UpdateTeam)
			teams.DELETE("/:id", middleware.RequireTeamAccess(), middleware.RequireTeamOwner(), teamHandler.DeleteTeam)
			teams.POST("/:id/members", middleware.RequireTeamAccess(), middleware.RequireTeamManager(), teamHandler.InviteMember)
			teams.PATCH("/:id/members/:user_id/role", middleware.RequireTeamAccess(), middleware.RequireTeamOwner(), teamHandler.AssignRole)
			teams.DELETE("/:id/members/:user_id", middleware.RequireTeamAccess(), middleware.RequireTeamManager(), teamHandler.RemoveMember)
			teams.POST("/:id/accept", middleware.RequireTeamMembership(), teamHandler.AcceptInvitation)
			teams.POST("/:id/leave", middleware.RequireTeamAccess(), teamHandler.LeaveTeam)
		}

		// Project routes
		projects := api.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", middleware.RequireProjectAccess(), projectHandler.GetProject)
			projects.PATCH("/:id", middleware.RequireProjectAccess(), middleware.RequireProjectOwner(), projectHandler.UpdateProject)
			projects.POST("/:id/clone", middleware.RequireProjectAccess(), projectHandler.CloneProject)
			projects.POST("/:id/template", middleware.RequireProjectAccess(), middleware.RequireProjectOwner(), projectHandler.MakeTemplate)
			projects.GET("/:id/blocked-tasks", middleware.RequireProjectAccess(), taskHandler.BlockedTasks)
		}

		// Category routes
		categories := api.Group("/categories")
		{
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("", categoryHandler.Tree)
			categories.GET("/:id", categoryHandler.GetCategory)
			categories.PATCH("/:id/move", categoryHandler.MoveCategory)
			categories.GET("/:id/descendants", categoryHandler.Descendants)
			categories.GET("/:id/projects", categoryHandler.Projects)
		}

		// Task routes
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskAccess(), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTaskAccess(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.RequireTaskAccess(), taskHandler.DeleteTask)
			tasks.POST("/:id/toggle", middleware.RequireTaskAccess(), taskHandler.ToggleTaskStatus)
			tasks.POST("/:id/assign", middleware.RequireTaskAccess(), taskHandler.AssignTask)
			tasks.POST("/:id/unassign", middleware.RequireTaskAccess(), taskHandler.UnassignTask)

			tasks.POST("/:id/dependencies", middleware.RequireTaskAccess(), taskHandler.AddDependency)
			tasks.POST("/:id/dependencies/validate", middleware.RequireTaskAccess(), taskHandler.ValidateDependency)
			tasks.DELETE("/:id/dependencies/:depends_on_id", middleware.RequireTaskAccess(), taskHandler.RemoveDependency)
			tasks.GET("/:id/graph", middleware.RequireTaskAccess(), taskHandler.DependencyGraph)

			tasks.GET("/:id/comments", middleware.RequireTaskAccess(), commentHandler.ListComments)
			tasks.POST("/:id/comments", middleware.RequireTaskAccess(), commentHandler.CreateComment)

			tasks.GET("/:id/time-entries", middleware.RequireTaskAccess(), timeHandler.ListEntries)
			tasks.POST("/:id/time-entries", middleware.RequireTaskAccess(), timeHandler.LogTime)
			tasks.POST("/:id/time-entries/start", middleware.RequireTaskAccess(), timeHandler.StartTimer)
		}

		// Time entry routes
		timeEntries := api.Group("/time-entries")
		{
			timeEntries.POST("/stop", timeHandler.StopTimer)
			timeEntries.PATCH("/:entry_id", timeHandler.UpdateEntry)
		}

		// Notification routes
		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.POST("/mark_read", notificationHandler.MarkRead)
			notifications.GET("/stream", notificationHandler.Stream)
		}

		api.GET("/activity", activityHandler.Feed)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server
	go func() {
		zlog.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
	if err := live.Close(shutdownCtx); err != nil {
		zlog.Warn("Live channel did not drain", zap.Error(err))
	}
}

// newLiveTransport picks the publisher and subscriber for LIVE_TRANSPORT.
// AMQP only publishes; clients then consume from the broker directly.
func newLiveTransport(cfg *config.Config, zlog *zap.Logger) (realtime.Publisher, realtime.Subscriber, func(), error) {
	switch cfg.LiveTransport {
	case config.LiveTransportRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
		return realtime.NewRedisPublisher(client), realtime.NewRedisSubscriber(client), func() {
			_ = client.Close()
		}, nil

	case config.LiveTransportAMQP:
		publisher, err := realtime.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, nil, nil, err
		}
		return publisher, nil, func() {
			_ = publisher.Close()
		}, nil

	case config.LiveTransportLocal:
		hub := realtime.NewHub(64)
		return hub, hub, func() {}, nil

	case config.LiveTransportNone:
		zlog.Info("Live delivery disabled")
		return nil, nil, func() {}, nil

	default:
		return nil, nil, nil, errors.New("unknown LIVE_TRANSPORT " + cfg.LiveTransport)
	}
}
