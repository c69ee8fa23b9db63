package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/ems-api/internal/config"
	"github.com/yukikurage/ems-api/internal/database"
	"github.com/yukikurage/ems-api/internal/events"
	"github.com/yukikurage/ems-api/internal/handlers"
	"github.com/yukikurage/ems-api/internal/repository"
	"github.com/yukikurage/ems-api/internal/routes"
	"github.com/yukikurage/ems-api/internal/scheduler"
	"github.com/yukikurage/ems-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	useMongo := cfg.TaskStore == "mongo"

	// Run migrations
	if err := database.Migrate(db, !useMongo); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Task store
	var taskRepo repository.TaskRepository
	switch cfg.TaskStore {
	case "sql":
		taskRepo = repository.NewTaskRepository(db)
	case "mongo":
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("Failed to disconnect MongoDB: %v", err)
			}
		}()
		mongoRepo := repository.NewMongoTaskRepository(client.Database(cfg.MongoDB))
		if err := mongoRepo.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Failed to create MongoDB indexes: %v", err)
		}
		taskRepo = mongoRepo
	default:
		log.Fatalf("Unsupported TASK_STORE %q", cfg.TaskStore)
	}

	// Redis is optional and only backs the sweep lock
	var locker scheduler.Locker = scheduler.NewLocalLocker()
	redisClient, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = scheduler.NewRedisLocker(redisClient)
	}

	userRepo := repository.NewUserRepository(db)
	deptRepo := repository.NewDepartmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize AI service
	var drafter services.TaskDrafter
	if cfg.OpenAIAPIKey != "" {
		drafter = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Services and event wiring
	bus := events.NewBus()
	notificationService := services.NewNotificationService(notificationRepo)
	bus.Subscribe(services.NewNotificationEmitter(notificationService).Handle)

	tokens := services.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	authService := services.NewAuthService(userRepo, deptRepo, tokens, bus)
	departmentService := services.NewDepartmentService(deptRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, bus, drafter)

	if cfg.AdminEmail != "" {
		created, err := authService.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.Fatalf("Failed to create admin account: %v", err)
		}
		if created {
			log.Printf("Created admin account %s", cfg.AdminEmail)
		}
	}

	sweeper := scheduler.NewOverdueSweeper(taskService, notificationService, bus, locker)
	// Deferred after the store cleanups, so it runs before them
	sweeperDone := sweeper.Run(ctx, cfg.OverdueInterval)
	defer func() { <-sweeperDone }()

	// Initialize Gin router
	r := gin.Default()
	routes.Setup(r, routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService),
		Department:   handlers.NewDepartmentHandler(departmentService),
		Task:         handlers.NewTaskHandler(taskService),
		Notification: handlers.NewNotificationHandler(notificationService),
	}, routes.Options{
		Tokens:          tokens,
		Tasks:           taskService,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		RateLimitBurst:  cfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
