package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/learnfinity/learnfinity-backend/internal/clients/redis"
	"github.com/learnfinity/learnfinity-backend/internal/db"
	"github.com/learnfinity/learnfinity-backend/internal/handlers"
	"github.com/learnfinity/learnfinity-backend/internal/identity"
	"github.com/learnfinity/learnfinity-backend/internal/logger"
	"github.com/learnfinity/learnfinity-backend/internal/middleware"
	"github.com/learnfinity/learnfinity-backend/internal/observability"
	"github.com/learnfinity/learnfinity-backend/internal/repos"
	"github.com/learnfinity/learnfinity-backend/internal/seeds"
	"github.com/learnfinity/learnfinity-backend/internal/server"
	"github.com/learnfinity/learnfinity-backend/internal/services"
	"github.com/learnfinity/learnfinity-backend/internal/sse"
	"github.com/learnfinity/learnfinity-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "learnfinity",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(ctx)
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	mappingRepo := repos.NewCredentialMappingRepo(thePG, log)
	employeeRepo := repos.NewEmployeeRepo(thePG, log)
	courseRepo := repos.NewCourseRepo(thePG, log)
	enrollmentRepo := repos.NewEnrollmentRepo(thePG, log)
	contentRepo := repos.NewPersonalizedContentRepo(thePG, log)
	pathRepo := repos.NewLearningPathRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Redis event bus (optional): without it each instance only reaches its own
	// SSE clients. With the bus, services emit to Redis only and every
	// instance's forwarder (this one included) delivers to its local hub, so
	// each client sees each event exactly once.
	var eventBus redis.EventBus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		eventBus, err = redis.NewEventBus(log)
		if err != nil {
			log.Warn("Could not init Redis event bus", "error", err)
		} else {
			defer eventBus.Close()
			if err := eventBus.StartForwarder(context.Background(), sseHub.Broadcast); err != nil {
				log.Warn("Could not start Redis event forwarder", "error", err)
			}
		}
	}
	var emitter services.SSEEmitter
	if eventBus != nil {
		emitter = &services.RedisEmitter{Bus: eventBus}
	} else {
		emitter = &services.HubEmitter{Hub: sseHub}
	}

	// Identity backend: a hosted GoTrue-compatible provider when configured,
	// otherwise the local user table.
	var identityClient identity.Client
	if strings.TrimSpace(os.Getenv("IDENTITY_BASE_URL")) != "" || strings.TrimSpace(os.Getenv("SUPABASE_URL")) != "" {
		identityClient, err = identity.NewGoTrueClient(log)
		if err != nil {
			log.Fatal("Could not init identity client", "error", err)
		}
	} else {
		identityClient = identity.NewLocalClient(thePG, log, userRepo)
	}

	// Services
	log.Info("Setting up Services from main...")
	mappingStore := services.NewMappingStore(thePG, mappingRepo)
	authResolver := services.NewAuthResolver(log, identityClient, mappingStore)

	avatarService, err := services.NewAvatarService(log)
	if err != nil {
		log.Warn("Could not init AvatarService; continuing without avatars", "error", err)
		avatarService = nil
	}

	authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, authResolver, avatarService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
	userService := services.NewUserService(thePG, log, userRepo, avatarService)
	employeeService := services.NewEmployeeService(thePG, log, employeeRepo, userRepo, pathRepo)
	courseService := services.NewCourseService(thePG, log, courseRepo)
	enrollmentService := services.NewEnrollmentService(thePG, log, emitter, enrollmentRepo, employeeRepo, courseRepo, contentRepo)
	mappingService := services.NewMappingService(thePG, log, mappingRepo)

	groqClient, err := services.NewGroqClient(log)
	if err != nil {
		log.Warn("Could not init GroqClient; personalization worker disabled", "error", err)
	} else {
		personalizationService := services.NewPersonalizationService(
			thePG,
			log,
			groqClient,
			emitter,
			enrollmentRepo,
			employeeRepo,
			courseRepo,
			contentRepo,
			pathRepo,
		)
		personalizationService.StartWorker(context.Background())
	}

	// Seeds
	seeder := seeds.NewSeeder(thePG, log, userRepo, employeeRepo, courseRepo)
	if err := seeder.Run(context.Background()); err != nil {
		log.Warn("Seeding failed", "error", err)
	}

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	employeeHandler := handlers.NewEmployeeHandler(employeeService)
	courseHandler := handlers.NewCourseHandler(courseService)
	enrollmentHandler := handlers.NewEnrollmentHandler(enrollmentService)
	mappingHandler := handlers.NewMappingHandler(mappingService)
	realtimeHandler := handlers.NewRealtimeHandler(log, sseHub, employeeRepo)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	avatarDir := ""
	if avatarService != nil {
		avatarDir = avatarService.AvatarDir()
	}
	router := server.NewRouter(server.RouterConfig{
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		UserHandler:       userHandler,
		EmployeeHandler:   employeeHandler,
		CourseHandler:     courseHandler,
		EnrollmentHandler: enrollmentHandler,
		MappingHandler:    mappingHandler,
		RealtimeHandler:   realtimeHandler,
		AvatarDir:         avatarDir,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
