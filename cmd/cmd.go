package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/config"
	"github.com/StiliyanIliev27/Memora/internal/events"
	"github.com/StiliyanIliev27/Memora/internal/handlers"
	"github.com/StiliyanIliev27/Memora/internal/middleware"
	"github.com/StiliyanIliev27/Memora/internal/repository"
	"github.com/StiliyanIliev27/Memora/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Connect to redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping redis")
	}
	log.Info().Msg("Redis connection established")

	bus := events.NewBus(rdb)

	// Object storage
	storage, err := services.NewS3Storage(context.Background(), cfg.AWS)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create object storage")
	}

	// Push notifications
	push, err := services.NewPushService(cfg.APNs)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create push service")
	}
	if !push.Enabled() {
		log.Info().Msg("Push notifications disabled")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	memoryRepo := repository.NewMemoryRepository(db)
	fileRepo := repository.NewMemoryFileRepository(db)
	requestRepo := repository.NewDeletionRequestRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret)
	connectionService := services.NewConnectionService(connectionRepo, userRepo)
	memoryService := services.NewMemoryService(memoryRepo, connectionRepo, storage)
	fileService := services.NewFileService(fileRepo, memoryRepo, connectionRepo, storage)
	deletionService := services.NewDeletionService(requestRepo, memoryRepo, fileRepo, connectionRepo, storage)
	locationService := services.NewLocationService(cfg.Mapbox.Token)
	wsHub := services.NewWSHub()

	// Forward bus events to connected WebSocket clients
	subCtx, stopSub := context.WithCancel(context.Background())
	defer stopSub()
	go func() {
		if err := bus.Subscribe(subCtx, wsHub.Dispatch); err != nil && subCtx.Err() == nil {
			log.Error().Err(err).Msg("Event subscription stopped")
		}
	}()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	connectionHandler := handlers.NewConnectionHandler(connectionService, userService, wsHub, bus, push)
	memoryHandler := handlers.NewMemoryHandler(memoryService, connectionService, bus)
	fileHandler := handlers.NewFileHandler(fileService)
	deletionHandler := handlers.NewDeletionHandler(deletionService, bus)
	locationHandler := handlers.NewLocationHandler(locationService)
	wsHandler := handlers.NewWebSocketHandler(wsHub, userService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/signup", userHandler.SignUp)
		r.Post("/auth/signin", userHandler.SignIn)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(userService))

			r.Get("/users/me", userHandler.Me)
			r.Patch("/users/me", userHandler.UpdateMe)
			r.Put("/users/me/push-token", userHandler.UpdatePushToken)

			r.Post("/connections", connectionHandler.Create)
			r.Get("/connections", connectionHandler.List)
			r.Post("/connections/{connection_id}/respond", connectionHandler.Respond)
			r.Delete("/connections/{connection_id}", connectionHandler.Delete)
			r.Get("/connections/{connection_id}/memories", memoryHandler.ListByConnection)
			r.Get("/connections/{connection_id}/deletion-requests", deletionHandler.ListForConnection)
			r.Get("/connections/{connection_id}/deletion-requests/mine", deletionHandler.ListMine)

			r.Post("/memories", memoryHandler.Create)
			r.Get("/memories", memoryHandler.List)
			r.Patch("/memories/{memory_id}", memoryHandler.Update)
			r.Delete("/memories/{memory_id}", memoryHandler.Delete)
			r.Post("/memories/{memory_id}/files", fileHandler.Upload)
			r.Get("/memories/{memory_id}/files", fileHandler.List)
			r.Delete("/files/{file_id}", fileHandler.Delete)

			r.Post("/deletion-requests", deletionHandler.Create)
			r.Post("/deletion-requests/{request_id}/respond", deletionHandler.Respond)

			r.Get("/locations/search", locationHandler.Search)
			r.Get("/locations/reverse", locationHandler.Reverse)
		})
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop forwarding events before dropping client connections
	stopSub()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
