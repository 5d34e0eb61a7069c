// @title          StudyHive API
// @version        1.0
// @description    Study groups, real-time chat, meetings, calendar events, course catalog and group files.
// @BasePath       /api
// @securityDefinitions.apikey BearerAuth
// @in             header
// @name           Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/studyhive/studyhive/docs"
	"github.com/studyhive/studyhive/internal/auth"
	"github.com/studyhive/studyhive/internal/blob"
	"github.com/studyhive/studyhive/internal/chat"
	"github.com/studyhive/studyhive/internal/config"
	"github.com/studyhive/studyhive/internal/course"
	"github.com/studyhive/studyhive/internal/database"
	"github.com/studyhive/studyhive/internal/event"
	"github.com/studyhive/studyhive/internal/file"
	"github.com/studyhive/studyhive/internal/group"
	"github.com/studyhive/studyhive/internal/logger"
	"github.com/studyhive/studyhive/internal/meeting"
	"github.com/studyhive/studyhive/internal/notification"
	"github.com/studyhive/studyhive/internal/relay"
	"github.com/studyhive/studyhive/internal/user"
	mw "github.com/studyhive/studyhive/pkg/middleware"
	"github.com/studyhive/studyhive/pkg/response"
)

func main() {
	// Load configuration (.env first, then the environment)
	cfg := config.Load()

	host, _ := os.Hostname()
	log := logger.New(nil, logger.Options{
		Token:       cfg.RollbarToken,
		Environment: cfg.Env,
		ServerHost:  host,
	})
	defer log.Close()
	response.SetErrorReporter(log)

	if cfg.IsProduction() && cfg.JWTSecret == "change-me-in-production" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	log.Info("Connected to database successfully")

	if cfg.AutoMigrate {
		if err := database.MigrateUp(db); err != nil {
			log.Fatal("Failed to apply migrations", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Relay: rooms live in this process, events travel through the broker
	hub := relay.NewHub(log)
	broker, err := newBroker(ctx, cfg, hub, log)
	if err != nil {
		log.Fatal("Failed to set up relay broker", err)
	}

	store, err := newBlobStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to set up blob storage", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	// User feature
	userService := user.NewService(user.NewRepository(db))
	userHandler := user.NewHandler(userService)
	authHandler := auth.NewHandler(userService, tokens)

	// Group feature
	groupService := group.NewService(group.NewRepository(db), broker)
	groupHandler := group.NewHandler(groupService)

	// Notification feature
	notificationService := notification.NewService(notification.NewRepository(db), groupService, log)
	notificationHandler := notification.NewHandler(notificationService)

	// Chat feature
	chatService := chat.NewService(chat.NewRepository(db), groupService, broker)
	chatHandler := chat.NewHandler(chatService)

	// Meeting feature
	meetingService := meeting.NewService(meeting.NewRepository(db), groupService, notificationService)
	meetingHandler := meeting.NewHandler(meetingService)

	// Event feature
	eventHandler := event.NewHandler(event.NewService(event.NewRepository(db)))

	// Course feature
	courseService := course.NewService(course.NewRepository(db), store, cfg.MaxUploadBytes)
	courseHandler := course.NewHandler(courseService)

	// File feature
	fileService := file.NewService(file.NewRepository(db), groupService, store, cfg.MaxUploadBytes)
	fileHandler := file.NewHandler(fileService)

	// Cascades: stored objects go before the rows that reference them
	groupService.OnDelete(fileService.PurgeGroup)
	userService.OnDelete(groupService.DeleteHostedBy)
	userService.OnDelete(fileService.PurgeUploader)
	userService.OnDelete(courseService.PurgeAuthor)

	groupHandler.Nest("/messages", chatHandler.GroupRoutes())
	groupHandler.Nest("/meetings", meetingHandler.GroupRoutes())

	wsServer := relay.NewServer(hub, chat.NewRelayActions(chatService), log, cfg.AllowedOrigins)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	if local, ok := store.(*blob.LocalStore); ok {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(local.Dir()))))
	}

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticator(tokens))

			r.Mount("/user", userHandler.Routes())
			r.Mount("/groups", groupHandler.Routes())
			r.Mount("/messages", chatHandler.Routes())
			r.Mount("/meetings", meetingHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
			r.Mount("/events", eventHandler.Routes())
			r.Mount("/courses", courseHandler.Routes())
			r.Mount("/files", fileHandler.Routes())
			r.Handle("/ws", wsServer)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info(fmt.Sprintf("Server starting on port %s", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", err)
	}
}

// newBroker returns a Redis-backed broker when REDIS_URL is set so that
// every instance delivers to its own clients, and a local one otherwise.
func newBroker(ctx context.Context, cfg *config.Config, hub *relay.Hub, log logger.Logger) (relay.Publisher, error) {
	if cfg.RedisURL == "" {
		return relay.NewLocalBroker(hub), nil
	}

	client, err := relay.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	broker := relay.NewRedisBroker(client, hub, log)
	go func() {
		defer client.Close()
		if err := broker.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("relay: redis subscription ended", err)
		}
	}()
	log.Info("Relay fan-out through Redis enabled")
	return broker, nil
}

func newBlobStore(ctx context.Context, cfg *config.Config) (blob.Store, error) {
	switch cfg.BlobBackend {
	case "drive":
		return blob.NewDriveStore(ctx, cfg.GoogleCredentialsFile, cfg.DriveFolderID)
	case "local", "":
		return blob.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown BLOB_BACKEND %q", cfg.BlobBackend)
	}
}
