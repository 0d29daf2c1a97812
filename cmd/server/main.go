// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/calmly-app/go-calmly/internal/config"
	"github.com/calmly-app/go-calmly/internal/domain"
	"github.com/calmly-app/go-calmly/internal/handlers"
	"github.com/calmly-app/go-calmly/internal/middleware"
	"github.com/calmly-app/go-calmly/internal/ratelimit"
	"github.com/calmly-app/go-calmly/internal/repository"
	chatrepo "github.com/calmly-app/go-calmly/internal/repository/chat"
	messagerepo "github.com/calmly-app/go-calmly/internal/repository/message"
	userrepo "github.com/calmly-app/go-calmly/internal/repository/user"
	"github.com/calmly-app/go-calmly/internal/services"
	"github.com/calmly-app/go-calmly/internal/services/ai"
	chatservice "github.com/calmly-app/go-calmly/internal/services/chat"
	"github.com/calmly-app/go-calmly/internal/services/safety"
	"github.com/calmly-app/go-calmly/internal/services/sms"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// initRedis connects the optional history cache. A missing or unreachable
// Redis is not fatal; the server runs with the cache disabled.
func initRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Warning: could not connect to Redis at %s: %v", cfg.RedisAddr, err)
		log.Println("Continuing without the history cache")
		return nil
	}

	log.Printf("Connected to Redis at %s", cfg.RedisAddr)
	return client
}

// buildNotifier wires the emergency notifier: SMS when the provider is
// configured, otherwise a logging no-op.
func buildNotifier(cfg *config.Config, users userrepo.UserRepository, logger services.Logger) safety.Notifier {
	if cfg.SMSAccessKey == "" || cfg.SMSAPIURL == "" {
		log.Println("SMS provider not configured; crisis alerts will only be logged")
		return safety.NewNoopNotifier(logger)
	}

	templateID, err := strconv.Atoi(cfg.SMSTemplateID)
	if err != nil {
		log.Printf("Warning: invalid SMS_TEMPLATE_ID %q; crisis alerts will only be logged", cfg.SMSTemplateID)
		return safety.NewNoopNotifier(logger)
	}

	provider := sms.NewSMSIRProvider(&sms.Config{
		AccessKey:  cfg.SMSAccessKey,
		TemplateID: templateID,
		APIURL:     cfg.SMSAPIURL,
		Timeout:    10 * time.Second,
	})
	return safety.NewSMSNotifier(users, provider, logger)
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("calmly")

	db, err := gorm.Open(sqlite.Open("calmly.db"), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.Chat{}, &domain.Message{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	redisClient := initRedis(cfg)

	// --- Repositories ---
	userRepo := userrepo.NewUserRepository(db)
	chatRepo := chatrepo.NewChatRepository(db)
	messageRepo := messagerepo.NewMessageRepository(db)
	txManager := repository.NewTxManager(db)

	// --- Services ---
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.LLMAPIKey
	aiConfig.BaseURL = cfg.LLMBaseURL
	if err := aiConfig.Validate(); err != nil {
		log.Fatalf("FATAL: invalid AI configuration: %v", err)
	}
	provider := ai.NewOpenAIProvider(aiConfig)

	turnConfig := chatservice.DefaultConfig()
	turnConfig.PrimaryModel = cfg.PrimaryModel
	turnConfig.BackupModel = cfg.BackupModel
	turnConfig.HistoryWindow = cfg.HistoryWindow
	turnConfig.ContextStrategy = chatservice.Strategy(cfg.ContextStrategy)

	generator := chatservice.NewGenerator(turnConfig, provider, logger)
	classifier := safety.NewClassifier(safety.ParseKeywordList(cfg.CrisisKeywords))
	notifier := buildNotifier(cfg, userRepo, logger)

	userService, err := services.NewUserService(userRepo, cfg.JWTSecretKey, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize User Service: %v", err)
	}

	chatService, err := services.NewChatService(
		turnConfig, chatRepo, messageRepo, txManager,
		generator, classifier, notifier, logger,
	)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Service: %v", err)
	}

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService)
	chatHandler := handlers.NewChatHandler(chatService, handlers.NewHistoryCache(redisClient))
	healthHandler := handlers.NewHealthHandler(db, provider)

	// --- Rate Limiters ---
	authLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()
	messageLimiter := ratelimit.NewMemoryRateLimiter(ratelimit.DefaultMessageConfig())
	defer messageLimiter.Close()

	// --- Router Setup ---
	r := mux.NewRouter()
	authMiddleware := middleware.NewJWTMiddleware([]byte(cfg.JWTSecretKey))

	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)

	// --- Public Routes ---
	r.HandleFunc("/health", healthHandler.Live).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	authRoutes.Use(middleware.RateLimitMiddleware(authLimiter, "auth"))
	authRoutes.Use(middleware.AuthSuccessMiddleware(authLimiter, "auth"))
	authRoutes.HandleFunc("/register", authHandler.Register).Methods("POST")
	authRoutes.HandleFunc("/login", authHandler.Login).Methods("POST")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware)
	api.HandleFunc("/profile", authHandler.GetProfile).Methods("GET")
	api.HandleFunc("/profile/emergency-contact", authHandler.UpdateEmergencyContact).Methods("PUT")
	api.HandleFunc("/chats", chatHandler.GetUserChats).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}/messages", chatHandler.GetChatMessages).Methods("GET")
	api.HandleFunc("/chats/{id:[0-9]+}", chatHandler.DeleteChat).Methods("DELETE")

	turns := api.PathPrefix("").Subrouter()
	turns.Use(middleware.RateLimitMiddleware(messageLimiter, "message"))
	turns.HandleFunc("/chats", chatHandler.CreateChat).Methods("POST")
	turns.HandleFunc("/chats/{id:[0-9]+}/messages", chatHandler.SendMessage).Methods("POST")

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Calmly companion server starting on port %s", cfg.ServerPort)
	log.Printf("Primary model: %s | Backup model: %s | Context: %s (window %d)",
		cfg.PrimaryModel, cfg.BackupModel, cfg.ContextStrategy, cfg.HistoryWindow)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Println("Server stopped")
}
