package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-exchange-bot/internal/archive"
	"photo-exchange-bot/internal/bot"
	"photo-exchange-bot/internal/config"
	"photo-exchange-bot/internal/handlers"
	"photo-exchange-bot/internal/middleware"
	"photo-exchange-bot/internal/push"
	"photo-exchange-bot/internal/repository"
	"photo-exchange-bot/internal/services"
	"photo-exchange-bot/internal/sessions"
	"photo-exchange-bot/internal/vision"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

type store interface {
	services.Store
	Close() error
}

func Run() {
	configPath := pflag.StringP("config", "c", "config.yaml", "path to the YAML config file")
	issueToken := pflag.Bool("issue-token", false, "print an owner API token and exit")
	pflag.Parse()

	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	tokens := services.NewTokenService(cfg.Bot.OwnerID, cfg.JWT.Secret)
	if *issueToken {
		token, err := tokens.GenerateJWT()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to issue token")
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open the durable store; failure here is the only fatal runtime error
	db, err := openStore(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("Failed to open store")
	}
	defer db.Close()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("Store opened")

	profile := services.NewProfileService(db)
	if err := profile.Hydrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load owner profile")
	}

	sessionStore, err := openSessions(ctx, cfg.Sessions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open session store")
	}

	// Initialize collaborators
	api, err := bot.Connect(cfg.Bot)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Telegram")
	}
	messenger := bot.NewTelegramMessenger(api)

	detector, err := vision.NewPigoDetector(ctx, cfg.Vision)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load face detector")
	}

	var archiver services.PhotoArchiver
	if cfg.AWS.Enabled {
		s3Archiver, err := archive.NewS3Archiver(ctx, cfg.AWS)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create photo archiver")
		}
		archiver = s3Archiver
	}

	wsHub := services.NewWSHub()
	notifiers := []services.InterestNotifier{wsHub}
	if cfg.Push.Enabled {
		apns, err := push.NewAPNsNotifier(cfg.Push)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create push notifier")
		}
		notifiers = append(notifiers, apns)
	}

	// Initialize services
	exchangeService := services.NewExchangeService(services.ExchangeConfig{
		OwnerChatID:    cfg.Bot.OwnerID,
		MinAboutLength: cfg.Exchange.MinAboutLength,
		MediaGroupSize: cfg.Exchange.MediaGroupSize,
	}, profile, db, messenger, notifiers...)

	visitorService := services.NewVisitorService(services.VisitorConfig{
		RequiredPhotos: cfg.Exchange.RequiredPhotos,
		MinAboutLength: cfg.Exchange.MinAboutLength,
		MediaGroupSize: cfg.Exchange.MediaGroupSize,
	}, profile, exchangeService, sessionStore, messenger, bot.NewFetcher(api), detector, archiver)

	ownerService := services.NewOwnerService(profile, messenger, cfg.Exchange.MediaGroupSize)
	dispatcher := bot.NewDispatcher(cfg.Bot.OwnerID, ownerService, visitorService)

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(cfg.Bot.WebhookSecret, dispatcher)
	ownerHandler := handlers.NewOwnerHandler(profile, db)
	wsHandler := handlers.NewWebSocketHandler(wsHub, tokens)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Routes
	r.Get("/health", handlers.Health)
	if cfg.Bot.Mode == "webhook" {
		r.Post("/telegram/webhook", webhookHandler.HandleUpdate)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(tokens))
		r.Get("/profile", ownerHandler.GetProfile)
		r.Get("/interests", ownerHandler.ListInterests)
	})

	// WebSocket route
	r.Get("/ws", wsHandler.HandleWebSocket)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	// Start receiving updates
	polling := make(chan struct{})
	if cfg.Bot.Mode == "webhook" {
		close(polling)
		if err := bot.SetWebhook(api, cfg.Bot.WebhookURL, cfg.Bot.WebhookSecret); err != nil {
			log.Fatal().Err(err).Msg("Failed to register webhook")
		}
	} else {
		if err := bot.DeleteWebhook(api); err != nil {
			log.Warn().Err(err).Msg("Failed to delete webhook before polling")
		}
		go func() {
			defer close(polling)
			bot.Poll(ctx, api, dispatcher)
		}()
	}

	// Wait for interrupt signal for graceful shutdown
	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wsHub.Close()
	<-polling

	if closer, ok := sessionStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close session store")
		}
	}

	log.Info().Msg("Bot exited")
}

func openStore(ctx context.Context, cfg config.StorageConfig) (store, error) {
	switch cfg.Driver {
	case "postgres":
		return repository.OpenPostgres(ctx, cfg.Database.DSN())
	case "sqlite":
		return repository.OpenSQLite(cfg.SQLitePath)
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

func openSessions(ctx context.Context, cfg config.SessionsConfig) (services.SessionStore, error) {
	if cfg.Backend != "redis" {
		return sessions.NewMemoryStore(), nil
	}
	client, err := sessions.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	return sessions.NewRedisStore(client, cfg.TTL), nil
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
