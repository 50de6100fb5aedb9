package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/adapters/cache"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/adapters/database"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/adapters/events"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/adapters/providers/llm"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/api/handlers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/api/middleware"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/api/routes"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/application/services"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/providers"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/domain/repositories"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/clients/redis"
	"github.com/zatekoja/healthcare-chatbot/backend/internal/infrastructure/observability"
	"github.com/zatekoja/healthcare-chatbot/backend/pkg/config"
)

const cacheWarmInterval = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	chatMetrics := observability.NewChatMetrics(registry)

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis is optional: without it there is no caching, rate limits are
	// process local and slot streams are unavailable.
	var (
		redisClient   *redis.Client
		cacheProvider providers.CacheProvider
		eventBus      providers.EventBus
		cachePinger   handlers.Pinger
	)
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			eventBus = events.NewRedisEventBus(redisClient)
			cachePinger = redisClient
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
		}
	}

	// Initialize adapters
	var doctorRepo repositories.DoctorRepository = database.NewDoctorAdapter(pgClient)
	if cacheProvider != nil {
		doctorRepo = database.NewCachedDoctorAdapter(doctorRepo, cacheProvider, metrics)
	}
	specialityRepo := database.NewSpecialityAdapter(pgClient)
	timeSlotRepo := database.NewTimeSlotAdapter(pgClient)
	appointmentRepo := database.NewAppointmentAdapter(pgClient)
	patientRepo := database.NewPatientAdapter(pgClient)
	sessionRepo := database.NewChatSessionAdapter(pgClient)
	questionnaireRepo := database.NewQuestionnaireAdapter(pgClient)
	packageRepo := database.NewHealthPackageAdapter(pgClient)
	packageBookingRepo := database.NewHealthPackageBookingAdapter(pgClient)
	callbackRepo := database.NewCallbackRequestAdapter(pgClient)

	completionProviders, providerCloser, err := llm.BuildProviders(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build completion providers")
	}
	if providerCloser != nil {
		defer providerCloser.Close()
	}
	if len(completionProviders) == 0 {
		log.Warn().Msg("no completion provider configured, chat answers from questionnaires only")
	}

	// Initialize services
	completionService := services.NewCompletionService(
		completionProviders,
		cfg.Chat.ProviderTimeout,
		cfg.Chat.DefaultConfidence,
		chatMetrics,
	)
	chatPipeline := services.NewChatPipeline(completionService, questionnaireRepo, cfg.Chat.ConfidenceThreshold, chatMetrics)
	chatService := services.NewChatService(chatPipeline, patientRepo, doctorRepo, sessionRepo, cfg.Chat.SessionHistoryLimit)

	doctorService := services.NewDoctorService(doctorRepo, specialityRepo, timeSlotRepo, eventBus)
	availabilityService := services.NewAvailabilityService(doctorRepo, timeSlotRepo, appointmentRepo)
	appointmentService := services.NewAppointmentService(appointmentRepo, doctorRepo, specialityRepo, patientRepo, eventBus, chatMetrics)
	patientService := services.NewPatientService(patientRepo)
	packageService := services.NewHealthPackageService(packageRepo, packageBookingRepo)
	callbackService := services.NewCallbackService(callbackRepo)
	questionnaireService := services.NewQuestionnaireService(questionnaireRepo)

	var invalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		invalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := invalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("failed to start cache invalidation service")
		} else {
			log.Info().Msg("cache invalidation service started")
		}

		warmingService := services.NewCacheWarmingService(doctorRepo, cacheProvider)
		go warmingService.StartPeriodicWarming(ctx, cacheWarmInterval)
	}

	// Initialize cache middleware
	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider, metrics)
	}

	router := routes.NewRouter(routes.Handlers{
		Chat:          handlers.NewChatHandler(chatService),
		Doctors:       handlers.NewDoctorHandler(doctorService, availabilityService),
		Specialities:  handlers.NewSpecialityHandler(doctorService),
		Appointments:  handlers.NewAppointmentHandler(appointmentService),
		Patients:      handlers.NewPatientHandler(patientService),
		Packages:      handlers.NewHealthPackageHandler(packageService),
		Callbacks:     handlers.NewCallbackHandler(callbackService, cacheProvider),
		Questionnaire: handlers.NewQuestionnaireHandler(questionnaireService),
		Stream:        handlers.NewSSEHandler(eventBus),
		Health:        handlers.NewHealthHandler(pgClient, cachePinger),
		Metrics:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, cfg.Server.AllowedOrigins, cacheMiddleware, metrics)

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           router.SetupRoutes(),
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	// Ends open slot streams and background warming.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	if invalidationService != nil {
		invalidationService.Stop()
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event bus")
		}
	}

	log.Info().Msg("server stopped")
}
