package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openclinic/vaccine-scheduler/internal/adapters/cache"
	"github.com/openclinic/vaccine-scheduler/internal/adapters/database"
	"github.com/openclinic/vaccine-scheduler/internal/adapters/events"
	"github.com/openclinic/vaccine-scheduler/internal/api/handlers"
	"github.com/openclinic/vaccine-scheduler/internal/api/middleware"
	"github.com/openclinic/vaccine-scheduler/internal/api/routes"
	"github.com/openclinic/vaccine-scheduler/internal/application/services"
	"github.com/openclinic/vaccine-scheduler/internal/domain/providers"
	"github.com/openclinic/vaccine-scheduler/internal/domain/repositories"
	"github.com/openclinic/vaccine-scheduler/internal/infrastructure/clients/postgres"
	"github.com/openclinic/vaccine-scheduler/internal/infrastructure/clients/redis"
	"github.com/openclinic/vaccine-scheduler/internal/infrastructure/observability"
	"github.com/openclinic/vaccine-scheduler/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	observability.InitLogger("vaccine-scheduler", cfg.Env)

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL client: %v", err)
	}
	defer pgClient.Close()
	log.Println("PostgreSQL client initialized successfully")

	// Initialize Redis client
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Printf("Warning: Failed to initialize Redis client: %v", err)
		// Continue without Redis - the application can work without caching
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Println("Redis client initialized successfully")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters
	baseAvailabilityAdapter := database.NewAvailabilityAdapter(pgClient)

	var availabilityAdapter repositories.AvailabilityRepository
	if cacheProvider != nil {
		availabilityAdapter = database.NewCachedAvailabilityAdapter(baseAvailabilityAdapter, cacheProvider)
		log.Println("Availability adapter wrapped with caching layer")
	} else {
		availabilityAdapter = baseAvailabilityAdapter
		log.Println("Availability adapter running without cache (Redis unavailable)")
	}

	vaccineAdapter := database.NewVaccineAdapter(pgClient)
	appointmentAdapter := database.NewAppointmentAdapter(pgClient)
	userAdapter := database.NewUserAdapter(pgClient)

	// Initialize event bus for real-time updates
	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		defer eventBus.Close()
		log.Println("Event bus initialized successfully")
	} else {
		log.Println("Event bus disabled (Redis not available)")
	}

	// Initialize services
	bookingService := services.NewBookingService(appointmentAdapter, availabilityAdapter, vaccineAdapter)
	if eventBus != nil {
		bookingService.SetEventBus(eventBus)
		log.Println("Event bus configured for booking service")
	}

	scheduleService := services.NewScheduleService(availabilityAdapter, vaccineAdapter, appointmentAdapter)

	tokenTTL := time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
	accountService := services.NewAccountService(userAdapter, cfg.Auth.JWTSecret, tokenTTL)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(accountService)
	scheduleHandler := handlers.NewScheduleHandler(scheduleService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	vaccineHandler := handlers.NewVaccineHandler(bookingService, scheduleService)

	// Set up router
	router := routes.NewRouter(
		accountHandler,
		scheduleHandler,
		bookingHandler,
		vaccineHandler,
		middleware.AuthMiddleware(cfg.Auth.JWTSecret),
	)

	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
