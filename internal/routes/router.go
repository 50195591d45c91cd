package routes

import (
	"context"
	"net/http"
	"time"

	"winterops/stationboard/internal/api"
	"winterops/stationboard/internal/db"
	"winterops/stationboard/internal/events"
	"winterops/stationboard/internal/jobs"
	"winterops/stationboard/internal/logging"
	"winterops/stationboard/internal/metrics"
	"winterops/stationboard/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(upSince time.Time, redisClient *redis.Client) http.Handler {

	// initialize Chi router
	r := chi.NewRouter()

	// Initialize metrics registry
	metricsReg := metrics.NewMetricsRegistry()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RateLimitMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://localhost:8081"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	logging.Info("Router initialized with metrics and logging middleware")
	// health check
	r.Get("/healthCheck", api.HealthCheckHandler(db.DB, upSince))

	// Initialize dependencies using DI pattern
	deps, err := api.InitDependencies(metricsReg)
	if err != nil {
		panic("Failed to initialize dependencies: " + err.Error())
	}

	ctx := context.Background()

	// Summary cache invalidation rides the change feed
	invalidateCh, _ := deps.Dispatcher.Subscribe(events.All)
	go deps.Services.Summary.InvalidateOn(ctx, invalidateCh)

	// Mirror allocation changes onto Redis for out-of-process consumers
	if redisClient != nil {
		publisher := events.NewRedisPublisher(redisClient, "allocation_changes")
		forwardCh, _ := deps.Dispatcher.Subscribe(events.All)
		go publisher.Forward(ctx, forwardCh)
	}

	// Background jobs: advisory retention sweep, active-aircraft gauge
	jobs.InitializeJobs(ctx, deps.Repo.Advisory, deps.Services.Allocation, metricsReg)

	// Register API routes
	RegisterAPIRoutes(r, metricsReg, deps)

	return r
}
