// ==============================================================================
// FLEET KYC SERVICE - cmd/server/main.go
// ==============================================================================
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fleetkyc/internal/handler"
	"fleetkyc/internal/kyc"
	"fleetkyc/internal/kyc/metrics"
	"fleetkyc/internal/middleware"
	"fleetkyc/internal/repository/postgres"
	"fleetkyc/pkg/cache"
	"fleetkyc/pkg/config"
	"fleetkyc/pkg/logger"
	"fleetkyc/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("fleet-kyc")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	// Connect to database
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{"error": err.Error()})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Connect to Redis
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	defer redisCache.Close()

	// Repositories and services
	driverRepo := postgres.NewDriverRepository(db)
	kycMetrics := metrics.New()
	kycService := kyc.NewService(log, kycMetrics)

	// Handlers
	val := validator.New()
	kycHandler := handler.NewKYCHandler(kycService, driverRepo, redisCache, cfg.KYC.AssessmentCacheTTL, val, log)
	alertHandler := handler.NewAlertStreamHandler(driverRepo, cfg.KYC.AlertStreamPeriod, log)
	systemHandler := handler.NewSystemHandler(db, redisCache.Client())

	// Router
	r := mux.NewRouter()

	// WebSocket and probes bypass the response-wrapping middleware chain.
	r.HandleFunc("/health", systemHandler.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/ws/alerts/{driverID}", alertHandler.StreamAlerts).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.CORS)
	api.Use(middleware.CorrelationID)
	api.Use(middleware.NewLoggingMiddleware(log).Log)
	api.Use(middleware.NewRateLimiter(redisCache.Client(), cfg.KYC.RateLimitPerMinute, time.Minute).Limit)
	api.Use(middleware.SecurityHeaders)
	api.Use(middleware.Recovery(log))

	api.HandleFunc("/kyc/validate", kycHandler.ValidateDocument).Methods("POST")
	api.HandleFunc("/kyc/requirements/{vehicleType}", kycHandler.GetRequirements).Methods("GET")

	api.HandleFunc("/kyc/drivers", kycHandler.CreateDriver).Methods("POST")
	api.HandleFunc("/kyc/drivers/{driverID}/documents", kycHandler.SubmitDocument).Methods("POST")
	api.HandleFunc("/kyc/drivers/{driverID}/documents/{documentID}", kycHandler.ReviewDocument).Methods("PATCH")
	api.HandleFunc("/kyc/drivers/{driverID}/progress", kycHandler.GetProgress).Methods("GET")
	api.HandleFunc("/kyc/drivers/{driverID}/stage", kycHandler.GetStage).Methods("GET")
	api.HandleFunc("/kyc/drivers/{driverID}/expiry", kycHandler.GetExpiryAlerts).Methods("GET")
	api.HandleFunc("/kyc/drivers/{driverID}/schedule", kycHandler.GetSchedule).Methods("GET")
	api.HandleFunc("/kyc/drivers/{driverID}/tasks", kycHandler.GetTasks).Methods("GET")
	api.HandleFunc("/kyc/drivers/{driverID}/assessment", kycHandler.GetAssessment).Methods("GET")
	api.HandleFunc("/kyc/drivers/{driverID}/compliance", kycHandler.GetCompliance).Methods("GET")

	// Fleet-wide endpoints require an authenticated operator.
	authMW := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	fleet := api.PathPrefix("/kyc/fleet").Subrouter()
	fleet.Use(authMW.Authenticate)
	fleet.HandleFunc("/assess", kycHandler.AssessFleet).Methods("POST")

	// Background sweep: flip approved documents past their expiry date so
	// assessments and alerts see them as expired without waiting for review.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(cfg.KYC.ExpirySweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				n, err := driverRepo.MarkExpiredDocuments(sweepCtx, time.Now().UTC())
				if err != nil {
					log.Error("Expiry sweep failed", map[string]interface{}{"error": err.Error()})
					continue
				}
				if n > 0 {
					log.Info("Expiry sweep marked documents expired", map[string]interface{}{"count": n})
				}
			}
		}
	}()

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Info("Fleet KYC service starting", map[string]interface{}{"port": cfg.Server.Port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Server stopped", nil)
}
