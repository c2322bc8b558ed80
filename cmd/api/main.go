package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/blisstech/pharmacy-api/internal/config"
	auditHandler "github.com/blisstech/pharmacy-api/internal/handler/audit"
	authHandler "github.com/blisstech/pharmacy-api/internal/handler/auth"
	dashboardHandler "github.com/blisstech/pharmacy-api/internal/handler/dashboard"
	healthHandler "github.com/blisstech/pharmacy-api/internal/handler/health"
	medicationHandler "github.com/blisstech/pharmacy-api/internal/handler/medication"
	patientHandler "github.com/blisstech/pharmacy-api/internal/handler/patient"
	prescriptionHandler "github.com/blisstech/pharmacy-api/internal/handler/prescription"
	"github.com/blisstech/pharmacy-api/internal/middleware"
	"github.com/blisstech/pharmacy-api/internal/repository/postgres"
	"github.com/blisstech/pharmacy-api/internal/router"
	auditService "github.com/blisstech/pharmacy-api/internal/service/audit"
	authService "github.com/blisstech/pharmacy-api/internal/service/auth"
	fillService "github.com/blisstech/pharmacy-api/internal/service/fill"
	medicationService "github.com/blisstech/pharmacy-api/internal/service/medication"
	patientService "github.com/blisstech/pharmacy-api/internal/service/patient"
	refillService "github.com/blisstech/pharmacy-api/internal/service/refill"
	"github.com/blisstech/pharmacy-api/pkg/auth"
	"github.com/blisstech/pharmacy-api/pkg/handoff"
	"github.com/blisstech/pharmacy-api/pkg/logger"
	"github.com/blisstech/pharmacy-api/pkg/metrics"
	"github.com/blisstech/pharmacy-api/pkg/validator"
)

func main() {
	logger.Setup("pharmacy-api", os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if err := validator.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	medicationRepo := postgres.NewMedicationRepository(base)
	patientRepo := postgres.NewPatientRepository(base)
	prescriptionRepo := postgres.NewPrescriptionRepository(base)
	auditRepo := postgres.NewAuditRepository(base)
	userRepo := postgres.NewUserRepository(base)
	outboxRepo := postgres.NewOutboxRepository(base)

	m := metrics.NewMetrics("pharmacy")
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)

	auditSvc := auditService.NewService(auditRepo)
	authSvc := authService.NewService(userRepo, jwtSvc, auditSvc)
	medicationSvc := medicationService.NewService(medicationRepo, auditSvc)
	patientSvc := patientService.NewService(patientRepo, prescriptionRepo, auditSvc)
	refillSvc := refillService.NewService(prescriptionRepo, medicationRepo)
	fillSvc := fillService.NewService(&base, medicationRepo, patientRepo, prescriptionRepo, auditRepo, outboxRepo, auditSvc, m)

	handoffStore := handoff.NewStore(handoff.DefaultTTL)

	authMw := middleware.NewAuthMiddleware(jwtSvc)

	r := router.New(
		authMw,
		authHandler.NewHandler(authSvc),
		healthHandler.NewHandler(db),
		cfg.RateLimit,
		m,
		medicationHandler.NewHandler(medicationSvc),
		patientHandler.NewHandler(patientSvc),
		prescriptionHandler.NewHandler(fillSvc, refillSvc, handoffStore, prescriptionRepo, patientRepo),
		dashboardHandler.NewHandler(refillSvc),
		auditHandler.NewHandler(auditSvc),
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
