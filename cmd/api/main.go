package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"hrpipeline/internal/app"
	"hrpipeline/internal/assist"
	"hrpipeline/internal/audit"
	"hrpipeline/internal/config"
	"hrpipeline/internal/database"
	apphttp "hrpipeline/internal/http"
	"hrpipeline/internal/http/handlers"
	"hrpipeline/internal/http/metrics"
	httpmw "hrpipeline/internal/http/middleware"
	"hrpipeline/internal/notify"
	"hrpipeline/internal/observability"
	"hrpipeline/internal/security"
	"hrpipeline/internal/store"
	"hrpipeline/internal/store/memstore"
	pgstore "hrpipeline/internal/store/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()

	var recordStore store.Store
	if cfg.PostgresDSN != "" {
		db := database.NewPostgres(database.PostgresConfig{
			DSN:             cfg.PostgresDSN,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxIdle:     cfg.DBConnMaxIdle,
			ConnMaxLifetime: cfg.DBConnMaxLife,
		})
		defer db.Close()
		pg := pgstore.New(db, cfg.TxMaxRetries)
		if err := pg.Migrate(context.Background()); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
		recordStore = pg
	} else {
		logger.Warn("DATABASE_URL not set, using the in-memory store")
		recordStore = memstore.NewWithRetries(cfg.TxMaxRetries)
	}

	var rateLimiter httpmw.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		rateLimiter = httpmw.NewRedisLimiter(client)
	} else {
		rateLimiter = httpmw.NewRateLimiter()
	}

	var generator assist.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := assist.NewGemini(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.WithError(err).Warn("gemini unavailable, text generation disabled")
		} else {
			generator = gemini
		}
	}

	auditSink := audit.NewStoreSink(recordStore)
	notifySink := notify.NewStoreSink(recordStore)

	recruitmentService := app.NewRecruitmentService(recordStore, auditSink, notifySink, generator, logger)
	admissionService := app.NewAdmissionService(recordStore, logger)
	collaboratorService := app.NewCollaboratorService(recordStore, auditSink, logger)
	roleService := app.NewRoleService(recordStore, auditSink, logger)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	authMiddleware := httpmw.NewAuthMiddleware(jwtProvider, roleService)
	collector := metrics.NewCollector()

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		AuthHandler:         handlers.NewAuthHandler(jwtProvider, cfg.InternalAPIKey, cfg.AccessTokenTTL),
		RecruitmentHandler:  handlers.NewRecruitmentHandler(recruitmentService, collector),
		AdmissionHandler:    handlers.NewAdmissionHandler(admissionService),
		CollaboratorHandler: handlers.NewCollaboratorHandler(collaboratorService, collector),
		RoleHandler:         handlers.NewRoleHandler(roleService),
		AuditLogHandler:     handlers.NewAuditLogHandler(auditSink),
		NotificationHandler: handlers.NewNotificationHandler(notifySink),
		MetricsHandler:      metrics.NewHandler(collector),
		AuthMiddleware:      authMiddleware,
		Metrics:             collector,
		Logger:              logger,
		RateLimiter:         rateLimiter,
		RateLimit:           cfg.RateLimit,
		RateWindow:          cfg.RateWindow,
		RequestTimeout:      cfg.RequestTimeout,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
