package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/somnolink/somnolink/cmd/mainconfig"
	"github.com/somnolink/somnolink/internal/antecedents"
	"github.com/somnolink/somnolink/internal/api/router"
	"github.com/somnolink/somnolink/internal/appointments"
	"github.com/somnolink/somnolink/internal/auth"
	appconfig "github.com/somnolink/somnolink/internal/config"
	"github.com/somnolink/somnolink/internal/directory"
	"github.com/somnolink/somnolink/internal/doctors"
	"github.com/somnolink/somnolink/internal/documents"
	"github.com/somnolink/somnolink/internal/events"
	"github.com/somnolink/somnolink/internal/invitations"
	"github.com/somnolink/somnolink/internal/messaging"
	"github.com/somnolink/somnolink/internal/notify"
	"github.com/somnolink/somnolink/internal/observability/metrics"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/internal/realtime"
	"github.com/somnolink/somnolink/internal/terminology"
	"github.com/somnolink/somnolink/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting somnolink API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create pgx pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Messaging keeps its own database/sql connection for array parameters.
	msgDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open messaging db", "error", err)
		os.Exit(1)
	}
	defer func() { _ = msgDB.Close() }()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient = redis.NewClient(opts)
		defer func() { _ = redisClient.Close() }()
	}

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpointOverride != "" {
			o.UsePathStyle = true
		}
	})

	var emailSender notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	} else if cfg.SESFromEmail != "" {
		if ses := notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); ses != nil {
			emailSender = ses
		}
	}
	notifySvc := notify.NewService(emailSender, cfg.PublicBaseURL, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	portalMetrics := metrics.NewPortalMetrics(reg)

	// Core services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	doctorSvc := doctors.NewService(doctors.NewPostgresRepository(pool), logger)
	patientSvc := patients.NewService(patients.NewPostgresRepository(pool), logger)
	authSvc := auth.NewService(auth.NewPostgresRepository(pool), tokens, notifySvc, doctorSvc, logger)

	outbox := events.NewOutboxStore(pool)

	invitationSvc := invitations.NewService(
		invitations.NewPostgresStore(pool),
		doctorSvc, patientSvc, authSvc, outbox, notifySvc, portalMetrics, logger,
	)
	antecedentSvc := antecedents.NewService(
		antecedents.NewPostgresRepository(pool),
		doctorSvc, patientSvc, invitationSvc, logger,
	)
	appointmentSvc := appointments.NewService(
		appointments.NewPostgresRepository(pool),
		doctorSvc, patientSvc, invitationSvc, outbox, logger,
	)
	messagingSvc := messaging.NewService(
		messaging.NewStore(msgDB),
		doctorSvc, patientSvc, invitationSvc, outbox, logger,
	)

	var icdClient terminology.SearchClient
	if cfg.ICDConfigured() {
		icdClient = terminology.NewICDClient(
			cfg.ICDClientID, cfg.ICDClientSecret,
			cfg.ICDTokenURL, cfg.ICDSearchURL,
			cfg.ICDTimeout, logger,
		)
	} else {
		logger.Warn("ICD-11 credentials missing, terminology search runs in simulated mode")
	}
	terminologySvc := terminology.NewService(
		icdClient,
		terminology.NewCache(redisClient, logger),
		portalMetrics, logger,
	)

	dirClient := directory.NewHTTPDirectoryClient(
		cfg.DoctorDirectoryURL, cfg.MedicationDirectoryURL, cfg.DirectoryTimeout, logger,
	)
	directorySvc := directory.NewService(
		doctorSvc, dirClient, dirClient, redisClient,
		cfg.DoctorDirectoryURL == "", cfg.MedicationDirectoryURL == "",
		logger,
	)

	documentSvc := documents.NewService(
		documents.NewPostgresRepository(pool),
		documents.NewBlobStore(s3Client, cfg.DocumentsBucket, logger),
		doctorSvc, patientSvc, invitationSvc, logger,
	)
	if cfg.DocumentsBucket == "" {
		logger.Warn("DOCUMENTS_BUCKET not set, document uploads disabled")
	}

	// Realtime delivery
	corsOrigins := splitOrigins(cfg.CORSAllowedOrigins)
	hub := realtime.NewHub(logger)
	deliverer := events.NewDeliverer(outbox, hub, logger).
		WithBatchSize(int32(cfg.OutboxBatchSize)).
		WithInterval(cfg.OutboxInterval)
	go deliverer.Start(ctx)

	var checkOrigin func(r *http.Request) bool
	if len(corsOrigins) > 0 {
		checkOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range corsOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		}
	}

	routerCfg := &router.Config{
		Logger:             logger,
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: corsOrigins,
		SearchRateLimit:    cfg.SearchRateLimit,
		SearchRateBurst:    cfg.SearchRateBurst,

		AuthHandler:         auth.NewHandler(authSvc, logger),
		DoctorsHandler:      doctors.NewHandler(doctorSvc, logger),
		InvitationsHandler:  invitations.NewHandler(invitationSvc, logger),
		AntecedentsHandler:  antecedents.NewHandler(antecedentSvc, logger),
		AppointmentsHandler: appointments.NewHandler(appointmentSvc, logger),
		MessagingHandler:    messaging.NewHandler(messagingSvc, logger),
		TerminologyHandler:  terminology.NewHandler(terminologySvc, logger),
		DirectoryHandler:    directory.NewHandler(directorySvc, logger),
		DocumentsHandler:    documents.NewHandler(documentSvc, logger),
		RealtimeHandler:     realtime.NewHandler(hub, checkOrigin, logger),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
