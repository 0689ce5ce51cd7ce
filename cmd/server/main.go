package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/taxshield/advisory-engine/internal/advisory"
	"github.com/taxshield/advisory-engine/internal/audit"
	"github.com/taxshield/advisory-engine/internal/checklist"
	"github.com/taxshield/advisory-engine/internal/config"
	"github.com/taxshield/advisory-engine/internal/connectors"
	"github.com/taxshield/advisory-engine/internal/forms"
	"github.com/taxshield/advisory-engine/internal/handlers"
	"github.com/taxshield/advisory-engine/internal/metrics"
	"github.com/taxshield/advisory-engine/internal/orchestrator"
	"github.com/taxshield/advisory-engine/internal/rules"
	"github.com/taxshield/advisory-engine/internal/validator"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := cfg.InitLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting advisory engine",
		zap.Int("http_port", cfg.Server.HTTPPort),
		zap.Bool("monitor_enabled", cfg.Monitor.Enabled))

	table := rules.NewTable()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	auditLogger := audit.NewLogger(cfg.Audit.MaxEntries, logger)

	resolver := advisory.NewResolver(table, logger)
	analyzer := advisory.NewAnalyzer(logger)
	checklistGen := checklist.NewGenerator(table, logger)
	tracker := checklist.NewTracker(logger)
	formsGen := forms.NewGenerator(logger)
	complianceValidator := validator.NewValidator(table, logger)

	orch := orchestrator.New(
		resolver,
		checklistGen,
		formsGen,
		complianceValidator,
		connectors.NewMockERP(),
		connectors.NewMockPaymentGateway(),
		connectors.NewMockDocumentManager(),
		connectors.NewMockGovernmentPortal(),
		auditLogger,
		m,
		logger,
	)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handler := handlers.New(
		resolver,
		analyzer,
		checklistGen,
		tracker,
		formsGen,
		complianceValidator,
		orch,
		auditLogger,
		registry,
		logger,
	)
	handler.RegisterRoutes(router)

	var scheduler *cron.Cron
	if cfg.Monitor.Enabled {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.Monitor.SweepSchedule, func() {
			marked := tracker.SweepOverdue(time.Now())
			if marked > 0 {
				logger.Info("deadline sweep complete", zap.Int("marked_overdue", marked))
			}
		})
		if err != nil {
			logger.Fatal("invalid monitor sweep schedule",
				zap.String("schedule", cfg.Monitor.SweepSchedule), zap.Error(err))
		}
		scheduler.Start()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.HTTPPort),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.Timeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.Timeout) * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	if scheduler != nil {
		scheduler.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	logger.Info("stopped")
}
