package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-crm/internal/app"
	"github.com/odyssey-erp/odyssey-crm/internal/crm/leads"
	"github.com/odyssey-erp/odyssey-crm/internal/crm/opportunities"
	"github.com/odyssey-erp/odyssey-crm/internal/crm/products"
	crmshared "github.com/odyssey-erp/odyssey-crm/internal/crm/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/crm/vendors"
	"github.com/odyssey-erp/odyssey-crm/internal/listview/storage"
	"github.com/odyssey-erp/odyssey-crm/internal/observability"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-crm/internal/platform/db"
	"github.com/odyssey-erp/odyssey-crm/internal/shared"
	"github.com/odyssey-erp/odyssey-crm/internal/view"
	"github.com/odyssey-erp/odyssey-crm/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	dbpool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "crm_session", cfg.SessionTTL, cfg.IsProduction())
	listState := storage.NewRedis(redisClient, cfg.ListStatePrefix, cfg.ListStateTTL)
	metrics := observability.NewMetrics()

	templates, err := view.NewEngine(
		view.NavItem{Label: "Leads", Path: "/leads"},
		view.NavItem{Label: "Opportunities", Path: "/opportunities"},
		view.NavItem{Label: "Vendors", Path: "/vendors"},
		view.NavItem{Label: "Products", Path: "/products"},
	)
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	pages := crmshared.Pages{
		Templates: templates,
		Persister: crmshared.SessionPersister(listState),
		Observer:  metrics,
		Logger:    logger,
	}

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	leadService := leads.NewService(leads.NewRepository(dbpool), jobClient, logger)
	opportunityService := opportunities.NewService(opportunities.NewRepository(dbpool), jobClient, logger)
	vendorService := vendors.NewService(vendors.NewRepository(dbpool))
	productService := products.NewService(products.NewRepository(dbpool))

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		Metrics:        metrics,
		JobHandler:     jobs.NewHandler(inspector, logger),
		Resources: []app.Resource{
			leads.NewHandler(leadService, pages),
			opportunities.NewHandler(opportunityService, pages),
			vendors.NewHandler(vendorService, pages),
			products.NewHandler(productService, pages),
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
