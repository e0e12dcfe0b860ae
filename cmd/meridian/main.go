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

	"github.com/joho/godotenv"

	"github.com/meridian-erp/meridian-erp/internal/app"
	"github.com/meridian-erp/meridian-erp/internal/auth"
	"github.com/meridian-erp/meridian-erp/internal/catalog"
	"github.com/meridian-erp/meridian-erp/internal/documents"
	"github.com/meridian-erp/meridian-erp/internal/observability"
	"github.com/meridian-erp/meridian-erp/internal/parties"
	"github.com/meridian-erp/meridian-erp/internal/platform/cache"
	"github.com/meridian-erp/meridian-erp/internal/platform/db"
	"github.com/meridian-erp/meridian-erp/internal/pos"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "meridian_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	tokenIssuer := auth.NewTokenIssuer(cfg.POSTokenSecret, cfg.POSTokenTTL)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, tokenIssuer)

	catalogRepo := catalog.NewRepository(dbpool)
	barcodeLookup := catalog.NewBarcodeLookup(catalogRepo, redisClient, cfg.BarcodeCacheTTL)
	catalogService := catalog.NewService(catalogRepo, barcodeLookup)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	partyRepo := parties.NewRepository(dbpool)
	partyService := parties.NewService(partyRepo)
	customerHandler := parties.NewHandler(logger, partyService, parties.KindCustomer)
	supplierHandler := parties.NewHandler(logger, partyService, parties.KindSupplier)

	docRepo := documents.NewRepository(dbpool)
	docService := documents.NewService(docRepo, partyRepo, catalogRepo)

	posStore := pos.NewStore()
	heldStore := pos.NewHeldStore(redisClient, cfg.POSHeldCartTTL)
	posService := pos.NewService(logger, posStore, heldStore, catalogService, docService, cfg.POSWalkInParty)
	posHandler := pos.NewHandler(logger, posService)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		Metrics:        metrics,

		AuthHandler:     authHandler,
		TokenIssuer:     tokenIssuer,
		CatalogHandler:  catalogHandler,
		CustomerHandler: customerHandler,
		SupplierHandler: supplierHandler,
		POSHandler:      posHandler,

		QuotationHandler:       documents.NewHandler(logger, docService, documents.TypeQuotation),
		SalesOrderHandler:      documents.NewHandler(logger, docService, documents.TypeSalesOrder),
		SalesInvoiceHandler:    documents.NewHandler(logger, docService, documents.TypeSalesInvoice),
		PurchaseOrderHandler:   documents.NewHandler(logger, docService, documents.TypePurchaseOrder),
		PurchaseInvoiceHandler: documents.NewHandler(logger, docService, documents.TypePurchaseInvoice),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
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
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
