package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/api-sage/settlement-core/internal/adapter/http/controller"
	"github.com/api-sage/settlement-core/internal/adapter/http/middleware"
	"github.com/api-sage/settlement-core/internal/adapter/http/router"
	"github.com/api-sage/settlement-core/internal/adapter/repository/postgres"
	"github.com/api-sage/settlement-core/internal/config"
	"github.com/api-sage/settlement-core/internal/gate"
	"github.com/api-sage/settlement-core/internal/logger"
	"github.com/api-sage/settlement-core/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := postgres.RunMigrations(migrateCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	accounts := postgres.NewAccountRepository(db)
	companies := postgres.NewCompanyRepository(db)
	invoices := postgres.NewInvoiceRepository(db)
	orders := postgres.NewOrderRepository(db)
	products := postgres.NewProductRepository(db)
	links := postgres.NewPaymentLinkRepository(db)
	ledger := postgres.NewLedgerRepository(db)
	outbox := postgres.NewOutboxRepository(db)
	notifications := postgres.NewNotificationRepository(db)

	authorizer := gate.Default()

	ledgerService := services.NewLedgerService(accounts, ledger, authorizer, cfg.MaxTransactionAmount)
	settlementService := services.NewSettlementService(
		accounts, companies, invoices, orders, products, links, ledger,
		authorizer, cfg.MaxTransactionAmount, cfg.PaymentLinkBaseURL,
	)
	notificationService := services.NewNotificationService(notifications)
	dispatcher := services.NewOutboxDispatcher(outbox, notifications, cfg.OutboxPollInterval, cfg.OutboxWorkers)
	reconciler := services.NewReconciliationService(ledger, invoices, orders, cfg.ReconcileInterval)

	channelAuth, err := middleware.NewChannelAuth(cfg.ChannelID, cfg.ChannelKey)
	if err != nil {
		log.Fatalf("configure channel auth: %v", err)
	}

	handler := router.New(
		controller.NewWalletController(ledgerService),
		controller.NewSettlementController(settlementService),
		controller.NewNotificationController(notificationService),
		controller.NewWebhookController(ledgerService),
		channelAuth,
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("http server listening", logger.Fields{"addr": cfg.HTTPAddr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		err := dispatcher.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	group.Go(func() error {
		err := reconciler.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server stopped: %v", err)
	}
	logger.Info("server stopped", nil)
}
