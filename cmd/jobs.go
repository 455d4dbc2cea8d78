package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vibast-solutions/ms-go-onboarding/app/repository"
	"github.com/vibast-solutions/ms-go-onboarding/app/service"
	"github.com/vibast-solutions/ms-go-onboarding/config"
)

var (
	cancelPendingOrdersWorker        bool
	cancelPendingAuthorizationWorker bool
	cancelExpiredWorker              bool
)

var cancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Run cancellation-related processing commands",
}

var cancelPendingOrdersCmd = &cobra.Command{
	Use:   "pending-orders",
	Short: "Expire checkout orders that were never paid",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"cancel_pending_orders",
			cancelPendingOrdersWorker,
			func(cfg *config.Config) time.Duration { return cfg.Jobs.PendingOrderCleanupInterval },
			func(s *service.BillingService, ctx context.Context) error {
				return s.RunPendingOrderCleanupBatch(ctx)
			},
		)
	},
}

var cancelPendingAuthorizationCmd = &cobra.Command{
	Use:   "pending-authorization",
	Short: "Deactivate trials whose card was never authorised",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"cancel_pending_authorization",
			cancelPendingAuthorizationWorker,
			func(cfg *config.Config) time.Duration { return cfg.Jobs.PendingAuthorizationInterval },
			func(s *service.BillingService, ctx context.Context) error {
				return s.RunPendingAuthorizationBatch(ctx)
			},
		)
	},
}

var cancelExpiredCmd = &cobra.Command{
	Use:   "expired",
	Short: "Mark subscriptions past their paid period as inactive",
	Run: func(_ *cobra.Command, _ []string) {
		runCommand(
			"cancel_expired",
			cancelExpiredWorker,
			func(cfg *config.Config) time.Duration { return cfg.Jobs.ExpirationCheckInterval },
			func(s *service.BillingService, ctx context.Context) error {
				return s.RunExpirationBatch(ctx)
			},
		)
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
	cancelCmd.AddCommand(cancelPendingOrdersCmd)
	cancelCmd.AddCommand(cancelPendingAuthorizationCmd)
	cancelCmd.AddCommand(cancelExpiredCmd)

	cancelPendingOrdersCmd.Flags().BoolVar(&cancelPendingOrdersWorker, "worker", false, "Run continuously using configured interval")
	cancelPendingAuthorizationCmd.Flags().BoolVar(&cancelPendingAuthorizationWorker, "worker", false, "Run continuously using configured interval")
	cancelExpiredCmd.Flags().BoolVar(&cancelExpiredWorker, "worker", false, "Run continuously using configured interval")
}

func runCommand(
	name string,
	worker bool,
	intervalResolver func(cfg *config.Config) time.Duration,
	fn func(s *service.BillingService, ctx context.Context) error,
) {
	cfg, billingService, cleanup := mustCreateBillingService()
	defer cleanup()

	if worker {
		runWorker(name, intervalResolver(cfg), billingService, fn)
		return
	}

	ctx := context.Background()
	runJob(name, func() error { return fn(billingService, ctx) })
}

func runWorker(
	name string,
	interval time.Duration,
	billingService *service.BillingService,
	fn func(s *service.BillingService, ctx context.Context) error,
) {
	if interval <= 0 {
		logrus.WithField("job", name).Fatal("invalid worker interval")
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runJob(name, func() error { return fn(billingService, ctx) })

	for {
		select {
		case <-ctx.Done():
			logrus.WithField("job", name).Info("Worker shutdown requested")
			return
		case <-ticker.C:
			runJob(name, func() error { return fn(billingService, ctx) })
		}
	}
}

func mustCreateBillingService() (*config.Config, *service.BillingService, func()) {
	cfg := mustLoadConfig()
	db := mustOpenDatabase(context.Background(), cfg)

	billingService := service.NewBillingService(
		repository.NewSubscriptionRepository(db),
		repository.NewOrderRepository(db),
		newGateway(cfg),
		service.BillingConfig{
			OrderPendingTimeout:         cfg.Billing.OrderPendingTimeout,
			AuthorizationPendingTimeout: cfg.Billing.AuthorizationPendingTimeout,
		},
	)

	return cfg, billingService, func() { closeDatabase(db) }
}

func runJob(name string, fn func() error) {
	start := time.Now()
	err := fn()
	latency := time.Since(start)
	if err != nil {
		logrus.WithError(err).WithField("job", name).WithField("latency", latency.String()).Error("job_failed")
		return
	}
	logrus.WithField("job", name).WithField("latency", latency.String()).Info("job_completed")
}
