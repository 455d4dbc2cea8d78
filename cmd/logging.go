package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/payment"
	"github.com/vibast-solutions/ms-go-onboarding/app/repository"
	"github.com/vibast-solutions/ms-go-onboarding/config"
)

func configureLogging(cfg *config.Config) error {
	level := strings.TrimSpace(cfg.Log.Level)
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Log.Level, err)
	}
	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	return nil
}

// mustLoadConfig loads configuration and logging or exits.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}
	return cfg
}

func mustOpenDatabase(ctx context.Context, cfg *config.Config) *sql.DB {
	db, err := repository.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, repository.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logrus.WithError(err).WithField("driver", cfg.Database.Driver).Fatal("Failed to connect to database")
	}
	return db
}

func newGateway(cfg *config.Config) payment.Gateway {
	if cfg.Gateway.Provider == config.GatewayRazorpay {
		if len(cfg.Gateway.Plans) == 0 {
			logrus.Warn("RAZORPAY_PLANS is empty, trials fall back to the gateway plan ids stored on each plan")
		}
		return payment.NewRazorpayGateway(cfg.Gateway.KeyID, cfg.Gateway.KeySecret)
	}
	logrus.Warn("Using sandbox payment gateway, no real charges will be made")
	return payment.NewSandboxGateway(cfg.Gateway.KeyID)
}

func closeDatabase(db *sql.DB) {
	if err := db.Close(); err != nil {
		logrus.WithError(err).Warn("Failed to close database")
	}
}
