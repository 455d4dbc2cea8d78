package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
	"golang.org/x/text/currency"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	GatewayRazorpay = "razorpay"
	GatewaySandbox  = "sandbox"
)

type Config struct {
	App               AppConfig
	HTTP              HTTPConfig
	GRPC              GRPCConfig
	Database          DatabaseConfig
	Log               LogConfig
	InternalEndpoints InternalEndpointsConfig
	Gateway           GatewayConfig
	Billing           BillingConfig
	Session           SessionConfig
	Signup            SignupConfig
	Consent           ConsentConfig
	Jobs              JobsConfig
	Telemetry         TelemetryConfig
}

type AppConfig struct {
	ServiceName string `env:"APP_SERVICE_NAME" envDefault:"onboarding-service"`
	APIKey      string `env:"APP_API_KEY"`
	BrandName   string `env:"APP_BRAND_NAME" envDefault:"FlowCoach"`
}

type HTTPConfig struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type GRPCConfig struct {
	Host string `env:"GRPC_HOST" envDefault:"0.0.0.0"`
	Port string `env:"GRPC_PORT" envDefault:"9090"`
}

type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"mysql"`
	DSN             string        `env:"DB_DSN,required"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

type InternalEndpointsConfig struct {
	AuthGRPCAddr string `env:"AUTH_SERVICE_GRPC_ADDR" envDefault:"localhost:9090"`
}

type GatewayConfig struct {
	Provider      string `env:"PAYMENT_GATEWAY" envDefault:"sandbox"`
	KeyID         string `env:"RAZORPAY_KEY_ID"`
	KeySecret     string `env:"RAZORPAY_KEY_SECRET"`
	WebhookSecret string `env:"RAZORPAY_WEBHOOK_SECRET"`
	ThemeColor    string `env:"CHECKOUT_THEME_COLOR" envDefault:"#6366F1"`
	Image         string `env:"CHECKOUT_IMAGE" envDefault:"/logo.png"`

	// Plans maps plan ids to the gateway's monthly plan ids, e.g. pro=plan_Nx1.
	Plans map[string]string `env:"RAZORPAY_PLANS" envKeyValSeparator:"="`
}

type BillingConfig struct {
	TrialDays                   int                `env:"TRIAL_DAYS" envDefault:"7"`
	BaseCurrency                string             `env:"BASE_CURRENCY" envDefault:"INR"`
	CurrencyRates               map[string]float64 `env:"CURRENCY_RATES" envDefault:"USD=0.012,EUR=0.011,GBP=0.0095,AED=0.044" envKeyValSeparator:"="`
	SubscriptionTotalCount      int                `env:"SUBSCRIPTION_TOTAL_COUNT" envDefault:"120"`
	OrderPendingTimeout         time.Duration      `env:"ORDER_PENDING_TIMEOUT" envDefault:"30m"`
	AuthorizationPendingTimeout time.Duration      `env:"AUTHORIZATION_PENDING_TIMEOUT" envDefault:"1h"`
}

type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET,required"`
	Issuer string        `env:"SESSION_ISSUER" envDefault:"flowcoach-onboarding"`
	TTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

type SignupConfig struct {
	RequireEmailVerification bool    `env:"SIGNUP_REQUIRE_EMAIL_VERIFICATION" envDefault:"true"`
	RateLimitPerSecond       float64 `env:"SIGNUP_RATE_LIMIT" envDefault:"1"`
}

type ConsentConfig struct {
	BannerDelay  time.Duration `env:"CONSENT_BANNER_DELAY" envDefault:"1s"`
	CookieMaxAge time.Duration `env:"CONSENT_COOKIE_MAX_AGE" envDefault:"8760h"`
	SecureCookie bool          `env:"CONSENT_SECURE_COOKIE" envDefault:"true"`
}

type JobsConfig struct {
	PendingOrderCleanupInterval  time.Duration `env:"PENDING_ORDER_CLEANUP_INTERVAL" envDefault:"10m"`
	PendingAuthorizationInterval time.Duration `env:"PENDING_AUTHORIZATION_INTERVAL" envDefault:"15m"`
	ExpirationCheckInterval      time.Duration `env:"EXPIRATION_CHECK_INTERVAL" envDefault:"1h"`
}

type TelemetryConfig struct {
	Enabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint string `env:"OTEL_EXPORTER_ENDPOINT"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %s or %s", DriverMySQL, DriverSQLite)
	}

	c.Gateway.Provider = strings.ToLower(strings.TrimSpace(c.Gateway.Provider))
	switch c.Gateway.Provider {
	case GatewaySandbox:
	case GatewayRazorpay:
		if strings.TrimSpace(c.Gateway.KeyID) == "" || strings.TrimSpace(c.Gateway.KeySecret) == "" {
			return errors.New("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required for the razorpay gateway")
		}
	default:
		return fmt.Errorf("PAYMENT_GATEWAY must be %s or %s", GatewayRazorpay, GatewaySandbox)
	}
	plans := make(map[string]string, len(c.Gateway.Plans))
	for id, gatewayPlan := range c.Gateway.Plans {
		id = strings.ToLower(strings.TrimSpace(id))
		switch id {
		case entity.PlanStandard, entity.PlanPro, entity.PlanPremium:
		default:
			return fmt.Errorf("unknown plan %q in RAZORPAY_PLANS", id)
		}
		if gatewayPlan = strings.TrimSpace(gatewayPlan); gatewayPlan == "" {
			return fmt.Errorf("gateway plan for %s must not be empty", id)
		}
		plans[id] = gatewayPlan
	}
	c.Gateway.Plans = plans

	if c.Billing.TrialDays <= 0 {
		return errors.New("TRIAL_DAYS must be positive")
	}
	base, err := currency.ParseISO(c.Billing.BaseCurrency)
	if err != nil {
		return fmt.Errorf("invalid BASE_CURRENCY %q: %w", c.Billing.BaseCurrency, err)
	}
	c.Billing.BaseCurrency = base.String()

	rates := make(map[string]float64, len(c.Billing.CurrencyRates))
	for code, rate := range c.Billing.CurrencyRates {
		unit, err := currency.ParseISO(strings.TrimSpace(code))
		if err != nil {
			return fmt.Errorf("invalid currency %q in CURRENCY_RATES: %w", code, err)
		}
		if rate <= 0 {
			return fmt.Errorf("rate for %s must be positive", unit)
		}
		rates[unit.String()] = rate
	}
	c.Billing.CurrencyRates = rates

	if strings.TrimSpace(c.Session.Secret) == "" {
		return errors.New("SESSION_SECRET is required")
	}
	return nil
}
