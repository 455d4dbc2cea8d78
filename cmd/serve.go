package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	authclient "github.com/vibast-solutions/lib-go-auth/client"
	authmiddleware "github.com/vibast-solutions/lib-go-auth/middleware"
	authlibservice "github.com/vibast-solutions/lib-go-auth/service"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/vibast-solutions/ms-go-onboarding/app/content"
	"github.com/vibast-solutions/ms-go-onboarding/app/controller"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
	grpcserver "github.com/vibast-solutions/ms-go-onboarding/app/grpc"
	"github.com/vibast-solutions/ms-go-onboarding/app/payment"
	"github.com/vibast-solutions/ms-go-onboarding/app/pricing"
	"github.com/vibast-solutions/ms-go-onboarding/app/repository"
	"github.com/vibast-solutions/ms-go-onboarding/app/service"
	"github.com/vibast-solutions/ms-go-onboarding/app/session"
	"github.com/vibast-solutions/ms-go-onboarding/app/telemetry"
	"github.com/vibast-solutions/ms-go-onboarding/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  "Start both HTTP (Echo) and gRPC servers for the onboarding service.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type controllers struct {
	pricing  *controller.PricingController
	signup   *controller.SignupController
	checkout *controller.CheckoutController
	billing  *controller.BillingController
	internal *controller.InternalController
	consent  *controller.ConsentController
	webhook  *controller.WebhookController
	content  *controller.ContentController
}

func runServe(_ *cobra.Command, _ []string) {
	cfg := mustLoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.App.ServiceName,
		Version:     Version,
	})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize tracing")
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logrus.WithError(err).Warn("Tracing shutdown error")
		}
	}()

	db := mustOpenDatabase(ctx, cfg)
	defer closeDatabase(db)

	converter, err := pricing.NewConverter(cfg.Billing.BaseCurrency, cfg.Billing.CurrencyRates)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to configure currencies")
	}
	library, err := content.Load(cfg.App.BrandName)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load content pages")
	}

	planRepo := repository.NewPlanRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	consentRepo := repository.NewConsentRepository(db)
	gateway := newGateway(cfg)
	verifier := payment.NewVerifier(cfg.Gateway.KeySecret, cfg.Gateway.WebhookSecret)
	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TTL)

	pricingService := service.NewPricingService(planRepo, converter)
	signupService := service.NewSignupService(accountRepo, planRepo, sessions, service.SignupConfig{
		TrialDays:                cfg.Billing.TrialDays,
		RequireEmailVerification: cfg.Signup.RequireEmailVerification,
		BrandName:                cfg.App.BrandName,
	})
	checkoutService := service.NewCheckoutService(planRepo, accountRepo, subscriptionRepo, orderRepo, gateway, verifier, converter, service.CheckoutConfig{
		BrandName:              cfg.App.BrandName,
		ThemeColor:             cfg.Gateway.ThemeColor,
		Image:                  cfg.Gateway.Image,
		TrialDays:              cfg.Billing.TrialDays,
		SubscriptionTotalCount: cfg.Billing.SubscriptionTotalCount,
		GatewayPlans:           cfg.Gateway.Plans,
	})
	billingService := service.NewBillingService(subscriptionRepo, orderRepo, gateway, service.BillingConfig{
		OrderPendingTimeout:         cfg.Billing.OrderPendingTimeout,
		AuthorizationPendingTimeout: cfg.Billing.AuthorizationPendingTimeout,
	})
	consentService := service.NewConsentService(consentRepo, cfg.Consent.BannerDelay)
	webhookService := service.NewWebhookService(subscriptionRepo, orderRepo, verifier, checkoutService)

	handlers := controllers{
		pricing:  controller.NewPricingController(pricingService),
		signup:   controller.NewSignupController(signupService),
		checkout: controller.NewCheckoutController(checkoutService),
		billing:  controller.NewBillingController(billingService),
		internal: controller.NewInternalController(pricingService, billingService),
		consent: controller.NewConsentController(consentService, controller.ConsentCookieConfig{
			MaxAge: cfg.Consent.CookieMaxAge,
			Secure: cfg.Consent.SecureCookie,
		}),
		webhook: controller.NewWebhookController(webhookService),
		content: controller.NewContentController(library),
	}

	if cfg.App.APIKey == "" {
		logrus.Warn("APP_API_KEY is not set, internal access checks against the auth service will fail")
	}
	authGRPCClient, err := authclient.NewGRPCClientFromAddr(ctx, cfg.InternalEndpoints.AuthGRPCAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize auth gRPC client")
	}
	defer authGRPCClient.Close()
	internalAuthService := authlibservice.NewInternalAuthService(authGRPCClient)
	echoInternalAuthMiddleware := authmiddleware.NewEchoInternalAuthMiddleware(internalAuthService)
	grpcInternalAuthMiddleware := authmiddleware.NewGRPCInternalAuthMiddleware(internalAuthService)

	e := setupHTTPServer(cfg, handlers, sessions, library, echoInternalAuthMiddleware)
	grpcSrv, healthSrv, lis := setupGRPCServer(cfg, grpcserver.NewServer(pricingService, billingService), grpcInternalAuthMiddleware)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logrus.WithField("addr", lis.Addr().String()).Info("Starting gRPC server")
		if err := grpcSrv.Serve(lis); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logrus.Info("Shutting down...")
		healthSrv.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logrus.WithError(err).Warn("HTTP shutdown error")
		}
		grpcSrv.GracefulStop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("Server stopped with error")
		return
	}
	logrus.Info("Server stopped")
}

func setupHTTPServer(
	cfg *config.Config,
	handlers controllers,
	sessions *session.Manager,
	renderer echo.Renderer,
	internalAuthMiddleware *authmiddleware.EchoInternalAuthMiddleware,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.Secure())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: func() string {
			return fmt.Sprintf("rest-%s", uuid.New().String())
		},
	}))
	e.Use(factory.PropagateRequestID())

	e.GET("/health", controller.Health)

	pricingRoutes := e.Group("/pricing", sessions.Optional())
	pricingRoutes.GET("/plans", handlers.pricing.ListPlans)
	pricingRoutes.GET("/plans/:id", handlers.pricing.GetPlan)
	pricingRoutes.GET("/currencies", handlers.pricing.Currencies)
	pricingRoutes.POST("/select", handlers.pricing.SelectPlan)

	signupLimiter := echomiddleware.RateLimiter(echomiddleware.NewRateLimiterMemoryStore(rate.Limit(cfg.Signup.RateLimitPerSecond)))
	e.GET("/signup/plans", handlers.pricing.SignupPlans)
	e.POST("/signup", handlers.signup.Signup, signupLimiter)

	checkout := e.Group("/checkout", sessions.Required())
	checkout.POST("/trial", handlers.checkout.StartTrial)
	checkout.POST("/trial/confirm", handlers.checkout.ConfirmTrial)
	checkout.POST("/orders", handlers.checkout.CreateOrder)
	checkout.POST("/verify", handlers.checkout.VerifyPayment)

	billing := e.Group("/billing", sessions.Required())
	billing.GET("/subscription", handlers.billing.GetSubscription)
	billing.POST("/subscription/cancel", handlers.billing.CancelSubscription)
	billing.GET("/orders", handlers.billing.ListOrders)

	consent := e.Group("/consent")
	consent.GET("", handlers.consent.GetConsent)
	consent.POST("/accept-all", handlers.consent.AcceptAll)
	consent.POST("/necessary", handlers.consent.AcceptNecessary)
	consent.POST("/preferences", handlers.consent.SavePreferences)

	e.POST("/webhooks/razorpay", handlers.webhook.Razorpay)

	e.GET("/content", handlers.content.ListPages)
	e.GET("/content/:page", handlers.content.GetPage)
	e.GET("/pages/:page", handlers.content.RenderPage)

	internal := e.Group("/internal", internalAuthMiddleware.RequireInternalAccess(cfg.App.ServiceName))
	internal.GET("/plans", handlers.internal.ListPlans)
	internal.GET("/organizations/:id/subscription", handlers.internal.GetOrganizationSubscription)
	internal.POST("/organizations/:id/subscription/cancel", handlers.internal.CancelOrganizationSubscription)
	internal.GET("/organizations/:id/orders", handlers.internal.ListOrganizationOrders)

	return e
}

func setupGRPCServer(
	cfg *config.Config,
	onboardingServer *grpcserver.Server,
	internalAuthMiddleware *authmiddleware.GRPCInternalAuthMiddleware,
) (*grpc.Server, *health.Server, net.Listener) {
	grpcAddr := net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcSrv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			grpcserver.RecoveryInterceptor(),
			grpcserver.RequestIDInterceptor(),
			grpcserver.LoggingInterceptor(),
			grpcserver.SkipHealthChecks(internalAuthMiddleware.UnaryRequireInternalAccess(cfg.App.ServiceName)),
		),
	)
	grpcserver.RegisterOnboardingServiceServer(grpcSrv, onboardingServer)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(grpcserver.OnboardingServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)

	return grpcSrv, healthSrv, lis
}
