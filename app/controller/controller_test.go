package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vibast-solutions/ms-go-onboarding/app/content"
	"github.com/vibast-solutions/ms-go-onboarding/app/payment"
	"github.com/vibast-solutions/ms-go-onboarding/app/pricing"
	"github.com/vibast-solutions/ms-go-onboarding/app/repository"
	"github.com/vibast-solutions/ms-go-onboarding/app/service"
	"github.com/vibast-solutions/ms-go-onboarding/app/session"
)

const (
	testKeySecret     = "key-secret"
	testWebhookSecret = "hook-secret"
)

type testApp struct {
	e        *echo.Echo
	sessions *session.Manager
	pricing  *PricingController
	signup   *SignupController
	checkout *CheckoutController
	billing  *BillingController
	internal *InternalController
	consent  *ConsentController
	webhook  *WebhookController
	content  *ContentController
}

func newTestApp(t *testing.T, requireVerification bool) *testApp {
	t.Helper()
	ctx := context.Background()

	db, err := repository.Open(ctx, repository.DriverSQLite, ":memory:", repository.PoolOptions{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := repository.Migrate(db, repository.DriverSQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	converter, err := pricing.NewConverter("INR", map[string]float64{"USD": 0.012})
	if err != nil {
		t.Fatalf("converter: %v", err)
	}
	library, err := content.Load("FlowCoach")
	if err != nil {
		t.Fatalf("content: %v", err)
	}

	planRepo := repository.NewPlanRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	consentRepo := repository.NewConsentRepository(db)
	gateway := payment.NewSandboxGateway("")
	verifier := payment.NewVerifier(testKeySecret, testWebhookSecret)
	sessions := session.NewManager("session-secret", "flowcoach-test", time.Hour)

	pricingService := service.NewPricingService(planRepo, converter)
	checkoutService := service.NewCheckoutService(planRepo, accountRepo, subscriptionRepo, orderRepo, gateway, verifier, converter, service.CheckoutConfig{
		BrandName:              "FlowCoach",
		ThemeColor:             "#6366F1",
		TrialDays:              7,
		SubscriptionTotalCount: 120,
	})
	billingService := service.NewBillingService(subscriptionRepo, orderRepo, gateway, service.BillingConfig{
		OrderPendingTimeout:         30 * time.Minute,
		AuthorizationPendingTimeout: time.Hour,
	})

	e := echo.New()
	e.Renderer = library

	return &testApp{
		e:        e,
		sessions: sessions,
		pricing:  NewPricingController(pricingService),
		signup: NewSignupController(service.NewSignupService(accountRepo, planRepo, sessions, service.SignupConfig{
			TrialDays:                7,
			RequireEmailVerification: requireVerification,
			BrandName:                "FlowCoach",
		})),
		checkout: NewCheckoutController(checkoutService),
		billing:  NewBillingController(billingService),
		internal: NewInternalController(pricingService, billingService),
		consent:  NewConsentController(service.NewConsentService(consentRepo, time.Second), ConsentCookieConfig{MaxAge: 365 * 24 * time.Hour}),
		webhook:  NewWebhookController(service.NewWebhookService(subscriptionRepo, orderRepo, verifier, checkoutService)),
		content:  NewContentController(library),
	}
}

func (a *testApp) context(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return a.e.NewContext(req, rec), rec
}

func (a *testApp) authedContext(t *testing.T, claims *session.Claims, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	ctx, rec := a.context(method, target, body)
	session.WithClaims(ctx, claims)
	return ctx, rec
}

// signupOwner creates an account through the signup endpoint and returns its session claims.
func (a *testApp) signupOwner(t *testing.T, email, org string) *session.Claims {
	t.Helper()
	body := `{"full_name":"Ana Coach","email":"` + email + `","password":"supersecret","organization_name":"` + org + `","accept_terms":true}`
	ctx, rec := a.context(http.MethodPost, "/signup", body)
	if err := a.signup.Signup(ctx); err != nil {
		t.Fatalf("signup handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	claims, err := a.sessions.Parse(resp.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	return claims
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), target); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var resp struct {
		Error    string `json:"error"`
		Redirect string `json:"redirect"`
	}
	decode(t, rec, &resp)
	return resp.Error, resp.Redirect
}
