package controller

import (
	"net/http"
	"testing"

	"github.com/vibast-solutions/ms-go-onboarding/app/session"
)

func TestHealth(t *testing.T) {
	app := newTestApp(t, true)
	ctx, rec := app.context(http.MethodGet, "/health", "")
	if err := Health(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Body.String() != "{\"status\":\"ok\"}\n" {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestListPlans(t *testing.T) {
	app := newTestApp(t, true)
	ctx, rec := app.context(http.MethodGet, "/pricing/plans?cycle=yearly&currency=INR", "")
	if err := app.pricing.ListPlans(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Plans []struct {
			Id           string `json:"id"`
			Price        string `json:"price"`
			BilledAmount string `json:"billed_amount"`
			Savings      string `json:"savings"`
			Popular      bool   `json:"popular"`
		} `json:"plans"`
		Cycle      string   `json:"cycle"`
		Currency   string   `json:"currency"`
		Currencies []string `json:"currencies"`
	}
	decode(t, rec, &resp)
	if len(resp.Plans) != 3 || resp.Cycle != "yearly" || resp.Currency != "INR" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	pro := resp.Plans[1]
	if pro.Id != "pro" || !pro.Popular || pro.Price != "₹1,599" || pro.BilledAmount != "₹19,190" || pro.Savings != "₹4,798" {
		t.Fatalf("unexpected pro plan: %+v", pro)
	}
	if len(resp.Currencies) != 2 || resp.Currencies[0] != "INR" {
		t.Fatalf("unexpected currencies: %v", resp.Currencies)
	}
}

func TestListPlansRejectsBadQuery(t *testing.T) {
	app := newTestApp(t, true)

	ctx, rec := app.context(http.MethodGet, "/pricing/plans?cycle=weekly", "")
	if err := app.pricing.ListPlans(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	ctx, rec = app.context(http.MethodGet, "/pricing/plans?currency=JPY", "")
	if err := app.pricing.ListPlans(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg, _ := errorBody(t, rec); rec.Code != http.StatusBadRequest || msg != "unsupported currency" {
		t.Fatalf("unexpected response: %d %s", rec.Code, msg)
	}
}

func TestGetPlan(t *testing.T) {
	app := newTestApp(t, true)

	ctx, rec := app.context(http.MethodGet, "/pricing/plans/premium?currency=USD", "")
	ctx.SetParamNames("id")
	ctx.SetParamValues("premium")
	if err := app.pricing.GetPlan(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Plan struct {
			Id       string `json:"id"`
			Price    string `json:"price"`
			Currency string `json:"currency"`
		} `json:"plan"`
	}
	decode(t, rec, &resp)
	if rec.Code != http.StatusOK || resp.Plan.Id != "premium" || resp.Plan.Currency != "USD" || resp.Plan.Price != "$47.99" {
		t.Fatalf("unexpected response: %d %+v", rec.Code, resp)
	}

	ctx, rec = app.context(http.MethodGet, "/pricing/plans/gold", "")
	ctx.SetParamNames("id")
	ctx.SetParamValues("gold")
	if err := app.pricing.GetPlan(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSelectPlanRoutesByAuthentication(t *testing.T) {
	app := newTestApp(t, true)

	ctx, rec := app.context(http.MethodPost, "/pricing/select", `{"plan":"pro","cycle":"yearly","currency":"USD"}`)
	if err := app.pricing.SelectPlan(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Redirect string `json:"redirect"`
	}
	decode(t, rec, &resp)
	if resp.Redirect != "/signup?plan=pro&currency=USD" {
		t.Fatalf("unexpected visitor redirect: %s", resp.Redirect)
	}

	claims := &session.Claims{UserID: "1", OrganizationID: "1"}
	ctx, rec = app.authedContext(t, claims, http.MethodPost, "/pricing/select", `{"plan":"pro","cycle":"yearly","currency":"USD"}`)
	if err := app.pricing.SelectPlan(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decode(t, rec, &resp)
	if resp.Redirect != "/dashboard/billing/checkout?plan=pro&cycle=yearly&currency=USD" {
		t.Fatalf("unexpected member redirect: %s", resp.Redirect)
	}

	ctx, rec = app.context(http.MethodPost, "/pricing/select", `{"plan":"gold"}`)
	if err := app.pricing.SelectPlan(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown plan, got %d", rec.Code)
	}
}

func TestSignupPlansAndCurrencies(t *testing.T) {
	app := newTestApp(t, true)

	ctx, rec := app.context(http.MethodGet, "/signup/plans", "")
	if err := app.pricing.SignupPlans(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var plans struct {
		Plans []struct {
			Id    string `json:"id"`
			Price int64  `json:"price"`
		} `json:"plans"`
	}
	decode(t, rec, &plans)
	if len(plans.Plans) != 3 || plans.Plans[0].Id != "standard" || plans.Plans[0].Price != 999 {
		t.Fatalf("unexpected signup plans: %+v", plans)
	}

	ctx, rec = app.context(http.MethodGet, "/pricing/currencies", "")
	if err := app.pricing.Currencies(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var currencies struct {
		Base string `json:"base"`
	}
	decode(t, rec, &currencies)
	if currencies.Base != "INR" {
		t.Fatalf("unexpected base currency: %s", currencies.Base)
	}
}
