package controller

import (
	"net/http"
	"testing"
)

func TestInternalOrganizationEndpoints(t *testing.T) {
	app := newTestApp(t, true)
	claims := app.signupOwner(t, "ana@example.com", "Ana Coaching")
	app.startTrial(t, claims, "pro")
	orgID := claims.OrganizationID

	ctx, rec := app.context(http.MethodGet, "/internal/organizations/"+orgID+"/subscription", "")
	ctx.SetParamNames("id")
	ctx.SetParamValues(orgID)
	if err := app.internal.GetOrganizationSubscription(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Subscription struct {
			Plan       string `json:"plan"`
			StatusName string `json:"status_name"`
		} `json:"subscription"`
	}
	decode(t, rec, &resp)
	if rec.Code != http.StatusOK || resp.Subscription.Plan != "pro" || resp.Subscription.StatusName != "pending_authorization" {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}

	ctx, rec = app.context(http.MethodPost, "/internal/organizations/"+orgID+"/subscription/cancel", "")
	ctx.SetParamNames("id")
	ctx.SetParamValues(orgID)
	if err := app.internal.CancelOrganizationSubscription(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var cancelled struct {
		Immediate bool `json:"immediate"`
	}
	decode(t, rec, &cancelled)
	if rec.Code != http.StatusOK || !cancelled.Immediate {
		t.Fatalf("unexpected cancel response: %d %s", rec.Code, rec.Body.String())
	}

	ctx, rec = app.context(http.MethodGet, "/internal/organizations/"+orgID+"/orders", "")
	ctx.SetParamNames("id")
	ctx.SetParamValues(orgID)
	if err := app.internal.ListOrganizationOrders(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var orders struct {
		Orders []interface{} `json:"orders"`
	}
	decode(t, rec, &orders)
	if rec.Code != http.StatusOK || len(orders.Orders) != 0 {
		t.Fatalf("unexpected orders response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestInternalRejectsBadOrganizationID(t *testing.T) {
	app := newTestApp(t, true)
	for _, id := range []string{"abc", "0"} {
		ctx, rec := app.context(http.MethodGet, "/internal/organizations/"+id+"/subscription", "")
		ctx.SetParamNames("id")
		ctx.SetParamValues(id)
		if err := app.internal.GetOrganizationSubscription(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400, got %d", id, rec.Code)
		}
	}
}

func TestInternalListPlans(t *testing.T) {
	app := newTestApp(t, true)
	ctx, rec := app.context(http.MethodGet, "/internal/plans?currency=USD", "")
	if err := app.internal.ListPlans(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Plans []struct {
			Currency string `json:"currency"`
		} `json:"plans"`
	}
	decode(t, rec, &resp)
	if rec.Code != http.StatusOK || len(resp.Plans) != 3 || resp.Plans[0].Currency != "USD" {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}

func TestInternalListPlansReportsDefaults(t *testing.T) {
	app := newTestApp(t, true)
	ctx, rec := app.context(http.MethodGet, "/internal/plans", "")
	if err := app.internal.ListPlans(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Cycle    string `json:"cycle"`
		Currency string `json:"currency"`
	}
	decode(t, rec, &resp)
	if rec.Code != http.StatusOK || resp.Cycle != "monthly" || resp.Currency != "INR" {
		t.Fatalf("unexpected response: %d %s", rec.Code, rec.Body.String())
	}
}
