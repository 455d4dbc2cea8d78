package service

import (
	"context"
	"errors"
	"testing"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
)

func TestListPlansQuotesEveryPlan(t *testing.T) {
	svc := NewPricingService(&mockPlanRepo{}, testConverter(t))

	items, err := svc.ListPlans(context.Background(), planRequest{cycle: "yearly", currency: "inr"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(items))
	}
	pro := items[1]
	if pro.Plan.ID != entity.PlanPro || pro.Quote.Cycle != entity.BillingCycleYearly {
		t.Fatalf("unexpected quote: %+v", pro.Quote)
	}
	if pro.Quote.ChargeMinor != 1919000 || pro.Quote.ChargeCurrency != "INR" {
		t.Fatalf("unexpected charge: %d %s", pro.Quote.ChargeMinor, pro.Quote.ChargeCurrency)
	}
}

func TestListPlansRejectsBadInput(t *testing.T) {
	svc := NewPricingService(&mockPlanRepo{}, testConverter(t))

	if _, err := svc.ListPlans(context.Background(), planRequest{cycle: "weekly"}); !errors.Is(err, ErrInvalidCycle) {
		t.Fatalf("expected invalid cycle, got %v", err)
	}
	if _, err := svc.ListPlans(context.Background(), planRequest{currency: "JPY"}); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected unsupported currency, got %v", err)
	}
}

func TestSignupPlansExcludeEnterprise(t *testing.T) {
	repo := &mockPlanRepo{
		listActiveFn: func(context.Context) ([]*entity.Plan, error) {
			return append(seededPlans(), &entity.Plan{ID: entity.PlanEnterprise, Status: entity.PlanStatusActive}), nil
		},
	}
	svc := NewPricingService(repo, testConverter(t))

	plans, err := svc.SignupPlans(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, plan := range plans {
		if plan.ID == entity.PlanEnterprise {
			t.Fatalf("enterprise must not be offered at signup")
		}
	}
	if len(plans) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(plans))
	}
}

func TestGetPlanNotFound(t *testing.T) {
	svc := NewPricingService(&mockPlanRepo{}, testConverter(t))
	if _, err := svc.GetPlan(context.Background(), "gold"); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected plan not found, got %v", err)
	}

	inactive := &mockPlanRepo{findByIDFn: func(context.Context, string) (*entity.Plan, error) {
		return &entity.Plan{ID: entity.PlanPro, Status: entity.PlanStatusInactive}, nil
	}}
	svc = NewPricingService(inactive, testConverter(t))
	if _, err := svc.GetPlan(context.Background(), "pro"); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected plan not found for inactive plan, got %v", err)
	}
}

func TestSelectPlanRoutes(t *testing.T) {
	svc := NewPricingService(&mockPlanRepo{}, testConverter(t))

	tests := []struct {
		name          string
		req           planRequest
		authenticated bool
		want          string
	}{
		{"visitor defaults", planRequest{plan: "pro"}, false, "/signup?plan=pro&currency=INR"},
		{"visitor currency", planRequest{plan: "Premium", cycle: "yearly", currency: "usd"}, false, "/signup?plan=premium&currency=USD"},
		{"member monthly", planRequest{plan: "standard"}, true, "/dashboard/billing/checkout?plan=standard&cycle=monthly&currency=INR"},
		{"member yearly", planRequest{plan: "pro", cycle: "yearly", currency: "USD"}, true, "/dashboard/billing/checkout?plan=pro&cycle=yearly&currency=USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selection, err := svc.SelectPlan(context.Background(), tt.req, tt.authenticated)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if selection.Redirect != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, selection.Redirect)
			}
		})
	}
}

func TestSelectPlanUnknownPlan(t *testing.T) {
	svc := NewPricingService(&mockPlanRepo{}, testConverter(t))
	if _, err := svc.SelectPlan(context.Background(), planRequest{plan: "gold"}, false); !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected plan not found, got %v", err)
	}
}

func TestCurrenciesListsBaseFirst(t *testing.T) {
	svc := NewPricingService(&mockPlanRepo{}, testConverter(t))
	got := svc.Currencies()
	if len(got) != 2 || got[0] != "INR" || got[1] != "USD" {
		t.Fatalf("unexpected currencies: %v", got)
	}
}
