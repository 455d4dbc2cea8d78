package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
	"github.com/vibast-solutions/ms-go-onboarding/app/pricing"
)

type listPlansRequest interface {
	GetCycle() string
	GetCurrency() string
}

type selectPlanRequest interface {
	GetPlan() string
	GetCycle() string
	GetCurrency() string
}

type PlanQuote struct {
	Plan  *entity.Plan
	Quote *pricing.Quote
}

type PlanSelection struct {
	PlanID   string
	Cycle    string
	Currency string
	Redirect string
}

type PricingService struct {
	planRepo  planRepository
	converter *pricing.Converter
}

func NewPricingService(planRepo planRepository, converter *pricing.Converter) *PricingService {
	return &PricingService{planRepo: planRepo, converter: converter}
}

func (s *PricingService) Currencies() []string {
	return s.converter.Supported()
}

func (s *PricingService) ListPlans(ctx context.Context, req listPlansRequest) ([]*PlanQuote, error) {
	cycle, currency, err := s.normalize(req.GetCycle(), req.GetCurrency())
	if err != nil {
		return nil, err
	}

	plans, err := s.planRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*PlanQuote, 0, len(plans))
	for _, plan := range plans {
		quote, err := s.converter.Quote(plan, cycle, currency)
		if err != nil {
			return nil, mapPricingError(err)
		}
		items = append(items, &PlanQuote{Plan: plan, Quote: quote})
	}
	return items, nil
}

// SignupPlans lists the plans offered on the signup form. Enterprise is sales-led.
func (s *PricingService) SignupPlans(ctx context.Context) ([]*entity.Plan, error) {
	plans, err := s.planRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]*entity.Plan, 0, len(plans))
	for _, plan := range plans {
		if plan.ID == entity.PlanEnterprise {
			continue
		}
		items = append(items, plan)
	}
	return items, nil
}

func (s *PricingService) GetPlan(ctx context.Context, id string) (*entity.Plan, error) {
	plan, err := s.planRepo.FindByID(ctx, strings.ToLower(strings.TrimSpace(id)))
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.Status != entity.PlanStatusActive {
		return nil, ErrPlanNotFound
	}
	return plan, nil
}

// SelectPlan decides where a plan card click leads. Visitors go to signup;
// signed-in users go straight to billing checkout.
func (s *PricingService) SelectPlan(ctx context.Context, req selectPlanRequest, authenticated bool) (*PlanSelection, error) {
	plan, err := s.GetPlan(ctx, req.GetPlan())
	if err != nil {
		return nil, err
	}
	cycle, currency, err := s.normalize(req.GetCycle(), req.GetCurrency())
	if err != nil {
		return nil, err
	}

	selection := &PlanSelection{PlanID: plan.ID, Cycle: cycle, Currency: currency}
	if authenticated {
		selection.Redirect = "/dashboard/billing/checkout?plan=" + url.QueryEscape(plan.ID) +
			"&cycle=" + url.QueryEscape(cycle) +
			"&currency=" + url.QueryEscape(currency)
	} else {
		selection.Redirect = "/signup?plan=" + url.QueryEscape(plan.ID) +
			"&currency=" + url.QueryEscape(currency)
	}
	return selection, nil
}

func (s *PricingService) normalize(cycle, currency string) (string, string, error) {
	normalizedCycle, err := pricing.NormalizeCycle(cycle)
	if err != nil {
		return "", "", mapPricingError(err)
	}
	normalizedCurrency, err := s.converter.Resolve(currency)
	if err != nil {
		return "", "", mapPricingError(err)
	}
	return normalizedCycle, normalizedCurrency, nil
}
