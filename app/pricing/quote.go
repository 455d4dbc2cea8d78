package pricing

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
)

var ErrInvalidCycle = errors.New("cycle must be monthly or yearly")

type Quote struct {
	PlanID   string
	Cycle    string
	Currency string

	// PerMonth is the headline figure: the monthly price, or the yearly price spread over 12 months.
	PerMonth Money
	// Billed is what a single charge costs in the display currency.
	Billed  Money
	Savings Money

	ChargeMinor    int64
	ChargeCurrency string
}

func NormalizeCycle(cycle string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(cycle)) {
	case "", entity.BillingCycleMonthly:
		return entity.BillingCycleMonthly, nil
	case entity.BillingCycleYearly:
		return entity.BillingCycleYearly, nil
	default:
		return "", ErrInvalidCycle
	}
}

// PerMonthBase is the whole base-currency monthly figure shown for a plan and cycle.
func PerMonthBase(plan *entity.Plan, cycle string) int64 {
	if cycle == entity.BillingCycleYearly {
		return int64(math.Round(float64(plan.YearlyPrice) / 12))
	}
	return plan.Price
}

// ChargeBase is the whole base-currency amount charged for one billing period.
func ChargeBase(plan *entity.Plan, cycle string) int64 {
	if cycle == entity.BillingCycleYearly {
		return plan.YearlyPrice
	}
	return plan.Price
}

// YearlySavingsBase is what a yearly plan saves against twelve monthly charges.
func YearlySavingsBase(plan *entity.Plan) int64 {
	savings := plan.Price*12 - plan.YearlyPrice
	if savings < 0 {
		return 0
	}
	return savings
}

func (c *Converter) Quote(plan *entity.Plan, cycle, code string) (*Quote, error) {
	if plan == nil {
		return nil, errors.New("plan is required")
	}
	cycle, err := NormalizeCycle(cycle)
	if err != nil {
		return nil, err
	}

	perMonth, err := c.Convert(PerMonthBase(plan, cycle), code)
	if err != nil {
		return nil, err
	}
	billed, err := c.Convert(ChargeBase(plan, cycle), code)
	if err != nil {
		return nil, err
	}
	var savingsBase int64
	if cycle == entity.BillingCycleYearly {
		savingsBase = YearlySavingsBase(plan)
	}
	savings, err := c.Convert(savingsBase, code)
	if err != nil {
		return nil, fmt.Errorf("convert savings: %w", err)
	}

	return &Quote{
		PlanID:         plan.ID,
		Cycle:          cycle,
		Currency:       perMonth.Currency,
		PerMonth:       perMonth,
		Billed:         billed,
		Savings:        savings,
		ChargeMinor:    c.BaseMinor(ChargeBase(plan, cycle)),
		ChargeCurrency: c.Base(),
	}, nil
}
