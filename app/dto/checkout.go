package dto

import "github.com/vibast-solutions/ms-go-onboarding/app/entity"

// CheckoutOptions is handed to the hosted checkout widget as-is.
type CheckoutOptions struct {
	Key            string            `json:"key"`
	SubscriptionID string            `json:"subscription_id,omitempty"`
	OrderID        string            `json:"order_id,omitempty"`
	Amount         int64             `json:"amount,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Image          string            `json:"image,omitempty"`
	Prefill        Prefill           `json:"prefill"`
	Notes          map[string]string `json:"notes,omitempty"`
	Theme          Theme             `json:"theme"`
}

type Prefill struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Theme struct {
	Color string `json:"color"`
}

type TrialSummary struct {
	PlanID          string            `json:"plan_id"`
	PlanName        string            `json:"plan_name"`
	MonthlyAmount   string            `json:"monthly_amount"`
	TodayAmount     string            `json:"today_amount"`
	TrialDays       int               `json:"trial_days"`
	FirstChargeDate string            `json:"first_charge_date"`
	Limits          entity.PlanLimits `json:"limits"`
}

type OrderSummary struct {
	PlanID      string `json:"plan_id"`
	PlanName    string `json:"plan_name"`
	Cycle       string `json:"cycle"`
	CycleLabel  string `json:"cycle_label"`
	PerMonth    string `json:"per_month"`
	Subtotal    string `json:"subtotal"`
	Tax         string `json:"tax"`
	Total       string `json:"total"`
	Savings     string `json:"savings,omitempty"`
	BillingNote string `json:"billing_note,omitempty"`
}
