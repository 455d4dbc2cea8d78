package entity

import "time"

const (
	OrderStatusCreated = "created"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
	OrderStatusExpired = "expired"
)

type Order struct {
	ID               uint64
	OrganizationID   uint64
	UserID           uint64
	PlanID           string
	BillingCycle     string
	AmountMinor      int64
	Currency         string
	Receipt          string
	GatewayOrderID   string
	GatewayPaymentID *string
	Status           string
	PaidAt           *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
