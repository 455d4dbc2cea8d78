package payment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrGatewayRequest    = errors.New("payment gateway request failed")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrSignatureMissing  = errors.New("signature is required")
)

type OrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

type Order struct {
	ID          string
	AmountMinor int64
	Currency    string
	Status      string
}

type SubscriptionRequest struct {
	PlanID         string
	TotalCount     int
	StartAt        time.Time
	CustomerNotify bool
	Notes          map[string]string
}

type Subscription struct {
	ID       string
	Status   string
	ShortURL string
}

// Gateway is the hosted payment provider the checkout widget talks to.
type Gateway interface {
	KeyID() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	CreateSubscription(ctx context.Context, req SubscriptionRequest) (*Subscription, error)
	CancelSubscription(ctx context.Context, subscriptionID string, atCycleEnd bool) error
}
