package entity

import "time"

const (
	SubscriptionStatusInactive             int32 = 0
	SubscriptionStatusPendingAuthorization int32 = 1
	SubscriptionStatusPastDue              int32 = 2
	SubscriptionStatusTrialing             int32 = 5
	SubscriptionStatusActive               int32 = 10
)

type Subscription struct {
	ID                    uint64
	OrganizationID        uint64
	UserID                uint64
	PlanID                string
	BillingCycle          string
	Status                int32
	GatewaySubscriptionID *string
	TrialEndsAt           *time.Time
	CardAuthorizedAt      *time.Time
	CurrentPeriodStart    *time.Time
	CurrentPeriodEnd      *time.Time
	AutoRenew             bool
	CancelledAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsLive reports whether the subscription still blocks a new trial or checkout.
func (s *Subscription) IsLive() bool {
	switch s.Status {
	case SubscriptionStatusPendingAuthorization,
		SubscriptionStatusPastDue,
		SubscriptionStatusTrialing,
		SubscriptionStatusActive:
		return true
	default:
		return false
	}
}

// HasGatewaySubscription reports whether the gateway bills this subscription.
// Order-backed subscriptions have no gateway id and are never charged again.
func (s *Subscription) HasGatewaySubscription() bool {
	return s.GatewaySubscriptionID != nil && *s.GatewaySubscriptionID != ""
}

// CanMoveTo reports whether a gateway event may set status. Events arrive late
// or more than once, so a trial never comes back after billing started and an
// inactive subscription stays inactive.
func (s *Subscription) CanMoveTo(status int32) bool {
	if s.Status == SubscriptionStatusInactive {
		return status == SubscriptionStatusInactive
	}
	switch status {
	case SubscriptionStatusTrialing:
		return s.Status == SubscriptionStatusPendingAuthorization || s.Status == SubscriptionStatusTrialing
	case SubscriptionStatusActive, SubscriptionStatusPastDue, SubscriptionStatusInactive:
		return true
	default:
		return false
	}
}
