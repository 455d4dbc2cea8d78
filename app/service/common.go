package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
	"github.com/vibast-solutions/ms-go-onboarding/app/pricing"
)

// Actor is the signed-in user a checkout or billing call acts for.
type Actor struct {
	UserID         uint64
	OrganizationID uint64
	Email          string
	FullName       string
}

type planRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Plan, error)
	ListActive(ctx context.Context) ([]*entity.Plan, error)
}

type accountRepository interface {
	CreateOwner(ctx context.Context, org *entity.Organization, user *entity.User) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindOrganization(ctx context.Context, id uint64) (*entity.Organization, error)
	UpdateOrganizationPlan(ctx context.Context, id uint64, plan string, updatedAt time.Time) error
}

type subscriptionRepository interface {
	Create(ctx context.Context, subscription *entity.Subscription) error
	Update(ctx context.Context, subscription *entity.Subscription) error
	FindByGatewayID(ctx context.Context, gatewaySubscriptionID string) (*entity.Subscription, error)
	FindCurrentByOrganization(ctx context.Context, organizationID uint64) (*entity.Subscription, error)
	ListPendingAuthorizationStale(ctx context.Context, cutoff time.Time) ([]*entity.Subscription, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]*entity.Subscription, error)
}

type orderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, order *entity.Order) error
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*entity.Order, error)
	ListByOrganization(ctx context.Context, organizationID uint64) ([]*entity.Order, error)
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*entity.Order, error)
}

type signatureVerifier interface {
	VerifyPayment(orderID, paymentID, signature string) error
	VerifySubscription(paymentID, subscriptionID, signature string) error
	VerifyWebhook(body []byte, signature string) error
}

// findSellablePlan resolves a plan that can be bought or trialled online.
func findSellablePlan(ctx context.Context, repo planRepository, id string) (*entity.Plan, error) {
	switch id {
	case entity.PlanStandard, entity.PlanPro, entity.PlanPremium:
	default:
		return nil, ErrInvalidPlan
	}

	plan, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil || plan.Status != entity.PlanStatusActive {
		return nil, ErrInvalidPlan
	}
	return plan, nil
}

func mapPricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrInvalidCycle):
		return ErrInvalidCycle
	case errors.Is(err, pricing.ErrUnsupportedCurrency):
		return fmt.Errorf("%w: %v", ErrUnsupportedCurrency, err)
	default:
		return err
	}
}

// callGateway shields callers from a panicking gateway adapter.
func callGateway[T any](fn func() (T, error)) (_ T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrGatewayUnavailable, rec)
		}
	}()

	result, err := fn()
	if err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	return result, nil
}

func addCycle(from time.Time, cycle string) time.Time {
	if cycle == entity.BillingCycleYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}

func trialDuration(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
