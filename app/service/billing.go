package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
	"github.com/vibast-solutions/ms-go-onboarding/app/payment"
	"github.com/vibast-solutions/ms-go-onboarding/app/repository"
)

type BillingConfig struct {
	OrderPendingTimeout         time.Duration
	AuthorizationPendingTimeout time.Duration
}

type CancelResult struct {
	Subscription *entity.Subscription
	Immediate    bool
	Message      string
}

type BillingService struct {
	subscriptionRepo subscriptionRepository
	orderRepo        orderRepository
	gateway          payment.Gateway
	cfg              BillingConfig
	logger           logrus.FieldLogger
	now              func() time.Time
}

func NewBillingService(
	subscriptionRepo subscriptionRepository,
	orderRepo orderRepository,
	gateway payment.Gateway,
	cfg BillingConfig,
) *BillingService {
	return &BillingService{
		subscriptionRepo: subscriptionRepo,
		orderRepo:        orderRepo,
		gateway:          gateway,
		cfg:              cfg,
		logger:           factory.NewModuleLogger("billing-service"),
		now:              time.Now,
	}
}

func (s *BillingService) GetSubscription(ctx context.Context, organizationID uint64) (*entity.Subscription, error) {
	subscription, err := s.subscriptionRepo.FindCurrentByOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if subscription == nil {
		return nil, ErrSubscriptionNotFound
	}
	return subscription, nil
}

// CancelSubscription stops a trial at once or lets a paid period run out.
// Nothing is refunded.
func (s *BillingService) CancelSubscription(ctx context.Context, organizationID uint64) (*CancelResult, error) {
	subscription, err := s.GetSubscription(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	var immediate bool
	switch subscription.Status {
	case entity.SubscriptionStatusPendingAuthorization,
		entity.SubscriptionStatusTrialing,
		entity.SubscriptionStatusPastDue:
		immediate = true
	case entity.SubscriptionStatusActive:
		if !subscription.AutoRenew {
			return nil, ErrNothingToCancel
		}
	default:
		return nil, ErrNothingToCancel
	}

	if subscription.HasGatewaySubscription() {
		gatewayID := *subscription.GatewaySubscriptionID
		if _, err := callGateway(func() (struct{}, error) {
			return struct{}{}, s.gateway.CancelSubscription(ctx, gatewayID, !immediate)
		}); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	subscription.AutoRenew = false
	subscription.CancelledAt = &now
	subscription.UpdatedAt = now
	result := &CancelResult{Subscription: subscription, Immediate: immediate}
	if immediate {
		subscription.Status = entity.SubscriptionStatusInactive
		result.Message = "Your trial has been cancelled. You will not be charged."
	} else {
		result.Message = "Your subscription will end at the close of the current billing period."
	}

	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return result, nil
}

func (s *BillingService) ListOrders(ctx context.Context, organizationID uint64) ([]*entity.Order, error) {
	return s.orderRepo.ListByOrganization(ctx, organizationID)
}

// RunPendingOrderCleanupBatch expires orders whose checkout was never completed.
func (s *BillingService) RunPendingOrderCleanupBatch(ctx context.Context) error {
	now := s.now().UTC()
	items, err := s.orderRepo.ListCreatedBefore(ctx, now.Add(-s.cfg.OrderPendingTimeout))
	if err != nil {
		return err
	}

	for _, item := range items {
		item.Status = entity.OrderStatusExpired
		item.UpdatedAt = now
		if err := s.orderRepo.Update(ctx, item); err != nil {
			s.logger.WithError(err).WithField("order_id", item.ID).Warn("failed to expire order")
		}
	}
	return nil
}

// RunPendingAuthorizationBatch drops trials whose card was never authorised.
func (s *BillingService) RunPendingAuthorizationBatch(ctx context.Context) error {
	now := s.now().UTC()
	items, err := s.subscriptionRepo.ListPendingAuthorizationStale(ctx, now.Add(-s.cfg.AuthorizationPendingTimeout))
	if err != nil {
		return err
	}

	for _, item := range items {
		if item.HasGatewaySubscription() {
			gatewayID := *item.GatewaySubscriptionID
			if _, err := callGateway(func() (struct{}, error) {
				return struct{}{}, s.gateway.CancelSubscription(ctx, gatewayID, false)
			}); err != nil {
				s.logger.WithError(err).WithField("subscription_id", item.ID).Warn("gateway cancel failed")
			}
		}

		item.Status = entity.SubscriptionStatusInactive
		item.AutoRenew = false
		item.CancelledAt = &now
		item.UpdatedAt = now
		if err := s.subscriptionRepo.Update(ctx, item); err != nil {
			s.logger.WithError(err).WithField("subscription_id", item.ID).Warn("failed to deactivate subscription")
		}
	}
	return nil
}

// RunExpirationBatch deactivates paid subscriptions whose last period has ended.
func (s *BillingService) RunExpirationBatch(ctx context.Context) error {
	now := s.now().UTC()
	items, err := s.subscriptionRepo.ListExpiredActive(ctx, now)
	if err != nil {
		return err
	}

	for _, item := range items {
		item.Status = entity.SubscriptionStatusInactive
		item.UpdatedAt = now
		if err := s.subscriptionRepo.Update(ctx, item); err != nil {
			s.logger.WithError(err).WithField("subscription_id", item.ID).Warn("failed to expire subscription")
		}
	}
	return nil
}
