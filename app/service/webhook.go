package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
)

const (
	EventSubscriptionAuthenticated = "subscription.authenticated"
	EventSubscriptionActivated     = "subscription.activated"
	EventSubscriptionCharged       = "subscription.charged"
	EventSubscriptionPending       = "subscription.pending"
	EventSubscriptionHalted        = "subscription.halted"
	EventSubscriptionCancelled     = "subscription.cancelled"
	EventSubscriptionCompleted     = "subscription.completed"
	EventOrderPaid                 = "order.paid"
	EventPaymentFailed             = "payment.failed"
)

type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Subscription *struct {
			Entity webhookSubscription `json:"entity"`
		} `json:"subscription"`
		Payment *struct {
			Entity webhookPayment `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity webhookOrder `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

type webhookSubscription struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	CurrentStart int64  `json:"current_start"`
	CurrentEnd   int64  `json:"current_end"`
}

type webhookPayment struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

type webhookOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// WebhookResult reports what an event did. Ignored events are still acknowledged.
type WebhookResult struct {
	Event   string
	Handled bool
}

type WebhookService struct {
	subscriptionRepo subscriptionRepository
	orderRepo        orderRepository
	verifier         signatureVerifier
	checkout         *CheckoutService
	logger           logrus.FieldLogger
	now              func() time.Time
}

func NewWebhookService(
	subscriptionRepo subscriptionRepository,
	orderRepo orderRepository,
	verifier signatureVerifier,
	checkout *CheckoutService,
) *WebhookService {
	return &WebhookService{
		subscriptionRepo: subscriptionRepo,
		orderRepo:        orderRepo,
		verifier:         verifier,
		checkout:         checkout,
		logger:           factory.NewModuleLogger("webhook-service"),
		now:              time.Now,
	}
}

// Handle verifies the raw body against its signature and applies the event.
func (s *WebhookService) Handle(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if err := s.verifier.VerifyWebhook(body, signature); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook payload", ErrInvalidRequest)
	}

	result := &WebhookResult{Event: envelope.Event}
	var err error
	switch envelope.Event {
	case EventSubscriptionAuthenticated:
		result.Handled, err = s.applySubscription(ctx, envelope, entity.SubscriptionStatusTrialing)
	case EventSubscriptionActivated, EventSubscriptionCharged:
		result.Handled, err = s.applySubscription(ctx, envelope, entity.SubscriptionStatusActive)
	case EventSubscriptionPending, EventSubscriptionHalted:
		result.Handled, err = s.applySubscription(ctx, envelope, entity.SubscriptionStatusPastDue)
	case EventSubscriptionCancelled, EventSubscriptionCompleted:
		result.Handled, err = s.applySubscription(ctx, envelope, entity.SubscriptionStatusInactive)
	case EventOrderPaid:
		result.Handled, err = s.applyOrderPaid(ctx, envelope)
	case EventPaymentFailed:
		result.Handled, err = s.applyPaymentFailed(ctx, envelope)
	default:
		factory.LoggerWithRequestContext(s.logger, ctx).WithField("event", envelope.Event).Info("ignoring webhook event")
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *WebhookService) applySubscription(ctx context.Context, envelope webhookEnvelope, status int32) (bool, error) {
	if envelope.Payload.Subscription == nil || envelope.Payload.Subscription.Entity.ID == "" {
		return false, nil
	}
	remote := envelope.Payload.Subscription.Entity

	subscription, err := s.subscriptionRepo.FindByGatewayID(ctx, remote.ID)
	if err != nil {
		return false, err
	}
	if subscription == nil {
		factory.LoggerWithRequestContext(s.logger, ctx).WithField("gateway_subscription_id", remote.ID).Info("webhook for unknown subscription")
		return false, nil
	}

	if !subscription.CanMoveTo(status) {
		factory.LoggerWithRequestContext(s.logger, ctx).WithFields(logrus.Fields{
			"event":           envelope.Event,
			"subscription_id": subscription.ID,
			"status":          subscription.Status,
		}).Info("ignoring out-of-order subscription event")
		return false, nil
	}

	now := s.now().UTC()
	subscription.Status = status
	switch status {
	case entity.SubscriptionStatusTrialing:
		if subscription.CardAuthorizedAt == nil {
			subscription.CardAuthorizedAt = &now
		}
	case entity.SubscriptionStatusActive:
		if remote.CurrentStart > 0 {
			start := time.Unix(remote.CurrentStart, 0).UTC()
			subscription.CurrentPeriodStart = &start
		}
		if remote.CurrentEnd > 0 {
			end := time.Unix(remote.CurrentEnd, 0).UTC()
			subscription.CurrentPeriodEnd = &end
		}
	case entity.SubscriptionStatusInactive:
		subscription.AutoRenew = false
		if subscription.CancelledAt == nil {
			subscription.CancelledAt = &now
		}
	}
	subscription.UpdatedAt = now

	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		return false, err
	}
	return true, nil
}

func (s *WebhookService) applyOrderPaid(ctx context.Context, envelope webhookEnvelope) (bool, error) {
	var orderID, paymentID string
	if envelope.Payload.Order != nil {
		orderID = envelope.Payload.Order.Entity.ID
	}
	if envelope.Payload.Payment != nil {
		paymentID = envelope.Payload.Payment.Entity.ID
		if orderID == "" {
			orderID = envelope.Payload.Payment.Entity.OrderID
		}
	}
	if strings.TrimSpace(orderID) == "" {
		return false, nil
	}

	order, err := s.orderRepo.FindByGatewayOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		factory.LoggerWithRequestContext(s.logger, ctx).WithField("gateway_order_id", orderID).Info("webhook for unknown order")
		return false, nil
	}

	if _, err := s.checkout.markOrderPaid(ctx, order, paymentID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *WebhookService) applyPaymentFailed(ctx context.Context, envelope webhookEnvelope) (bool, error) {
	if envelope.Payload.Payment == nil || envelope.Payload.Payment.Entity.OrderID == "" {
		return false, nil
	}
	remote := envelope.Payload.Payment.Entity

	order, err := s.orderRepo.FindByGatewayOrderID(ctx, remote.OrderID)
	if err != nil {
		return false, err
	}
	if order == nil || order.Status != entity.OrderStatusCreated {
		return false, nil
	}

	order.Status = entity.OrderStatusFailed
	if remote.ID != "" {
		paymentID := remote.ID
		order.GatewayPaymentID = &paymentID
	}
	order.UpdatedAt = s.now().UTC()
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return false, err
	}
	return true, nil
}
