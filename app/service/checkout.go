package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/dto"
	"github.com/vibast-solutions/ms-go-onboarding/app/entity"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
	"github.com/vibast-solutions/ms-go-onboarding/app/payment"
	"github.com/vibast-solutions/ms-go-onboarding/app/pricing"
	"github.com/vibast-solutions/ms-go-onboarding/app/repository"
)

type startTrialRequest interface {
	GetPlan() string
}

type confirmTrialRequest interface {
	GetPaymentId() string
	GetSubscriptionId() string
	GetSignature() string
}

type createOrderRequest interface {
	GetPlan() string
	GetCycle() string
}

type verifyPaymentRequest interface {
	GetOrderId() string
	GetPaymentId() string
	GetSignature() string
	GetPlan() string
	GetCycle() string
}

type CheckoutConfig struct {
	BrandName              string
	ThemeColor             string
	Image                  string
	TrialDays              int
	SubscriptionTotalCount int
	// GatewayPlans maps plan ids to the gateway's monthly plan ids.
	GatewayPlans map[string]string
}

type TrialCheckout struct {
	Subscription *entity.Subscription
	Options      dto.CheckoutOptions
	Summary      dto.TrialSummary
}

type OrderCheckout struct {
	Order   *entity.Order
	Options dto.CheckoutOptions
	Summary dto.OrderSummary
}

type CheckoutOutcome struct {
	Subscription *entity.Subscription
	Order        *entity.Order
	Message      string
	Redirect     string
}

type CheckoutService struct {
	planRepo         planRepository
	accountRepo      accountRepository
	subscriptionRepo subscriptionRepository
	orderRepo        orderRepository
	gateway          payment.Gateway
	verifier         signatureVerifier
	converter        *pricing.Converter
	cfg              CheckoutConfig
	logger           logrus.FieldLogger
	now              func() time.Time
}

func NewCheckoutService(
	planRepo planRepository,
	accountRepo accountRepository,
	subscriptionRepo subscriptionRepository,
	orderRepo orderRepository,
	gateway payment.Gateway,
	verifier signatureVerifier,
	converter *pricing.Converter,
	cfg CheckoutConfig,
) *CheckoutService {
	return &CheckoutService{
		planRepo:         planRepo,
		accountRepo:      accountRepo,
		subscriptionRepo: subscriptionRepo,
		orderRepo:        orderRepo,
		gateway:          gateway,
		verifier:         verifier,
		converter:        converter,
		cfg:              cfg,
		logger:           factory.NewModuleLogger("checkout-service"),
		now:              time.Now,
	}
}

// StartTrial creates a gateway subscription whose first charge is deferred by
// the trial length and returns the widget options that capture the card.
func (s *CheckoutService) StartTrial(ctx context.Context, actor Actor, req startTrialRequest) (*TrialCheckout, error) {
	planID := strings.ToLower(strings.TrimSpace(req.GetPlan()))
	if planID == "" {
		planID = entity.PlanStandard
	}
	plan, err := findSellablePlan(ctx, s.planRepo, planID)
	if err != nil {
		return nil, err
	}

	current, err := s.subscriptionRepo.FindCurrentByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, err
	}
	if current != nil && current.IsLive() {
		return nil, ErrSubscriptionExists
	}

	now := s.now().UTC()
	trialEndsAt := now.Add(trialDuration(s.cfg.TrialDays))
	notes := map[string]string{
		"plan":            plan.ID,
		"trial_days":      strconv.Itoa(s.cfg.TrialDays),
		"organization_id": strconv.FormatUint(actor.OrganizationID, 10),
		"user_id":         strconv.FormatUint(actor.UserID, 10),
	}

	gatewaySub, err := callGateway(func() (*payment.Subscription, error) {
		return s.gateway.CreateSubscription(ctx, payment.SubscriptionRequest{
			PlanID:         s.gatewayPlanID(plan),
			TotalCount:     s.cfg.SubscriptionTotalCount,
			StartAt:        trialEndsAt,
			CustomerNotify: true,
			Notes:          notes,
		})
	})
	if err != nil {
		return nil, err
	}

	gatewayID := gatewaySub.ID
	subscription := &entity.Subscription{
		OrganizationID:        actor.OrganizationID,
		UserID:                actor.UserID,
		PlanID:                plan.ID,
		BillingCycle:          entity.BillingCycleMonthly,
		Status:                entity.SubscriptionStatusPendingAuthorization,
		GatewaySubscriptionID: &gatewayID,
		TrialEndsAt:           &trialEndsAt,
		AutoRenew:             true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.subscriptionRepo.Create(ctx, subscription); err != nil {
		if errors.Is(err, repository.ErrSubscriptionAlreadyExists) {
			// Another request won the race for this organization.
			s.abandonGatewaySubscription(ctx, gatewayID)
			return nil, ErrSubscriptionExists
		}
		return nil, err
	}

	monthly, err := s.converter.Quote(plan, entity.BillingCycleMonthly, s.converter.Base())
	if err != nil {
		return nil, mapPricingError(err)
	}
	today, err := s.converter.Convert(0, s.converter.Base())
	if err != nil {
		return nil, mapPricingError(err)
	}

	return &TrialCheckout{
		Subscription: subscription,
		Options: dto.CheckoutOptions{
			Key:            s.gateway.KeyID(),
			SubscriptionID: gatewayID,
			Name:           s.cfg.BrandName,
			Description:    fmt.Sprintf("%s Plan - %d Day Trial", plan.Name, s.cfg.TrialDays),
			Image:          s.cfg.Image,
			Prefill:        dto.Prefill{Name: actor.FullName, Email: actor.Email},
			Notes:          notes,
			Theme:          dto.Theme{Color: s.cfg.ThemeColor},
		},
		Summary: dto.TrialSummary{
			PlanID:          plan.ID,
			PlanName:        plan.Name,
			MonthlyAmount:   pricing.Format(monthly.PerMonth),
			TodayAmount:     pricing.Format(today),
			TrialDays:       s.cfg.TrialDays,
			FirstChargeDate: trialEndsAt.Format("January 2, 2006"),
			Limits:          plan.Limits,
		},
	}, nil
}

// gatewayPlanID prefers the configured gateway plan over the one stored on the plan row.
func (s *CheckoutService) gatewayPlanID(plan *entity.Plan) string {
	if id := strings.TrimSpace(s.cfg.GatewayPlans[plan.ID]); id != "" {
		return id
	}
	return plan.GatewayPlanFor(entity.BillingCycleMonthly)
}

func (s *CheckoutService) abandonGatewaySubscription(ctx context.Context, gatewayID string) {
	if _, err := callGateway(func() (struct{}, error) {
		return struct{}{}, s.gateway.CancelSubscription(ctx, gatewayID, false)
	}); err != nil {
		factory.LoggerWithRequestContext(s.logger, ctx).WithError(err).WithField("gateway_subscription_id", gatewayID).Warn("failed to cancel duplicate gateway subscription")
	}
}

// ConfirmTrial records the widget callback proving the card was authorised.
func (s *CheckoutService) ConfirmTrial(ctx context.Context, actor Actor, req confirmTrialRequest) (*CheckoutOutcome, error) {
	subscription, err := s.subscriptionRepo.FindByGatewayID(ctx, strings.TrimSpace(req.GetSubscriptionId()))
	if err != nil {
		return nil, err
	}
	if subscription == nil || subscription.OrganizationID != actor.OrganizationID {
		return nil, ErrSubscriptionNotFound
	}

	if err := s.verifier.VerifySubscription(req.GetPaymentId(), req.GetSubscriptionId(), req.GetSignature()); err != nil {
		factory.LoggerWithRequestContext(s.logger, ctx).WithError(err).WithField("subscription_id", subscription.ID).Warn("trial card signature rejected")
		return nil, ErrCardVerification
	}

	outcome := &CheckoutOutcome{
		Subscription: subscription,
		Redirect:     "/dashboard",
		Message:      fmt.Sprintf("Card added successfully! Your %d-day trial has started.", s.cfg.TrialDays),
	}
	if subscription.Status == entity.SubscriptionStatusTrialing {
		return outcome, nil
	}
	if subscription.Status != entity.SubscriptionStatusPendingAuthorization {
		return nil, fmt.Errorf("%w: subscription is no longer awaiting card authorisation", ErrInvalidRequest)
	}

	now := s.now().UTC()
	subscription.Status = entity.SubscriptionStatusTrialing
	subscription.CardAuthorizedAt = &now
	subscription.UpdatedAt = now
	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	return outcome, nil
}

// CreateOrder prices the plan on the server and opens a gateway order for it.
func (s *CheckoutService) CreateOrder(ctx context.Context, actor Actor, req createOrderRequest) (*OrderCheckout, error) {
	plan, err := findSellablePlan(ctx, s.planRepo, strings.ToLower(strings.TrimSpace(req.GetPlan())))
	if err != nil {
		return nil, err
	}
	cycle, err := pricing.NormalizeCycle(req.GetCycle())
	if err != nil {
		return nil, mapPricingError(err)
	}
	quote, err := s.converter.Quote(plan, cycle, s.converter.Base())
	if err != nil {
		return nil, mapPricingError(err)
	}

	receipt := "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
	notes := map[string]string{
		"plan":            plan.ID,
		"cycle":           cycle,
		"organization_id": strconv.FormatUint(actor.OrganizationID, 10),
		"user_id":         strconv.FormatUint(actor.UserID, 10),
	}

	gatewayOrder, err := callGateway(func() (*payment.Order, error) {
		return s.gateway.CreateOrder(ctx, payment.OrderRequest{
			AmountMinor: quote.ChargeMinor,
			Currency:    quote.ChargeCurrency,
			Receipt:     receipt,
			Notes:       notes,
		})
	})
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	order := &entity.Order{
		OrganizationID: actor.OrganizationID,
		UserID:         actor.UserID,
		PlanID:         plan.ID,
		BillingCycle:   cycle,
		AmountMinor:    quote.ChargeMinor,
		Currency:       quote.ChargeCurrency,
		Receipt:        receipt,
		GatewayOrderID: gatewayOrder.ID,
		Status:         entity.OrderStatusCreated,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	cycleLabel := "Monthly"
	summary := dto.OrderSummary{
		PlanID:   plan.ID,
		PlanName: plan.Name,
		Cycle:    cycle,
		PerMonth: pricing.Format(quote.PerMonth),
		Subtotal: pricing.Format(quote.Billed),
		Tax:      "Included",
		Total:    pricing.Format(quote.Billed),
	}
	if cycle == entity.BillingCycleYearly {
		cycleLabel = "Yearly"
		summary.Savings = pricing.Format(quote.Savings)
		summary.BillingNote = "Billed once per year"
	}
	summary.CycleLabel = "Billed " + cycleLabel

	return &OrderCheckout{
		Order: order,
		Options: dto.CheckoutOptions{
			Key:         s.gateway.KeyID(),
			OrderID:     gatewayOrder.ID,
			Amount:      quote.ChargeMinor,
			Currency:    quote.ChargeCurrency,
			Name:        s.cfg.BrandName,
			Description: fmt.Sprintf("%s Plan - %s", plan.Name, cycleLabel),
			Image:       s.cfg.Image,
			Prefill:     dto.Prefill{Name: actor.FullName, Email: actor.Email},
			Notes:       notes,
			Theme:       dto.Theme{Color: s.cfg.ThemeColor},
		},
		Summary: summary,
	}, nil
}

// VerifyPayment checks the widget's payment signature and activates the plan.
// Replaying a verified payment is a no-op that returns the same outcome.
func (s *CheckoutService) VerifyPayment(ctx context.Context, actor Actor, req verifyPaymentRequest) (*CheckoutOutcome, error) {
	order, err := s.orderRepo.FindByGatewayOrderID(ctx, strings.TrimSpace(req.GetOrderId()))
	if err != nil {
		return nil, err
	}
	if order == nil || order.OrganizationID != actor.OrganizationID {
		return nil, ErrOrderNotFound
	}

	if plan := strings.ToLower(strings.TrimSpace(req.GetPlan())); plan != "" && plan != order.PlanID {
		return nil, ErrOrderMismatch
	}
	if req.GetCycle() != "" {
		cycle, err := pricing.NormalizeCycle(req.GetCycle())
		if err != nil {
			return nil, mapPricingError(err)
		}
		if cycle != order.BillingCycle {
			return nil, ErrOrderMismatch
		}
	}

	if err := s.verifier.VerifyPayment(req.GetOrderId(), req.GetPaymentId(), req.GetSignature()); err != nil {
		factory.LoggerWithRequestContext(s.logger, ctx).WithError(err).WithField("order_id", order.ID).Warn("payment signature rejected")
		if order.Status == entity.OrderStatusCreated {
			order.Status = entity.OrderStatusFailed
			order.UpdatedAt = s.now().UTC()
			if updateErr := s.orderRepo.Update(ctx, order); updateErr != nil {
				factory.LoggerWithRequestContext(s.logger, ctx).WithError(updateErr).WithField("order_id", order.ID).Error("failed to mark order failed")
			}
		}
		return nil, ErrPaymentVerification
	}

	subscription, err := s.markOrderPaid(ctx, order, strings.TrimSpace(req.GetPaymentId()))
	if err != nil {
		return nil, err
	}

	return &CheckoutOutcome{
		Subscription: subscription,
		Order:        order,
		Redirect:     "/dashboard/billing?success=true",
		Message:      "Payment successful! Your plan has been upgraded.",
	}, nil
}

// markOrderPaid settles an order and moves the organization onto the paid plan.
// The order is written last, so a failed step leaves it unpaid and the next
// verification or order.paid delivery runs every step again.
func (s *CheckoutService) markOrderPaid(ctx context.Context, order *entity.Order, paymentID string) (*entity.Subscription, error) {
	if order.Status == entity.OrderStatusPaid {
		return s.subscriptionRepo.FindCurrentByOrganization(ctx, order.OrganizationID)
	}

	now := s.now().UTC()
	subscription, err := s.activateOrderSubscription(ctx, order, now)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.UpdateOrganizationPlan(ctx, order.OrganizationID, order.PlanID, now); err != nil {
		if errors.Is(err, repository.ErrOrganizationNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	order.Status = entity.OrderStatusPaid
	if paymentID != "" {
		order.GatewayPaymentID = &paymentID
	}
	order.PaidAt = &now
	order.UpdatedAt = now
	if err := s.orderRepo.Update(ctx, order); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	return subscription, nil
}

// activateOrderSubscription puts the organization on the order's plan. A live
// order-backed subscription is extended in place. A live gateway subscription
// is cancelled at the gateway and retired so it never charges on top of the order.
func (s *CheckoutService) activateOrderSubscription(ctx context.Context, order *entity.Order, now time.Time) (*entity.Subscription, error) {
	current, err := s.subscriptionRepo.FindCurrentByOrganization(ctx, order.OrganizationID)
	if err != nil {
		return nil, err
	}

	if current != nil && current.IsLive() {
		if !current.HasGatewaySubscription() {
			applyOrderPeriod(current, order, now)
			if err := s.subscriptionRepo.Update(ctx, current); err != nil {
				if errors.Is(err, repository.ErrSubscriptionNotFound) {
					return nil, ErrSubscriptionNotFound
				}
				return nil, err
			}
			return current, nil
		}
		if err := s.retireGatewaySubscription(ctx, current, now); err != nil {
			return nil, err
		}
	}

	subscription := &entity.Subscription{
		OrganizationID: order.OrganizationID,
		UserID:         order.UserID,
		CreatedAt:      now,
	}
	applyOrderPeriod(subscription, order, now)
	if err := s.subscriptionRepo.Create(ctx, subscription); err != nil {
		if errors.Is(err, repository.ErrSubscriptionAlreadyExists) {
			return nil, ErrSubscriptionExists
		}
		return nil, err
	}
	return subscription, nil
}

func (s *CheckoutService) retireGatewaySubscription(ctx context.Context, subscription *entity.Subscription, now time.Time) error {
	gatewayID := *subscription.GatewaySubscriptionID
	if _, err := callGateway(func() (struct{}, error) {
		return struct{}{}, s.gateway.CancelSubscription(ctx, gatewayID, false)
	}); err != nil {
		return err
	}

	subscription.Status = entity.SubscriptionStatusInactive
	subscription.AutoRenew = false
	subscription.CancelledAt = &now
	subscription.UpdatedAt = now
	if err := s.subscriptionRepo.Update(ctx, subscription); err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return ErrSubscriptionNotFound
		}
		return err
	}
	factory.LoggerWithRequestContext(s.logger, ctx).WithFields(logrus.Fields{
		"subscription_id":         subscription.ID,
		"gateway_subscription_id": gatewayID,
	}).Info("gateway subscription replaced by paid order")
	return nil
}

func applyOrderPeriod(subscription *entity.Subscription, order *entity.Order, now time.Time) {
	periodEnd := addCycle(now, order.BillingCycle)
	subscription.PlanID = order.PlanID
	subscription.BillingCycle = order.BillingCycle
	subscription.Status = entity.SubscriptionStatusActive
	subscription.CurrentPeriodStart = &now
	subscription.CurrentPeriodEnd = &periodEnd
	subscription.AutoRenew = true
	subscription.CancelledAt = nil
	subscription.UpdatedAt = now
}
