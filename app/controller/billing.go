package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
	"github.com/vibast-solutions/ms-go-onboarding/app/mapper"
	"github.com/vibast-solutions/ms-go-onboarding/app/service"
	"github.com/vibast-solutions/ms-go-onboarding/app/types"
)

// BillingController serves the signed-in user's own organization.
type BillingController struct {
	billingService *service.BillingService
	logger         logrus.FieldLogger
}

func NewBillingController(billingService *service.BillingService) *BillingController {
	return &BillingController{
		billingService: billingService,
		logger:         factory.NewModuleLogger("billing-controller"),
	}
}

func (c *BillingController) GetSubscription(ctx echo.Context) error {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return writeUnauthorized(ctx)
	}

	item, err := c.billingService.GetSubscription(ctx.Request().Context(), actor.OrganizationID)
	if err != nil {
		return writeServiceError(ctx, c.logger, "Get subscription", err)
	}
	return ctx.JSON(http.StatusOK, &types.SubscriptionResponse{Subscription: mapper.SubscriptionToProto(item)})
}

func (c *BillingController) CancelSubscription(ctx echo.Context) error {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return writeUnauthorized(ctx)
	}

	result, err := c.billingService.CancelSubscription(ctx.Request().Context(), actor.OrganizationID)
	if err != nil {
		return writeServiceError(ctx, c.logger, "Cancel subscription", err)
	}
	return ctx.JSON(http.StatusOK, &types.CancelSubscriptionResponse{
		Subscription: mapper.SubscriptionToProto(result.Subscription),
		Immediate:    result.Immediate,
		Message:      result.Message,
	})
}

func (c *BillingController) ListOrders(ctx echo.Context) error {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return writeUnauthorized(ctx)
	}

	items, err := c.billingService.ListOrders(ctx.Request().Context(), actor.OrganizationID)
	if err != nil {
		return writeServiceError(ctx, c.logger, "List orders", err)
	}
	return ctx.JSON(http.StatusOK, &types.ListOrdersResponse{Orders: mapper.OrdersToProto(items)})
}
