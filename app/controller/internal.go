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

// InternalController answers other services. Access is checked by the internal auth middleware.
type InternalController struct {
	pricingService *service.PricingService
	billingService *service.BillingService
	logger         logrus.FieldLogger
}

func NewInternalController(pricingService *service.PricingService, billingService *service.BillingService) *InternalController {
	return &InternalController{
		pricingService: pricingService,
		billingService: billingService,
		logger:         factory.NewModuleLogger("internal-controller"),
	}
}

func (c *InternalController) ListPlans(ctx echo.Context) error {
	req, err := types.NewListPlansRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid query params")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.pricingService.ListPlans(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, "Internal list plans", err)
	}
	return ctx.JSON(http.StatusOK, mapper.ListPlansResponse(items, c.pricingService.Currencies()))
}

func (c *InternalController) GetOrganizationSubscription(ctx echo.Context) error {
	req, err := types.NewOrganizationRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.billingService.GetSubscription(ctx.Request().Context(), req.GetOrganizationId())
	if err != nil {
		return writeServiceError(ctx, c.logger, "Internal get subscription", err)
	}
	return ctx.JSON(http.StatusOK, &types.SubscriptionResponse{Subscription: mapper.SubscriptionToProto(item)})
}

func (c *InternalController) CancelOrganizationSubscription(ctx echo.Context) error {
	req, err := types.NewOrganizationRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.billingService.CancelSubscription(ctx.Request().Context(), req.GetOrganizationId())
	if err != nil {
		return writeServiceError(ctx, c.logger, "Internal cancel subscription", err)
	}
	return ctx.JSON(http.StatusOK, &types.CancelSubscriptionResponse{
		Subscription: mapper.SubscriptionToProto(result.Subscription),
		Immediate:    result.Immediate,
		Message:      result.Message,
	})
}

func (c *InternalController) ListOrganizationOrders(ctx echo.Context) error {
	req, err := types.NewOrganizationRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.billingService.ListOrders(ctx.Request().Context(), req.GetOrganizationId())
	if err != nil {
		return writeServiceError(ctx, c.logger, "Internal list orders", err)
	}
	return ctx.JSON(http.StatusOK, &types.ListOrdersResponse{Orders: mapper.OrdersToProto(items)})
}
