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

type CheckoutController struct {
	checkoutService *service.CheckoutService
	logger          logrus.FieldLogger
}

func NewCheckoutController(checkoutService *service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		logger:          factory.NewModuleLogger("checkout-controller"),
	}
}

func (c *CheckoutController) StartTrial(ctx echo.Context) error {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return writeUnauthorized(ctx)
	}
	req, err := types.NewStartTrialRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.checkoutService.StartTrial(ctx.Request().Context(), actor, req)
	if err != nil {
		return writeServiceError(ctx, c.logger, "Start trial", err)
	}

	return ctx.JSON(http.StatusCreated, &types.StartTrialResponse{
		Options: result.Options,
		Summary: result.Summary,
	})
}

func (c *CheckoutController) ConfirmTrial(ctx echo.Context) error {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return writeUnauthorized(ctx)
	}
	req, err := types.NewConfirmTrialRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	outcome, err := c.checkoutService.ConfirmTrial(ctx.Request().Context(), actor, req)
	if err != nil {
		return writeServiceError(ctx, c.logger, "Confirm trial", err)
	}

	return ctx.JSON(http.StatusOK, &types.CheckoutOutcomeResponse{
		Success:      true,
		Message:      outcome.Message,
		Redirect:     outcome.Redirect,
		Subscription: mapper.SubscriptionToProto(outcome.Subscription),
	})
}

func (c *CheckoutController) CreateOrder(ctx echo.Context) error {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return writeUnauthorized(ctx)
	}
	req, err := types.NewCreateOrderRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.checkoutService.CreateOrder(ctx.Request().Context(), actor, req)
	if err != nil {
		return writeServiceError(ctx, c.logger, "Create order", err)
	}

	return ctx.JSON(http.StatusCreated, &types.CreateOrderResponse{
		Options: result.Options,
		Summary: result.Summary,
	})
}

func (c *CheckoutController) VerifyPayment(ctx echo.Context) error {
	actor, ok := actorFromContext(ctx)
	if !ok {
		return writeUnauthorized(ctx)
	}
	req, err := types.NewVerifyPaymentRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	outcome, err := c.checkoutService.VerifyPayment(ctx.Request().Context(), actor, req)
	if err != nil {
		return writeServiceError(ctx, c.logger, "Verify payment", err)
	}

	return ctx.JSON(http.StatusOK, &types.CheckoutOutcomeResponse{
		Success:      true,
		Message:      outcome.Message,
		Redirect:     outcome.Redirect,
		Subscription: mapper.SubscriptionToProto(outcome.Subscription),
	})
}
