package controller

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
	"github.com/vibast-solutions/ms-go-onboarding/app/service"
	"github.com/vibast-solutions/ms-go-onboarding/app/types"
)

const (
	SignatureHeader = "X-Razorpay-Signature"
	maxWebhookBody  = 1 << 20
)

type WebhookController struct {
	webhookService *service.WebhookService
	logger         logrus.FieldLogger
}

func NewWebhookController(webhookService *service.WebhookService) *WebhookController {
	return &WebhookController{
		webhookService: webhookService,
		logger:         factory.NewModuleLogger("webhook-controller"),
	}
}

// Razorpay verifies the signature over the raw body, so the body is read before any binding.
func (c *WebhookController) Razorpay(ctx echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBody))
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}

	result, err := c.webhookService.Handle(ctx.Request().Context(), body, ctx.Request().Header.Get(SignatureHeader))
	if err != nil {
		return writeServiceError(ctx, c.logger, "Handle webhook", err)
	}

	factory.LoggerWithContext(c.logger, ctx).WithFields(logrus.Fields{
		"event":   result.Event,
		"handled": result.Handled,
	}).Info("Webhook processed")
	return ctx.JSON(http.StatusOK, &types.WebhookResponse{Status: "ok", Event: result.Event, Handled: result.Handled})
}
