package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
	"github.com/vibast-solutions/ms-go-onboarding/app/service"
	"github.com/vibast-solutions/ms-go-onboarding/app/session"
	"github.com/vibast-solutions/ms-go-onboarding/app/types"
)

const signupRedirect = "/signup"

type serviceError struct {
	err     error
	status  int
	message string
}

// serviceErrors maps service sentinels to what the visitor sees. An empty
// message means the error text itself is shown.
var serviceErrors = []serviceError{
	{service.ErrInvalidRequest, http.StatusBadRequest, ""},
	{service.ErrInvalidCycle, http.StatusBadRequest, ""},
	{service.ErrUnsupportedCurrency, http.StatusBadRequest, "unsupported currency"},
	{service.ErrInvalidPlan, http.StatusBadRequest, "Invalid plan selected"},
	{service.ErrPlanNotFound, http.StatusNotFound, "plan not found"},
	{service.ErrSlugTaken, http.StatusConflict, "Organization name is already taken. Please choose another."},
	{service.ErrEmailTaken, http.StatusConflict, "An account with this email already exists"},
	{service.ErrAccountNotFound, http.StatusNotFound, "account not found"},
	{service.ErrSubscriptionExists, http.StatusConflict, "You already have an active subscription"},
	{service.ErrSubscriptionNotFound, http.StatusNotFound, "subscription not found"},
	{service.ErrNothingToCancel, http.StatusConflict, "There is no active subscription to cancel"},
	{service.ErrOrderNotFound, http.StatusNotFound, "order not found"},
	{service.ErrOrderMismatch, http.StatusBadRequest, "Order does not match the selected plan"},
	{service.ErrPaymentVerification, http.StatusBadRequest, "Payment verification failed. Please contact support."},
	{service.ErrCardVerification, http.StatusBadRequest, "Card verification failed. Please try again."},
	{service.ErrInvalidSignature, http.StatusUnauthorized, "invalid signature"},
	{service.ErrGatewayUnavailable, http.StatusBadGateway, "Payment service is unavailable. Please try again."},
}

func writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}

func writeErrorWithRedirect(ctx echo.Context, statusCode int, message, redirect string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message, Redirect: redirect})
}

// writeServiceError answers with the mapped status for known errors and logs
// anything else as an internal failure.
func writeServiceError(ctx echo.Context, logger logrus.FieldLogger, operation string, err error) error {
	for _, known := range serviceErrors {
		if !errors.Is(err, known.err) {
			continue
		}
		message := known.message
		if message == "" {
			message = err.Error()
		}
		return writeError(ctx, known.status, message)
	}

	factory.LoggerWithContext(logger, ctx).WithError(err).Error(operation + " failed")
	return writeError(ctx, http.StatusInternalServerError, "internal server error")
}

// actorFromContext turns the session claims attached by the session middleware into a service actor.
func actorFromContext(ctx echo.Context) (service.Actor, bool) {
	claims, ok := session.FromContext(ctx)
	if !ok {
		return service.Actor{}, false
	}
	userID, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil || userID == 0 {
		return service.Actor{}, false
	}
	organizationID, err := strconv.ParseUint(claims.OrganizationID, 10, 64)
	if err != nil || organizationID == 0 {
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:         userID,
		OrganizationID: organizationID,
		Email:          claims.Email,
		FullName:       claims.FullName,
	}, true
}

func writeUnauthorized(ctx echo.Context) error {
	return writeErrorWithRedirect(ctx, http.StatusUnauthorized, "Please sign up first", signupRedirect)
}
