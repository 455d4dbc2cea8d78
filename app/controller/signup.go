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

type SignupController struct {
	signupService *service.SignupService
	logger        logrus.FieldLogger
}

func NewSignupController(signupService *service.SignupService) *SignupController {
	return &SignupController{
		signupService: signupService,
		logger:        factory.NewModuleLogger("signup-controller"),
	}
}

func (c *SignupController) Signup(ctx echo.Context) error {
	req, err := types.NewSignupRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.signupService.Signup(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, "Signup", err)
	}

	factory.LoggerWithContext(c.logger, ctx).WithField("organization_id", result.Organization.ID).Info("Organization signed up")
	return ctx.JSON(http.StatusCreated, &types.SignupResponse{
		User:                      mapper.UserToProto(result.User),
		Organization:              mapper.OrganizationToProto(result.Organization),
		Token:                     result.Token,
		EmailVerificationRequired: result.EmailVerificationRequired,
		Message:                   result.Message,
		Redirect:                  result.Redirect,
	})
}
