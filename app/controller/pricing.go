package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
	"github.com/vibast-solutions/ms-go-onboarding/app/mapper"
	"github.com/vibast-solutions/ms-go-onboarding/app/service"
	"github.com/vibast-solutions/ms-go-onboarding/app/session"
	"github.com/vibast-solutions/ms-go-onboarding/app/types"
)

type PricingController struct {
	pricingService *service.PricingService
	logger         logrus.FieldLogger
}

func NewPricingController(pricingService *service.PricingService) *PricingController {
	return &PricingController{
		pricingService: pricingService,
		logger:         factory.NewModuleLogger("pricing-controller"),
	}
}

func (c *PricingController) ListPlans(ctx echo.Context) error {
	req, err := types.NewListPlansRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid query params")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.pricingService.ListPlans(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, "List plans", err)
	}

	return ctx.JSON(http.StatusOK, mapper.ListPlansResponse(items, c.pricingService.Currencies()))
}

func (c *PricingController) GetPlan(ctx echo.Context) error {
	req, err := types.NewGetPlanRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.pricingService.ListPlans(ctx.Request().Context(), req)
	if err != nil {
		return writeServiceError(ctx, c.logger, "Get plan", err)
	}
	for _, item := range items {
		if item.Plan.ID == req.GetId() {
			return ctx.JSON(http.StatusOK, &types.GetPlanResponse{Plan: mapper.PlanToProto(item.Plan, item.Quote)})
		}
	}
	return writeError(ctx, http.StatusNotFound, "plan not found")
}

// SelectPlan answers a plan card click with the route the browser should open.
func (c *PricingController) SelectPlan(ctx echo.Context) error {
	req, err := types.NewSelectPlanRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	_, authenticated := session.FromContext(ctx)
	selection, err := c.pricingService.SelectPlan(ctx.Request().Context(), req, authenticated)
	if err != nil {
		return writeServiceError(ctx, c.logger, "Select plan", err)
	}

	return ctx.JSON(http.StatusOK, &types.SelectPlanResponse{
		Plan:     selection.PlanID,
		Cycle:    selection.Cycle,
		Currency: selection.Currency,
		Redirect: selection.Redirect,
	})
}

func (c *PricingController) SignupPlans(ctx echo.Context) error {
	plans, err := c.pricingService.SignupPlans(ctx.Request().Context())
	if err != nil {
		return writeServiceError(ctx, c.logger, "List signup plans", err)
	}
	return ctx.JSON(http.StatusOK, &types.SignupPlansResponse{Plans: mapper.SignupPlansToProto(plans)})
}

func (c *PricingController) Currencies(ctx echo.Context) error {
	currencies := c.pricingService.Currencies()
	return ctx.JSON(http.StatusOK, &types.CurrenciesResponse{Base: currencies[0], Currencies: currencies})
}
