package controller

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
	"github.com/vibast-solutions/ms-go-onboarding/app/mapper"
	"github.com/vibast-solutions/ms-go-onboarding/app/service"
	"github.com/vibast-solutions/ms-go-onboarding/app/types"
)

const (
	VisitorCookie = "visitor_id"
	ConsentCookie = "cookie-consent"
)

type ConsentCookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

type ConsentController struct {
	consentService *service.ConsentService
	cookies        ConsentCookieConfig
	logger         logrus.FieldLogger
}

func NewConsentController(consentService *service.ConsentService, cookies ConsentCookieConfig) *ConsentController {
	return &ConsentController{
		consentService: consentService,
		cookies:        cookies,
		logger:         factory.NewModuleLogger("consent-controller"),
	}
}

func (c *ConsentController) GetConsent(ctx echo.Context) error {
	visitorID := c.visitorID(ctx)

	state, err := c.consentService.GetConsent(ctx.Request().Context(), visitorID, readConsentCookie(ctx))
	if err != nil {
		return writeServiceError(ctx, c.logger, "Get consent", err)
	}

	return ctx.JSON(http.StatusOK, &types.ConsentResponse{
		Preferences:   mapper.ConsentToProto(state.Preferences),
		ShowBanner:    state.ShowBanner,
		BannerDelayMs: state.BannerDelayMs,
	})
}

func (c *ConsentController) AcceptAll(ctx echo.Context) error {
	return c.decide(ctx, "Accept all cookies", c.consentService.AcceptAll)
}

func (c *ConsentController) AcceptNecessary(ctx echo.Context) error {
	return c.decide(ctx, "Accept necessary cookies", c.consentService.AcceptNecessary)
}

func (c *ConsentController) SavePreferences(ctx echo.Context) error {
	req, err := types.NewSavePreferencesRequestFromContext(ctx)
	if err != nil {
		return writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return writeError(ctx, http.StatusBadRequest, err.Error())
	}

	return c.decide(ctx, "Save cookie preferences", func(reqCtx context.Context, visitor service.ConsentVisitor) (*service.ConsentDecision, error) {
		return c.consentService.SavePreferences(reqCtx, visitor, req)
	})
}

func (c *ConsentController) decide(
	ctx echo.Context,
	operation string,
	choose func(context.Context, service.ConsentVisitor) (*service.ConsentDecision, error),
) error {
	visitor := service.ConsentVisitor{
		VisitorID: c.visitorID(ctx),
		IPAddress: ctx.RealIP(),
		UserAgent: ctx.Request().UserAgent(),
	}

	decision, err := choose(ctx.Request().Context(), visitor)
	if err != nil {
		return writeServiceError(ctx, c.logger, operation, err)
	}

	ctx.SetCookie(c.cookie(ConsentCookie, url.QueryEscape(decision.CookieValue), false))
	return ctx.JSON(http.StatusOK, &types.ConsentDecisionResponse{
		Preferences:         mapper.ConsentToProto(&decision.Preferences),
		InitializeAnalytics: decision.InitializeAnalytics,
	})
}

// visitorID returns the visitor cookie, issuing a new one when it is missing.
func (c *ConsentController) visitorID(ctx echo.Context) string {
	if cookie, err := ctx.Cookie(VisitorCookie); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}

	id := uuid.NewString()
	ctx.SetCookie(c.cookie(VisitorCookie, id, true))
	return id
}

func (c *ConsentController) cookie(name, value string, httpOnly bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.cookies.MaxAge.Seconds()),
		Secure:   c.cookies.Secure,
		HttpOnly: httpOnly,
		SameSite: http.SameSiteLaxMode,
	}
}

func readConsentCookie(ctx echo.Context) string {
	cookie, err := ctx.Cookie(ConsentCookie)
	if err != nil {
		return ""
	}
	value, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return ""
	}
	return value
}
