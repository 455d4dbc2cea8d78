package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-onboarding/app/content"
	"github.com/vibast-solutions/ms-go-onboarding/app/factory"
)

type ContentController struct {
	library *content.Library
	logger  logrus.FieldLogger
}

func NewContentController(library *content.Library) *ContentController {
	return &ContentController{
		library: library,
		logger:  factory.NewModuleLogger("content-controller"),
	}
}

func (c *ContentController) ListPages(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string][]string{"pages": c.library.Slugs()})
}

func (c *ContentController) GetPage(ctx echo.Context) error {
	page, err := c.library.Page(ctx.Param("page"))
	if err != nil {
		return writeError(ctx, http.StatusNotFound, "page not found")
	}
	return ctx.JSON(http.StatusOK, page)
}

// RenderPage serves the server-rendered HTML version of a content page.
func (c *ContentController) RenderPage(ctx echo.Context) error {
	err := ctx.Render(http.StatusOK, ctx.Param("page"), nil)
	if err == nil {
		return nil
	}
	if errors.Is(err, content.ErrPageNotFound) {
		return writeError(ctx, http.StatusNotFound, "page not found")
	}
	factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Render page failed")
	return writeError(ctx, http.StatusInternalServerError, "internal server error")
}
