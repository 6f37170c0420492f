package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core/analytics"
)

type analyticsApi struct {
	svc *analytics.Service
}

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := analyticsApi{svc: deps.AnalyticsSvc}

	ag := g.Group("/analytics", jwt, adminMiddleware())
	ag.GET("/report", api.report)
}

func (api *analyticsApi) report(ctx echo.Context) error {
	rep, err := api.svc.Report(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	return ctx.JSON(http.StatusOK, rep)
}
