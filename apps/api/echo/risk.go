package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core/risk"
)

type riskApi struct {
	svc     *risk.Service
	metrics *metrics
}

func registerRiskAPI(g *echo.Group, jwt echo.MiddlewareFunc, m *metrics, deps *Deps) {
	api := riskApi{svc: deps.RiskSvc, metrics: m}

	rg := g.Group("/risk", jwt, staffMiddleware())
	rg.GET("/customers", api.query)
	rg.GET("/customers/:id", api.retrieve)
}

func (api *riskApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.AssessCustomer(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "assessing customer")
	}
	api.metrics.observeRiskLevel(a.RiskLevel)
	return ctx.JSON(http.StatusOK, a)
}

func (api *riskApi) query(ctx echo.Context) error {
	filter := new(risk.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []risk.Assessment{})
	}
	if err := filter.Clean(); err != nil {
		return err
	}

	res, err := api.svc.AssessAll(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "assessing customers")
	}
	if res == nil {
		res = []risk.Assessment{}
	}
	for _, a := range res {
		api.metrics.observeRiskLevel(a.RiskLevel)
	}
	return ctx.JSON(http.StatusOK, res)
}
