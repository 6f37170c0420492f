package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core/analytics"
	"github.com/belleza/salon/core/customer"
)

var errCustNotFoundInCtx = errors.New("customer object not found in echo.Context")

type customerApi struct {
	svc          *customer.Service
	analyticsSvc *analytics.Service
	validate     *validator.Validate
}

func registerCustomerAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := customerApi{svc: deps.CustomerSvc, analyticsSvc: deps.AnalyticsSvc, validate: deps.Validate}

	cg := g.Group("/customers", jwt, staffMiddleware())
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := cg.Group("/:id", objectMiddleware(func(ctx echo.Context, id string) (customer.Customer, error) {
		return api.svc.GetByID(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// changed drops the cached report, since customer counts and scores depend on customer records.
func (api *customerApi) changed() {
	if api.analyticsSvc != nil {
		api.analyticsSvc.Invalidate()
	}
}

func (api *customerApi) create(ctx echo.Context) error {
	var data customer.NewCustomer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCustomer")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating customer")
	}
	api.changed()
	return ctx.JSON(http.StatusCreated, c)
}

func (api *customerApi) query(ctx echo.Context) error {
	filter := new(customer.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []customer.Customer{})
	}
	filter.Clean()

	customers, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying customers")
	}
	if customers == nil {
		customers = []customer.Customer{}
	}
	return ctx.JSON(http.StatusOK, customers)
}

func (api *customerApi) retrieve(ctx echo.Context) error {
	c, ok := objectFromContext[customer.Customer](ctx)
	if !ok {
		return errors.Wrap(errCustNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *customerApi) update(ctx echo.Context) error {
	c, ok := objectFromContext[customer.Customer](ctx)
	if !ok {
		return errors.Wrap(errCustNotFoundInCtx, "retrieving object from context")
	}

	var data customer.UpdateCustomer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCustomer")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating customer")
	}
	api.changed()
	return ctx.JSON(http.StatusOK, c)
}

func (api *customerApi) destroy(ctx echo.Context) error {
	c, ok := objectFromContext[customer.Customer](ctx)
	if !ok {
		return errors.Wrap(errCustNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting customer")
	}
	api.changed()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *customerApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting customers")
	}
	api.changed()
	return ctx.NoContent(http.StatusNoContent)
}
