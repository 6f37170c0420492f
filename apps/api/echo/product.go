package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core/product"
)

var errProdNotFoundInCtx = errors.New("product object not found in echo.Context")

type productApi struct {
	svc      *product.Service
	validate *validator.Validate
}

func registerProductAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := productApi{svc: deps.ProductSvc, validate: deps.Validate}
	loadProduct := objectMiddleware(func(ctx echo.Context, id string) (product.Product, error) {
		return api.svc.GetByID(ctx.Request().Context(), id)
	})

	pg := g.Group("/products")

	// writes are for admins; the group registers catch-all routes, so it comes before the public ones
	ag := pg.Group("", jwt, adminMiddleware())
	ag.POST("", api.create)
	ag.DELETE("", api.destroyMultiple)
	ag.PUT("/:id", api.update, loadProduct)
	ag.DELETE("/:id", api.destroy, loadProduct)

	// the catalogue is public
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve, loadProduct)
}

func (api *productApi) create(ctx echo.Context) error {
	var data product.NewProduct
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProduct")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating product")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *productApi) query(ctx echo.Context) error {
	filter := new(product.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []product.Product{})
	}
	filter.Clean()

	products, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying products")
	}
	if products == nil {
		products = []product.Product{}
	}
	return ctx.JSON(http.StatusOK, products)
}

func (api *productApi) retrieve(ctx echo.Context) error {
	p, ok := objectFromContext[product.Product](ctx)
	if !ok {
		return errors.Wrap(errProdNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *productApi) update(ctx echo.Context) error {
	p, ok := objectFromContext[product.Product](ctx)
	if !ok {
		return errors.Wrap(errProdNotFoundInCtx, "retrieving object from context")
	}

	var data product.UpdateProduct
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProduct")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Update(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "updating product")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *productApi) destroy(ctx echo.Context) error {
	p, ok := objectFromContext[product.Product](ctx)
	if !ok {
		return errors.Wrap(errProdNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), p.ID); err != nil {
		return errors.Wrap(err, "deleting product")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *productApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting products")
	}
	return ctx.NoContent(http.StatusNoContent)
}
