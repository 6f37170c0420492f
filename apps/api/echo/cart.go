package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/cart"
)

type cartApi struct {
	svc      *cart.Service
	validate *validator.Validate
}

// registerCartAPI exposes the cart of the authenticated user; the token subject owns the cart.
func registerCartAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := cartApi{svc: deps.CartSvc, validate: deps.Validate}

	cg := g.Group("/cart", jwt)
	cg.GET("", api.retrieve)
	cg.DELETE("", api.clear)
	cg.POST("/items", api.addItem)
	cg.PUT("/items/:id", api.setQuantity)
	cg.DELETE("/items/:id", api.removeItem)
}

func cartOwner(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errUnauthorized
	}
	return claims.Subject, nil
}

func (api *cartApi) retrieve(ctx echo.Context) error {
	owner, err := cartOwner(ctx)
	if err != nil {
		return errors.Wrap(err, "getting cart owner")
	}
	sum, err := api.svc.Get(ctx.Request().Context(), owner)
	if err != nil {
		return errors.Wrap(err, "loading cart")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *cartApi) addItem(ctx echo.Context) error {
	owner, err := cartOwner(ctx)
	if err != nil {
		return errors.Wrap(err, "getting cart owner")
	}

	var data AddCartItemRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddCartItemRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sum, err := api.svc.AddProduct(ctx.Request().Context(), owner, data.ProductID)
	if err != nil {
		return errors.Wrap(err, "adding product to cart")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *cartApi) setQuantity(ctx echo.Context) error {
	owner, err := cartOwner(ctx)
	if err != nil {
		return errors.Wrap(err, "getting cart owner")
	}

	var data SetCartQuantityRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetCartQuantityRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sum, err := api.svc.SetQuantity(ctx.Request().Context(), owner, ctx.Param("id"), *data.Quantity)
	if err != nil {
		return errors.Wrap(err, "setting cart item quantity")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *cartApi) removeItem(ctx echo.Context) error {
	owner, err := cartOwner(ctx)
	if err != nil {
		return errors.Wrap(err, "getting cart owner")
	}
	sum, err := api.svc.RemoveItem(ctx.Request().Context(), owner, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "removing cart item")
	}
	return ctx.JSON(http.StatusOK, sum)
}

func (api *cartApi) clear(ctx echo.Context) error {
	owner, err := cartOwner(ctx)
	if err != nil {
		return errors.Wrap(err, "getting cart owner")
	}
	if err = api.svc.Clear(ctx.Request().Context(), owner); err != nil {
		return errors.Wrap(err, "clearing cart")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	AddCartItemRequest struct {
		ProductID string `json:"product_id" validate:"required"`
	}

	// SetCartQuantityRequest accepts any quantity; values below 1 leave the item unchanged.
	SetCartQuantityRequest struct {
		Quantity *int `json:"quantity" validate:"required"`
	}
)

func (r *AddCartItemRequest) Validate(validate *validator.Validate) error {
	r.ProductID = core.CleanString(r.ProductID)
	return validate.Struct(r)
}

func (r *SetCartQuantityRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}
