package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core/staff"
)

var errStaffNotFoundInCtx = errors.New("staff object not found in echo.Context")

type staffApi struct {
	svc      *staff.Service
	validate *validator.Validate
}

func registerStaffAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := staffApi{svc: deps.StaffSvc, validate: deps.Validate}

	sg := g.Group("/staff", jwt, staffMiddleware())
	sg.GET("", api.query)
	sg.POST("", api.create, adminMiddleware())
	sg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := sg.Group("/:id", objectMiddleware(func(ctx echo.Context, id string) (staff.Staff, error) {
		return api.svc.GetByID(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

func (api *staffApi) create(ctx echo.Context) error {
	var data staff.NewStaff
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStaff")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating staff")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *staffApi) query(ctx echo.Context) error {
	filter := new(staff.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []staff.Staff{})
	}
	filter.Clean()

	members, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}
	if members == nil {
		members = []staff.Staff{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *staffApi) retrieve(ctx echo.Context) error {
	s, ok := objectFromContext[staff.Staff](ctx)
	if !ok {
		return errors.Wrap(errStaffNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *staffApi) update(ctx echo.Context) error {
	s, ok := objectFromContext[staff.Staff](ctx)
	if !ok {
		return errors.Wrap(errStaffNotFoundInCtx, "retrieving object from context")
	}

	var data staff.UpdateStaff
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStaff")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), s, data)
	if err != nil {
		return errors.Wrap(err, "updating staff")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *staffApi) destroy(ctx echo.Context) error {
	s, ok := objectFromContext[staff.Staff](ctx)
	if !ok {
		return errors.Wrap(errStaffNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting staff")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *staffApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting staff")
	}
	return ctx.NoContent(http.StatusNoContent)
}
