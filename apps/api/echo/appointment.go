package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core/analytics"
	"github.com/belleza/salon/core/appointment"
)

var errApptNotFoundInCtx = errors.New("appointment object not found in echo.Context")

type appointmentApi struct {
	svc          *appointment.Service
	analyticsSvc *analytics.Service
	validate     *validator.Validate
}

func registerAppointmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *Deps) {
	api := appointmentApi{svc: deps.AppointmentSvc, analyticsSvc: deps.AnalyticsSvc, validate: deps.Validate}

	ag := g.Group("/appointments", jwt, staffMiddleware())
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := ag.Group("/:id", objectMiddleware(func(ctx echo.Context, id string) (appointment.Appointment, error) {
		return api.svc.GetByID(ctx.Request().Context(), id)
	}))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// changed drops the cached report once appointment history changes.
func (api *appointmentApi) changed() {
	if api.analyticsSvc != nil {
		api.analyticsSvc.Invalidate()
	}
}

func (api *appointmentApi) create(ctx echo.Context) error {
	var data appointment.NewAppointment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAppointment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	appt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating appointment")
	}
	api.changed()
	return ctx.JSON(http.StatusCreated, appt)
}

func (api *appointmentApi) query(ctx echo.Context) error {
	filter := new(appointment.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []appointment.Appointment{})
	}
	if err := filter.Clean(); err != nil {
		return err
	}

	appts, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying appointments")
	}
	if appts == nil {
		appts = []appointment.Appointment{}
	}
	return ctx.JSON(http.StatusOK, appts)
}

func (api *appointmentApi) retrieve(ctx echo.Context) error {
	appt, ok := objectFromContext[appointment.Appointment](ctx)
	if !ok {
		return errors.Wrap(errApptNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, appt)
}

func (api *appointmentApi) update(ctx echo.Context) error {
	appt, ok := objectFromContext[appointment.Appointment](ctx)
	if !ok {
		return errors.Wrap(errApptNotFoundInCtx, "retrieving object from context")
	}

	var data appointment.UpdateAppointment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAppointment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	appt, err := api.svc.Update(ctx.Request().Context(), appt, data)
	if err != nil {
		return errors.Wrap(err, "updating appointment")
	}
	api.changed()
	return ctx.JSON(http.StatusOK, appt)
}

func (api *appointmentApi) destroy(ctx echo.Context) error {
	appt, ok := objectFromContext[appointment.Appointment](ctx)
	if !ok {
		return errors.Wrap(errApptNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), appt.ID); err != nil {
		return errors.Wrap(err, "deleting appointment")
	}
	api.changed()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *appointmentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if len(query.IDs) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting appointments")
	}
	api.changed()
	return ctx.NoContent(http.StatusNoContent)
}
