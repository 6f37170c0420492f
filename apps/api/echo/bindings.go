package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/belleza/salon/core"
)

const orderingParam = "ordering"

// bindOrdering reads `?ordering=field,-other` into DB orderings; a leading "-" sorts descending.
// Unknown fields are dropped later by the services.
func bindOrdering(ctx echo.Context) []core.DBOrdering {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return nil
	}

	var orderings []core.DBOrdering
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		orderings = append(orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
	return orderings
}

// objectFromContext returns the object loaded by a detail middleware.
func objectFromContext[T any](ctx echo.Context) (T, bool) {
	obj, ok := ctx.Get(contextObjectKey).(T)
	return obj, ok
}

const contextObjectKey = "object"

// objectMiddleware loads the object named by the `:id` path param into the context.
func objectMiddleware[T any](get func(echo.Context, string) (T, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			obj, err := get(ctx, ctx.Param("id"))
			if err != nil {
				return err
			}
			ctx.Set(contextObjectKey, obj)
			return next(ctx)
		}
	}
}

type DestroyMultipleRequest struct {
	IDs []string `query:"id"`
}
