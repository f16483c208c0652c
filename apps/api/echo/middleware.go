package echoapi

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/user"
)

const contextObjectKey = "object"

var errObjNotFoundInCtx = errors.New("object not found in echo.Context")

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// writeMiddleware lets through the users allowed to create, update and delete records.
func writeMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if contextHasAnyRole(ctx, user.WriteRoles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// objectMiddleware loads the record addressed by `:id` into the context.
func objectMiddleware[T any](get func(context.Context, int64) (T, error)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := paramID(ctx)
			if err != nil {
				return err
			}
			obj, err := get(ctx.Request().Context(), id)
			if err != nil {
				if core.IsNotFound(err) {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding object by ID")
			}
			ctx.Set(contextObjectKey, obj)
			return next(ctx)
		}
	}
}

func contextObject[T any](ctx echo.Context) (T, error) {
	obj, ok := ctx.Get(contextObjectKey).(T)
	if !ok {
		return obj, errors.Wrap(errObjNotFoundInCtx, "retrieving object from context")
	}
	return obj, nil
}
