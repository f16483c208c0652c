package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/coordinador"
)

type coordinadorApi struct {
	svc      coordinador.Service
	validate *validator.Validate
}

func registerCoordinadorAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc coordinador.Service, validate *validator.Validate) {
	api := coordinadorApi{svc: svc, validate: validate}

	cg := g.Group("/coordinadores", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, writeMiddleware())

	og := cg.Group("/:id", objectMiddleware(svc.GetByID))
	og.GET("", api.retrieve)
	og.PUT("", api.update, writeMiddleware())
	og.DELETE("", api.destroy, writeMiddleware())
}

func (api *coordinadorApi) create(ctx echo.Context) error {
	var data coordinador.CoordinadorInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CoordinadorInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating coordinador")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *coordinadorApi) query(ctx echo.Context) error {
	filter := new(coordinador.QueryFilter)
	page, ordering, err := bindListQuery(ctx, filter)
	if err != nil {
		return err
	}
	filter.Clean()

	res, err := api.svc.Query(ctx.Request().Context(), filter, page, ordering)
	if err != nil {
		return errors.Wrap(err, "querying coordinadores")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *coordinadorApi) retrieve(ctx echo.Context) error {
	c, err := contextObject[coordinador.Coordinador](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *coordinadorApi) update(ctx echo.Context) error {
	c, err := contextObject[coordinador.Coordinador](ctx)
	if err != nil {
		return err
	}

	var data coordinador.CoordinadorInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CoordinadorInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, c); err != nil {
		return err
	}

	c, err = api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating coordinador")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *coordinadorApi) destroy(ctx echo.Context) error {
	c, err := contextObject[coordinador.Coordinador](ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting coordinador")
	}
	return ctx.NoContent(http.StatusNoContent)
}
