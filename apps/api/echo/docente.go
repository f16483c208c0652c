package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
)

type docenteApi struct {
	svc      docente.Service
	validate *validator.Validate
}

func registerDocenteAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc docente.Service, validate *validator.Validate) {
	api := docenteApi{svc: svc, validate: validate}

	g.GET("/buscar-docentes", api.search, jwt)

	dg := g.Group("/docentes", jwt)
	dg.GET("", api.query)
	dg.POST("", api.create, writeMiddleware())

	og := dg.Group("/:id", objectMiddleware(svc.GetByID))
	og.GET("", api.retrieve)
	og.PUT("", api.update, writeMiddleware())
	og.DELETE("", api.destroy, writeMiddleware())
}

func (api *docenteApi) create(ctx echo.Context) error {
	var data docente.DocenteInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DocenteInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	d, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating docente")
	}
	return ctx.JSON(http.StatusCreated, d)
}

func (api *docenteApi) query(ctx echo.Context) error {
	filter := new(docente.QueryFilter)
	page, ordering, err := bindListQuery(ctx, filter)
	if err != nil {
		return err
	}
	filter.Clean()

	res, err := api.svc.Query(ctx.Request().Context(), filter, page, ordering)
	if err != nil {
		return errors.Wrap(err, "querying docentes")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *docenteApi) search(ctx echo.Context) error {
	docentes, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam("search"))
	if err != nil {
		return errors.Wrap(err, "searching docentes")
	}
	res := make([]*docente.Summary, 0, len(docentes))
	for _, d := range docentes {
		res = append(res, d.Summary())
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *docenteApi) retrieve(ctx echo.Context) error {
	d, err := contextObject[docente.Docente](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *docenteApi) update(ctx echo.Context) error {
	d, err := contextObject[docente.Docente](ctx)
	if err != nil {
		return err
	}

	var data docente.DocenteInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DocenteInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, d); err != nil {
		return err
	}

	d, err = api.svc.Update(ctx.Request().Context(), d, data)
	if err != nil {
		return errors.Wrap(err, "updating docente")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *docenteApi) destroy(ctx echo.Context) error {
	d, err := contextObject[docente.Docente](ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), d.ID); err != nil {
		return errors.Wrap(err, "deleting docente")
	}
	return ctx.NoContent(http.StatusNoContent)
}
