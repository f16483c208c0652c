package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/report"
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/docgen"
)

type devolucionApi struct {
	svc         devolucion.Service
	expedientes expediente.Service
	reports     report.Service
	documents   *docgen.Generator
	validate    *validator.Validate
}

func registerDevolucionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc devolucion.Service,
	expedientes expediente.Service,
	reports report.Service,
	documents *docgen.Generator,
	validate *validator.Validate,
) {
	api := devolucionApi{svc: svc, expedientes: expedientes, reports: reports, documents: documents, validate: validate}

	dg := g.Group("/devoluciones", jwt)
	dg.GET("", api.query)
	dg.POST("", api.create, writeMiddleware())
	dg.GET("/exportar", api.export)
	dg.GET("/estados", api.states)

	og := dg.Group("/:id", objectMiddleware(svc.GetByID))
	og.GET("", api.retrieve)
	og.PUT("", api.update, writeMiddleware())
	og.DELETE("", api.destroy, writeMiddleware())
	og.POST("/transicion", api.transition, writeMiddleware())
	og.GET("/documento", api.document)
}

func (api *devolucionApi) create(ctx echo.Context) error {
	var data devolucion.DevolucionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DevolucionInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	d, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating devolucion")
	}
	return ctx.JSON(http.StatusCreated, d)
}

func (api *devolucionApi) query(ctx echo.Context) error {
	filter := new(devolucion.QueryFilter)
	page, ordering, err := bindListQuery(ctx, filter)
	if err != nil {
		return err
	}
	filter.Clean()

	res, err := api.svc.Query(ctx.Request().Context(), filter, page, ordering)
	if err != nil {
		return errors.Wrap(err, "querying devoluciones")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *devolucionApi) export(ctx echo.Context) error {
	filter := new(devolucion.QueryFilter)
	if err := bindFilter(ctx, filter); err != nil {
		return err
	}
	filter.Clean()

	t, err := api.reports.Devoluciones(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building devoluciones report")
	}
	return sendXLSX(ctx, t)
}

func (api *devolucionApi) states(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, devolucion.Workflow.States())
}

func (api *devolucionApi) retrieve(ctx echo.Context) error {
	d, err := contextObject[devolucion.Devolucion](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *devolucionApi) update(ctx echo.Context) error {
	d, err := contextObject[devolucion.Devolucion](ctx)
	if err != nil {
		return err
	}

	var data devolucion.DevolucionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DevolucionInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	d, err = api.svc.Update(ctx.Request().Context(), d, data)
	if err != nil {
		return errors.Wrap(err, "updating devolucion")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *devolucionApi) transition(ctx echo.Context) error {
	d, err := contextObject[devolucion.Devolucion](ctx)
	if err != nil {
		return err
	}

	var data devolucion.TransitionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TransitionInput")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	d, err = api.svc.Transition(ctx.Request().Context(), d, data)
	if err != nil {
		return errors.Wrap(err, "applying devolucion transition")
	}
	return ctx.JSON(http.StatusOK, d)
}

func (api *devolucionApi) document(ctx echo.Context) error {
	d, err := contextObject[devolucion.Devolucion](ctx)
	if err != nil {
		return err
	}
	doc, err := api.documents.ResolucionDevolucion(ctx.Request().Context(), d)
	if err != nil {
		return errors.Wrap(err, "generating resolucion de devolucion")
	}
	return sendDocument(ctx, doc)
}

func (api *devolucionApi) destroy(ctx echo.Context) error {
	d, err := contextObject[devolucion.Devolucion](ctx)
	if err != nil {
		return err
	}
	if err := api.expedientes.DeleteDevolucion(ctx.Request().Context(), d.ID); err != nil {
		return errors.Wrap(err, "deleting devolucion")
	}
	return ctx.NoContent(http.StatusNoContent)
}
