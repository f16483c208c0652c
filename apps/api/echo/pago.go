package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/report"
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/docgen"
)

type pagoApi struct {
	svc         pago.Service
	expedientes expediente.Service
	reports     report.Service
	documents   *docgen.Generator
	validate    *validator.Validate
}

func registerPagoAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc pago.Service,
	expedientes expediente.Service,
	reports report.Service,
	documents *docgen.Generator,
	validate *validator.Validate,
) {
	api := pagoApi{svc: svc, expedientes: expedientes, reports: reports, documents: documents, validate: validate}

	pg := g.Group("/pagos-docentes", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create, writeMiddleware())
	pg.GET("/exportar", api.export)
	pg.GET("/estados", api.states)

	og := pg.Group("/:id", objectMiddleware(svc.GetByID))
	og.GET("", api.retrieve)
	og.PUT("", api.update, writeMiddleware())
	og.DELETE("", api.destroy, writeMiddleware())
	og.POST("/transicion", api.transition, writeMiddleware())
	og.GET("/documento", api.document)
}

func (api *pagoApi) create(ctx echo.Context) error {
	var data pago.PagoInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PagoInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating pago")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *pagoApi) query(ctx echo.Context) error {
	filter := new(pago.QueryFilter)
	page, ordering, err := bindListQuery(ctx, filter)
	if err != nil {
		return err
	}
	filter.Clean()

	res, err := api.svc.Query(ctx.Request().Context(), filter, page, ordering)
	if err != nil {
		return errors.Wrap(err, "querying pagos")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *pagoApi) export(ctx echo.Context) error {
	filter := new(pago.QueryFilter)
	if err := bindFilter(ctx, filter); err != nil {
		return err
	}
	filter.Clean()

	t, err := api.reports.Pagos(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building pagos report")
	}
	return sendXLSX(ctx, t)
}

func (api *pagoApi) states(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, pago.Workflow.States())
}

func (api *pagoApi) retrieve(ctx echo.Context) error {
	p, err := contextObject[pago.PagoDocente](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *pagoApi) update(ctx echo.Context) error {
	p, err := contextObject[pago.PagoDocente](ctx)
	if err != nil {
		return err
	}

	var data pago.PagoInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PagoInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, p); err != nil {
		return err
	}

	p, err = api.svc.Update(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "updating pago")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *pagoApi) transition(ctx echo.Context) error {
	p, err := contextObject[pago.PagoDocente](ctx)
	if err != nil {
		return err
	}

	var data pago.TransitionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TransitionInput")
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	p, err = api.svc.Transition(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "applying pago transition")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *pagoApi) document(ctx echo.Context) error {
	p, err := contextObject[pago.PagoDocente](ctx)
	if err != nil {
		return err
	}
	doc, err := api.documents.InformePago(ctx.Request().Context(), p)
	if err != nil {
		return errors.Wrap(err, "generating informe de pago")
	}
	return sendDocument(ctx, doc)
}

func (api *pagoApi) destroy(ctx echo.Context) error {
	p, err := contextObject[pago.PagoDocente](ctx)
	if err != nil {
		return err
	}
	if err := api.expedientes.DeletePago(ctx.Request().Context(), p.ID); err != nil {
		return errors.Wrap(err, "deleting pago")
	}
	return ctx.NoContent(http.StatusNoContent)
}
