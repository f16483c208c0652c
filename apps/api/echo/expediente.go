package echoapi

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/report"
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/filestore"
)

const archivoField = "archivo"

type expedienteApi struct {
	svc      expediente.Service
	reports  report.Service
	files    *filestore.LocalStore
	validate *validator.Validate
	logger   core.Logger
}

func registerExpedienteAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc expediente.Service,
	reports report.Service,
	files *filestore.LocalStore,
	validate *validator.Validate,
	logger core.Logger,
) {
	api := expedienteApi{svc: svc, reports: reports, files: files, validate: validate, logger: logger}

	eg := g.Group("/expedientes", jwt)
	eg.GET("", api.query)
	eg.POST("", api.create, writeMiddleware())
	eg.GET("/exportar", api.export)

	og := eg.Group("/:id", objectMiddleware(svc.GetByID))
	og.GET("", api.retrieve)
	og.PUT("", api.update, writeMiddleware())
	og.DELETE("", api.destroy, writeMiddleware())
	og.POST("/relink", api.relink, writeMiddleware())
	og.POST("/archivo", api.upload, writeMiddleware())
	og.GET("/archivo", api.download)
}

func (api *expedienteApi) create(ctx echo.Context) error {
	var data expediente.ExpedienteInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExpedienteInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	e, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating expediente")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *expedienteApi) query(ctx echo.Context) error {
	filter := new(expediente.QueryFilter)
	page, ordering, err := bindListQuery(ctx, filter)
	if err != nil {
		return err
	}
	filter.Clean()

	res, err := api.svc.Query(ctx.Request().Context(), filter, page, ordering)
	if err != nil {
		return errors.Wrap(err, "querying expedientes")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *expedienteApi) export(ctx echo.Context) error {
	filter := new(expediente.QueryFilter)
	if err := bindFilter(ctx, filter); err != nil {
		return err
	}
	filter.Clean()

	t, err := api.reports.Expedientes(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building expedientes report")
	}
	return sendXLSX(ctx, t)
}

func (api *expedienteApi) retrieve(ctx echo.Context) error {
	e, err := contextObject[expediente.Expediente](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *expedienteApi) update(ctx echo.Context) error {
	e, err := contextObject[expediente.Expediente](ctx)
	if err != nil {
		return err
	}

	var data expediente.ExpedienteInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExpedienteInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, e); err != nil {
		return err
	}

	e, err = api.svc.Update(ctx.Request().Context(), e, data)
	if err != nil {
		return errors.Wrap(err, "updating expediente")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *expedienteApi) relink(ctx echo.Context) error {
	e, err := contextObject[expediente.Expediente](ctx)
	if err != nil {
		return err
	}
	e, err = api.svc.Relink(ctx.Request().Context(), e)
	if err != nil {
		return errors.Wrap(err, "relinking expediente")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *expedienteApi) upload(ctx echo.Context) error {
	e, err := contextObject[expediente.Expediente](ctx)
	if err != nil {
		return err
	}

	fh, err := ctx.FormFile(archivoField)
	if err != nil {
		return core.NewFieldError(archivoField, "debe adjuntar un archivo PDF")
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer func() { _ = src.Close() }()

	path, err := api.files.SavePDF(src)
	if err != nil {
		switch errors.Cause(err) {
		case filestore.ErrNotPDF, filestore.ErrTooLarge:
			return core.NewFieldError(archivoField, err.Error())
		}
		return errors.Wrap(err, "saving upload")
	}

	e, prev, err := api.svc.SetArchivo(ctx.Request().Context(), e, path, filepath.Base(fh.Filename))
	if err != nil {
		_ = api.files.Delete(path)
		return errors.Wrap(err, "setting expediente archivo")
	}
	if prev != "" && prev != path {
		if err := api.files.Delete(prev); err != nil {
			api.logger.Warn("could not delete replaced archivo", err, prev)
		}
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *expedienteApi) download(ctx echo.Context) error {
	e, err := contextObject[expediente.Expediente](ctx)
	if err != nil {
		return err
	}
	if !e.TieneArchivo() {
		return errHttpNotFound
	}

	f, err := api.files.Open(e.ArchivoPath)
	if err != nil {
		if os.IsNotExist(err) {
			return errHttpNotFound
		}
		return errors.Wrap(err, "opening archivo")
	}
	defer func() { _ = f.Close() }()

	name := e.ArchivoNombre
	if name == "" {
		name = e.NumeroExpediente + ".pdf"
	}
	setContentDisposition(ctx, "attachment", name)
	return ctx.Stream(http.StatusOK, filestore.PDFContentType, f)
}

func (api *expedienteApi) destroy(ctx echo.Context) error {
	e, err := contextObject[expediente.Expediente](ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), e); err != nil {
		return errors.Wrap(err, "deleting expediente")
	}
	return ctx.NoContent(http.StatusNoContent)
}
