package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
)

type programaApi struct {
	svc      programa.Service
	validate *validator.Validate
}

func registerProgramaAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc programa.Service, validate *validator.Validate) {
	api := programaApi{svc: svc, validate: validate}

	pg := g.Group("/programas", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create, writeMiddleware())

	og := pg.Group("/:id", objectMiddleware(svc.GetByID))
	og.GET("", api.retrieve)
	og.PUT("", api.update, writeMiddleware())
	og.DELETE("", api.destroy, writeMiddleware())
	og.GET("/semestres", api.querySemestres)
	og.POST("/semestres", api.createSemestre, writeMiddleware())

	sg := g.Group("/semestres/:id", jwt, objectMiddleware(svc.GetSemestre))
	sg.GET("", api.retrieveSemestre)
	sg.PUT("", api.updateSemestre, writeMiddleware())
	sg.DELETE("", api.destroySemestre, writeMiddleware())
}

func (api *programaApi) create(ctx echo.Context) error {
	var data programa.ProgramaInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgramaInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating programa")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *programaApi) query(ctx echo.Context) error {
	filter := new(programa.QueryFilter)
	page, ordering, err := bindListQuery(ctx, filter)
	if err != nil {
		return err
	}
	filter.Clean()

	res, err := api.svc.Query(ctx.Request().Context(), filter, page, ordering)
	if err != nil {
		return errors.Wrap(err, "querying programas")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *programaApi) retrieve(ctx echo.Context) error {
	p, err := contextObject[programa.Programa](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *programaApi) update(ctx echo.Context) error {
	p, err := contextObject[programa.Programa](ctx)
	if err != nil {
		return err
	}

	var data programa.ProgramaInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgramaInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, p); err != nil {
		return err
	}

	p, err = api.svc.Update(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "updating programa")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *programaApi) destroy(ctx echo.Context) error {
	p, err := contextObject[programa.Programa](ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), p.ID); err != nil {
		return errors.Wrap(err, "deleting programa")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Semestres

func (api *programaApi) querySemestres(ctx echo.Context) error {
	p, err := contextObject[programa.Programa](ctx)
	if err != nil {
		return err
	}
	semestres, err := api.svc.QuerySemestres(ctx.Request().Context(), p.ID)
	if err != nil {
		return errors.Wrap(err, "querying semestres")
	}
	if semestres == nil {
		semestres = []programa.Semestre{}
	}
	return ctx.JSON(http.StatusOK, semestres)
}

func (api *programaApi) createSemestre(ctx echo.Context) error {
	p, err := contextObject[programa.Programa](ctx)
	if err != nil {
		return err
	}

	var data programa.SemestreInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SemestreInput")
	}
	data.ProgramaID = p.ID
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	s, err := api.svc.CreateSemestre(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating semestre")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *programaApi) retrieveSemestre(ctx echo.Context) error {
	s, err := contextObject[programa.Semestre](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *programaApi) updateSemestre(ctx echo.Context) error {
	s, err := contextObject[programa.Semestre](ctx)
	if err != nil {
		return err
	}

	var data programa.SemestreInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SemestreInput")
	}
	if data.ProgramaID == 0 {
		data.ProgramaID = s.ProgramaID
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, s); err != nil {
		return err
	}

	s, err = api.svc.UpdateSemestre(ctx.Request().Context(), s, data)
	if err != nil {
		return errors.Wrap(err, "updating semestre")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *programaApi) destroySemestre(ctx echo.Context) error {
	s, err := contextObject[programa.Semestre](ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteSemestre(ctx.Request().Context(), s.ID); err != nil {
		return errors.Wrap(err, "deleting semestre")
	}
	return ctx.NoContent(http.StatusNoContent)
}
