package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
)

type cursoApi struct {
	svc      curso.Service
	validate *validator.Validate
}

func registerCursoAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc curso.Service, validate *validator.Validate) {
	api := cursoApi{svc: svc, validate: validate}

	g.GET("/buscar-cursos", api.search, jwt)

	cg := g.Group("/cursos", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, writeMiddleware())

	og := cg.Group("/:id", objectMiddleware(svc.GetByID))
	og.GET("", api.retrieve)
	og.PUT("", api.update, writeMiddleware())
	og.DELETE("", api.destroy, writeMiddleware())
}

func (api *cursoApi) create(ctx echo.Context) error {
	var data curso.CursoInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CursoInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating curso")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *cursoApi) query(ctx echo.Context) error {
	filter := new(curso.QueryFilter)
	page, ordering, err := bindListQuery(ctx, filter)
	if err != nil {
		return err
	}
	filter.Clean()

	res, err := api.svc.Query(ctx.Request().Context(), filter, page, ordering)
	if err != nil {
		return errors.Wrap(err, "querying cursos")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *cursoApi) search(ctx echo.Context) error {
	// a malformed programa_id just disables the filter
	programaID, _ := strconv.ParseInt(ctx.QueryParam("programa_id"), 10, 64)

	cursos, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam("search"), programaID)
	if err != nil {
		return errors.Wrap(err, "searching cursos")
	}
	res := make([]*curso.Summary, 0, len(cursos))
	for _, c := range cursos {
		res = append(res, c.Summary())
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *cursoApi) retrieve(ctx echo.Context) error {
	c, err := contextObject[curso.Curso](ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cursoApi) update(ctx echo.Context) error {
	c, err := contextObject[curso.Curso](ctx)
	if err != nil {
		return err
	}

	var data curso.CursoInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CursoInput")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc, c); err != nil {
		return err
	}

	c, err = api.svc.Update(ctx.Request().Context(), c, data)
	if err != nil {
		return errors.Wrap(err, "updating curso")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cursoApi) destroy(ctx echo.Context) error {
	c, err := contextObject[curso.Curso](ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return errors.Wrap(err, "deleting curso")
	}
	return ctx.NoContent(http.StatusNoContent)
}
