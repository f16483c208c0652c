package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	sheetsvc "github.com/JoanAquinoVasquez/SISCON-sub000/services/sheets"
)

type syncApi struct {
	sheets *sheetsvc.Syncer
}

func registerSyncAPI(g *echo.Group, jwt echo.MiddlewareFunc, sheets *sheetsvc.Syncer) {
	api := syncApi{sheets: sheets}

	sg := g.Group("/sync", jwt, adminMiddleware())
	sg.POST("/google-sheets", api.googleSheets)
}

func (api *syncApi) googleSheets(ctx echo.Context) error {
	if api.sheets == nil || !api.sheets.Enabled() {
		return errServiceUnavailable
	}
	res, err := api.sheets.Sync(ctx.Request().Context())
	if err != nil {
		if errors.Cause(err) == sheetsvc.ErrDisabled {
			return errServiceUnavailable
		}
		return errors.Wrap(err, "syncing google sheets")
	}
	return ctx.JSON(http.StatusOK, res)
}
