package echoapi

import (
	"bytes"
	"mime"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/report"
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/docgen"
	exportsvc "github.com/JoanAquinoVasquez/SISCON-sub000/services/export"
)

func setContentDisposition(ctx echo.Context, dispType, name string) {
	ctx.Response().Header().Set(
		echo.HeaderContentDisposition,
		mime.FormatMediaType(dispType, map[string]string{"filename": name}),
	)
}

// sendXLSX writes t as an Excel attachment.
func sendXLSX(ctx echo.Context, t report.Table) error {
	var buf bytes.Buffer
	if err := exportsvc.WriteXLSX(&buf, t); err != nil {
		return errors.Wrap(err, "writing xlsx")
	}
	setContentDisposition(ctx, "attachment", exportsvc.FileName(t, time.Now()))
	return ctx.Blob(http.StatusOK, exportsvc.ContentType, buf.Bytes())
}

// sendDocument writes a generated Word document as an attachment.
func sendDocument(ctx echo.Context, doc docgen.Document) error {
	setContentDisposition(ctx, "attachment", doc.FileName)
	return ctx.Blob(http.StatusOK, docgen.ContentType, doc.Content)
}
