// Package exportsvc renders report tables as Excel workbooks.
package exportsvc

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/report"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FileName returns the download name for a table exported at t, eg. "pagos-docentes_20240502.xlsx".
func FileName(t report.Table, at time.Time) string {
	return slug(t.Title) + "_" + at.Format("20060102") + ".xlsx"
}

func slug(title string) string {
	b := make([]rune, 0, len(title))
	for _, r := range title {
		switch {
		case r >= 'A' && r <= 'Z':
			b = append(b, r+'a'-'A')
		case r == ' ':
			b = append(b, '-')
		default:
			b = append(b, r)
		}
	}
	return string(b)
}

// WriteXLSX writes tables to w, one sheet per table: bold header row, frozen under the header.
func WriteXLSX(w io.Writer, tables ...report.Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	for i, t := range tables {
		sheet := sheetName(t.Title)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
				return errors.Wrap(err, "renaming sheet")
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return errors.Wrapf(err, "creating sheet %s", sheet)
		}
		if err := writeTable(f, sheet, t, bold); err != nil {
			return err
		}
	}
	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, t report.Table, headerStyle int) error {
	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if len(t.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Headers), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
			return errors.Wrap(err, "styling header")
		}
		lastCol, _ := excelize.ColumnNumberToName(len(t.Headers))
		if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
			return errors.Wrap(err, "setting column width")
		}
	}
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing row %d", i+2)
		}
	}
	err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
	return errors.Wrap(err, "freezing header")
}

// sheetName trims title to Excel's 31 characters limit.
func sheetName(title string) string {
	r := []rune(title)
	if len(r) > 31 {
		r = r[:31]
	}
	if len(r) == 0 {
		return "Hoja1"
	}
	return string(r)
}
