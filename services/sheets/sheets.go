// Package sheetsvc pushes report tables to a Google spreadsheet.
package sheetsvc

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/report"
)

// ErrDisabled is returned when no spreadsheet is configured.
var ErrDisabled = errors.New("la sincronización con Google Sheets no está configurada")

type (
	// Reporter builds the tables to push.
	Reporter interface {
		All(ctx context.Context) ([]report.Table, error)
	}

	// SheetResult reports the rows written to one sheet.
	SheetResult struct {
		Sheet string `json:"sheet"`
		Rows  int    `json:"rows"`
	}

	SyncResult struct {
		SpreadsheetID string        `json:"spreadsheet_id"`
		Sheets        []SheetResult `json:"sheets"`
		SyncedAt      time.Time     `json:"synced_at"`
	}

	Syncer struct {
		svc           *sheets.Service
		spreadsheetID string
		reports       Reporter
		logger        core.Logger
	}
)

// NewSyncer returns a disabled Syncer (every Sync returns ErrDisabled) when no spreadsheet is configured.
// Extra client options (eg. option.WithEndpoint) override the credentials file.
func NewSyncer(ctx context.Context, conf core.GoogleConfig, reports Reporter, logger core.Logger, opts ...option.ClientOption) (*Syncer, error) {
	s := &Syncer{spreadsheetID: conf.SpreadsheetID, reports: reports, logger: logger}
	if conf.SpreadsheetID == "" {
		return s, nil
	}
	if len(opts) == 0 {
		opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))
		if conf.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(conf.CredentialsFile))
		}
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheets client")
	}
	s.svc = svc
	return s, nil
}

func (s *Syncer) Enabled() bool {
	return s.svc != nil
}

// Sync rebuilds every report and overwrites its sheet (creating missing sheets).
func (s *Syncer) Sync(ctx context.Context) (SyncResult, error) {
	if !s.Enabled() {
		return SyncResult{}, ErrDisabled
	}
	tables, err := s.reports.All(ctx)
	if err != nil {
		return SyncResult{}, errors.Wrap(err, "building reports")
	}
	if err := s.ensureSheets(ctx, tables); err != nil {
		return SyncResult{}, err
	}

	res := SyncResult{SpreadsheetID: s.spreadsheetID, Sheets: make([]SheetResult, 0, len(tables))}
	for _, t := range tables {
		if err := s.write(ctx, t); err != nil {
			return SyncResult{}, err
		}
		res.Sheets = append(res.Sheets, SheetResult{Sheet: t.Title, Rows: len(t.Rows)})
	}
	res.SyncedAt = time.Now().UTC()
	s.logger.Info(fmt.Sprintf("google sheets synced: %d sheets", len(res.Sheets)))
	return res, nil
}

func (s *Syncer) ensureSheets(ctx context.Context, tables []report.Table) error {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return errors.Wrap(err, "getting spreadsheet")
	}
	existing := make(map[string]bool, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			existing[sh.Properties.Title] = true
		}
	}

	var reqs []*sheets.Request
	for _, t := range tables {
		if !existing[t.Title] {
			reqs = append(reqs, &sheets.Request{
				AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: t.Title}},
			})
		}
	}
	if len(reqs) == 0 {
		return nil
	}
	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{Requests: reqs}).
		Context(ctx).Do()
	return errors.Wrap(err, "adding sheets")
}

func (s *Syncer) write(ctx context.Context, t report.Table) error {
	rng := fmt.Sprintf("'%s'", t.Title)
	if _, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return errors.Wrapf(err, "clearing sheet %s", t.Title)
	}

	values := make([][]interface{}, 0, len(t.Rows)+1)
	header := make([]interface{}, len(t.Headers))
	for i, h := range t.Headers {
		header[i] = h
	}
	values = append(values, header)
	values = append(values, t.Rows...)

	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng+"!A1", &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").Context(ctx).Do()
	return errors.Wrapf(err, "writing sheet %s", t.Title)
}
