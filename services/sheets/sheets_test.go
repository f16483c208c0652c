package sheetsvc

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/report"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type staticReports []report.Table

func (r staticReports) All(context.Context) ([]report.Table, error) { return r, nil }

type recordedRequest struct {
	method, path string
	body         map[string]interface{}
}

func TestSyncer_Disabled(t *testing.T) {
	s, err := NewSyncer(context.Background(), core.GoogleConfig{}, staticReports{}, nopLogger{})
	require.NoError(t, err)
	assert.False(t, s.Enabled())

	_, err = s.Sync(context.Background())
	assert.Equal(t, ErrDisabled, err)
}

func TestSyncer_Sync(t *testing.T) {
	var (
		mu       sync.Mutex
		requests []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path}
		if b, _ := ioutil.ReadAll(r.Body); len(b) > 0 {
			_ = json.Unmarshal(b, &rec.body)
		}
		mu.Lock()
		requests = append(requests, rec)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(`{"sheets":[{"properties":{"title":"Pagos Docentes"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tables := staticReports{
		{Title: report.TitlePagos, Headers: []string{"ID", "Docente"}, Rows: [][]interface{}{{1, "Torres, Ana"}}},
		{Title: report.TitleDevoluciones, Headers: []string{"ID"}},
	}
	s, err := NewSyncer(context.Background(), core.GoogleConfig{SpreadsheetID: "sheet-1"}, tables, nopLogger{},
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	res, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []SheetResult{{Sheet: report.TitlePagos, Rows: 1}, {Sheet: report.TitleDevoluciones, Rows: 0}}, res.Sheets)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 6) // get, batchUpdate, (clear, update) x2

	assert.Equal(t, http.MethodGet, requests[0].method)
	assert.True(t, strings.HasSuffix(requests[1].path, "sheet-1:batchUpdate"))
	addSheet := requests[1].body["requests"].([]interface{})
	require.Len(t, addSheet, 1) // only the missing sheet

	assert.True(t, strings.HasSuffix(requests[2].path, ":clear"))
	assert.Equal(t, http.MethodPut, requests[3].method)
	values := requests[3].body["values"].([]interface{})
	require.Len(t, values, 2)
	assert.Equal(t, []interface{}{"ID", "Docente"}, values[0])
}
