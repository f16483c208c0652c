package echoapi

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
	"github.com/JoanAquinoVasquez/SISCON-sub000/services/filestore"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n")

func int64Ptr(i int64) *int64 { return &i }
func intPtr(i int) *int       { return &i }

func createExpediente(t *testing.T, env *testEnv, token string, in expediente.ExpedienteInput) expediente.Expediente {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/expedientes", token, marshalObj(t, in))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var e expediente.Expediente
	decode(t, rec, &e)
	return e
}

func (env *testEnv) getPago(t *testing.T, id int64) pago.PagoDocente {
	t.Helper()
	p, err := env.pagoRepo.GetPago(context.Background(), id)
	require.NoError(t, err)
	return p
}

func pagoExpediente(fx pagoFixtures, numero string) expediente.ExpedienteInput {
	return expediente.ExpedienteInput{
		NumeroExpediente: numero,
		FechaIngreso:     core.NewDate(2024, time.June, 3),
		Remitente:        "Unidad de Posgrado FACHSE",
		Asunto:           "Pago de docente",
		TipoAsunto:       expediente.AsuntoPagoDocente,
		TipoDocumento:    expediente.DocumentoInforme,
		NumeroDocumento:  "INF-015-2024",
		DocenteID:        int64Ptr(fx.externo.ID),
		CursoID:          int64Ptr(fx.curso.ID),
		Periodo:          "2024-I",
	}
}

func Test_expedienteApi_validation(t *testing.T) {
	env := setup(t)
	_, asistenteToken, consultaToken := env.users(t)
	fx := newPagoFixtures(t, env)

	missingRefs := pagoExpediente(fx, "EXP-001")
	missingRefs.DocenteID = nil
	missingRefs.Periodo = ""

	halfMonth := pagoExpediente(fx, "EXP-001")
	halfMonth.Mes = intPtr(5)

	runHTTPTests(t, env, []httpTest{
		{name: "read-only", method: http.MethodPost, path: "/api/expedientes", token: consultaToken, body: marshalObj(t, pagoExpediente(fx, "EXP-001")), wantCode: http.StatusForbidden},
		{
			name: "pago subject needs its references", method: http.MethodPost, path: "/api/expedientes", token: asistenteToken,
			body:     marshalObj(t, missingRefs),
			wantCode: http.StatusUnprocessableEntity,
			wantData: []byte(`{"errors":{"docente_id":"este campo es obligatorio","periodo":"este campo es obligatorio"}}`),
		},
		{
			name: "mes without anio", method: http.MethodPost, path: "/api/expedientes", token: asistenteToken,
			body:     marshalObj(t, halfMonth),
			wantCode: http.StatusUnprocessableEntity,
			wantData: []byte(`{"errors":{"anio":"este campo es obligatorio"}}`),
		},
		{
			name: "devolucion subject needs a DNI", method: http.MethodPost, path: "/api/expedientes", token: asistenteToken,
			body: marshalObj(t, expediente.ExpedienteInput{
				NumeroExpediente: "EXP-002", Remitente: "Mesa de partes", Asunto: "Devolución",
				TipoAsunto: expediente.AsuntoDevolucion, TipoDocumento: expediente.DocumentoSolicitud,
			}),
			wantCode: http.StatusUnprocessableEntity,
			wantData: []byte(`{"errors":{"dni_solicitante":"este campo es obligatorio"}}`),
		},
	})

	t.Run("numero is unique", func(t *testing.T) {
		createExpediente(t, env, asistenteToken, expediente.ExpedienteInput{
			NumeroExpediente: "exp-100", Remitente: "Mesa de partes", Asunto: "Varios",
			TipoAsunto: expediente.AsuntoOtro, TipoDocumento: expediente.DocumentoOtro,
		})
		rec := env.do(http.MethodPost, "/api/expedientes", asistenteToken, marshalObj(t, expediente.ExpedienteInput{
			NumeroExpediente: "EXP-100", Remitente: "Mesa de partes", Asunto: "Varios",
			TipoAsunto: expediente.AsuntoOtro, TipoDocumento: expediente.DocumentoOtro,
		}))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusUnprocessableEntity,
			wantData: []byte(`{"errors":{"numero_expediente":"ya existe un expediente con este número"}}`),
		}, rec)
	})
}

func Test_expedienteApi_linksPago(t *testing.T) {
	env := setup(t)
	_, asistenteToken, consultaToken := env.users(t)
	fx := newPagoFixtures(t, env)
	p := createPago(t, env, asistenteToken, pago.PagoInput{
		DocenteID:       fx.externo.ID,
		CursoID:         fx.curso.ID,
		Periodo:         "2024-I",
		FechasEnsenanza: []core.Date{core.NewDate(2024, time.May, 4)},
	})

	t.Run("no match outside the teaching month", func(t *testing.T) {
		in := pagoExpediente(fx, "EXP-010")
		in.Mes, in.Anio = intPtr(6), intPtr(2024)
		e := createExpediente(t, env, asistenteToken, in)
		assert.False(t, e.PagoDocenteID.Valid)
		assert.Equal(t, pago.EstadoPendiente, env.getPago(t, p.ID).Estado)

		rec := env.do(http.MethodDelete, fmt.Sprintf("/api/expedientes/%d", e.ID), asistenteToken)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})

	var e expediente.Expediente
	t.Run("linked and moved into processing", func(t *testing.T) {
		in := pagoExpediente(fx, "EXP-011")
		in.Mes, in.Anio = intPtr(5), intPtr(2024)
		e = createExpediente(t, env, asistenteToken, in)
		require.True(t, e.PagoDocenteID.Valid)
		assert.Equal(t, p.ID, e.PagoDocenteID.Int64)

		got := env.getPago(t, p.ID)
		assert.Equal(t, pago.EstadoEnTramite, got.Estado)
		assert.Equal(t, "EXP-011", got.NumeroExpediente)
		assert.Equal(t, "INF-015-2024", got.NumeroInforme)
		assert.Equal(t, core.NewDate(2024, time.June, 3), got.FechaInforme)
	})

	t.Run("filter linked", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/expedientes?vinculado=true", consultaToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page struct {
			Data []expediente.Expediente `json:"data"`
		}
		decode(t, rec, &page)
		require.Len(t, page.Data, 1)
		assert.Equal(t, e.ID, page.Data[0].ID)
	})

	t.Run("renumbering moves the link", func(t *testing.T) {
		in := pagoExpediente(fx, "EXP-012")
		rec := env.do(http.MethodPut, fmt.Sprintf("/api/expedientes/%d", e.ID), asistenteToken, marshalObj(t, in))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "EXP-012", env.getPago(t, p.ID).NumeroExpediente)
	})

	t.Run("delete unlinks but keeps the state", func(t *testing.T) {
		rec := env.do(http.MethodDelete, fmt.Sprintf("/api/expedientes/%d", e.ID), asistenteToken)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		got := env.getPago(t, p.ID)
		assert.Empty(t, got.NumeroExpediente)
		assert.Equal(t, pago.EstadoEnTramite, got.Estado)
	})
}

func Test_expedienteApi_relink(t *testing.T) {
	env := setup(t)
	_, asistenteToken, _ := env.users(t)
	fx := newPagoFixtures(t, env)

	// registered before its payment
	e := createExpediente(t, env, asistenteToken, pagoExpediente(fx, "EXP-020"))
	require.False(t, e.PagoDocenteID.Valid)

	p := createPago(t, env, asistenteToken, pago.PagoInput{DocenteID: fx.externo.ID, CursoID: fx.curso.ID, Periodo: "2024-I"})

	rec := env.do(http.MethodPost, fmt.Sprintf("/api/expedientes/%d/relink", e.ID), asistenteToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &e)
	require.True(t, e.PagoDocenteID.Valid)
	assert.Equal(t, p.ID, e.PagoDocenteID.Int64)
	assert.Equal(t, "EXP-020", env.getPago(t, p.ID).NumeroExpediente)
}

func Test_expedienteApi_deletedPagoUnlinks(t *testing.T) {
	env := setup(t)
	_, asistenteToken, consultaToken := env.users(t)
	fx := newPagoFixtures(t, env)
	p := createPago(t, env, asistenteToken, pago.PagoInput{DocenteID: fx.externo.ID, CursoID: fx.curso.ID, Periodo: "2024-I"})
	e := createExpediente(t, env, asistenteToken, pagoExpediente(fx, "EXP-030"))
	require.True(t, e.PagoDocenteID.Valid)

	rec := env.do(http.MethodDelete, fmt.Sprintf("/api/pagos-docentes/%d", p.ID), asistenteToken)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = env.do(http.MethodGet, fmt.Sprintf("/api/expedientes/%d", e.ID), consultaToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got expediente.Expediente
	decode(t, rec, &got)
	assert.False(t, got.PagoDocenteID.Valid)
	assert.Equal(t, "EXP-030", got.NumeroExpediente)

	rec = env.do(http.MethodGet, "/api/expedientes?vinculado=true", consultaToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page struct {
		Data []expediente.Expediente `json:"data"`
	}
	decode(t, rec, &page)
	assert.Empty(t, page.Data)
}

func newUploadRequest(t *testing.T, path, token, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(archivoField, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func Test_expedienteApi_archivo(t *testing.T) {
	env := setup(t)
	_, asistenteToken, consultaToken := env.users(t)
	e := createExpediente(t, env, asistenteToken, expediente.ExpedienteInput{
		NumeroExpediente: "EXP-030", Remitente: "Mesa de partes", Asunto: "Varios",
		TipoAsunto: expediente.AsuntoOtro, TipoDocumento: expediente.DocumentoOtro,
	})
	path := fmt.Sprintf("/api/expedientes/%d/archivo", e.ID)

	t.Run("no file yet", func(t *testing.T) {
		rec := env.do(http.MethodGet, path, consultaToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("not a PDF", func(t *testing.T) {
		req, rec := newUploadRequest(t, path, asistenteToken, "foto.pdf", []byte("\x89PNG\r\n\x1a\n"))
		env.app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusUnprocessableEntity,
			wantData: marshalObj(t, map[string]map[string]string{"errors": {archivoField: filestore.ErrNotPDF.Error()}}),
		}, rec)
	})

	t.Run("read-only", func(t *testing.T) {
		req, rec := newUploadRequest(t, path, consultaToken, "exp.pdf", samplePDF)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("upload and download", func(t *testing.T) {
		req, rec := newUploadRequest(t, path, asistenteToken, "../../expediente 030.pdf", samplePDF)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got expediente.Expediente
		decode(t, rec, &got)
		assert.Equal(t, "expediente 030.pdf", got.ArchivoNombre)

		rec = env.do(http.MethodGet, path, consultaToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, filestore.PDFContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "expediente 030.pdf")
		assert.Equal(t, samplePDF, rec.Body.Bytes())
	})

	t.Run("replacing keeps one file", func(t *testing.T) {
		replacement := append(append([]byte{}, samplePDF...), []byte("% v2\n")...)
		req, rec := newUploadRequest(t, path, asistenteToken, "v2.pdf", replacement)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(http.MethodGet, path, consultaToken)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, replacement, rec.Body.Bytes())

		var pdfs int
		err := filepath.WalkDir(env.conf.Storage.MediaDir, func(path string, d fs.DirEntry, err error) error {
			if err == nil && !d.IsDir() && filepath.Ext(path) == ".pdf" {
				pdfs++
			}
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 1, pdfs)
	})
}
