package echoapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/coordinador"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
	testutil "github.com/JoanAquinoVasquez/SISCON-sub000/tests"
)

func Test_programaApi(t *testing.T) {
	env := setup(t)
	_, asistenteToken, consultaToken := env.users(t)

	in := programa.ProgramaInput{
		Nombre: "Maestría en Ciencias",
		Codigo: "mcs",
		Grado:  programa.GradoMaestria,
	}

	var p programa.Programa
	t.Run("create", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/programas", consultaToken, marshalObj(t, in))
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(http.MethodPost, "/api/programas", asistenteToken, marshalObj(t, in))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &p)
		assert.Equal(t, "MCS", p.Codigo)
		assert.True(t, p.Activo)

		rec = env.do(http.MethodPost, "/api/programas", asistenteToken, marshalObj(t, in))
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusUnprocessableEntity,
			wantData: []byte(`{"errors":{"codigo":"ya existe un programa con este código"}}`),
		}, rec)
	})

	base := fmt.Sprintf("/api/programas/%d", p.ID)
	var s programa.Semestre
	t.Run("semestres", func(t *testing.T) {
		// the path wins over the body
		body := marshalObj(t, programa.SemestreInput{ProgramaID: 999, Numero: 1, Nombre: "Primero"})
		rec := env.do(http.MethodPost, base+"/semestres", asistenteToken, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		decode(t, rec, &s)
		assert.Equal(t, p.ID, s.ProgramaID)

		rec = env.do(http.MethodGet, base+"/semestres", consultaToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var list []programa.Semestre
		decode(t, rec, &list)
		require.Len(t, list, 1)

		rec = env.do(http.MethodGet, fmt.Sprintf("/api/semestres/%d", s.ID), consultaToken)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("programa with semestres cannot be deleted", func(t *testing.T) {
		rec := env.do(http.MethodDelete, base, asistenteToken)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusUnprocessableEntity,
			wantData: marshalObj(t, httpErr{Error: "el programa tiene semestres registrados"}),
		}, rec)

		rec = env.do(http.MethodDelete, fmt.Sprintf("/api/semestres/%d", s.ID), asistenteToken)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		rec = env.do(http.MethodDelete, base, asistenteToken)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		rec = env.do(http.MethodGet, base, consultaToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_cursoApi(t *testing.T) {
	env := setup(t)
	_, asistenteToken, consultaToken := env.users(t)
	p := testutil.CreatePrograma(t, env.programaRepo, "Maestría en Educación", "MED")
	s := testutil.CreateSemestre(t, env.programaRepo, p.ID, 2)

	in := func(semestreID int64, codigo string) []byte {
		return marshalObj(t, curso.CursoInput{Codigo: codigo, Nombre: "Metodología de la Investigación", Creditos: 4, Horas: 48, SemestreID: semestreID})
	}

	runHTTPTests(t, env, []httpTest{
		{
			name: "unknown semestre", method: http.MethodPost, path: "/api/cursos", token: asistenteToken,
			body: in(999, "MI-01"), wantCode: http.StatusUnprocessableEntity,
		},
		{name: "read-only", method: http.MethodPost, path: "/api/cursos", token: consultaToken, body: in(s.ID, "MI-01"), wantCode: http.StatusForbidden},
	})

	t.Run("created with joined fields", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/cursos", asistenteToken, in(s.ID, "mi-01"))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var c curso.Curso
		decode(t, rec, &c)
		assert.Equal(t, "MI-01", c.Codigo)
		assert.Equal(t, 2, c.SemestreNumero)
		assert.Equal(t, p.ID, c.ProgramaID)
		assert.Equal(t, p.Nombre, c.ProgramaNombre)
	})

	t.Run("search within programa", func(t *testing.T) {
		other := testutil.CreatePrograma(t, env.programaRepo, "Doctorado en Educación", "DED")
		os := testutil.CreateSemestre(t, env.programaRepo, other.ID, 1)
		testutil.CreateCurso(t, env.cursoRepo, os.ID, "MI-02", "Metodología avanzada", 32)

		rec := env.do(http.MethodGet, "/api/buscar-cursos?search=metodo", consultaToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var all []curso.Summary
		decode(t, rec, &all)
		assert.Len(t, all, 2)

		rec = env.do(http.MethodGet, fmt.Sprintf("/api/buscar-cursos?search=metodo&programa_id=%d", p.ID), consultaToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var scoped []curso.Summary
		decode(t, rec, &scoped)
		require.Len(t, scoped, 1)
		assert.Equal(t, "MI-01", scoped[0].Codigo)
	})
}

func Test_coordinadorApi(t *testing.T) {
	env := setup(t)
	_, asistenteToken, consultaToken := env.users(t)
	p := testutil.CreatePrograma(t, env.programaRepo, "Maestría en Salud", "MSA")

	in := func(programaID int64, dni string) []byte {
		return marshalObj(t, coordinador.CoordinadorInput{
			Nombres: "Carmen", Apellidos: "Díaz Vera", DNI: dni, Tipo: "interno", ProgramaID: programaID,
		})
	}

	runHTTPTests(t, env, []httpTest{
		{
			name: "unknown programa", method: http.MethodPost, path: "/api/coordinadores", token: asistenteToken,
			body: in(999, "11223344"), wantCode: http.StatusUnprocessableEntity,
		},
		{name: "created", method: http.MethodPost, path: "/api/coordinadores", token: asistenteToken, body: in(p.ID, "11223344"), wantCode: http.StatusCreated},
		{
			name: "duplicate DNI", method: http.MethodPost, path: "/api/coordinadores", token: asistenteToken,
			body: in(p.ID, "11223344"), wantCode: http.StatusUnprocessableEntity,
			wantData: []byte(`{"errors":{"dni":"ya existe un coordinador con este DNI"}}`),
		},
		{name: "list", path: "/api/coordinadores", token: consultaToken, wantCode: http.StatusOK},
	})
}
