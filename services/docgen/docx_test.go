package docgen

import (
	"archive/zip"
	"bytes"
	"context"
	"io/ioutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/coordinador"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
)

type fakeStore struct {
	docente     docente.Docente
	curso       curso.Curso
	programa    programa.Programa
	coordinador *coordinador.Coordinador
}

type (
	fakeDocentes      struct{ *fakeStore }
	fakeCursos        struct{ *fakeStore }
	fakeProgramas     struct{ *fakeStore }
	fakeCoordinadores struct{ *fakeStore }
)

func (f fakeDocentes) GetByID(context.Context, int64) (docente.Docente, error) { return f.docente, nil }
func (f fakeCursos) GetByID(context.Context, int64) (curso.Curso, error)       { return f.curso, nil }
func (f fakeProgramas) GetByID(context.Context, int64) (programa.Programa, error) {
	return f.programa, nil
}
func (f fakeCoordinadores) GetActiveByPrograma(context.Context, int64) (coordinador.Coordinador, error) {
	if f.coordinador == nil {
		return coordinador.Coordinador{}, coordinador.ErrNotFound
	}
	return *f.coordinador, nil
}

func newTestGenerator(store *fakeStore) *Generator {
	return NewGenerator(core.NewTestConfig(),
		fakeDocentes{store}, fakeCursos{store}, fakeProgramas{store}, fakeCoordinadores{store})
}

func documentXML(t *testing.T, content []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	var doc string
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			b, err := ioutil.ReadAll(rc)
			require.NoError(t, err)
			_ = rc.Close()
			doc = string(b)
		}
	}
	assert.Contains(t, names, "[Content_Types].xml")
	assert.Contains(t, names, "_rels/.rels")
	require.NotEmpty(t, doc)
	return doc
}

func TestGenerator_InformePago(t *testing.T) {
	store := &fakeStore{
		docente: docente.Docente{ID: 1, Nombres: "Ana", ApellidoPaterno: "Torres", DNI: "12345678",
			TipoDocente: docente.TipoExterno, Banco: "BCP", CuentaBancaria: "191-0001"},
		curso: curso.Curso{ID: 2, Codigo: "GP101", Nombre: "Gestión & Políticas",
			ProgramaID: 3, ProgramaNombre: "Maestría en Gestión Pública"},
		coordinador: &coordinador.Coordinador{Nombres: "Rosa", Apellidos: "Zapata"},
	}
	p := pago.PagoDocente{
		ID: 9, DocenteID: 1, CursoID: 2, Periodo: "2024-I",
		FechasEnsenanza: []core.Date{core.NewDate(2024, 4, 6), core.NewDate(2024, 4, 13)},
		HorasDictadas:   24, TarifaHora: 100, ImporteBruto: 2400, Retencion: 192, ImporteNeto: 2208,
	}

	doc, err := newTestGenerator(store).InformePago(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "informe_pago_9_12345678.docx", doc.FileName)

	xml := documentXML(t, doc.Content)
	assert.Contains(t, xml, "Torres, Ana")
	assert.Contains(t, xml, "Gestión &amp; Políticas")
	assert.Contains(t, xml, "06/04/2024, 13/04/2024")
	assert.Contains(t, xml, "S/ 2,208.00")
	assert.Contains(t, xml, "Rosa Zapata")
}

func TestGenerator_ResolucionDevolucion(t *testing.T) {
	store := &fakeStore{programa: programa.Programa{ID: 3, Nombre: "Maestría en Educación", Mencion: "Docencia"}}
	d := devolucion.Devolucion{
		ID: 4, Nombres: "Luis", Apellidos: "Quispe", DNI: "87654321", ProgramaID: 3,
		ProcesoAdmision: "2024-I", Monto: 350, Motivo: "Pago duplicado", NumeroCuenta: "0011-22",
		NumeroExpediente: "EXP-100",
	}

	doc, err := newTestGenerator(store).ResolucionDevolucion(context.Background(), d)
	require.NoError(t, err)

	xml := documentXML(t, doc.Content)
	assert.Contains(t, xml, "EXP-100")
	assert.Contains(t, xml, "Maestría en Educación con mención en Docencia")
	assert.Contains(t, xml, "S/ 350.00")
	assert.Contains(t, xml, "cuenta 0011-22.")
	assert.Contains(t, xml, "Coordinador(a) del programa")
}

func TestMoney(t *testing.T) {
	tests := map[float64]string{
		0:          "S/ 0.00",
		12.5:       "S/ 12.50",
		1500:       "S/ 1,500.00",
		1234567.89: "S/ 1,234,567.89",
		-20:        "S/ -20.00",
	}
	for in, want := range tests {
		assert.Equal(t, want, Money(in))
	}
}

func TestFechaLarga(t *testing.T) {
	assert.Equal(t, "2 de mayo de 2024", FechaLarga(core.NewDate(2024, 5, 2)))
	assert.Equal(t, "", FechaLarga(core.Date{}))
}
