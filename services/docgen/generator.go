package docgen

import (
	"bytes"
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/coordinador"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
)

const institucion = "Escuela de Posgrado - Universidad Nacional Pedro Ruiz Gallo"

type (
	// Document is a generated file, ready to be downloaded.
	Document struct {
		FileName string
		Content  []byte
	}

	InformePagoData struct {
		Institucion string
		Pago        pago.PagoDocente
		Docente     docente.Docente
		Curso       curso.Curso
		Coordinador *coordinador.Coordinador
		Fecha       core.Date
	}

	ResolucionDevolucionData struct {
		Institucion string
		Devolucion  devolucion.Devolucion
		Programa    programa.Programa
		Coordinador *coordinador.Coordinador
		Abono       string
		Fecha       core.Date
	}

	DocenteGetter interface {
		GetByID(ctx context.Context, id int64) (docente.Docente, error)
	}
	CursoGetter interface {
		GetByID(ctx context.Context, id int64) (curso.Curso, error)
	}
	ProgramaGetter interface {
		GetByID(ctx context.Context, id int64) (programa.Programa, error)
	}
	CoordinadorGetter interface {
		GetActiveByPrograma(ctx context.Context, programaID int64) (coordinador.Coordinador, error)
	}

	Generator struct {
		appName       string
		docentes      DocenteGetter
		cursos        CursoGetter
		programas     ProgramaGetter
		coordinadores CoordinadorGetter
	}
)

func NewGenerator(conf *core.Config, docentes DocenteGetter, cursos CursoGetter, programas ProgramaGetter, coordinadores CoordinadorGetter) *Generator {
	return &Generator{
		appName:       conf.AppName,
		docentes:      docentes,
		cursos:        cursos,
		programas:     programas,
		coordinadores: coordinadores,
	}
}

// coordinadorOf returns nil when the programa has no active coordinator.
func (g *Generator) coordinadorOf(ctx context.Context, programaID int64) (*coordinador.Coordinador, error) {
	c, err := g.coordinadores.GetActiveByPrograma(ctx, programaID)
	if err != nil {
		if core.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "getting coordinador")
	}
	return &c, nil
}

// InformePago renders the payment report of p.
func (g *Generator) InformePago(ctx context.Context, p pago.PagoDocente) (Document, error) {
	d, err := g.docentes.GetByID(ctx, p.DocenteID)
	if err != nil {
		return Document{}, errors.Wrap(err, "getting docente")
	}
	c, err := g.cursos.GetByID(ctx, p.CursoID)
	if err != nil {
		return Document{}, errors.Wrap(err, "getting curso")
	}
	coord, err := g.coordinadorOf(ctx, c.ProgramaID)
	if err != nil {
		return Document{}, err
	}

	data := InformePagoData{
		Institucion: institucion,
		Pago:        p,
		Docente:     d,
		Curso:       c,
		Coordinador: coord,
		Fecha:       core.Today(),
	}
	var buf bytes.Buffer
	if err := render(&buf, "informe_pago", "Informe de pago docente", g.appName, data); err != nil {
		return Document{}, err
	}
	return Document{
		FileName: fmt.Sprintf("informe_pago_%d_%s.docx", p.ID, d.DNI),
		Content:  buf.Bytes(),
	}, nil
}

// ResolucionDevolucion renders the refund resolution of d.
func (g *Generator) ResolucionDevolucion(ctx context.Context, d devolucion.Devolucion) (Document, error) {
	p, err := g.programas.GetByID(ctx, d.ProgramaID)
	if err != nil {
		return Document{}, errors.Wrap(err, "getting programa")
	}
	coord, err := g.coordinadorOf(ctx, d.ProgramaID)
	if err != nil {
		return Document{}, err
	}

	data := ResolucionDevolucionData{
		Institucion: institucion,
		Devolucion:  d,
		Programa:    p,
		Coordinador: coord,
		Fecha:       core.Today(),
	}
	if d.NumeroCuenta != "" {
		data.Abono = "El importe será abonado en la cuenta " + d.NumeroCuenta
		if d.Banco != "" {
			data.Abono += " del " + d.Banco
		}
		data.Abono += "."
	}
	var buf bytes.Buffer
	if err := render(&buf, "resolucion_devolucion", "Resolución de devolución", g.appName, data); err != nil {
		return Document{}, err
	}
	return Document{
		FileName: fmt.Sprintf("resolucion_devolucion_%d_%s.docx", d.ID, d.DNI),
		Content:  buf.Bytes(),
	}, nil
}
