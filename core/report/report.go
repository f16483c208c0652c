package report

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
)

// Table is a titled grid of values, rendered to Excel and pushed to Google Sheets.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]interface{}
}

// Titles double as sheet names.
const (
	TitlePagos        = "Pagos Docentes"
	TitleExpedientes  = "Expedientes"
	TitleDevoluciones = "Devoluciones"
)

func PagosTable(pagos []pago.PagoDocente) Table {
	t := Table{
		Title: TitlePagos,
		Headers: []string{
			"ID", "Docente", "DNI", "Curso", "Programa", "Periodo", "Fechas", "Horas", "Tarifa",
			"Importe bruto", "Retención", "Importe neto", "Estado", "N° expediente", "N° informe",
			"N° oficio", "N° resolución",
		},
		Rows: make([][]interface{}, 0, len(pagos)),
	}
	for _, p := range pagos {
		var docenteNombre, dni, cursoNombre, programaNombre string
		if p.Docente != nil {
			docenteNombre, dni = p.Docente.NombreCompleto, p.Docente.DNI
		}
		if p.Curso != nil {
			cursoNombre, programaNombre = p.Curso.Nombre, p.Curso.ProgramaNombre
		}
		t.Rows = append(t.Rows, []interface{}{
			p.ID, docenteNombre, dni, cursoNombre, programaNombre, p.Periodo, joinDates(p.FechasEnsenanza),
			p.HorasDictadas, p.TarifaHora, p.ImporteBruto, p.Retencion, p.ImporteNeto, p.Estado,
			p.NumeroExpediente, p.NumeroInforme, p.NumeroOficio, p.NumeroResolucion,
		})
	}
	return t
}

func ExpedientesTable(exps []expediente.Expediente) Table {
	t := Table{
		Title: TitleExpedientes,
		Headers: []string{
			"ID", "N° expediente", "Fecha de ingreso", "Remitente", "Asunto", "Tipo de asunto",
			"Tipo de documento", "N° documento", "Periodo", "DNI solicitante", "Vinculado", "Observaciones",
		},
		Rows: make([][]interface{}, 0, len(exps)),
	}
	for _, e := range exps {
		vinculado := "No"
		if e.Vinculado() {
			vinculado = "Sí"
		}
		t.Rows = append(t.Rows, []interface{}{
			e.ID, e.NumeroExpediente, e.FechaIngreso.String(), e.Remitente, e.Asunto, e.TipoAsunto,
			e.TipoDocumento, e.NumeroDocumento, e.Periodo, e.DNISolicitante, vinculado, e.Observaciones,
		})
	}
	return t
}

func DevolucionesTable(devs []devolucion.Devolucion) Table {
	t := Table{
		Title: TitleDevoluciones,
		Headers: []string{
			"ID", "Solicitante", "DNI", "Programa", "Proceso de admisión", "Monto", "Motivo", "Banco",
			"N° cuenta", "Estado", "N° expediente", "N° resolución",
		},
		Rows: make([][]interface{}, 0, len(devs)),
	}
	for _, d := range devs {
		t.Rows = append(t.Rows, []interface{}{
			d.ID, d.NombreCompleto(), d.DNI, d.ProgramaNombre, d.ProcesoAdmision, d.Monto, d.Motivo, d.Banco,
			d.NumeroCuenta, d.Estado, d.NumeroExpediente, d.NumeroResolucion,
		})
	}
	return t
}

func joinDates(dates []core.Date) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.String()
	}
	return strings.Join(parts, ", ")
}

type (
	Service interface {
		Pagos(ctx context.Context, filter *pago.QueryFilter) (Table, error)
		Expedientes(ctx context.Context, filter *expediente.QueryFilter) (Table, error)
		Devoluciones(ctx context.Context, filter *devolucion.QueryFilter) (Table, error)
		// All builds every report, unfiltered.
		All(ctx context.Context) ([]Table, error)
	}

	service struct {
		pagoSvc       pago.Service
		expedienteSvc expediente.Service
		devolucionSvc devolucion.Service
	}
)

var _ Service = (*service)(nil)

func NewService(pagoSvc pago.Service, expedienteSvc expediente.Service, devolucionSvc devolucion.Service) Service {
	return &service{pagoSvc: pagoSvc, expedienteSvc: expedienteSvc, devolucionSvc: devolucionSvc}
}

func (svc *service) Pagos(ctx context.Context, filter *pago.QueryFilter) (Table, error) {
	pagos, err := svc.pagoSvc.QueryAll(ctx, filter)
	if err != nil {
		return Table{}, errors.Wrap(err, "querying pagos")
	}
	return PagosTable(pagos), nil
}

func (svc *service) Expedientes(ctx context.Context, filter *expediente.QueryFilter) (Table, error) {
	exps, err := svc.expedienteSvc.QueryAll(ctx, filter)
	if err != nil {
		return Table{}, errors.Wrap(err, "querying expedientes")
	}
	return ExpedientesTable(exps), nil
}

func (svc *service) Devoluciones(ctx context.Context, filter *devolucion.QueryFilter) (Table, error) {
	devs, err := svc.devolucionSvc.QueryAll(ctx, filter)
	if err != nil {
		return Table{}, errors.Wrap(err, "querying devoluciones")
	}
	return DevolucionesTable(devs), nil
}

func (svc *service) All(ctx context.Context) ([]Table, error) {
	pagos, err := svc.Pagos(ctx, &pago.QueryFilter{})
	if err != nil {
		return nil, err
	}
	exps, err := svc.Expedientes(ctx, &expediente.QueryFilter{})
	if err != nil {
		return nil, err
	}
	devs, err := svc.Devoluciones(ctx, &devolucion.QueryFilter{})
	if err != nil {
		return nil, err
	}
	return []Table{pagos, exps, devs}, nil
}
