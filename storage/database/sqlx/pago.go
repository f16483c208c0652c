package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
)

const (
	pagoColumns = `p.id, p.docente_id, p.curso_id, p.periodo, p.fechas_ensenanza, p.horas_dictadas, p.tarifa_hora,
	p.importe_bruto, p.retencion, p.importe_neto, p.estado, p.numero_expediente, p.numero_informe, p.fecha_informe,
	p.numero_oficio, p.fecha_oficio, p.numero_resolucion, p.fecha_resolucion, p.observaciones,
	p.created_at, p.updated_at, p.deleted_at`
	pagoFrom = `pago_docente p JOIN docente d ON d.id = p.docente_id`
)

type pagoRow struct {
	ID               int64       `db:"id"`
	DocenteID        int64       `db:"docente_id"`
	CursoID          int64       `db:"curso_id"`
	Periodo          string      `db:"periodo"`
	FechasEnsenanza  null.JSON   `db:"fechas_ensenanza"`
	HorasDictadas    int         `db:"horas_dictadas"`
	TarifaHora       float64     `db:"tarifa_hora"`
	ImporteBruto     float64     `db:"importe_bruto"`
	Retencion        float64     `db:"retencion"`
	ImporteNeto      float64     `db:"importe_neto"`
	Estado           string      `db:"estado"`
	NumeroExpediente null.String `db:"numero_expediente"`
	NumeroInforme    null.String `db:"numero_informe"`
	FechaInforme     null.Time   `db:"fecha_informe"`
	NumeroOficio     null.String `db:"numero_oficio"`
	FechaOficio      null.Time   `db:"fecha_oficio"`
	NumeroResolucion null.String `db:"numero_resolucion"`
	FechaResolucion  null.Time   `db:"fecha_resolucion"`
	Observaciones    null.String `db:"observaciones"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
	DeletedAt        null.Time   `db:"deleted_at"`
}

func toPagoRow(p pago.PagoDocente) (pagoRow, error) {
	fechas := p.FechasEnsenanza
	if fechas == nil {
		fechas = []core.Date{}
	}
	fechasJSON, err := json.Marshal(fechas)
	if err != nil {
		return pagoRow{}, errors.Wrap(err, "encoding fechas_ensenanza")
	}
	return pagoRow{
		ID:               p.ID,
		DocenteID:        p.DocenteID,
		CursoID:          p.CursoID,
		Periodo:          p.Periodo,
		FechasEnsenanza:  null.JSONFrom(fechasJSON),
		HorasDictadas:    p.HorasDictadas,
		TarifaHora:       p.TarifaHora,
		ImporteBruto:     p.ImporteBruto,
		Retencion:        p.Retencion,
		ImporteNeto:      p.ImporteNeto,
		Estado:           p.Estado,
		NumeroExpediente: nullString(p.NumeroExpediente),
		NumeroInforme:    nullString(p.NumeroInforme),
		FechaInforme:     nullDate(p.FechaInforme),
		NumeroOficio:     nullString(p.NumeroOficio),
		FechaOficio:      nullDate(p.FechaOficio),
		NumeroResolucion: nullString(p.NumeroResolucion),
		FechaResolucion:  nullDate(p.FechaResolucion),
		Observaciones:    nullString(p.Observaciones),
		CreatedAt:        p.CreatedAt.UTC(),
		UpdatedAt:        p.UpdatedAt.UTC(),
		DeletedAt:        nullTimePtr(p.DeletedAt),
	}, nil
}

func (r pagoRow) model() (pago.PagoDocente, error) {
	fechas := []core.Date{}
	if r.FechasEnsenanza.Valid {
		if err := r.FechasEnsenanza.Unmarshal(&fechas); err != nil {
			return pago.PagoDocente{}, errors.Wrapf(err, "decoding fechas_ensenanza of pago %d", r.ID)
		}
	}
	return pago.PagoDocente{
		ID:               r.ID,
		DocenteID:        r.DocenteID,
		CursoID:          r.CursoID,
		Periodo:          r.Periodo,
		FechasEnsenanza:  fechas,
		HorasDictadas:    r.HorasDictadas,
		TarifaHora:       r.TarifaHora,
		ImporteBruto:     r.ImporteBruto,
		Retencion:        r.Retencion,
		ImporteNeto:      r.ImporteNeto,
		Estado:           r.Estado,
		NumeroExpediente: r.NumeroExpediente.String,
		NumeroInforme:    r.NumeroInforme.String,
		FechaInforme:     dateFrom(r.FechaInforme),
		NumeroOficio:     r.NumeroOficio.String,
		FechaOficio:      dateFrom(r.FechaOficio),
		NumeroResolucion: r.NumeroResolucion.String,
		FechaResolucion:  dateFrom(r.FechaResolucion),
		Observaciones:    r.Observaciones.String,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		DeletedAt:        r.DeletedAt.Ptr(),
	}, nil
}

func pagoModels(rows []pagoRow) ([]pago.PagoDocente, error) {
	pagos := make([]pago.PagoDocente, 0, len(rows))
	for _, r := range rows {
		p, err := r.model()
		if err != nil {
			return nil, err
		}
		pagos = append(pagos, p)
	}
	return pagos, nil
}

type pagoRepository struct {
	repository
}

var _ pago.Repository = (*pagoRepository)(nil)

func NewPagoRepository(exec core.DBExecutor) *pagoRepository {
	return &pagoRepository{repository{exec: exec}}
}

func (repo pagoRepository) ExistsForPeriodo(ctx context.Context, docenteID, cursoID int64, periodo string, excludedID int64, exec ...core.DBExecutor) (bool, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	w.add("docente_id = ? AND curso_id = ? AND periodo = ?", docenteID, cursoID, periodo)
	if excludedID != 0 {
		w.add("id <> ?", excludedID)
	}
	ok, err := exists(ctx, repo.getExec(exec), "pago_docente", w)
	return ok, errors.Wrap(err, "checking pago uniqueness")
}

func (repo pagoRepository) CreatePago(ctx context.Context, p pago.PagoDocente, exec ...core.DBExecutor) (pago.PagoDocente, error) {
	r, err := toPagoRow(p)
	if err != nil {
		return pago.PagoDocente{}, err
	}
	q := `INSERT INTO pago_docente (docente_id, curso_id, periodo, fechas_ensenanza, horas_dictadas, tarifa_hora,
		importe_bruto, retencion, importe_neto, estado, numero_expediente, numero_informe, fecha_informe, numero_oficio,
		fecha_oficio, numero_resolucion, fecha_resolucion, observaciones, created_at, updated_at)
		VALUES (:docente_id, :curso_id, :periodo, :fechas_ensenanza, :horas_dictadas, :tarifa_hora,
		:importe_bruto, :retencion, :importe_neto, :estado, :numero_expediente, :numero_informe, :fecha_informe, :numero_oficio,
		:fecha_oficio, :numero_resolucion, :fecha_resolucion, :observaciones, :created_at, :updated_at)
		RETURNING id`
	id, err := insertReturningID(ctx, repo.getExec(exec), q, r)
	if err != nil {
		return pago.PagoDocente{}, errors.Wrap(err, "inserting pago")
	}
	p.ID = id
	return p, nil
}

func (repo pagoRepository) QueryPagos(ctx context.Context, filter *pago.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]pago.PagoDocente, int, error) {
	w := &where{}
	w.add("p.deleted_at IS NULL")
	if filter != nil {
		w.search(filter.Search,
			"CONCAT_WS(' ', d.nombres, d.apellido_paterno, d.apellido_materno)", "d.dni",
			"p.numero_expediente", "p.numero_informe", "p.numero_oficio", "p.numero_resolucion")
		if filter.DocenteID != 0 {
			w.add("p.docente_id = ?", filter.DocenteID)
		}
		if filter.CursoID != 0 {
			w.add("p.curso_id = ?", filter.CursoID)
		}
		if filter.Periodo != "" {
			w.add("p.periodo = ?", filter.Periodo)
		}
		if filter.Estado != "" {
			w.add("p.estado = ?", filter.Estado)
		}
	}

	var rows []pagoRow
	total, err := queryPage(ctx, repo.getExec(exec), &rows, pagoColumns, pagoFrom, w, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying pagos")
	}
	pagos, err := pagoModels(rows)
	return pagos, total, err
}

func (repo pagoRepository) GetPago(ctx context.Context, id int64, exec ...core.DBExecutor) (pago.PagoDocente, error) {
	var r pagoRow
	q := `SELECT ` + pagoColumns + ` FROM ` + pagoFrom + ` WHERE p.id = $1 AND p.deleted_at IS NULL`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &r, q, id); err != nil {
		return pago.PagoDocente{}, trapNoRowsErr(err, pago.ErrNotFound, "finding pago")
	}
	return r.model()
}

func (repo pagoRepository) FindPagos(ctx context.Context, docenteID, cursoID int64, periodo string, exec ...core.DBExecutor) ([]pago.PagoDocente, error) {
	var rows []pagoRow
	q := `SELECT ` + pagoColumns + ` FROM ` + pagoFrom + `
		WHERE p.deleted_at IS NULL AND p.estado <> $1 AND p.docente_id = $2 AND p.curso_id = $3 AND p.periodo = $4
		ORDER BY p.created_at DESC, p.id DESC`
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, pago.EstadoAnulado, docenteID, cursoID, periodo); err != nil {
		return nil, errors.Wrap(err, "finding pagos")
	}
	return pagoModels(rows)
}

func (repo pagoRepository) UpdatePago(ctx context.Context, p pago.PagoDocente, exec ...core.DBExecutor) (pago.PagoDocente, error) {
	r, err := toPagoRow(p)
	if err != nil {
		return pago.PagoDocente{}, err
	}
	q := `UPDATE pago_docente SET docente_id = :docente_id, curso_id = :curso_id, periodo = :periodo,
		fechas_ensenanza = :fechas_ensenanza, horas_dictadas = :horas_dictadas, tarifa_hora = :tarifa_hora,
		importe_bruto = :importe_bruto, retencion = :retencion, importe_neto = :importe_neto, estado = :estado,
		numero_expediente = :numero_expediente, numero_informe = :numero_informe, fecha_informe = :fecha_informe,
		numero_oficio = :numero_oficio, fecha_oficio = :fecha_oficio, numero_resolucion = :numero_resolucion,
		fecha_resolucion = :fecha_resolucion, observaciones = :observaciones, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL`
	if err = updateNamed(ctx, repo.getExec(exec), q, r, pago.ErrNotFound); err != nil {
		return pago.PagoDocente{}, errors.Wrap(err, "updating pago")
	}
	return p, nil
}

func (repo pagoRepository) ClearNumeroExpediente(ctx context.Context, numero string, exec ...core.DBExecutor) (int, error) {
	return clearNumeroExpediente(ctx, repo.getExec(exec), "pago_docente", numero)
}

func (repo pagoRepository) SoftDeletePago(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error {
	return softDelete(ctx, repo.getExec(exec), "pago_docente", id, at, pago.ErrNotFound)
}
