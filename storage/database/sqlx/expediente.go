package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
)

const expedienteColumns = `id, numero_expediente, fecha_ingreso, remitente, asunto, tipo_asunto, tipo_documento,
	numero_documento, docente_id, curso_id, periodo, mes, anio, dni_solicitante, programa_id, pago_docente_id,
	devolucion_id, archivo_path, archivo_nombre, observaciones, created_at, updated_at, deleted_at`

type expedienteRow struct {
	ID               int64       `db:"id"`
	NumeroExpediente string      `db:"numero_expediente"`
	FechaIngreso     time.Time   `db:"fecha_ingreso"`
	Remitente        string      `db:"remitente"`
	Asunto           string      `db:"asunto"`
	TipoAsunto       string      `db:"tipo_asunto"`
	TipoDocumento    string      `db:"tipo_documento"`
	NumeroDocumento  null.String `db:"numero_documento"`
	DocenteID        null.Int64  `db:"docente_id"`
	CursoID          null.Int64  `db:"curso_id"`
	Periodo          null.String `db:"periodo"`
	Mes              null.Int    `db:"mes"`
	Anio             null.Int    `db:"anio"`
	DNISolicitante   null.String `db:"dni_solicitante"`
	ProgramaID       null.Int64  `db:"programa_id"`
	PagoDocenteID    null.Int64  `db:"pago_docente_id"`
	DevolucionID     null.Int64  `db:"devolucion_id"`
	ArchivoPath      null.String `db:"archivo_path"`
	ArchivoNombre    null.String `db:"archivo_nombre"`
	Observaciones    null.String `db:"observaciones"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
	DeletedAt        null.Time   `db:"deleted_at"`
}

func toExpedienteRow(e expediente.Expediente) expedienteRow {
	return expedienteRow{
		ID:               e.ID,
		NumeroExpediente: e.NumeroExpediente,
		FechaIngreso:     e.FechaIngreso.Time,
		Remitente:        e.Remitente,
		Asunto:           e.Asunto,
		TipoAsunto:       e.TipoAsunto,
		TipoDocumento:    e.TipoDocumento,
		NumeroDocumento:  nullString(e.NumeroDocumento),
		DocenteID:        e.DocenteID,
		CursoID:          e.CursoID,
		Periodo:          nullString(e.Periodo),
		Mes:              e.Mes,
		Anio:             e.Anio,
		DNISolicitante:   nullString(e.DNISolicitante),
		ProgramaID:       e.ProgramaID,
		PagoDocenteID:    e.PagoDocenteID,
		DevolucionID:     e.DevolucionID,
		ArchivoPath:      nullString(e.ArchivoPath),
		ArchivoNombre:    nullString(e.ArchivoNombre),
		Observaciones:    nullString(e.Observaciones),
		CreatedAt:        e.CreatedAt.UTC(),
		UpdatedAt:        e.UpdatedAt.UTC(),
		DeletedAt:        nullTimePtr(e.DeletedAt),
	}
}

func (r expedienteRow) model() expediente.Expediente {
	return expediente.Expediente{
		ID:               r.ID,
		NumeroExpediente: r.NumeroExpediente,
		FechaIngreso:     dateFrom(null.TimeFrom(r.FechaIngreso)),
		Remitente:        r.Remitente,
		Asunto:           r.Asunto,
		TipoAsunto:       r.TipoAsunto,
		TipoDocumento:    r.TipoDocumento,
		NumeroDocumento:  r.NumeroDocumento.String,
		DocenteID:        r.DocenteID,
		CursoID:          r.CursoID,
		Periodo:          r.Periodo.String,
		Mes:              r.Mes,
		Anio:             r.Anio,
		DNISolicitante:   r.DNISolicitante.String,
		ProgramaID:       r.ProgramaID,
		PagoDocenteID:    r.PagoDocenteID,
		DevolucionID:     r.DevolucionID,
		ArchivoPath:      r.ArchivoPath.String,
		ArchivoNombre:    r.ArchivoNombre.String,
		Observaciones:    r.Observaciones.String,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		DeletedAt:        r.DeletedAt.Ptr(),
	}
}

type expedienteRepository struct {
	repository
}

var _ expediente.Repository = (*expedienteRepository)(nil)

func NewExpedienteRepository(exec core.DBExecutor) *expedienteRepository {
	return &expedienteRepository{repository{exec: exec}}
}

func (repo expedienteRepository) NumeroExists(ctx context.Context, numero string, excludedID int64, exec ...core.DBExecutor) (bool, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	w.add("numero_expediente = ?", numero)
	if excludedID != 0 {
		w.add("id <> ?", excludedID)
	}
	ok, err := exists(ctx, repo.getExec(exec), "expediente", w)
	return ok, errors.Wrap(err, "checking numero_expediente")
}

func (repo expedienteRepository) CreateExpediente(ctx context.Context, e expediente.Expediente, exec ...core.DBExecutor) (expediente.Expediente, error) {
	q := `INSERT INTO expediente (numero_expediente, fecha_ingreso, remitente, asunto, tipo_asunto, tipo_documento,
		numero_documento, docente_id, curso_id, periodo, mes, anio, dni_solicitante, programa_id, pago_docente_id,
		devolucion_id, archivo_path, archivo_nombre, observaciones, created_at, updated_at)
		VALUES (:numero_expediente, :fecha_ingreso, :remitente, :asunto, :tipo_asunto, :tipo_documento,
		:numero_documento, :docente_id, :curso_id, :periodo, :mes, :anio, :dni_solicitante, :programa_id, :pago_docente_id,
		:devolucion_id, :archivo_path, :archivo_nombre, :observaciones, :created_at, :updated_at)
		RETURNING id`
	id, err := insertReturningID(ctx, repo.getExec(exec), q, toExpedienteRow(e))
	if err != nil {
		return expediente.Expediente{}, errors.Wrap(err, "inserting expediente")
	}
	e.ID = id
	return e, nil
}

func (repo expedienteRepository) QueryExpedientes(ctx context.Context, filter *expediente.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]expediente.Expediente, int, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	if filter != nil {
		w.search(filter.Search, "numero_expediente", "remitente", "asunto", "numero_documento")
		if filter.TipoAsunto != "" {
			w.add("tipo_asunto = ?", filter.TipoAsunto)
		}
		if filter.Vinculado != nil {
			if *filter.Vinculado {
				w.add("pago_docente_id IS NOT NULL OR devolucion_id IS NOT NULL")
			} else {
				w.add("pago_docente_id IS NULL AND devolucion_id IS NULL")
			}
		}
		if !filter.FechaDesde.IsZero() {
			w.add("fecha_ingreso >= ?", filter.FechaDesde.Time)
		}
		if !filter.FechaHasta.IsZero() {
			w.add("fecha_ingreso <= ?", filter.FechaHasta.Time)
		}
	}

	var rows []expedienteRow
	total, err := queryPage(ctx, repo.getExec(exec), &rows, expedienteColumns, "expediente", w, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying expedientes")
	}
	exps := make([]expediente.Expediente, 0, len(rows))
	for _, r := range rows {
		exps = append(exps, r.model())
	}
	return exps, total, nil
}

func (repo expedienteRepository) GetExpediente(ctx context.Context, id int64, exec ...core.DBExecutor) (expediente.Expediente, error) {
	var r expedienteRow
	q := `SELECT ` + expedienteColumns + ` FROM expediente WHERE id = $1 AND deleted_at IS NULL`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &r, q, id); err != nil {
		return expediente.Expediente{}, trapNoRowsErr(err, expediente.ErrNotFound, "finding expediente")
	}
	return r.model(), nil
}

func (repo expedienteRepository) UpdateExpediente(ctx context.Context, e expediente.Expediente, exec ...core.DBExecutor) (expediente.Expediente, error) {
	q := `UPDATE expediente SET numero_expediente = :numero_expediente, fecha_ingreso = :fecha_ingreso,
		remitente = :remitente, asunto = :asunto, tipo_asunto = :tipo_asunto, tipo_documento = :tipo_documento,
		numero_documento = :numero_documento, docente_id = :docente_id, curso_id = :curso_id, periodo = :periodo,
		mes = :mes, anio = :anio, dni_solicitante = :dni_solicitante, programa_id = :programa_id,
		pago_docente_id = :pago_docente_id, devolucion_id = :devolucion_id, archivo_path = :archivo_path,
		archivo_nombre = :archivo_nombre, observaciones = :observaciones, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL`
	if err := updateNamed(ctx, repo.getExec(exec), q, toExpedienteRow(e), expediente.ErrNotFound); err != nil {
		return expediente.Expediente{}, errors.Wrap(err, "updating expediente")
	}
	return e, nil
}

func (repo expedienteRepository) SoftDeleteExpediente(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error {
	return softDelete(ctx, repo.getExec(exec), "expediente", id, at, expediente.ErrNotFound)
}

func (repo expedienteRepository) ClearPagoLinks(ctx context.Context, pagoID int64, at time.Time, exec ...core.DBExecutor) (int, error) {
	return clearExpedienteLink(ctx, repo.getExec(exec), "pago_docente_id", pagoID, at)
}

func (repo expedienteRepository) ClearDevolucionLinks(ctx context.Context, devolucionID int64, at time.Time, exec ...core.DBExecutor) (int, error) {
	return clearExpedienteLink(ctx, repo.getExec(exec), "devolucion_id", devolucionID, at)
}

func clearExpedienteLink(ctx context.Context, exec core.DBExecutor, column string, id int64, at time.Time) (int, error) {
	res, err := exec.ExecContext(ctx,
		"UPDATE expediente SET "+column+" = NULL, updated_at = $1 WHERE "+column+" = $2 AND deleted_at IS NULL",
		at.UTC(), id)
	if err != nil {
		return 0, errors.Wrapf(err, "clearing expediente %s", column)
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrapf(err, "clearing expediente %s", column)
}
