package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
)

const (
	devolucionColumns = `d.id, d.nombres, d.apellidos, d.dni, d.email, d.telefono, d.programa_id, d.proceso_admision,
	d.monto, d.motivo, d.banco, d.numero_cuenta, d.estado, d.numero_expediente, d.numero_resolucion, d.observaciones,
	d.created_at, d.updated_at, d.deleted_at, p.nombre AS programa_nombre`
	devolucionFrom = `devolucion d JOIN programa p ON p.id = d.programa_id`
)

type devolucionRow struct {
	ID               int64       `db:"id"`
	Nombres          string      `db:"nombres"`
	Apellidos        string      `db:"apellidos"`
	DNI              string      `db:"dni"`
	Email            null.String `db:"email"`
	Telefono         null.String `db:"telefono"`
	ProgramaID       int64       `db:"programa_id"`
	ProcesoAdmision  string      `db:"proceso_admision"`
	Monto            float64     `db:"monto"`
	Motivo           string      `db:"motivo"`
	Banco            null.String `db:"banco"`
	NumeroCuenta     null.String `db:"numero_cuenta"`
	Estado           string      `db:"estado"`
	NumeroExpediente null.String `db:"numero_expediente"`
	NumeroResolucion null.String `db:"numero_resolucion"`
	Observaciones    null.String `db:"observaciones"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
	DeletedAt        null.Time   `db:"deleted_at"`
	ProgramaNombre   string      `db:"programa_nombre"`
}

func toDevolucionRow(d devolucion.Devolucion) devolucionRow {
	return devolucionRow{
		ID:               d.ID,
		Nombres:          d.Nombres,
		Apellidos:        d.Apellidos,
		DNI:              d.DNI,
		Email:            nullString(d.Email),
		Telefono:         nullString(d.Telefono),
		ProgramaID:       d.ProgramaID,
		ProcesoAdmision:  d.ProcesoAdmision,
		Monto:            d.Monto,
		Motivo:           d.Motivo,
		Banco:            nullString(d.Banco),
		NumeroCuenta:     nullString(d.NumeroCuenta),
		Estado:           d.Estado,
		NumeroExpediente: nullString(d.NumeroExpediente),
		NumeroResolucion: nullString(d.NumeroResolucion),
		Observaciones:    nullString(d.Observaciones),
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
		DeletedAt:        nullTimePtr(d.DeletedAt),
	}
}

func (r devolucionRow) model() devolucion.Devolucion {
	return devolucion.Devolucion{
		ID:               r.ID,
		Nombres:          r.Nombres,
		Apellidos:        r.Apellidos,
		DNI:              r.DNI,
		Email:            r.Email.String,
		Telefono:         r.Telefono.String,
		ProgramaID:       r.ProgramaID,
		ProcesoAdmision:  r.ProcesoAdmision,
		Monto:            r.Monto,
		Motivo:           r.Motivo,
		Banco:            r.Banco.String,
		NumeroCuenta:     r.NumeroCuenta.String,
		Estado:           r.Estado,
		NumeroExpediente: r.NumeroExpediente.String,
		NumeroResolucion: r.NumeroResolucion.String,
		Observaciones:    r.Observaciones.String,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		DeletedAt:        r.DeletedAt.Ptr(),
		ProgramaNombre:   r.ProgramaNombre,
	}
}

func devolucionModels(rows []devolucionRow) []devolucion.Devolucion {
	devs := make([]devolucion.Devolucion, 0, len(rows))
	for _, r := range rows {
		devs = append(devs, r.model())
	}
	return devs
}

type devolucionRepository struct {
	repository
}

var _ devolucion.Repository = (*devolucionRepository)(nil)

func NewDevolucionRepository(exec core.DBExecutor) *devolucionRepository {
	return &devolucionRepository{repository{exec: exec}}
}

func (repo devolucionRepository) CreateDevolucion(ctx context.Context, d devolucion.Devolucion, exec ...core.DBExecutor) (devolucion.Devolucion, error) {
	q := `INSERT INTO devolucion (nombres, apellidos, dni, email, telefono, programa_id, proceso_admision, monto, motivo,
		banco, numero_cuenta, estado, numero_expediente, numero_resolucion, observaciones, created_at, updated_at)
		VALUES (:nombres, :apellidos, :dni, :email, :telefono, :programa_id, :proceso_admision, :monto, :motivo,
		:banco, :numero_cuenta, :estado, :numero_expediente, :numero_resolucion, :observaciones, :created_at, :updated_at)
		RETURNING id`
	id, err := insertReturningID(ctx, repo.getExec(exec), q, toDevolucionRow(d))
	if err != nil {
		return devolucion.Devolucion{}, errors.Wrap(err, "inserting devolucion")
	}
	d.ID = id
	return d, nil
}

func (repo devolucionRepository) QueryDevoluciones(ctx context.Context, filter *devolucion.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]devolucion.Devolucion, int, error) {
	w := &where{}
	w.add("d.deleted_at IS NULL")
	if filter != nil {
		w.search(filter.Search, "CONCAT_WS(' ', d.nombres, d.apellidos)", "d.dni", "d.numero_expediente", "d.numero_resolucion")
		if filter.ProgramaID != 0 {
			w.add("d.programa_id = ?", filter.ProgramaID)
		}
		if filter.Estado != "" {
			w.add("d.estado = ?", filter.Estado)
		}
		if filter.Proceso != "" {
			w.add("d.proceso_admision = ?", filter.Proceso)
		}
	}

	var rows []devolucionRow
	total, err := queryPage(ctx, repo.getExec(exec), &rows, devolucionColumns, devolucionFrom, w, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying devoluciones")
	}
	return devolucionModels(rows), total, nil
}

func (repo devolucionRepository) GetDevolucion(ctx context.Context, id int64, exec ...core.DBExecutor) (devolucion.Devolucion, error) {
	var r devolucionRow
	q := `SELECT ` + devolucionColumns + ` FROM ` + devolucionFrom + ` WHERE d.id = $1 AND d.deleted_at IS NULL`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &r, q, id); err != nil {
		return devolucion.Devolucion{}, trapNoRowsErr(err, devolucion.ErrNotFound, "finding devolucion")
	}
	return r.model(), nil
}

func (repo devolucionRepository) FindByDNI(ctx context.Context, dni string, programaID int64, estados []string, exec ...core.DBExecutor) ([]devolucion.Devolucion, error) {
	w := &where{}
	w.add("d.deleted_at IS NULL")
	w.add("d.dni = ?", dni)
	if programaID != 0 {
		w.add("d.programa_id = ?", programaID)
	}
	if len(estados) > 0 {
		w.add("d.estado = ANY (?)", pq.StringArray(estados))
	}

	var rows []devolucionRow
	q := sqlx.Rebind(sqlx.DOLLAR, `SELECT `+devolucionColumns+` FROM `+devolucionFrom+w.String()+` ORDER BY d.created_at DESC, d.id DESC`)
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "finding devoluciones by DNI")
	}
	return devolucionModels(rows), nil
}

func (repo devolucionRepository) UpdateDevolucion(ctx context.Context, d devolucion.Devolucion, exec ...core.DBExecutor) (devolucion.Devolucion, error) {
	q := `UPDATE devolucion SET nombres = :nombres, apellidos = :apellidos, dni = :dni, email = :email,
		telefono = :telefono, programa_id = :programa_id, proceso_admision = :proceso_admision, monto = :monto,
		motivo = :motivo, banco = :banco, numero_cuenta = :numero_cuenta, estado = :estado,
		numero_expediente = :numero_expediente, numero_resolucion = :numero_resolucion, observaciones = :observaciones,
		updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL`
	if err := updateNamed(ctx, repo.getExec(exec), q, toDevolucionRow(d), devolucion.ErrNotFound); err != nil {
		return devolucion.Devolucion{}, errors.Wrap(err, "updating devolucion")
	}
	return d, nil
}

func (repo devolucionRepository) ClearNumeroExpediente(ctx context.Context, numero string, exec ...core.DBExecutor) (int, error) {
	return clearNumeroExpediente(ctx, repo.getExec(exec), "devolucion", numero)
}

func (repo devolucionRepository) SoftDeleteDevolucion(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error {
	return softDelete(ctx, repo.getExec(exec), "devolucion", id, at, devolucion.ErrNotFound)
}
