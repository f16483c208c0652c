package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
)

const docenteColumns = `id, nombres, apellido_paterno, apellido_materno, dni, ruc, email, telefono, tipo_docente,
	categoria, grado_academico, especialidad, banco, cuenta_bancaria, suspension_retencion, created_at, updated_at, deleted_at`

type docenteRow struct {
	ID                  int64       `db:"id"`
	Nombres             string      `db:"nombres"`
	ApellidoPaterno     string      `db:"apellido_paterno"`
	ApellidoMaterno     string      `db:"apellido_materno"`
	DNI                 string      `db:"dni"`
	RUC                 null.String `db:"ruc"`
	Email               null.String `db:"email"`
	Telefono            null.String `db:"telefono"`
	TipoDocente         string      `db:"tipo_docente"`
	Categoria           string      `db:"categoria"`
	GradoAcademico      null.String `db:"grado_academico"`
	Especialidad        null.String `db:"especialidad"`
	Banco               null.String `db:"banco"`
	CuentaBancaria      null.String `db:"cuenta_bancaria"`
	SuspensionRetencion bool        `db:"suspension_retencion"`
	CreatedAt           time.Time   `db:"created_at"`
	UpdatedAt           time.Time   `db:"updated_at"`
	DeletedAt           null.Time   `db:"deleted_at"`
}

func toDocenteRow(d docente.Docente) docenteRow {
	return docenteRow{
		ID:                  d.ID,
		Nombres:             d.Nombres,
		ApellidoPaterno:     d.ApellidoPaterno,
		ApellidoMaterno:     d.ApellidoMaterno,
		DNI:                 d.DNI,
		RUC:                 nullString(d.RUC),
		Email:               nullString(d.Email),
		Telefono:            nullString(d.Telefono),
		TipoDocente:         d.TipoDocente,
		Categoria:           d.Categoria,
		GradoAcademico:      nullString(d.GradoAcademico),
		Especialidad:        nullString(d.Especialidad),
		Banco:               nullString(d.Banco),
		CuentaBancaria:      nullString(d.CuentaBancaria),
		SuspensionRetencion: d.SuspensionRetencion,
		CreatedAt:           d.CreatedAt.UTC(),
		UpdatedAt:           d.UpdatedAt.UTC(),
		DeletedAt:           nullTimePtr(d.DeletedAt),
	}
}

func (r docenteRow) model() docente.Docente {
	return docente.Docente{
		ID:                  r.ID,
		Nombres:             r.Nombres,
		ApellidoPaterno:     r.ApellidoPaterno,
		ApellidoMaterno:     r.ApellidoMaterno,
		DNI:                 r.DNI,
		RUC:                 r.RUC.String,
		Email:               r.Email.String,
		Telefono:            r.Telefono.String,
		TipoDocente:         r.TipoDocente,
		Categoria:           r.Categoria,
		GradoAcademico:      r.GradoAcademico.String,
		Especialidad:        r.Especialidad.String,
		Banco:               r.Banco.String,
		CuentaBancaria:      r.CuentaBancaria.String,
		SuspensionRetencion: r.SuspensionRetencion,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
		DeletedAt:           r.DeletedAt.Ptr(),
	}
}

type docenteRepository struct {
	repository
}

var _ docente.Repository = (*docenteRepository)(nil)

func NewDocenteRepository(exec core.DBExecutor) *docenteRepository {
	return &docenteRepository{repository{exec: exec}}
}

func (repo docenteRepository) DNIExists(ctx context.Context, dni string, excludedID int64, exec ...core.DBExecutor) (bool, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	w.add("dni = ?", dni)
	if excludedID != 0 {
		w.add("id <> ?", excludedID)
	}
	ok, err := exists(ctx, repo.getExec(exec), "docente", w)
	return ok, errors.Wrap(err, "checking docente DNI")
}

func (repo docenteRepository) CreateDocente(ctx context.Context, d docente.Docente, exec ...core.DBExecutor) (docente.Docente, error) {
	q := `INSERT INTO docente (nombres, apellido_paterno, apellido_materno, dni, ruc, email, telefono, tipo_docente,
		categoria, grado_academico, especialidad, banco, cuenta_bancaria, suspension_retencion, created_at, updated_at)
		VALUES (:nombres, :apellido_paterno, :apellido_materno, :dni, :ruc, :email, :telefono, :tipo_docente,
		:categoria, :grado_academico, :especialidad, :banco, :cuenta_bancaria, :suspension_retencion, :created_at, :updated_at)
		RETURNING id`
	id, err := insertReturningID(ctx, repo.getExec(exec), q, toDocenteRow(d))
	if err != nil {
		return docente.Docente{}, errors.Wrap(err, "inserting docente")
	}
	d.ID = id
	return d, nil
}

func (repo docenteRepository) QueryDocentes(ctx context.Context, filter *docente.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]docente.Docente, int, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	if filter != nil {
		w.search(filter.Search, "nombres", "apellido_paterno", "apellido_materno", "dni", "email",
			"CONCAT_WS(' ', nombres, apellido_paterno, apellido_materno)")
		if filter.TipoDocente != "" {
			w.add("tipo_docente = ?", filter.TipoDocente)
		}
		if filter.Categoria != "" {
			w.add("categoria = ?", filter.Categoria)
		}
	}

	var rows []docenteRow
	total, err := queryPage(ctx, repo.getExec(exec), &rows, docenteColumns, "docente", w, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying docentes")
	}
	docentes := make([]docente.Docente, 0, len(rows))
	for _, r := range rows {
		docentes = append(docentes, r.model())
	}
	return docentes, total, nil
}

func (repo docenteRepository) GetDocente(ctx context.Context, id int64, exec ...core.DBExecutor) (docente.Docente, error) {
	var r docenteRow
	q := `SELECT ` + docenteColumns + ` FROM docente WHERE id = $1 AND deleted_at IS NULL`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &r, q, id); err != nil {
		return docente.Docente{}, trapNoRowsErr(err, docente.ErrNotFound, "finding docente")
	}
	return r.model(), nil
}

func (repo docenteRepository) GetDocentesByID(ctx context.Context, ids []int64, exec ...core.DBExecutor) (map[int64]docente.Docente, error) {
	q, args, err := sqlx.In(`SELECT `+docenteColumns+` FROM docente WHERE id IN (?) AND deleted_at IS NULL`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building docentes query")
	}
	var rows []docenteRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return nil, errors.Wrap(err, "finding docentes")
	}
	docentes := make(map[int64]docente.Docente, len(rows))
	for _, r := range rows {
		docentes[r.ID] = r.model()
	}
	return docentes, nil
}

func (repo docenteRepository) UpdateDocente(ctx context.Context, d docente.Docente, exec ...core.DBExecutor) (docente.Docente, error) {
	q := `UPDATE docente SET nombres = :nombres, apellido_paterno = :apellido_paterno, apellido_materno = :apellido_materno,
		dni = :dni, ruc = :ruc, email = :email, telefono = :telefono, tipo_docente = :tipo_docente, categoria = :categoria,
		grado_academico = :grado_academico, especialidad = :especialidad, banco = :banco, cuenta_bancaria = :cuenta_bancaria,
		suspension_retencion = :suspension_retencion, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL`
	if err := updateNamed(ctx, repo.getExec(exec), q, toDocenteRow(d), docente.ErrNotFound); err != nil {
		return docente.Docente{}, errors.Wrap(err, "updating docente")
	}
	return d, nil
}

func (repo docenteRepository) SoftDeleteDocente(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error {
	return softDelete(ctx, repo.getExec(exec), "docente", id, at, docente.ErrNotFound)
}
