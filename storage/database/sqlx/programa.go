package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
)

const (
	programaColumns = `id, nombre, codigo, grado, mencion, activo, created_at, updated_at, deleted_at`
	semestreColumns = `id, programa_id, numero, nombre, created_at, updated_at, deleted_at`
)

type programaRow struct {
	ID        int64       `db:"id"`
	Nombre    string      `db:"nombre"`
	Codigo    string      `db:"codigo"`
	Grado     string      `db:"grado"`
	Mencion   null.String `db:"mencion"`
	Activo    bool        `db:"activo"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
	DeletedAt null.Time   `db:"deleted_at"`
}

func toProgramaRow(p programa.Programa) programaRow {
	return programaRow{
		ID:        p.ID,
		Nombre:    p.Nombre,
		Codigo:    p.Codigo,
		Grado:     p.Grado,
		Mencion:   nullString(p.Mencion),
		Activo:    p.Activo,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
		DeletedAt: nullTimePtr(p.DeletedAt),
	}
}

func (r programaRow) model() programa.Programa {
	return programa.Programa{
		ID:        r.ID,
		Nombre:    r.Nombre,
		Codigo:    r.Codigo,
		Grado:     r.Grado,
		Mencion:   r.Mencion.String,
		Activo:    r.Activo,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		DeletedAt: r.DeletedAt.Ptr(),
	}
}

type semestreRow struct {
	ID         int64     `db:"id"`
	ProgramaID int64     `db:"programa_id"`
	Numero     int       `db:"numero"`
	Nombre     string    `db:"nombre"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	DeletedAt  null.Time `db:"deleted_at"`
}

func toSemestreRow(s programa.Semestre) semestreRow {
	return semestreRow{
		ID:         s.ID,
		ProgramaID: s.ProgramaID,
		Numero:     s.Numero,
		Nombre:     s.Nombre,
		CreatedAt:  s.CreatedAt.UTC(),
		UpdatedAt:  s.UpdatedAt.UTC(),
		DeletedAt:  nullTimePtr(s.DeletedAt),
	}
}

func (r semestreRow) model() programa.Semestre {
	return programa.Semestre{
		ID:         r.ID,
		ProgramaID: r.ProgramaID,
		Numero:     r.Numero,
		Nombre:     r.Nombre,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		DeletedAt:  r.DeletedAt.Ptr(),
	}
}

type programaRepository struct {
	repository
}

var _ programa.Repository = (*programaRepository)(nil)

func NewProgramaRepository(exec core.DBExecutor) *programaRepository {
	return &programaRepository{repository{exec: exec}}
}

func (repo programaRepository) CodigoExists(ctx context.Context, codigo string, excludedID int64, exec ...core.DBExecutor) (bool, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	w.add("codigo = ?", codigo)
	if excludedID != 0 {
		w.add("id <> ?", excludedID)
	}
	ok, err := exists(ctx, repo.getExec(exec), "programa", w)
	return ok, errors.Wrap(err, "checking programa codigo")
}

func (repo programaRepository) CreatePrograma(ctx context.Context, p programa.Programa, exec ...core.DBExecutor) (programa.Programa, error) {
	q := `INSERT INTO programa (nombre, codigo, grado, mencion, activo, created_at, updated_at)
		VALUES (:nombre, :codigo, :grado, :mencion, :activo, :created_at, :updated_at) RETURNING id`
	id, err := insertReturningID(ctx, repo.getExec(exec), q, toProgramaRow(p))
	if err != nil {
		return programa.Programa{}, errors.Wrap(err, "inserting programa")
	}
	p.ID = id
	return p, nil
}

func (repo programaRepository) QueryProgramas(ctx context.Context, filter *programa.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]programa.Programa, int, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	if filter != nil {
		w.search(filter.Search, "nombre", "codigo", "mencion")
		if filter.Grado != "" {
			w.add("grado = ?", filter.Grado)
		}
		if filter.Activo != nil {
			w.add("activo = ?", *filter.Activo)
		}
	}

	var rows []programaRow
	total, err := queryPage(ctx, repo.getExec(exec), &rows, programaColumns, "programa", w, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying programas")
	}
	programas := make([]programa.Programa, 0, len(rows))
	for _, r := range rows {
		programas = append(programas, r.model())
	}
	return programas, total, nil
}

func (repo programaRepository) GetPrograma(ctx context.Context, id int64, exec ...core.DBExecutor) (programa.Programa, error) {
	var r programaRow
	q := `SELECT ` + programaColumns + ` FROM programa WHERE id = $1 AND deleted_at IS NULL`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &r, q, id); err != nil {
		return programa.Programa{}, trapNoRowsErr(err, programa.ErrNotFound, "finding programa")
	}
	return r.model(), nil
}

func (repo programaRepository) UpdatePrograma(ctx context.Context, p programa.Programa, exec ...core.DBExecutor) (programa.Programa, error) {
	q := `UPDATE programa SET nombre = :nombre, codigo = :codigo, grado = :grado, mencion = :mencion, activo = :activo,
		updated_at = :updated_at WHERE id = :id AND deleted_at IS NULL`
	if err := updateNamed(ctx, repo.getExec(exec), q, toProgramaRow(p), programa.ErrNotFound); err != nil {
		return programa.Programa{}, errors.Wrap(err, "updating programa")
	}
	return p, nil
}

func (repo programaRepository) SoftDeletePrograma(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error {
	return softDelete(ctx, repo.getExec(exec), "programa", id, at, programa.ErrNotFound)
}

func (repo programaRepository) SemestreExists(ctx context.Context, programaID int64, numero int, excludedID int64, exec ...core.DBExecutor) (bool, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	w.add("programa_id = ? AND numero = ?", programaID, numero)
	if excludedID != 0 {
		w.add("id <> ?", excludedID)
	}
	ok, err := exists(ctx, repo.getExec(exec), "semestre", w)
	return ok, errors.Wrap(err, "checking semestre numero")
}

func (repo programaRepository) CreateSemestre(ctx context.Context, s programa.Semestre, exec ...core.DBExecutor) (programa.Semestre, error) {
	q := `INSERT INTO semestre (programa_id, numero, nombre, created_at, updated_at)
		VALUES (:programa_id, :numero, :nombre, :created_at, :updated_at) RETURNING id`
	id, err := insertReturningID(ctx, repo.getExec(exec), q, toSemestreRow(s))
	if err != nil {
		return programa.Semestre{}, errors.Wrap(err, "inserting semestre")
	}
	s.ID = id
	return s, nil
}

func (repo programaRepository) QuerySemestres(ctx context.Context, programaID int64, exec ...core.DBExecutor) ([]programa.Semestre, error) {
	var rows []semestreRow
	q := `SELECT ` + semestreColumns + ` FROM semestre WHERE programa_id = $1 AND deleted_at IS NULL ORDER BY numero`
	if err := sqlx.SelectContext(ctx, repo.getExec(exec), &rows, q, programaID); err != nil {
		return nil, errors.Wrap(err, "querying semestres")
	}
	semestres := make([]programa.Semestre, 0, len(rows))
	for _, r := range rows {
		semestres = append(semestres, r.model())
	}
	return semestres, nil
}

func (repo programaRepository) GetSemestre(ctx context.Context, id int64, exec ...core.DBExecutor) (programa.Semestre, error) {
	var r semestreRow
	q := `SELECT ` + semestreColumns + ` FROM semestre WHERE id = $1 AND deleted_at IS NULL`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &r, q, id); err != nil {
		return programa.Semestre{}, trapNoRowsErr(err, programa.ErrSemestreNotFound, "finding semestre")
	}
	return r.model(), nil
}

func (repo programaRepository) UpdateSemestre(ctx context.Context, s programa.Semestre, exec ...core.DBExecutor) (programa.Semestre, error) {
	q := `UPDATE semestre SET programa_id = :programa_id, numero = :numero, nombre = :nombre, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL`
	if err := updateNamed(ctx, repo.getExec(exec), q, toSemestreRow(s), programa.ErrSemestreNotFound); err != nil {
		return programa.Semestre{}, errors.Wrap(err, "updating semestre")
	}
	return s, nil
}

func (repo programaRepository) SoftDeleteSemestre(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error {
	return softDelete(ctx, repo.getExec(exec), "semestre", id, at, programa.ErrSemestreNotFound)
}
