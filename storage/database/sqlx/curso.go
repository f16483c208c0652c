package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
)

const (
	cursoColumns = `c.id, c.codigo, c.nombre, c.creditos, c.horas, c.semestre_id, c.created_at, c.updated_at, c.deleted_at,
	s.numero AS semestre_numero, p.id AS programa_id, p.nombre AS programa_nombre`
	cursoFrom = `curso c JOIN semestre s ON s.id = c.semestre_id JOIN programa p ON p.id = s.programa_id`
)

type cursoRow struct {
	ID             int64     `db:"id"`
	Codigo         string    `db:"codigo"`
	Nombre         string    `db:"nombre"`
	Creditos       int       `db:"creditos"`
	Horas          int       `db:"horas"`
	SemestreID     int64     `db:"semestre_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	DeletedAt      null.Time `db:"deleted_at"`
	SemestreNumero int       `db:"semestre_numero"`
	ProgramaID     int64     `db:"programa_id"`
	ProgramaNombre string    `db:"programa_nombre"`
}

func toCursoRow(c curso.Curso) cursoRow {
	return cursoRow{
		ID:         c.ID,
		Codigo:     c.Codigo,
		Nombre:     c.Nombre,
		Creditos:   c.Creditos,
		Horas:      c.Horas,
		SemestreID: c.SemestreID,
		CreatedAt:  c.CreatedAt.UTC(),
		UpdatedAt:  c.UpdatedAt.UTC(),
		DeletedAt:  nullTimePtr(c.DeletedAt),
	}
}

func (r cursoRow) model() curso.Curso {
	return curso.Curso{
		ID:             r.ID,
		Codigo:         r.Codigo,
		Nombre:         r.Nombre,
		Creditos:       r.Creditos,
		Horas:          r.Horas,
		SemestreID:     r.SemestreID,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
		DeletedAt:      r.DeletedAt.Ptr(),
		SemestreNumero: r.SemestreNumero,
		ProgramaID:     r.ProgramaID,
		ProgramaNombre: r.ProgramaNombre,
	}
}

type cursoRepository struct {
	repository
}

var _ curso.Repository = (*cursoRepository)(nil)

func NewCursoRepository(exec core.DBExecutor) *cursoRepository {
	return &cursoRepository{repository{exec: exec}}
}

func (repo cursoRepository) CodigoExists(ctx context.Context, codigo string, excludedID int64, exec ...core.DBExecutor) (bool, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	w.add("codigo = ?", codigo)
	if excludedID != 0 {
		w.add("id <> ?", excludedID)
	}
	ok, err := exists(ctx, repo.getExec(exec), "curso", w)
	return ok, errors.Wrap(err, "checking curso codigo")
}

func (repo cursoRepository) CreateCurso(ctx context.Context, c curso.Curso, exec ...core.DBExecutor) (curso.Curso, error) {
	q := `INSERT INTO curso (codigo, nombre, creditos, horas, semestre_id, created_at, updated_at)
		VALUES (:codigo, :nombre, :creditos, :horas, :semestre_id, :created_at, :updated_at) RETURNING id`
	id, err := insertReturningID(ctx, repo.getExec(exec), q, toCursoRow(c))
	if err != nil {
		return curso.Curso{}, errors.Wrap(err, "inserting curso")
	}
	c.ID = id
	return c, nil
}

func (repo cursoRepository) QueryCursos(ctx context.Context, filter *curso.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]curso.Curso, int, error) {
	w := &where{}
	w.add("c.deleted_at IS NULL")
	if filter != nil {
		w.search(filter.Search, "c.codigo", "c.nombre")
		if filter.SemestreID != 0 {
			w.add("c.semestre_id = ?", filter.SemestreID)
		}
		if filter.ProgramaID != 0 {
			w.add("s.programa_id = ?", filter.ProgramaID)
		}
	}

	var rows []cursoRow
	total, err := queryPage(ctx, repo.getExec(exec), &rows, cursoColumns, cursoFrom, w, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying cursos")
	}
	cursos := make([]curso.Curso, 0, len(rows))
	for _, r := range rows {
		cursos = append(cursos, r.model())
	}
	return cursos, total, nil
}

func (repo cursoRepository) GetCurso(ctx context.Context, id int64, exec ...core.DBExecutor) (curso.Curso, error) {
	var r cursoRow
	q := `SELECT ` + cursoColumns + ` FROM ` + cursoFrom + ` WHERE c.id = $1 AND c.deleted_at IS NULL`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &r, q, id); err != nil {
		return curso.Curso{}, trapNoRowsErr(err, curso.ErrNotFound, "finding curso")
	}
	return r.model(), nil
}

func (repo cursoRepository) GetCursosByID(ctx context.Context, ids []int64, exec ...core.DBExecutor) (map[int64]curso.Curso, error) {
	q, args, err := sqlx.In(`SELECT `+cursoColumns+` FROM `+cursoFrom+` WHERE c.id IN (?) AND c.deleted_at IS NULL`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building cursos query")
	}
	var rows []cursoRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return nil, errors.Wrap(err, "finding cursos")
	}
	cursos := make(map[int64]curso.Curso, len(rows))
	for _, r := range rows {
		cursos[r.ID] = r.model()
	}
	return cursos, nil
}

func (repo cursoRepository) UpdateCurso(ctx context.Context, c curso.Curso, exec ...core.DBExecutor) (curso.Curso, error) {
	q := `UPDATE curso SET codigo = :codigo, nombre = :nombre, creditos = :creditos, horas = :horas,
		semestre_id = :semestre_id, updated_at = :updated_at WHERE id = :id AND deleted_at IS NULL`
	if err := updateNamed(ctx, repo.getExec(exec), q, toCursoRow(c), curso.ErrNotFound); err != nil {
		return curso.Curso{}, errors.Wrap(err, "updating curso")
	}
	return c, nil
}

func (repo cursoRepository) SoftDeleteCurso(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error {
	return softDelete(ctx, repo.getExec(exec), "curso", id, at, curso.ErrNotFound)
}
