package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/coordinador"
)

const coordinadorColumns = `id, nombres, apellidos, dni, email, telefono, tipo, programa_id, activo, created_at, updated_at, deleted_at`

type coordinadorRow struct {
	ID         int64       `db:"id"`
	Nombres    string      `db:"nombres"`
	Apellidos  string      `db:"apellidos"`
	DNI        string      `db:"dni"`
	Email      null.String `db:"email"`
	Telefono   null.String `db:"telefono"`
	Tipo       string      `db:"tipo"`
	ProgramaID int64       `db:"programa_id"`
	Activo     bool        `db:"activo"`
	CreatedAt  time.Time   `db:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at"`
	DeletedAt  null.Time   `db:"deleted_at"`
}

func toCoordinadorRow(c coordinador.Coordinador) coordinadorRow {
	return coordinadorRow{
		ID:         c.ID,
		Nombres:    c.Nombres,
		Apellidos:  c.Apellidos,
		DNI:        c.DNI,
		Email:      nullString(c.Email),
		Telefono:   nullString(c.Telefono),
		Tipo:       c.Tipo,
		ProgramaID: c.ProgramaID,
		Activo:     c.Activo,
		CreatedAt:  c.CreatedAt.UTC(),
		UpdatedAt:  c.UpdatedAt.UTC(),
		DeletedAt:  nullTimePtr(c.DeletedAt),
	}
}

func (r coordinadorRow) model() coordinador.Coordinador {
	return coordinador.Coordinador{
		ID:         r.ID,
		Nombres:    r.Nombres,
		Apellidos:  r.Apellidos,
		DNI:        r.DNI,
		Email:      r.Email.String,
		Telefono:   r.Telefono.String,
		Tipo:       r.Tipo,
		ProgramaID: r.ProgramaID,
		Activo:     r.Activo,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		DeletedAt:  r.DeletedAt.Ptr(),
	}
}

type coordinadorRepository struct {
	repository
}

var _ coordinador.Repository = (*coordinadorRepository)(nil)

func NewCoordinadorRepository(exec core.DBExecutor) *coordinadorRepository {
	return &coordinadorRepository{repository{exec: exec}}
}

func (repo coordinadorRepository) DNIExists(ctx context.Context, dni string, excludedID int64, exec ...core.DBExecutor) (bool, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	w.add("dni = ?", dni)
	if excludedID != 0 {
		w.add("id <> ?", excludedID)
	}
	ok, err := exists(ctx, repo.getExec(exec), "coordinador", w)
	return ok, errors.Wrap(err, "checking coordinador DNI")
}

func (repo coordinadorRepository) CreateCoordinador(ctx context.Context, c coordinador.Coordinador, exec ...core.DBExecutor) (coordinador.Coordinador, error) {
	q := `INSERT INTO coordinador (nombres, apellidos, dni, email, telefono, tipo, programa_id, activo, created_at, updated_at)
		VALUES (:nombres, :apellidos, :dni, :email, :telefono, :tipo, :programa_id, :activo, :created_at, :updated_at)
		RETURNING id`
	id, err := insertReturningID(ctx, repo.getExec(exec), q, toCoordinadorRow(c))
	if err != nil {
		return coordinador.Coordinador{}, errors.Wrap(err, "inserting coordinador")
	}
	c.ID = id
	return c, nil
}

func (repo coordinadorRepository) QueryCoordinadores(ctx context.Context, filter *coordinador.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]coordinador.Coordinador, int, error) {
	w := &where{}
	w.add("deleted_at IS NULL")
	if filter != nil {
		w.search(filter.Search, "nombres", "apellidos", "dni", "email")
		if filter.ProgramaID != 0 {
			w.add("programa_id = ?", filter.ProgramaID)
		}
		if filter.Activo != nil {
			w.add("activo = ?", *filter.Activo)
		}
	}

	var rows []coordinadorRow
	total, err := queryPage(ctx, repo.getExec(exec), &rows, coordinadorColumns, "coordinador", w, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying coordinadores")
	}
	coords := make([]coordinador.Coordinador, 0, len(rows))
	for _, r := range rows {
		coords = append(coords, r.model())
	}
	return coords, total, nil
}

func (repo coordinadorRepository) GetCoordinador(ctx context.Context, id int64, exec ...core.DBExecutor) (coordinador.Coordinador, error) {
	var r coordinadorRow
	q := `SELECT ` + coordinadorColumns + ` FROM coordinador WHERE id = $1 AND deleted_at IS NULL`
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &r, q, id); err != nil {
		return coordinador.Coordinador{}, trapNoRowsErr(err, coordinador.ErrNotFound, "finding coordinador")
	}
	return r.model(), nil
}

func (repo coordinadorRepository) UpdateCoordinador(ctx context.Context, c coordinador.Coordinador, exec ...core.DBExecutor) (coordinador.Coordinador, error) {
	q := `UPDATE coordinador SET nombres = :nombres, apellidos = :apellidos, dni = :dni, email = :email,
		telefono = :telefono, tipo = :tipo, programa_id = :programa_id, activo = :activo, updated_at = :updated_at
		WHERE id = :id AND deleted_at IS NULL`
	if err := updateNamed(ctx, repo.getExec(exec), q, toCoordinadorRow(c), coordinador.ErrNotFound); err != nil {
		return coordinador.Coordinador{}, errors.Wrap(err, "updating coordinador")
	}
	return c, nil
}

func (repo coordinadorRepository) SoftDeleteCoordinador(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error {
	return softDelete(ctx, repo.getExec(exec), "coordinador", id, at, coordinador.ErrNotFound)
}
