package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var docenteCols = []string{
	"id", "nombres", "apellido_paterno", "apellido_materno", "dni", "ruc", "email", "telefono", "tipo_docente",
	"categoria", "grado_academico", "especialidad", "banco", "cuenta_bancaria", "suspension_retencion",
	"created_at", "updated_at", "deleted_at",
}

func TestDocenteRepository_CreateDocente(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocenteRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO docente .* RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	d, err := repo.CreateDocente(context.Background(), docente.Docente{
		Nombres:         "Ana",
		ApellidoPaterno: "Torres",
		DNI:             "12345678",
		TipoDocente:     docente.TipoInterno,
		Categoria:       docente.CategoriaRegular,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), d.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocenteRepository_GetDocente(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocenteRepository(db)
	now := time.Now().UTC()
	q := regexp.QuoteMeta("FROM docente WHERE id = $1 AND deleted_at IS NULL")

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs(int64(3)).WillReturnRows(
			sqlmock.NewRows(docenteCols).AddRow(
				3, "Luis", "Quispe", "Mamani", "87654321", nil, "luis@unprg.edu.pe", nil, "externo",
				"enfermeria", nil, nil, nil, nil, true, now, now, nil))

		d, err := repo.GetDocente(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "Quispe Mamani, Luis", d.NombreCompleto())
		assert.Equal(t, "luis@unprg.edu.pe", d.Email)
		assert.Empty(t, d.RUC)
		assert.True(t, d.IsEnfermeria())
		assert.True(t, d.SuspensionRetencion)
		assert.Nil(t, d.DeletedAt)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(q).WithArgs(int64(99)).WillReturnRows(sqlmock.NewRows(docenteCols))

		_, err := repo.GetDocente(context.Background(), 99)
		assert.Equal(t, docente.ErrNotFound, errors.Cause(err))
		assert.True(t, core.IsNotFound(err))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocenteRepository_QueryDocentes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocenteRepository(db)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM docente WHERE (deleted_at IS NULL) AND (nombres ILIKE $1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(16))
	mock.ExpectQuery(`SELECT .* FROM docente WHERE .* ORDER BY apellido_paterno ASC LIMIT 15 OFFSET 15`).
		WillReturnRows(sqlmock.NewRows(docenteCols).AddRow(
			16, "Rosa", "Zapata", "", "11112222", nil, nil, nil, "interno", "regular",
			nil, nil, nil, nil, false, now, now, nil))

	docentes, total, err := repo.QueryDocentes(
		context.Background(),
		&docente.QueryFilter{Search: "za", TipoDocente: docente.TipoInterno},
		core.PageRequest{Page: 2, PerPage: 15},
		[]core.DBOrdering{{Field: "apellido_paterno", Ascending: true}},
	)
	require.NoError(t, err)
	assert.Equal(t, 16, total)
	require.Len(t, docentes, 1)
	assert.Equal(t, "Rosa", docentes[0].Nombres)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocenteRepository_SoftDeleteDocente(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDocenteRepository(db)
	q := regexp.QuoteMeta("UPDATE docente SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL")

	mock.ExpectExec(q).WithArgs(sqlmock.AnyArg(), int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SoftDeleteDocente(context.Background(), 4, time.Now()))

	mock.ExpectExec(q).WithArgs(sqlmock.AnyArg(), int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.Equal(t, docente.ErrNotFound, repo.SoftDeleteDocente(context.Background(), 5, time.Now()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
