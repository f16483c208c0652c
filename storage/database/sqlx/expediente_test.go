package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
)

var expedienteCols = []string{
	"id", "numero_expediente", "fecha_ingreso", "remitente", "asunto", "tipo_asunto", "tipo_documento",
	"numero_documento", "docente_id", "curso_id", "periodo", "mes", "anio", "dni_solicitante", "programa_id",
	"pago_docente_id", "devolucion_id", "archivo_path", "archivo_nombre", "observaciones",
	"created_at", "updated_at", "deleted_at",
}

func TestExpedienteRepository_NumeroExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExpedienteRepository(db)

	t.Run("new expediente", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(
			"SELECT EXISTS (SELECT 1 FROM expediente WHERE (deleted_at IS NULL) AND (numero_expediente = $1))")).
			WithArgs("EXP-001").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := repo.NumeroExists(context.Background(), "EXP-001", 0)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("excluding itself", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("AND (id <> $2))")).
			WithArgs("EXP-001", int64(4)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := repo.NumeroExists(context.Background(), "EXP-001", 4)
		require.NoError(t, err)
		assert.False(t, ok)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpedienteRepository_QueryExpedientes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExpedienteRepository(db)
	now := time.Now().UTC()
	linked := true
	filter := &expediente.QueryFilter{Search: "fachse", Vinculado: &linked}
	ordering := []core.DBOrdering{{Field: "fecha_ingreso"}}
	search := "%fachse%"

	t.Run("empty count skips the select", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM expediente WHERE (deleted_at IS NULL)")).
			WithArgs(search, search, search, search).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exps, total, err := repo.QueryExpedientes(context.Background(), filter, core.PageRequest{Page: 1, PerPage: 10}, ordering)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, exps)
	})

	t.Run("second page", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM expediente")).
			WithArgs(search, search, search, search).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
		mock.ExpectQuery(`SELECT id, numero_expediente, .* FROM expediente WHERE .*\(pago_docente_id IS NOT NULL OR devolucion_id IS NOT NULL\) ORDER BY .* LIMIT 10 OFFSET 10`).
			WithArgs(search, search, search, search).
			WillReturnRows(sqlmock.NewRows(expedienteCols).AddRow(
				11, "EXP-011", time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), "Unidad de Posgrado FACHSE", "Pago de docente",
				expediente.AsuntoPagoDocente, expediente.DocumentoInforme, "INF-015-2024", 1, 2, "2024-I", 5, 2024, nil, nil,
				8, nil, nil, nil, nil, now, now, nil))

		exps, total, err := repo.QueryExpedientes(context.Background(), filter, core.PageRequest{Page: 2, PerPage: 10}, ordering)
		require.NoError(t, err)
		assert.Equal(t, 11, total)
		require.Len(t, exps, 1)

		e := exps[0]
		assert.Equal(t, core.NewDate(2024, time.June, 3), e.FechaIngreso)
		assert.Equal(t, int64(8), e.PagoDocenteID.Int64)
		assert.False(t, e.DevolucionID.Valid)
		assert.True(t, e.Vinculado())
		assert.Equal(t, 5, e.Mes.Int)
		assert.Empty(t, e.DNISolicitante)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpedienteRepository_SoftDeleteExpediente(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExpedienteRepository(db)
	at := time.Now()
	q := regexp.QuoteMeta("UPDATE expediente SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL")

	mock.ExpectExec(q).WithArgs(at.UTC(), int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SoftDeleteExpediente(context.Background(), 5, at))

	mock.ExpectExec(q).WithArgs(at.UTC(), int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.Equal(t, expediente.ErrNotFound, repo.SoftDeleteExpediente(context.Background(), 5, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpedienteRepository_ClearLinks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewExpedienteRepository(db)
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE expediente SET pago_docente_id = NULL, updated_at = $1 WHERE pago_docente_id = $2 AND deleted_at IS NULL")).
		WithArgs(at.UTC(), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	n, err := repo.ClearPagoLinks(context.Background(), 8, at)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE expediente SET devolucion_id = NULL, updated_at = $1 WHERE devolucion_id = $2 AND deleted_at IS NULL")).
		WithArgs(at.UTC(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	n, err = repo.ClearDevolucionLinks(context.Background(), 3, at)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
