package sqlxrepos

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
)

var devolucionCols = []string{
	"id", "nombres", "apellidos", "dni", "email", "telefono", "programa_id", "proceso_admision",
	"monto", "motivo", "banco", "numero_cuenta", "estado", "numero_expediente", "numero_resolucion", "observaciones",
	"created_at", "updated_at", "deleted_at", "programa_nombre",
}

func TestDevolucionRepository_FindByDNI(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDevolucionRepository(db)
	now := time.Now().UTC()
	estados := []string{devolucion.EstadoPendiente, devolucion.EstadoEnTramite}

	t.Run("within programa", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM devolucion d JOIN programa p ON p.id = d.programa_id WHERE \(d.deleted_at IS NULL\) AND \(d.dni = \$1\) AND \(d.programa_id = \$2\) AND \(d.estado = ANY \(\$3\)\) ORDER BY d.created_at DESC, d.id DESC`).
			WithArgs("44556677", int64(2), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(devolucionCols).
				AddRow(9, "Jorge", "Ramírez Soto", "44556677", nil, nil, 2, "2024-I", 350.46, "No se aperturó el programa",
					nil, nil, devolucion.EstadoEnTramite, "EXP-500", nil, nil, now, now, nil, "Maestría en Derecho").
				AddRow(4, "Jorge", "Ramírez Soto", "44556677", nil, nil, 2, "2023-II", 300, "Cambio de programa",
					nil, nil, devolucion.EstadoPendiente, nil, nil, nil, now, now, nil, "Maestría en Derecho"))

		devs, err := repo.FindByDNI(context.Background(), "44556677", 2, estados)
		require.NoError(t, err)
		require.Len(t, devs, 2)
		assert.Equal(t, int64(9), devs[0].ID)
		assert.Equal(t, "EXP-500", devs[0].NumeroExpediente)
		assert.Equal(t, "Maestría en Derecho", devs[0].ProgramaNombre)
		assert.Empty(t, devs[1].NumeroExpediente)
		assert.Empty(t, devs[1].Email)
	})

	t.Run("any programa", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE (d.deleted_at IS NULL) AND (d.dni = $1) ORDER BY")).
			WithArgs("44556677").
			WillReturnRows(sqlmock.NewRows(devolucionCols))

		devs, err := repo.FindByDNI(context.Background(), "44556677", 0, nil)
		require.NoError(t, err)
		assert.Empty(t, devs)
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDevolucionRepository_ClearNumeroExpediente(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDevolucionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE devolucion SET numero_expediente = NULL, updated_at = $1 WHERE numero_expediente = $2 AND deleted_at IS NULL")).
		WithArgs(sqlmock.AnyArg(), "EXP-500").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.ClearNumeroExpediente(context.Background(), "EXP-500")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDevolucionRepository_SoftDeleteDevolucion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewDevolucionRepository(db)
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE devolucion SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL")).
		WithArgs(at.UTC(), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDeleteDevolucion(context.Background(), 9, at)
	assert.Equal(t, devolucion.ErrNotFound, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
