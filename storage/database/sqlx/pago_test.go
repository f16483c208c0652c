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
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
)

var pagoCols = []string{
	"id", "docente_id", "curso_id", "periodo", "fechas_ensenanza", "horas_dictadas", "tarifa_hora",
	"importe_bruto", "retencion", "importe_neto", "estado", "numero_expediente", "numero_informe", "fecha_informe",
	"numero_oficio", "fecha_oficio", "numero_resolucion", "fecha_resolucion", "observaciones",
	"created_at", "updated_at", "deleted_at",
}

func TestPagoRepository_FindPagos(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPagoRepository(db)
	now := time.Now().UTC()
	informe := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .* FROM pago_docente p JOIN docente d .* ORDER BY p.created_at DESC, p.id DESC`).
		WithArgs(pago.EstadoAnulado, int64(1), int64(2), "2024-I").
		WillReturnRows(sqlmock.NewRows(pagoCols).AddRow(
			10, 1, 2, "2024-I", []byte(`["2024-04-06","2024-04-13"]`), 24, "100.00",
			"2400.00", "192.00", "2208.00", pago.EstadoEnTramite, "EXP-001", "INF-9", informe,
			nil, nil, nil, nil, nil, now, now, nil))

	pagos, err := repo.FindPagos(context.Background(), 1, 2, "2024-I")
	require.NoError(t, err)
	require.Len(t, pagos, 1)

	p := pagos[0]
	assert.Equal(t, []core.Date{core.NewDate(2024, 4, 6), core.NewDate(2024, 4, 13)}, p.FechasEnsenanza)
	assert.True(t, p.TaughtIn(4, 2024))
	assert.Equal(t, 2208.0, p.ImporteNeto)
	assert.Equal(t, "EXP-001", p.NumeroExpediente)
	assert.Equal(t, core.NewDate(2024, 5, 2), p.FechaInforme)
	assert.True(t, p.FechaOficio.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPagoRepository_UpdatePago(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPagoRepository(db)

	mock.ExpectExec(`UPDATE pago_docente SET .* WHERE id = \$\d+ AND deleted_at IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := pago.PagoDocente{ID: 3, DocenteID: 1, CursoID: 2, Periodo: "2024-II", Estado: pago.EstadoPendiente}
	updated, err := repo.UpdatePago(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPagoRepository_ClearNumeroExpediente(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPagoRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE pago_docente SET numero_expediente = NULL")).
		WithArgs(sqlmock.AnyArg(), "EXP-001").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.ClearNumeroExpediente(context.Background(), "EXP-001")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
