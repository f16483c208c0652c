package pago

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
)

func TestDefaultTarifa(t *testing.T) {
	conf := core.NewTestConfig().Payments
	tests := []struct {
		tipo, categoria string
		want            float64
	}{
		{docente.TipoInterno, docente.CategoriaRegular, 80},
		{docente.TipoExterno, docente.CategoriaRegular, 100},
		{docente.TipoInterno, docente.CategoriaEnfermeria, 90},
		{docente.TipoExterno, docente.CategoriaEnfermeria, 110},
	}
	for _, tt := range tests {
		d := docente.Docente{TipoDocente: tt.tipo, Categoria: tt.categoria}
		assert.Equal(t, tt.want, DefaultTarifa(d, conf), "%s/%s", tt.tipo, tt.categoria)
	}
}

func TestCompute(t *testing.T) {
	conf := core.NewTestConfig().Payments
	externo := docente.Docente{TipoDocente: docente.TipoExterno}
	suspendido := docente.Docente{TipoDocente: docente.TipoExterno, SuspensionRetencion: true}

	tests := []struct {
		name   string
		d      docente.Docente
		horas  int
		tarifa float64
		want   Importes
	}{
		{name: "under threshold", d: externo, horas: 15, tarifa: 100, want: Importes{Horas: 15, Tarifa: 100, Bruto: 1500, Neto: 1500}},
		{name: "over threshold", d: externo, horas: 48, tarifa: 100, want: Importes{Horas: 48, Tarifa: 100, Bruto: 4800, Retencion: 384, Neto: 4416}},
		{name: "suspension", d: suspendido, horas: 48, tarifa: 100, want: Importes{Horas: 48, Tarifa: 100, Bruto: 4800, Neto: 4800}},
		{name: "fractional rate", d: externo, horas: 33, tarifa: 95.5, want: Importes{Horas: 33, Tarifa: 95.5, Bruto: 3151.5, Retencion: 252.12, Neto: 2899.38}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.d, tt.horas, tt.tarifa, conf))
		})
	}
}

func TestPagoDocente_TaughtIn(t *testing.T) {
	p := PagoDocente{FechasEnsenanza: []core.Date{core.NewDate(2024, 3, 9), core.NewDate(2024, 4, 6)}}
	assert.True(t, p.TaughtIn(3, 2024))
	assert.True(t, p.TaughtIn(4, 2024))
	assert.False(t, p.TaughtIn(4, 2023))
	assert.False(t, PagoDocente{}.TaughtIn(3, 2024))
}

func TestLink_apply(t *testing.T) {
	fecha := core.NewDate(2024, 5, 2)

	var p PagoDocente
	Link{NumeroExpediente: "EXP-1", TipoDocumento: DocumentoOficio, NumeroDocumento: "OF-7", Fecha: fecha}.apply(&p)
	assert.Equal(t, "EXP-1", p.NumeroExpediente)
	assert.Equal(t, "OF-7", p.NumeroOficio)
	assert.Equal(t, fecha, p.FechaOficio)
	assert.Empty(t, p.NumeroInforme)

	// no document number only moves the expediente
	Link{NumeroExpediente: "EXP-2", TipoDocumento: DocumentoResolucion}.apply(&p)
	assert.Equal(t, "EXP-2", p.NumeroExpediente)
	assert.Empty(t, p.NumeroResolucion)
	assert.Equal(t, "OF-7", p.NumeroOficio)
}

func TestWorkflow(t *testing.T) {
	ctx := context.Background()

	estado := EstadoPendiente
	for _, ev := range []string{EventoTramitar, EventoObservar, EventoSubsanar, EventoPagar} {
		next, err := Workflow.Apply(ctx, estado, ev)
		require.NoError(t, err, ev)
		estado = next
	}
	assert.Equal(t, EstadoPagado, estado)
	assert.Empty(t, Workflow.AvailableEvents(EstadoPagado))

	_, err := Workflow.Apply(ctx, EstadoPagado, EventoAnular)
	assert.Error(t, err)
	assert.Equal(t, []string{EventoAnular, EventoTramitar}, Workflow.AvailableEvents(EstadoPendiente))
	assert.Equal(t, []string{EventoAnular, EventoObservar, EventoPagar}, Workflow.AvailableEvents(EstadoEnTramite))
}
