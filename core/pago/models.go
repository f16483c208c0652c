package pago

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
)

// Payment states
const (
	EstadoPendiente = "pendiente"
	EstadoEnTramite = "en_tramite"
	EstadoObservado = "observado"
	EstadoPagado    = "pagado"
	EstadoAnulado   = "anulado"
)

// Payment events
const (
	EventoTramitar = "tramitar"
	EventoObservar = "observar"
	EventoSubsanar = "subsanar"
	EventoPagar    = "pagar"
	EventoAnular   = "anular"
)

var Workflow = core.NewWorkflow(
	core.Transition{Event: EventoTramitar, Src: []string{EstadoPendiente}, Dst: EstadoEnTramite},
	core.Transition{Event: EventoObservar, Src: []string{EstadoEnTramite}, Dst: EstadoObservado},
	core.Transition{Event: EventoSubsanar, Src: []string{EstadoObservado}, Dst: EstadoEnTramite},
	core.Transition{Event: EventoPagar, Src: []string{EstadoEnTramite}, Dst: EstadoPagado},
	core.Transition{Event: EventoAnular, Src: []string{EstadoPendiente, EstadoEnTramite, EstadoObservado}, Dst: EstadoAnulado},
)

type PagoDocente struct {
	ID               int64       `json:"id"`
	DocenteID        int64       `json:"docente_id"`
	CursoID          int64       `json:"curso_id"`
	Periodo          string      `json:"periodo"`
	FechasEnsenanza  []core.Date `json:"fechas_ensenanza"`
	HorasDictadas    int         `json:"horas_dictadas"`
	TarifaHora       float64     `json:"tarifa_hora"`
	ImporteBruto     float64     `json:"importe_bruto"`
	Retencion        float64     `json:"retencion"`
	ImporteNeto      float64     `json:"importe_neto"`
	Estado           string      `json:"estado"`
	NumeroExpediente string      `json:"numero_expediente"`
	NumeroInforme    string      `json:"numero_informe"`
	FechaInforme     core.Date   `json:"fecha_informe"`
	NumeroOficio     string      `json:"numero_oficio"`
	FechaOficio      core.Date   `json:"fecha_oficio"`
	NumeroResolucion string      `json:"numero_resolucion"`
	FechaResolucion  core.Date   `json:"fecha_resolucion"`
	Observaciones    string      `json:"observaciones"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	DeletedAt        *time.Time  `json:"-"`

	// read-only
	Docente *docente.Summary `json:"docente,omitempty"`
	Curso   *curso.Summary   `json:"curso,omitempty"`
	Eventos []string         `json:"eventos"`
}

// TaughtIn reports whether any teaching date falls in the given month-year.
func (p PagoDocente) TaughtIn(mes, anio int) bool {
	for _, f := range p.FechasEnsenanza {
		if f.SameMonth(mes, anio) {
			return true
		}
	}
	return false
}

// Importes are the computed amounts of a payment.
type Importes struct {
	Horas     int
	Tarifa    float64
	Bruto     float64
	Retencion float64
	Neto      float64
}

// DefaultTarifa returns the configured hourly rate for the teacher's type and category.
func DefaultTarifa(d docente.Docente, conf core.PaymentsConfig) float64 {
	switch {
	case d.IsInterno() && d.IsEnfermeria():
		return conf.TarifaInternoEnfermeria
	case d.IsInterno():
		return conf.TarifaInterno
	case d.IsEnfermeria():
		return conf.TarifaExternoEnfermeria
	default:
		return conf.TarifaExterno
	}
}

// Compute returns the amounts for `horas` hours at `tarifa`.
// Income tax is withheld over the threshold unless the teacher holds a suspension.
func Compute(d docente.Docente, horas int, tarifa float64, conf core.PaymentsConfig) Importes {
	imp := Importes{Horas: horas, Tarifa: core.RoundMoney(tarifa)}
	imp.Bruto = core.RoundMoney(float64(horas) * imp.Tarifa)
	if imp.Bruto > conf.UmbralRetencion && !d.SuspensionRetencion {
		imp.Retencion = core.RoundMoney(imp.Bruto * conf.TasaRetencion)
	}
	imp.Neto = core.RoundMoney(imp.Bruto - imp.Retencion)
	return imp
}

// PagoInput contains information needed to create or fully update a PagoDocente.
// HorasDictadas and TarifaHora default to the course hours and the configured rate.
type PagoInput struct {
	DocenteID       int64       `json:"docente_id" validate:"required,gt=0"`
	CursoID         int64       `json:"curso_id" validate:"required,gt=0"`
	Periodo         string      `json:"periodo" validate:"required,periodo"`
	FechasEnsenanza []core.Date `json:"fechas_ensenanza" validate:"max=60"`
	HorasDictadas   *int        `json:"horas_dictadas" validate:"omitempty,min=1,max=500"`
	TarifaHora      *float64    `json:"tarifa_hora" validate:"omitempty,gt=0,max=10000"`
	Observaciones   string      `json:"observaciones" validate:"max=1000"`
}

func (in *PagoInput) Validate(ctx context.Context, validate *validator.Validate, svc Service, self ...PagoDocente) error {
	in.Periodo = core.CleanUpper(in.Periodo)
	in.Observaciones = core.CleanString(in.Observaciones)
	if err := validate.Struct(in); err != nil {
		return err
	}
	var exclID int64
	if len(self) > 0 {
		exclID = self[0].ID
	}
	return svc.Check(ctx, *in, exclID)
}

func (in PagoInput) apply(p *PagoDocente, d docente.Docente, c curso.Curso, conf core.PaymentsConfig) {
	p.DocenteID = in.DocenteID
	p.CursoID = in.CursoID
	p.Periodo = in.Periodo
	p.FechasEnsenanza = in.FechasEnsenanza
	if p.FechasEnsenanza == nil {
		p.FechasEnsenanza = []core.Date{}
	}
	p.Observaciones = in.Observaciones

	horas := c.Horas
	if in.HorasDictadas != nil {
		horas = *in.HorasDictadas
	}
	tarifa := DefaultTarifa(d, conf)
	if in.TarifaHora != nil {
		tarifa = *in.TarifaHora
	}
	imp := Compute(d, horas, tarifa, conf)
	p.HorasDictadas = imp.Horas
	p.TarifaHora = imp.Tarifa
	p.ImporteBruto = imp.Bruto
	p.Retencion = imp.Retencion
	p.ImporteNeto = imp.Neto
}

// TransitionInput fires a workflow event.
type TransitionInput struct {
	Evento        string `json:"evento" validate:"required"`
	Observaciones string `json:"observaciones" validate:"max=1000"`
}

type QueryFilter struct {
	Search    string `query:"search"`
	DocenteID int64  `query:"docente_id"`
	CursoID   int64  `query:"curso_id"`
	Periodo   string `query:"periodo"`
	Estado    string `query:"estado"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Periodo = core.CleanUpper(qf.Periodo)
	qf.Estado = core.CleanString(qf.Estado, true /* lower */)
}

// LinkQuery selects the payments an expediente may be linked to.
// Mes and Anio are optional; when both are set only payments taught in that month match.
type LinkQuery struct {
	DocenteID int64
	CursoID   int64
	Periodo   string
	Mes       int
	Anio      int
}

// Document types an expediente may carry
const (
	DocumentoInforme    = "informe"
	DocumentoOficio     = "oficio"
	DocumentoResolucion = "resolucion"
)

// Link is the data an expediente stamps on its payment.
type Link struct {
	NumeroExpediente string
	TipoDocumento    string
	NumeroDocumento  string
	Fecha            core.Date
}

func (l Link) apply(p *PagoDocente) {
	p.NumeroExpediente = l.NumeroExpediente
	if l.NumeroDocumento == "" {
		return
	}
	switch l.TipoDocumento {
	case DocumentoInforme:
		p.NumeroInforme, p.FechaInforme = l.NumeroDocumento, l.Fecha
	case DocumentoOficio:
		p.NumeroOficio, p.FechaOficio = l.NumeroDocumento, l.Fecha
	case DocumentoResolucion:
		p.NumeroResolucion, p.FechaResolucion = l.NumeroDocumento, l.Fecha
	}
}
