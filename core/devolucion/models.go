package devolucion

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

// Refund states
const (
	EstadoPendiente = "pendiente"
	EstadoEnTramite = "en_tramite"
	EstadoAprobado  = "aprobado"
	EstadoPagado    = "pagado"
	EstadoRechazado = "rechazado"
)

// Refund events
const (
	EventoTramitar = "tramitar"
	EventoAprobar  = "aprobar"
	EventoPagar    = "pagar"
	EventoRechazar = "rechazar"
)

// DocumentoResolucion is the expediente document type that carries the refund resolution number.
const DocumentoResolucion = "resolucion"

var Workflow = core.NewWorkflow(
	core.Transition{Event: EventoTramitar, Src: []string{EstadoPendiente}, Dst: EstadoEnTramite},
	core.Transition{Event: EventoAprobar, Src: []string{EstadoEnTramite}, Dst: EstadoAprobado},
	core.Transition{Event: EventoPagar, Src: []string{EstadoAprobado}, Dst: EstadoPagado},
	core.Transition{Event: EventoRechazar, Src: []string{EstadoPendiente, EstadoEnTramite}, Dst: EstadoRechazado},
)

// Devolucion is a refund request of an admission fee.
type Devolucion struct {
	ID               int64      `json:"id"`
	Nombres          string     `json:"nombres"`
	Apellidos        string     `json:"apellidos"`
	DNI              string     `json:"dni"`
	Email            string     `json:"email"`
	Telefono         string     `json:"telefono"`
	ProgramaID       int64      `json:"programa_id"`
	ProcesoAdmision  string     `json:"proceso_admision"`
	Monto            float64    `json:"monto"`
	Motivo           string     `json:"motivo"`
	Banco            string     `json:"banco"`
	NumeroCuenta     string     `json:"numero_cuenta"`
	Estado           string     `json:"estado"`
	NumeroExpediente string     `json:"numero_expediente"`
	NumeroResolucion string     `json:"numero_resolucion"`
	Observaciones    string     `json:"observaciones"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"-"`

	// read-only
	ProgramaNombre string   `json:"programa_nombre"`
	Eventos        []string `json:"eventos"`
}

func (d Devolucion) NombreCompleto() string {
	return strings.TrimSpace(d.Nombres + " " + d.Apellidos)
}

type DevolucionInput struct {
	Nombres         string  `json:"nombres" validate:"required,notblank,max=100"`
	Apellidos       string  `json:"apellidos" validate:"required,notblank,max=150"`
	DNI             string  `json:"dni" validate:"required,dni"`
	Email           string  `json:"email" validate:"omitempty,email,max=150"`
	Telefono        string  `json:"telefono" validate:"max=20"`
	ProgramaID      int64   `json:"programa_id" validate:"required,gt=0"`
	ProcesoAdmision string  `json:"proceso_admision" validate:"required,periodo"`
	Monto           float64 `json:"monto" validate:"required,gt=0,max=100000"`
	Motivo          string  `json:"motivo" validate:"required,notblank,max=1000"`
	Banco           string  `json:"banco" validate:"max=100"`
	NumeroCuenta    string  `json:"numero_cuenta" validate:"max=30"`
	Observaciones   string  `json:"observaciones" validate:"max=1000"`
}

func (in *DevolucionInput) Clean() {
	in.Nombres = core.CleanString(in.Nombres)
	in.Apellidos = core.CleanString(in.Apellidos)
	in.DNI = core.CleanString(in.DNI)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Telefono = core.CleanString(in.Telefono)
	in.ProcesoAdmision = core.CleanUpper(in.ProcesoAdmision)
	in.Monto = core.RoundMoney(in.Monto)
	in.Motivo = core.CleanString(in.Motivo)
	in.Banco = core.CleanString(in.Banco)
	in.NumeroCuenta = core.CleanString(in.NumeroCuenta)
	in.Observaciones = core.CleanString(in.Observaciones)
}

func (in *DevolucionInput) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	in.Clean()
	if err := validate.Struct(in); err != nil {
		return err
	}
	return svc.CheckPrograma(ctx, in.ProgramaID)
}

func (in DevolucionInput) apply(d *Devolucion) {
	d.Nombres = in.Nombres
	d.Apellidos = in.Apellidos
	d.DNI = in.DNI
	d.Email = in.Email
	d.Telefono = in.Telefono
	d.ProgramaID = in.ProgramaID
	d.ProcesoAdmision = in.ProcesoAdmision
	d.Monto = in.Monto
	d.Motivo = in.Motivo
	d.Banco = in.Banco
	d.NumeroCuenta = in.NumeroCuenta
	d.Observaciones = in.Observaciones
}

type TransitionInput struct {
	Evento        string `json:"evento" validate:"required"`
	Observaciones string `json:"observaciones" validate:"max=1000"`
}

type QueryFilter struct {
	Search     string `query:"search"`
	ProgramaID int64  `query:"programa_id"`
	Estado     string `query:"estado"`
	Proceso    string `query:"proceso"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Estado = core.CleanString(qf.Estado, true /* lower */)
	qf.Proceso = core.CleanUpper(qf.Proceso)
}

// Link is the data an expediente stamps on its refund.
type Link struct {
	NumeroExpediente string
	TipoDocumento    string
	NumeroDocumento  string
}
