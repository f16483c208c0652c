package expediente

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

// Subject types
const (
	AsuntoPagoDocente = "pago_docente"
	AsuntoDevolucion  = "devolucion"
	AsuntoOtro        = "otro"
)

// Document types
const (
	DocumentoInforme    = "informe"
	DocumentoOficio     = "oficio"
	DocumentoResolucion = "resolucion"
	DocumentoSolicitud  = "solicitud"
	DocumentoOtro       = "otro"
)

// Expediente is an incoming administrative document.
// Depending on its subject it may be linked to a teacher payment or to a refund.
type Expediente struct {
	ID               int64      `json:"id"`
	NumeroExpediente string     `json:"numero_expediente"`
	FechaIngreso     core.Date  `json:"fecha_ingreso"`
	Remitente        string     `json:"remitente"`
	Asunto           string     `json:"asunto"`
	TipoAsunto       string     `json:"tipo_asunto"`
	TipoDocumento    string     `json:"tipo_documento"`
	NumeroDocumento  string     `json:"numero_documento"`
	DocenteID        null.Int64 `json:"docente_id"`
	CursoID          null.Int64 `json:"curso_id"`
	Periodo          string     `json:"periodo"`
	Mes              null.Int   `json:"mes"`
	Anio             null.Int   `json:"anio"`
	DNISolicitante   string     `json:"dni_solicitante"`
	ProgramaID       null.Int64 `json:"programa_id"`
	PagoDocenteID    null.Int64 `json:"pago_docente_id"`
	DevolucionID     null.Int64 `json:"devolucion_id"`
	ArchivoPath      string     `json:"-"`
	ArchivoNombre    string     `json:"archivo_nombre"`
	Observaciones    string     `json:"observaciones"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"-"`
}

func (e Expediente) Vinculado() bool {
	return e.PagoDocenteID.Valid || e.DevolucionID.Valid
}

func (e Expediente) TieneArchivo() bool {
	return e.ArchivoPath != ""
}

// ExpedienteInput contains information needed to create or fully update an Expediente.
type ExpedienteInput struct {
	NumeroExpediente string    `json:"numero_expediente" validate:"required,notblank,max=30"`
	FechaIngreso     core.Date `json:"fecha_ingreso"`
	Remitente        string    `json:"remitente" validate:"required,notblank,max=200"`
	Asunto           string    `json:"asunto" validate:"required,notblank,max=500"`
	TipoAsunto       string    `json:"tipo_asunto" validate:"required,oneof=pago_docente devolucion otro"`
	TipoDocumento    string    `json:"tipo_documento" validate:"required,oneof=informe oficio resolucion solicitud otro"`
	NumeroDocumento  string    `json:"numero_documento" validate:"max=50"`
	DocenteID        *int64    `json:"docente_id" validate:"omitempty,gt=0"`
	CursoID          *int64    `json:"curso_id" validate:"omitempty,gt=0"`
	Periodo          string    `json:"periodo" validate:"omitempty,periodo"`
	Mes              *int      `json:"mes" validate:"omitempty,min=1,max=12"`
	Anio             *int      `json:"anio" validate:"omitempty,min=2000,max=2100"`
	DNISolicitante   string    `json:"dni_solicitante" validate:"omitempty,dni"`
	ProgramaID       *int64    `json:"programa_id" validate:"omitempty,gt=0"`
	Observaciones    string    `json:"observaciones" validate:"max=1000"`
}

func (in *ExpedienteInput) Clean() {
	in.NumeroExpediente = core.CleanUpper(in.NumeroExpediente)
	in.Remitente = core.CleanString(in.Remitente)
	in.Asunto = core.CleanString(in.Asunto)
	in.TipoAsunto = core.CleanString(in.TipoAsunto, true /* lower */)
	in.TipoDocumento = core.CleanString(in.TipoDocumento, true /* lower */)
	in.NumeroDocumento = core.CleanString(in.NumeroDocumento)
	in.Periodo = core.CleanUpper(in.Periodo)
	in.DNISolicitante = core.CleanString(in.DNISolicitante)
	in.Observaciones = core.CleanString(in.Observaciones)
	if in.FechaIngreso.IsZero() {
		in.FechaIngreso = core.Today()
	}
}

// Validate cleans and validates the input. `self` is the Expediente being updated, if any.
func (in *ExpedienteInput) Validate(ctx context.Context, validate *validator.Validate, svc Service, self ...Expediente) error {
	in.Clean()
	if err := validate.Struct(in); err != nil {
		return err
	}
	if err := in.checkSubject(); err != nil {
		return err
	}
	var exclID int64
	if len(self) > 0 {
		exclID = self[0].ID
	}
	return svc.CheckUniqueness(ctx, in.NumeroExpediente, exclID)
}

// checkSubject validates the fields the subject type needs for linking.
func (in ExpedienteInput) checkSubject() error {
	var flds []core.FieldError
	required := func(field string, missing bool) {
		if missing {
			flds = append(flds, core.FieldError{Field: field, Error: "este campo es obligatorio"})
		}
	}
	switch in.TipoAsunto {
	case AsuntoPagoDocente:
		required("docente_id", in.DocenteID == nil)
		required("curso_id", in.CursoID == nil)
		required("periodo", in.Periodo == "")
		// mes and anio go together
		required("mes", in.Mes == nil && in.Anio != nil)
		required("anio", in.Anio == nil && in.Mes != nil)
	case AsuntoDevolucion:
		required("dni_solicitante", in.DNISolicitante == "")
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func (in ExpedienteInput) apply(e *Expediente) {
	e.NumeroExpediente = in.NumeroExpediente
	e.FechaIngreso = in.FechaIngreso
	e.Remitente = in.Remitente
	e.Asunto = in.Asunto
	e.TipoAsunto = in.TipoAsunto
	e.TipoDocumento = in.TipoDocumento
	e.NumeroDocumento = in.NumeroDocumento
	e.DocenteID = null.Int64FromPtr(in.DocenteID)
	e.CursoID = null.Int64FromPtr(in.CursoID)
	e.Periodo = in.Periodo
	e.Mes = null.IntFromPtr(in.Mes)
	e.Anio = null.IntFromPtr(in.Anio)
	e.DNISolicitante = in.DNISolicitante
	e.ProgramaID = null.Int64FromPtr(in.ProgramaID)
	e.Observaciones = in.Observaciones
}

type QueryFilter struct {
	Search     string    `query:"search"`
	TipoAsunto string    `query:"tipo_asunto"`
	Vinculado  *bool     `query:"vinculado"`
	FechaDesde core.Date `query:"fecha_desde"`
	FechaHasta core.Date `query:"fecha_hasta"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TipoAsunto = core.CleanString(qf.TipoAsunto, true /* lower */)
}
