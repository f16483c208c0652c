package docente

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

// Teacher types
const (
	TipoInterno = "interno"
	TipoExterno = "externo"
)

// Teacher categories. Nursing-program teachers are paid on their own rates.
const (
	CategoriaRegular    = "regular"
	CategoriaEnfermeria = "enfermeria"
)

type Docente struct {
	ID                  int64      `json:"id"`
	Nombres             string     `json:"nombres"`
	ApellidoPaterno     string     `json:"apellido_paterno"`
	ApellidoMaterno     string     `json:"apellido_materno"`
	DNI                 string     `json:"dni"`
	RUC                 string     `json:"ruc"`
	Email               string     `json:"email"`
	Telefono            string     `json:"telefono"`
	TipoDocente         string     `json:"tipo_docente"`
	Categoria           string     `json:"categoria"`
	GradoAcademico      string     `json:"grado_academico"`
	Especialidad        string     `json:"especialidad"`
	Banco               string     `json:"banco"`
	CuentaBancaria      string     `json:"cuenta_bancaria"`
	SuspensionRetencion bool       `json:"suspension_retencion"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
	DeletedAt           *time.Time `json:"-"`
}

// NombreCompleto returns "ApellidoPaterno ApellidoMaterno, Nombres".
func (d Docente) NombreCompleto() string {
	apellidos := strings.TrimSpace(d.ApellidoPaterno + " " + d.ApellidoMaterno)
	if apellidos == "" {
		return d.Nombres
	}
	return apellidos + ", " + d.Nombres
}

func (d Docente) IsInterno() bool    { return d.TipoDocente == TipoInterno }
func (d Docente) IsEnfermeria() bool { return d.Categoria == CategoriaEnfermeria }

// Summary is the compact form embedded in other records.
type Summary struct {
	ID             int64  `json:"id"`
	NombreCompleto string `json:"nombre_completo"`
	DNI            string `json:"dni"`
	TipoDocente    string `json:"tipo_docente"`
	Categoria      string `json:"categoria"`
}

func (d Docente) Summary() *Summary {
	return &Summary{
		ID:             d.ID,
		NombreCompleto: d.NombreCompleto(),
		DNI:            d.DNI,
		TipoDocente:    d.TipoDocente,
		Categoria:      d.Categoria,
	}
}

// DocenteInput contains information needed to create or fully update a Docente.
type DocenteInput struct {
	Nombres             string `json:"nombres" validate:"required,notblank,max=100"`
	ApellidoPaterno     string `json:"apellido_paterno" validate:"required,notblank,max=100"`
	ApellidoMaterno     string `json:"apellido_materno" validate:"max=100"`
	DNI                 string `json:"dni" validate:"required,dni"`
	RUC                 string `json:"ruc" validate:"omitempty,ruc"`
	Email               string `json:"email" validate:"omitempty,email,max=150"`
	Telefono            string `json:"telefono" validate:"max=20"`
	TipoDocente         string `json:"tipo_docente" validate:"required,oneof=interno externo"`
	Categoria           string `json:"categoria" validate:"omitempty,oneof=regular enfermeria"`
	GradoAcademico      string `json:"grado_academico" validate:"max=100"`
	Especialidad        string `json:"especialidad" validate:"max=150"`
	Banco               string `json:"banco" validate:"max=100"`
	CuentaBancaria      string `json:"cuenta_bancaria" validate:"max=30"`
	SuspensionRetencion bool   `json:"suspension_retencion"`
}

func (in *DocenteInput) Clean() {
	in.Nombres = core.CleanString(in.Nombres)
	in.ApellidoPaterno = core.CleanString(in.ApellidoPaterno)
	in.ApellidoMaterno = core.CleanString(in.ApellidoMaterno)
	in.DNI = core.CleanString(in.DNI)
	in.RUC = core.CleanString(in.RUC)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Telefono = core.CleanString(in.Telefono)
	in.TipoDocente = core.CleanString(in.TipoDocente, true /* lower */)
	in.Categoria = core.CleanString(in.Categoria, true /* lower */)
	if in.Categoria == "" {
		in.Categoria = CategoriaRegular
	}
	in.GradoAcademico = core.CleanString(in.GradoAcademico)
	in.Especialidad = core.CleanString(in.Especialidad)
	in.Banco = core.CleanString(in.Banco)
	in.CuentaBancaria = core.CleanString(in.CuentaBancaria)
}

// Validate cleans and validates the input. `self` is the Docente being updated, if any.
func (in *DocenteInput) Validate(ctx context.Context, validate *validator.Validate, svc Service, self ...Docente) error {
	in.Clean()
	if err := validate.Struct(in); err != nil {
		return err
	}
	var exclID int64
	if len(self) > 0 {
		exclID = self[0].ID
	}
	return svc.CheckUniqueness(ctx, in.DNI, exclID)
}

func (in DocenteInput) apply(d *Docente) {
	d.Nombres = in.Nombres
	d.ApellidoPaterno = in.ApellidoPaterno
	d.ApellidoMaterno = in.ApellidoMaterno
	d.DNI = in.DNI
	d.RUC = in.RUC
	d.Email = in.Email
	d.Telefono = in.Telefono
	d.TipoDocente = in.TipoDocente
	d.Categoria = in.Categoria
	d.GradoAcademico = in.GradoAcademico
	d.Especialidad = in.Especialidad
	d.Banco = in.Banco
	d.CuentaBancaria = in.CuentaBancaria
	d.SuspensionRetencion = in.SuspensionRetencion
}

type QueryFilter struct {
	Search      string `query:"search"`
	TipoDocente string `query:"tipo_docente"`
	Categoria   string `query:"categoria"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.TipoDocente = core.CleanString(qf.TipoDocente, true /* lower */)
	qf.Categoria = core.CleanString(qf.Categoria, true /* lower */)
}
