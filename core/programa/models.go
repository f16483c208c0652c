package programa

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

// Degrees
const (
	GradoMaestria            = "maestria"
	GradoDoctorado           = "doctorado"
	GradoSegundaEspecialidad = "segunda_especialidad"
)

var Grados = []string{GradoMaestria, GradoDoctorado, GradoSegundaEspecialidad}

type Programa struct {
	ID        int64      `json:"id"`
	Nombre    string     `json:"nombre"`
	Codigo    string     `json:"codigo"`
	Grado     string     `json:"grado"`
	Mencion   string     `json:"mencion"`
	Activo    bool       `json:"activo"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-"`
}

// NombreCompleto includes the mention, eg. "Maestría en Ciencias con mención en Gestión".
func (p Programa) NombreCompleto() string {
	if p.Mencion == "" {
		return p.Nombre
	}
	return p.Nombre + " con mención en " + p.Mencion
}

type Semestre struct {
	ID         int64      `json:"id"`
	ProgramaID int64      `json:"programa_id"`
	Numero     int        `json:"numero"`
	Nombre     string     `json:"nombre"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"-"`
}

type ProgramaInput struct {
	Nombre  string `json:"nombre" validate:"required,notblank,max=200"`
	Codigo  string `json:"codigo" validate:"required,notblank,max=20,alphanum_"`
	Grado   string `json:"grado" validate:"required,oneof=maestria doctorado segunda_especialidad"`
	Mencion string `json:"mencion" validate:"max=200"`
	Activo  *bool  `json:"activo"`
}

func (in *ProgramaInput) Validate(ctx context.Context, validate *validator.Validate, svc Service, self ...Programa) error {
	in.Nombre = core.CleanString(in.Nombre)
	in.Codigo = core.CleanUpper(in.Codigo)
	in.Grado = core.CleanString(in.Grado, true /* lower */)
	in.Mencion = core.CleanString(in.Mencion)
	if err := validate.Struct(in); err != nil {
		return err
	}
	var exclID int64
	if len(self) > 0 {
		exclID = self[0].ID
	}
	return svc.CheckCodigoUniqueness(ctx, in.Codigo, exclID)
}

func (in ProgramaInput) apply(p *Programa) {
	p.Nombre = in.Nombre
	p.Codigo = in.Codigo
	p.Grado = in.Grado
	p.Mencion = in.Mencion
	if in.Activo != nil {
		p.Activo = *in.Activo
	}
}

type SemestreInput struct {
	ProgramaID int64  `json:"programa_id" validate:"required,gt=0"`
	Numero     int    `json:"numero" validate:"required,min=1,max=12"`
	Nombre     string `json:"nombre" validate:"max=100"`
}

func (in *SemestreInput) Validate(ctx context.Context, validate *validator.Validate, svc Service, self ...Semestre) error {
	in.Nombre = core.CleanString(in.Nombre)
	if err := validate.Struct(in); err != nil {
		return err
	}
	var exclID int64
	if len(self) > 0 {
		exclID = self[0].ID
	}
	return svc.CheckSemestre(ctx, in.ProgramaID, in.Numero, exclID)
}

func (in SemestreInput) apply(s *Semestre) {
	s.ProgramaID = in.ProgramaID
	s.Numero = in.Numero
	s.Nombre = in.Nombre
	if s.Nombre == "" {
		s.Nombre = "Semestre " + romanNumerals[in.Numero]
	}
}

var romanNumerals = map[int]string{
	1: "I", 2: "II", 3: "III", 4: "IV", 5: "V", 6: "VI",
	7: "VII", 8: "VIII", 9: "IX", 10: "X", 11: "XI", 12: "XII",
}

type QueryFilter struct {
	Search string `query:"search"`
	Grado  string `query:"grado"`
	Activo *bool  `query:"activo"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Grado = core.CleanString(qf.Grado, true /* lower */)
}
