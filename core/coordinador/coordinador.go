package coordinador

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
)

var (
	// errors
	ErrNotFound  = core.NewNotFoundError("coordinador")
	ErrDNIExists = errors.New("ya existe un coordinador con este DNI")

	OrderingFields = map[string]string{
		"nombres":    "nombres",
		"apellidos":  "apellidos",
		"dni":        "dni",
		"created_at": "created_at",
	}
	DefaultOrdering = []core.DBOrdering{
		{Field: "apellidos", Ascending: true},
		{Field: "nombres", Ascending: true},
	}
)

type Coordinador struct {
	ID         int64      `json:"id"`
	Nombres    string     `json:"nombres"`
	Apellidos  string     `json:"apellidos"`
	DNI        string     `json:"dni"`
	Email      string     `json:"email"`
	Telefono   string     `json:"telefono"`
	Tipo       string     `json:"tipo"`
	ProgramaID int64      `json:"programa_id"`
	Activo     bool       `json:"activo"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"-"`
}

func (c Coordinador) NombreCompleto() string {
	return strings.TrimSpace(c.Nombres + " " + c.Apellidos)
}

type CoordinadorInput struct {
	Nombres    string `json:"nombres" validate:"required,notblank,max=100"`
	Apellidos  string `json:"apellidos" validate:"required,notblank,max=150"`
	DNI        string `json:"dni" validate:"required,dni"`
	Email      string `json:"email" validate:"omitempty,email,max=150"`
	Telefono   string `json:"telefono" validate:"max=20"`
	Tipo       string `json:"tipo" validate:"required,oneof=interno externo"`
	ProgramaID int64  `json:"programa_id" validate:"required,gt=0"`
	Activo     *bool  `json:"activo"`
}

func (in *CoordinadorInput) Validate(ctx context.Context, validate *validator.Validate, svc Service, self ...Coordinador) error {
	in.Nombres = core.CleanString(in.Nombres)
	in.Apellidos = core.CleanString(in.Apellidos)
	in.DNI = core.CleanString(in.DNI)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Telefono = core.CleanString(in.Telefono)
	in.Tipo = core.CleanString(in.Tipo, true /* lower */)
	if err := validate.Struct(in); err != nil {
		return err
	}
	var exclID int64
	if len(self) > 0 {
		exclID = self[0].ID
	}
	return svc.Check(ctx, in.DNI, in.ProgramaID, exclID)
}

func (in CoordinadorInput) apply(c *Coordinador) {
	c.Nombres = in.Nombres
	c.Apellidos = in.Apellidos
	c.DNI = in.DNI
	c.Email = in.Email
	c.Telefono = in.Telefono
	c.Tipo = in.Tipo
	c.ProgramaID = in.ProgramaID
	if in.Activo != nil {
		c.Activo = *in.Activo
	}
}

type QueryFilter struct {
	Search     string `query:"search"`
	ProgramaID int64  `query:"programa_id"`
	Activo     *bool  `query:"activo"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

type (
	Repository interface {
		DNIExists(ctx context.Context, dni string, excludedID int64, exec ...core.DBExecutor) (bool, error)
		CreateCoordinador(ctx context.Context, c Coordinador, exec ...core.DBExecutor) (Coordinador, error)
		QueryCoordinadores(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Coordinador, int, error)
		GetCoordinador(ctx context.Context, id int64, exec ...core.DBExecutor) (Coordinador, error)
		UpdateCoordinador(ctx context.Context, c Coordinador, exec ...core.DBExecutor) (Coordinador, error)
		SoftDeleteCoordinador(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error
	}

	ProgramaGetter interface {
		GetByID(ctx context.Context, id int64) (programa.Programa, error)
	}

	Service interface {
		Check(ctx context.Context, dni string, programaID, excludedID int64) error
		Create(ctx context.Context, in CoordinadorInput) (Coordinador, error)
		Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error)
		GetByID(ctx context.Context, id int64) (Coordinador, error)
		// GetActiveByPrograma returns the most recently registered active coordinator of a programa.
		GetActiveByPrograma(ctx context.Context, programaID int64) (Coordinador, error)
		Update(ctx context.Context, c Coordinador, in CoordinadorInput) (Coordinador, error)
		Delete(ctx context.Context, id int64) error
	}

	service struct {
		repo      Repository
		programas ProgramaGetter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, programas ProgramaGetter) Service {
	return &service{repo: repo, programas: programas}
}

func (svc *service) Check(ctx context.Context, dni string, programaID, excludedID int64) error {
	exists, err := svc.repo.DNIExists(ctx, dni, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking DNI uniqueness")
	}
	if exists {
		return core.NewValidationError(ErrDNIExists, core.FieldError{Field: "dni", Error: ErrDNIExists.Error()})
	}
	if _, err := svc.programas.GetByID(ctx, programaID); err != nil {
		if errors.Cause(err) == programa.ErrNotFound {
			return core.NewFieldError("programa_id", "el programa no existe")
		}
		return errors.Wrap(err, "finding programa")
	}
	return nil
}

func (svc *service) Create(ctx context.Context, in CoordinadorInput) (Coordinador, error) {
	now := time.Now().UTC()
	c := Coordinador{Activo: true, CreatedAt: now, UpdatedAt: now}
	in.apply(&c)
	return svc.repo.CreateCoordinador(ctx, c)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error) {
	ordering = core.CleanOrdering(ordering, OrderingFields, DefaultOrdering...)
	coords, total, err := svc.repo.QueryCoordinadores(ctx, filter, page, ordering)
	if err != nil {
		return core.Page{}, err
	}
	return core.NewPage(coords, page, total), nil
}

func (svc *service) GetByID(ctx context.Context, id int64) (Coordinador, error) {
	return svc.repo.GetCoordinador(ctx, id)
}

func (svc *service) GetActiveByPrograma(ctx context.Context, programaID int64) (Coordinador, error) {
	activo := true
	coords, _, err := svc.repo.QueryCoordinadores(
		ctx,
		&QueryFilter{ProgramaID: programaID, Activo: &activo},
		core.PageRequest{Page: 1, PerPage: 1},
		[]core.DBOrdering{{Field: "created_at", Ascending: false}},
	)
	if err != nil {
		return Coordinador{}, err
	}
	if len(coords) == 0 {
		return Coordinador{}, ErrNotFound
	}
	return coords[0], nil
}

func (svc *service) Update(ctx context.Context, c Coordinador, in CoordinadorInput) (Coordinador, error) {
	in.apply(&c)
	c.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCoordinador(ctx, c)
}

func (svc *service) Delete(ctx context.Context, id int64) error {
	return svc.repo.SoftDeleteCoordinador(ctx, id, time.Now().UTC())
}
