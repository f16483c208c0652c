package curso

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
)

const searchLimit = 10

var (
	// errors
	ErrNotFound     = core.NewNotFoundError("curso")
	ErrCodigoExists = errors.New("ya existe un curso con este código")

	// OrderingFields maps query ordering fields to columns.
	OrderingFields = map[string]string{
		"codigo":     "c.codigo",
		"nombre":     "c.nombre",
		"creditos":   "c.creditos",
		"semestre":   "s.numero",
		"created_at": "c.created_at",
	}
	DefaultOrdering = []core.DBOrdering{
		{Field: "s.numero", Ascending: true},
		{Field: "c.nombre", Ascending: true},
	}
)

type Curso struct {
	ID         int64      `json:"id"`
	Codigo     string     `json:"codigo"`
	Nombre     string     `json:"nombre"`
	Creditos   int        `json:"creditos"`
	Horas      int        `json:"horas"`
	SemestreID int64      `json:"semestre_id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"-"`

	// read-only, joined from semestre/programa
	SemestreNumero int    `json:"semestre_numero"`
	ProgramaID     int64  `json:"programa_id"`
	ProgramaNombre string `json:"programa_nombre"`
}

// Summary is the compact form embedded in other records.
type Summary struct {
	ID             int64  `json:"id"`
	Codigo         string `json:"codigo"`
	Nombre         string `json:"nombre"`
	ProgramaID     int64  `json:"programa_id"`
	ProgramaNombre string `json:"programa_nombre"`
}

func (c Curso) Summary() *Summary {
	return &Summary{
		ID:             c.ID,
		Codigo:         c.Codigo,
		Nombre:         c.Nombre,
		ProgramaID:     c.ProgramaID,
		ProgramaNombre: c.ProgramaNombre,
	}
}

type CursoInput struct {
	Codigo     string `json:"codigo" validate:"required,notblank,max=20"`
	Nombre     string `json:"nombre" validate:"required,notblank,max=200"`
	Creditos   int    `json:"creditos" validate:"required,min=1,max=20"`
	Horas      int    `json:"horas" validate:"required,min=1,max=500"`
	SemestreID int64  `json:"semestre_id" validate:"required,gt=0"`
}

func (in *CursoInput) Validate(ctx context.Context, validate *validator.Validate, svc Service, self ...Curso) error {
	in.Codigo = core.CleanUpper(in.Codigo)
	in.Nombre = core.CleanString(in.Nombre)
	if err := validate.Struct(in); err != nil {
		return err
	}
	var exclID int64
	if len(self) > 0 {
		exclID = self[0].ID
	}
	return svc.Check(ctx, in.Codigo, in.SemestreID, exclID)
}

func (in CursoInput) apply(c *Curso) {
	c.Codigo = in.Codigo
	c.Nombre = in.Nombre
	c.Creditos = in.Creditos
	c.Horas = in.Horas
	c.SemestreID = in.SemestreID
}

type QueryFilter struct {
	Search     string `query:"search"`
	SemestreID int64  `query:"semestre_id"`
	ProgramaID int64  `query:"programa_id"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

type (
	Repository interface {
		CodigoExists(ctx context.Context, codigo string, excludedID int64, exec ...core.DBExecutor) (bool, error)
		CreateCurso(ctx context.Context, c Curso, exec ...core.DBExecutor) (Curso, error)
		// QueryCursos returns a page of cursos and the total count matching filter.
		// QueryFilter.Search does a case-insensitive match on code or name.
		QueryCursos(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Curso, int, error)
		GetCurso(ctx context.Context, id int64, exec ...core.DBExecutor) (Curso, error)
		GetCursosByID(ctx context.Context, ids []int64, exec ...core.DBExecutor) (map[int64]Curso, error)
		UpdateCurso(ctx context.Context, c Curso, exec ...core.DBExecutor) (Curso, error)
		SoftDeleteCurso(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error
	}

	// SemestreGetter is the part of programa.Service cursos depend on.
	SemestreGetter interface {
		GetSemestre(ctx context.Context, id int64) (programa.Semestre, error)
	}

	Service interface {
		Check(ctx context.Context, codigo string, semestreID, excludedID int64) error
		Create(ctx context.Context, in CursoInput) (Curso, error)
		Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error)
		Search(ctx context.Context, term string, programaID int64) ([]Curso, error)
		GetByID(ctx context.Context, id int64) (Curso, error)
		GetByIDs(ctx context.Context, ids ...int64) (map[int64]Curso, error)
		Update(ctx context.Context, c Curso, in CursoInput) (Curso, error)
		Delete(ctx context.Context, id int64) error
	}

	service struct {
		repo      Repository
		semestres SemestreGetter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, semestres SemestreGetter) Service {
	return &service{repo: repo, semestres: semestres}
}

// Check validates codigo uniqueness and the semestre reference.
func (svc *service) Check(ctx context.Context, codigo string, semestreID, excludedID int64) error {
	exists, err := svc.repo.CodigoExists(ctx, codigo, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking codigo uniqueness")
	}
	if exists {
		return core.NewValidationError(ErrCodigoExists, core.FieldError{Field: "codigo", Error: ErrCodigoExists.Error()})
	}
	if _, err := svc.semestres.GetSemestre(ctx, semestreID); err != nil {
		if errors.Cause(err) == programa.ErrSemestreNotFound {
			return core.NewFieldError("semestre_id", "el semestre no existe")
		}
		return errors.Wrap(err, "finding semestre")
	}
	return nil
}

func (svc *service) Create(ctx context.Context, in CursoInput) (Curso, error) {
	now := time.Now().UTC()
	c := Curso{CreatedAt: now, UpdatedAt: now}
	in.apply(&c)
	c, err := svc.repo.CreateCurso(ctx, c)
	if err != nil {
		return Curso{}, err
	}
	// reload for the joined fields
	return svc.repo.GetCurso(ctx, c.ID)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error) {
	ordering = core.CleanOrdering(ordering, OrderingFields, DefaultOrdering...)
	cursos, total, err := svc.repo.QueryCursos(ctx, filter, page, ordering)
	if err != nil {
		return core.Page{}, err
	}
	return core.NewPage(cursos, page, total), nil
}

// Search looks up a handful of cursos by code or name, optionally within a programa (autocomplete).
func (svc *service) Search(ctx context.Context, term string, programaID int64) ([]Curso, error) {
	term = core.CleanString(term)
	if term == "" {
		return []Curso{}, nil
	}
	cursos, _, err := svc.repo.QueryCursos(
		ctx, &QueryFilter{Search: term, ProgramaID: programaID}, core.PageRequest{Page: 1, PerPage: searchLimit}, DefaultOrdering)
	return cursos, err
}

func (svc *service) GetByID(ctx context.Context, id int64) (Curso, error) {
	return svc.repo.GetCurso(ctx, id)
}

func (svc *service) GetByIDs(ctx context.Context, ids ...int64) (map[int64]Curso, error) {
	if len(ids) == 0 {
		return map[int64]Curso{}, nil
	}
	return svc.repo.GetCursosByID(ctx, ids)
}

func (svc *service) Update(ctx context.Context, c Curso, in CursoInput) (Curso, error) {
	in.apply(&c)
	c.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateCurso(ctx, c); err != nil {
		return Curso{}, err
	}
	return svc.repo.GetCurso(ctx, c.ID)
}

func (svc *service) Delete(ctx context.Context, id int64) error {
	return svc.repo.SoftDeleteCurso(ctx, id, time.Now().UTC())
}
