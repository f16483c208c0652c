package programa

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("programa")
	ErrSemestreNotFound = core.NewNotFoundError("semestre")
	ErrCodigoExists     = errors.New("ya existe un programa con este código")
	ErrHasSemestres     = errors.New("el programa tiene semestres registrados")

	// OrderingFields maps query ordering fields to columns.
	OrderingFields = map[string]string{
		"nombre":     "nombre",
		"codigo":     "codigo",
		"grado":      "grado",
		"created_at": "created_at",
	}
	DefaultOrdering = core.DBOrdering{Field: "nombre", Ascending: true}
)

type (
	Repository interface {
		CodigoExists(ctx context.Context, codigo string, excludedID int64, exec ...core.DBExecutor) (bool, error)
		CreatePrograma(ctx context.Context, p Programa, exec ...core.DBExecutor) (Programa, error)
		QueryProgramas(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Programa, int, error)
		GetPrograma(ctx context.Context, id int64, exec ...core.DBExecutor) (Programa, error)
		UpdatePrograma(ctx context.Context, p Programa, exec ...core.DBExecutor) (Programa, error)
		SoftDeletePrograma(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error

		// SemestreExists reports whether programaID already has a non-deleted semestre numbered numero (other than excludedID).
		SemestreExists(ctx context.Context, programaID int64, numero int, excludedID int64, exec ...core.DBExecutor) (bool, error)
		CreateSemestre(ctx context.Context, s Semestre, exec ...core.DBExecutor) (Semestre, error)
		QuerySemestres(ctx context.Context, programaID int64, exec ...core.DBExecutor) ([]Semestre, error)
		GetSemestre(ctx context.Context, id int64, exec ...core.DBExecutor) (Semestre, error)
		UpdateSemestre(ctx context.Context, s Semestre, exec ...core.DBExecutor) (Semestre, error)
		SoftDeleteSemestre(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error
	}

	Service interface {
		CheckCodigoUniqueness(ctx context.Context, codigo string, excludedID int64) error
		CheckSemestre(ctx context.Context, programaID int64, numero int, excludedID int64) error
		Create(ctx context.Context, in ProgramaInput) (Programa, error)
		Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error)
		GetByID(ctx context.Context, id int64) (Programa, error)
		Update(ctx context.Context, p Programa, in ProgramaInput) (Programa, error)
		Delete(ctx context.Context, id int64) error

		CreateSemestre(ctx context.Context, in SemestreInput) (Semestre, error)
		QuerySemestres(ctx context.Context, programaID int64) ([]Semestre, error)
		GetSemestre(ctx context.Context, id int64) (Semestre, error)
		UpdateSemestre(ctx context.Context, s Semestre, in SemestreInput) (Semestre, error)
		DeleteSemestre(ctx context.Context, id int64) error
	}

	service struct {
		repo Repository
		tx   core.Transactor
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, tx core.Transactor) Service {
	return &service{repo: repo, tx: tx}
}

func (svc *service) CheckCodigoUniqueness(ctx context.Context, codigo string, excludedID int64) error {
	exists, err := svc.repo.CodigoExists(ctx, codigo, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking codigo uniqueness")
	}
	if exists {
		return core.NewValidationError(ErrCodigoExists, core.FieldError{Field: "codigo", Error: ErrCodigoExists.Error()})
	}
	return nil
}

// CheckSemestre checks that the programa exists and that the semester number is free.
func (svc *service) CheckSemestre(ctx context.Context, programaID int64, numero int, excludedID int64) error {
	if _, err := svc.repo.GetPrograma(ctx, programaID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewFieldError("programa_id", "el programa no existe")
		}
		return errors.Wrap(err, "finding programa")
	}
	exists, err := svc.repo.SemestreExists(ctx, programaID, numero, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking semestre uniqueness")
	}
	if exists {
		return core.NewFieldError("numero", fmt.Sprintf("el semestre %d ya existe en el programa", numero))
	}
	return nil
}

func (svc *service) Create(ctx context.Context, in ProgramaInput) (Programa, error) {
	now := time.Now().UTC()
	p := Programa{Activo: true, CreatedAt: now, UpdatedAt: now}
	in.apply(&p)
	return svc.repo.CreatePrograma(ctx, p)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error) {
	ordering = core.CleanOrdering(ordering, OrderingFields, DefaultOrdering)
	programas, total, err := svc.repo.QueryProgramas(ctx, filter, page, ordering)
	if err != nil {
		return core.Page{}, err
	}
	return core.NewPage(programas, page, total), nil
}

func (svc *service) GetByID(ctx context.Context, id int64) (Programa, error) {
	return svc.repo.GetPrograma(ctx, id)
}

func (svc *service) Update(ctx context.Context, p Programa, in ProgramaInput) (Programa, error) {
	in.apply(&p)
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePrograma(ctx, p)
}

// Delete soft-deletes a programa without semesters.
func (svc *service) Delete(ctx context.Context, id int64) error {
	return svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		semestres, err := svc.repo.QuerySemestres(ctx, id, exec)
		if err != nil {
			return errors.Wrap(err, "querying semestres")
		}
		if len(semestres) > 0 {
			return core.NewValidationError(ErrHasSemestres)
		}
		return svc.repo.SoftDeletePrograma(ctx, id, time.Now().UTC(), exec)
	})
}

func (svc *service) CreateSemestre(ctx context.Context, in SemestreInput) (Semestre, error) {
	now := time.Now().UTC()
	s := Semestre{CreatedAt: now, UpdatedAt: now}
	in.apply(&s)
	return svc.repo.CreateSemestre(ctx, s)
}

func (svc *service) QuerySemestres(ctx context.Context, programaID int64) ([]Semestre, error) {
	return svc.repo.QuerySemestres(ctx, programaID)
}

func (svc *service) GetSemestre(ctx context.Context, id int64) (Semestre, error) {
	return svc.repo.GetSemestre(ctx, id)
}

func (svc *service) UpdateSemestre(ctx context.Context, s Semestre, in SemestreInput) (Semestre, error) {
	in.apply(&s)
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSemestre(ctx, s)
}

func (svc *service) DeleteSemestre(ctx context.Context, id int64) error {
	return svc.repo.SoftDeleteSemestre(ctx, id, time.Now().UTC())
}
