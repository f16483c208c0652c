package docente

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

const searchLimit = 10

var (
	// errors
	ErrNotFound  = core.NewNotFoundError("docente")
	ErrDNIExists = errors.New("ya existe un docente con este DNI")

	// OrderingFields maps query ordering fields to columns.
	OrderingFields = map[string]string{
		"nombres":          "nombres",
		"apellido_paterno": "apellido_paterno",
		"dni":              "dni",
		"tipo_docente":     "tipo_docente",
		"created_at":       "created_at",
	}
	DefaultOrdering = []core.DBOrdering{
		{Field: "apellido_paterno", Ascending: true},
		{Field: "apellido_materno", Ascending: true},
		{Field: "nombres", Ascending: true},
	}
)

type (
	Repository interface {
		// DNIExists reports whether a non-deleted docente other than excludedID owns dni.
		DNIExists(ctx context.Context, dni string, excludedID int64, exec ...core.DBExecutor) (bool, error)
		CreateDocente(ctx context.Context, d Docente, exec ...core.DBExecutor) (Docente, error)
		// QueryDocentes returns a page of docentes and the total count matching filter.
		// QueryFilter.Search does a case-insensitive match on names, DNI or email.
		QueryDocentes(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Docente, int, error)
		GetDocente(ctx context.Context, id int64, exec ...core.DBExecutor) (Docente, error)
		GetDocentesByID(ctx context.Context, ids []int64, exec ...core.DBExecutor) (map[int64]Docente, error)
		UpdateDocente(ctx context.Context, d Docente, exec ...core.DBExecutor) (Docente, error)
		SoftDeleteDocente(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, dni string, excludedID int64) error
		Create(ctx context.Context, in DocenteInput) (Docente, error)
		Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error)
		Search(ctx context.Context, term string) ([]Docente, error)
		GetByID(ctx context.Context, id int64) (Docente, error)
		GetByIDs(ctx context.Context, ids ...int64) (map[int64]Docente, error)
		Update(ctx context.Context, d Docente, in DocenteInput) (Docente, error)
		Delete(ctx context.Context, id int64) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(ctx context.Context, dni string, excludedID int64) error {
	exists, err := svc.repo.DNIExists(ctx, dni, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking DNI uniqueness")
	}
	if exists {
		return core.NewValidationError(ErrDNIExists, core.FieldError{Field: "dni", Error: ErrDNIExists.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, in DocenteInput) (Docente, error) {
	now := time.Now().UTC()
	d := Docente{CreatedAt: now, UpdatedAt: now}
	in.apply(&d)
	return svc.repo.CreateDocente(ctx, d)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error) {
	ordering = core.CleanOrdering(ordering, OrderingFields, DefaultOrdering...)
	docentes, total, err := svc.repo.QueryDocentes(ctx, filter, page, ordering)
	if err != nil {
		return core.Page{}, err
	}
	return core.NewPage(docentes, page, total), nil
}

// Search looks up a handful of docentes by name or DNI (autocomplete).
func (svc *service) Search(ctx context.Context, term string) ([]Docente, error) {
	term = core.CleanString(term)
	if term == "" {
		return []Docente{}, nil
	}
	docentes, _, err := svc.repo.QueryDocentes(
		ctx, &QueryFilter{Search: term}, core.PageRequest{Page: 1, PerPage: searchLimit}, DefaultOrdering)
	return docentes, err
}

func (svc *service) GetByID(ctx context.Context, id int64) (Docente, error) {
	return svc.repo.GetDocente(ctx, id)
}

func (svc *service) GetByIDs(ctx context.Context, ids ...int64) (map[int64]Docente, error) {
	if len(ids) == 0 {
		return map[int64]Docente{}, nil
	}
	return svc.repo.GetDocentesByID(ctx, ids)
}

func (svc *service) Update(ctx context.Context, d Docente, in DocenteInput) (Docente, error) {
	in.apply(&d)
	d.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDocente(ctx, d)
}

func (svc *service) Delete(ctx context.Context, id int64) error {
	return svc.repo.SoftDeleteDocente(ctx, id, time.Now().UTC())
}
