package devolucion

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("devolución")

	OrderingFields = map[string]string{
		"apellidos":  "d.apellidos",
		"dni":        "d.dni",
		"monto":      "d.monto",
		"estado":     "d.estado",
		"proceso":    "d.proceso_admision",
		"created_at": "d.created_at",
	}
	DefaultOrdering = []core.DBOrdering{
		{Field: "d.created_at", Ascending: false},
		{Field: "d.id", Ascending: false},
	}
)

type (
	Repository interface {
		CreateDevolucion(ctx context.Context, d Devolucion, exec ...core.DBExecutor) (Devolucion, error)
		// QueryDevoluciones returns a page of refunds and the total count matching filter.
		// QueryFilter.Search matches names, DNI and the expediente/resolution numbers.
		QueryDevoluciones(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Devolucion, int, error)
		GetDevolucion(ctx context.Context, id int64, exec ...core.DBExecutor) (Devolucion, error)
		// FindByDNI returns the non-deleted refunds of dni in any of `estados` (and programa when non-zero), newest first.
		FindByDNI(ctx context.Context, dni string, programaID int64, estados []string, exec ...core.DBExecutor) ([]Devolucion, error)
		UpdateDevolucion(ctx context.Context, d Devolucion, exec ...core.DBExecutor) (Devolucion, error)
		ClearNumeroExpediente(ctx context.Context, numero string, exec ...core.DBExecutor) (int, error)
		SoftDeleteDevolucion(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error
	}

	ProgramaGetter interface {
		GetByID(ctx context.Context, id int64) (programa.Programa, error)
	}

	Service interface {
		CheckPrograma(ctx context.Context, programaID int64) error
		Create(ctx context.Context, in DevolucionInput) (Devolucion, error)
		Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error)
		QueryAll(ctx context.Context, filter *QueryFilter) ([]Devolucion, error)
		GetByID(ctx context.Context, id int64) (Devolucion, error)
		Update(ctx context.Context, d Devolucion, in DevolucionInput) (Devolucion, error)
		Transition(ctx context.Context, d Devolucion, in TransitionInput) (Devolucion, error)
		Delete(ctx context.Context, id int64, exec ...core.DBExecutor) error

		// FindLinkCandidate returns the newest open refund of dni (within programa when non-zero).
		FindLinkCandidate(ctx context.Context, dni string, programaID int64, exec ...core.DBExecutor) (Devolucion, bool, error)
		ApplyLink(ctx context.Context, d Devolucion, l Link, exec ...core.DBExecutor) (Devolucion, error)
		ClearLink(ctx context.Context, numeroExpediente string, exec ...core.DBExecutor) error
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

func (svc *service) CheckPrograma(ctx context.Context, programaID int64) error {
	if _, err := svc.programas.GetByID(ctx, programaID); err != nil {
		if errors.Cause(err) == programa.ErrNotFound {
			return core.NewFieldError("programa_id", "el programa no existe")
		}
		return errors.Wrap(err, "finding programa")
	}
	return nil
}

func (svc *service) Create(ctx context.Context, in DevolucionInput) (Devolucion, error) {
	now := time.Now().UTC()
	d := Devolucion{Estado: EstadoPendiente, CreatedAt: now, UpdatedAt: now}
	in.apply(&d)
	d, err := svc.repo.CreateDevolucion(ctx, d)
	if err != nil {
		return Devolucion{}, err
	}
	return svc.GetByID(ctx, d.ID)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error) {
	ordering = core.CleanOrdering(ordering, OrderingFields, DefaultOrdering...)
	devs, total, err := svc.repo.QueryDevoluciones(ctx, filter, page, ordering)
	if err != nil {
		return core.Page{}, err
	}
	for i := range devs {
		devs[i].Eventos = Workflow.AvailableEvents(devs[i].Estado)
	}
	return core.NewPage(devs, page, total), nil
}

func (svc *service) QueryAll(ctx context.Context, filter *QueryFilter) ([]Devolucion, error) {
	devs, _, err := svc.repo.QueryDevoluciones(ctx, filter, core.All, DefaultOrdering)
	return devs, err
}

func (svc *service) GetByID(ctx context.Context, id int64) (Devolucion, error) {
	d, err := svc.repo.GetDevolucion(ctx, id)
	if err != nil {
		return Devolucion{}, err
	}
	d.Eventos = Workflow.AvailableEvents(d.Estado)
	return d, nil
}

func (svc *service) Update(ctx context.Context, d Devolucion, in DevolucionInput) (Devolucion, error) {
	in.apply(&d)
	d.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateDevolucion(ctx, d); err != nil {
		return Devolucion{}, err
	}
	return svc.GetByID(ctx, d.ID)
}

func (svc *service) Transition(ctx context.Context, d Devolucion, in TransitionInput) (Devolucion, error) {
	estado, err := Workflow.Apply(ctx, d.Estado, core.CleanString(in.Evento, true /* lower */))
	if err != nil {
		return Devolucion{}, err
	}
	d.Estado = estado
	if obs := core.CleanString(in.Observaciones); obs != "" {
		d.Observaciones = obs
	}
	d.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateDevolucion(ctx, d); err != nil {
		return Devolucion{}, err
	}
	return svc.GetByID(ctx, d.ID)
}

func (svc *service) Delete(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return svc.repo.SoftDeleteDevolucion(ctx, id, time.Now().UTC(), exec...)
}

func (svc *service) FindLinkCandidate(ctx context.Context, dni string, programaID int64, exec ...core.DBExecutor) (Devolucion, bool, error) {
	devs, err := svc.repo.FindByDNI(ctx, core.CleanString(dni), programaID, []string{EstadoPendiente, EstadoEnTramite}, exec...)
	if err != nil {
		return Devolucion{}, false, err
	}
	if len(devs) == 0 {
		return Devolucion{}, false, nil
	}
	return devs[0], true, nil
}

func (svc *service) ApplyLink(ctx context.Context, d Devolucion, l Link, exec ...core.DBExecutor) (Devolucion, error) {
	d.NumeroExpediente = l.NumeroExpediente
	if l.TipoDocumento == DocumentoResolucion && l.NumeroDocumento != "" {
		d.NumeroResolucion = l.NumeroDocumento
	}
	if d.Estado == EstadoPendiente {
		estado, err := Workflow.Apply(ctx, d.Estado, EventoTramitar)
		if err != nil {
			return Devolucion{}, err
		}
		d.Estado = estado
	}
	d.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateDevolucion(ctx, d, exec...)
}

func (svc *service) ClearLink(ctx context.Context, numeroExpediente string, exec ...core.DBExecutor) error {
	if numeroExpediente == "" {
		return nil
	}
	_, err := svc.repo.ClearNumeroExpediente(ctx, numeroExpediente, exec...)
	return err
}
