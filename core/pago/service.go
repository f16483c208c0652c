package pago

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
)

var (
	// errors
	ErrNotFound  = core.NewNotFoundError("pago docente")
	ErrDuplicate = errors.New("ya existe un pago para este docente, curso y periodo")

	OrderingFields = map[string]string{
		"periodo":      "p.periodo",
		"estado":       "p.estado",
		"importe_neto": "p.importe_neto",
		"docente":      "d.apellido_paterno",
		"created_at":   "p.created_at",
	}
	DefaultOrdering = []core.DBOrdering{
		{Field: "p.created_at", Ascending: false},
		{Field: "p.id", Ascending: false},
	}
)

type (
	Repository interface {
		// ExistsForPeriodo reports whether a non-deleted payment (other than excludedID)
		// exists for the same docente, curso and periodo.
		ExistsForPeriodo(ctx context.Context, docenteID, cursoID int64, periodo string, excludedID int64, exec ...core.DBExecutor) (bool, error)
		CreatePago(ctx context.Context, p PagoDocente, exec ...core.DBExecutor) (PagoDocente, error)
		// QueryPagos returns a page of payments and the total count matching filter.
		// QueryFilter.Search matches the docente name or DNI and the document numbers.
		QueryPagos(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]PagoDocente, int, error)
		GetPago(ctx context.Context, id int64, exec ...core.DBExecutor) (PagoDocente, error)
		// FindPagos returns the non-deleted, non-annulled payments of docente/curso/periodo, newest first.
		FindPagos(ctx context.Context, docenteID, cursoID int64, periodo string, exec ...core.DBExecutor) ([]PagoDocente, error)
		UpdatePago(ctx context.Context, p PagoDocente, exec ...core.DBExecutor) (PagoDocente, error)
		// ClearNumeroExpediente unsets numero_expediente on the payments carrying `numero`.
		ClearNumeroExpediente(ctx context.Context, numero string, exec ...core.DBExecutor) (int, error)
		SoftDeletePago(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error
	}

	DocenteGetter interface {
		GetByID(ctx context.Context, id int64) (docente.Docente, error)
		GetByIDs(ctx context.Context, ids ...int64) (map[int64]docente.Docente, error)
	}

	CursoGetter interface {
		GetByID(ctx context.Context, id int64) (curso.Curso, error)
		GetByIDs(ctx context.Context, ids ...int64) (map[int64]curso.Curso, error)
	}

	Service interface {
		Check(ctx context.Context, in PagoInput, excludedID int64) error
		Create(ctx context.Context, in PagoInput) (PagoDocente, error)
		Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error)
		// QueryAll returns every payment matching filter (exports).
		QueryAll(ctx context.Context, filter *QueryFilter) ([]PagoDocente, error)
		GetByID(ctx context.Context, id int64) (PagoDocente, error)
		Update(ctx context.Context, p PagoDocente, in PagoInput) (PagoDocente, error)
		Transition(ctx context.Context, p PagoDocente, in TransitionInput) (PagoDocente, error)
		Delete(ctx context.Context, id int64, exec ...core.DBExecutor) error

		FindLinkCandidates(ctx context.Context, q LinkQuery, exec ...core.DBExecutor) ([]PagoDocente, error)
		// ApplyLink stamps an expediente on p, moving a pending payment into processing.
		ApplyLink(ctx context.Context, p PagoDocente, l Link, exec ...core.DBExecutor) (PagoDocente, error)
		ClearLink(ctx context.Context, numeroExpediente string, exec ...core.DBExecutor) error
	}

	service struct {
		repo     Repository
		docentes DocenteGetter
		cursos   CursoGetter
		conf     core.PaymentsConfig
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, docentes DocenteGetter, cursos CursoGetter, conf core.PaymentsConfig) Service {
	return &service{repo: repo, docentes: docentes, cursos: cursos, conf: conf}
}

// Check validates the references and the docente/curso/periodo uniqueness.
func (svc *service) Check(ctx context.Context, in PagoInput, excludedID int64) error {
	var flds []core.FieldError
	if _, err := svc.docentes.GetByID(ctx, in.DocenteID); err != nil {
		if errors.Cause(err) != docente.ErrNotFound {
			return errors.Wrap(err, "finding docente")
		}
		flds = append(flds, core.FieldError{Field: "docente_id", Error: "el docente no existe"})
	}
	if _, err := svc.cursos.GetByID(ctx, in.CursoID); err != nil {
		if errors.Cause(err) != curso.ErrNotFound {
			return errors.Wrap(err, "finding curso")
		}
		flds = append(flds, core.FieldError{Field: "curso_id", Error: "el curso no existe"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(errors.New(flds[0].Error), flds...)
	}

	exists, err := svc.repo.ExistsForPeriodo(ctx, in.DocenteID, in.CursoID, in.Periodo, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking pago uniqueness")
	}
	if exists {
		return core.NewValidationError(ErrDuplicate, core.FieldError{Field: "periodo", Error: ErrDuplicate.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, in PagoInput) (PagoDocente, error) {
	d, c, err := svc.references(ctx, in)
	if err != nil {
		return PagoDocente{}, err
	}
	now := time.Now().UTC()
	p := PagoDocente{Estado: EstadoPendiente, CreatedAt: now, UpdatedAt: now}
	in.apply(&p, d, c, svc.conf)
	if p, err = svc.repo.CreatePago(ctx, p); err != nil {
		return PagoDocente{}, err
	}
	return withRelations(p, d, c), nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error) {
	ordering = core.CleanOrdering(ordering, OrderingFields, DefaultOrdering...)
	pagos, total, err := svc.repo.QueryPagos(ctx, filter, page, ordering)
	if err != nil {
		return core.Page{}, err
	}
	if err := svc.loadRelations(ctx, pagos); err != nil {
		return core.Page{}, err
	}
	return core.NewPage(pagos, page, total), nil
}

func (svc *service) QueryAll(ctx context.Context, filter *QueryFilter) ([]PagoDocente, error) {
	pagos, _, err := svc.repo.QueryPagos(ctx, filter, core.All, DefaultOrdering)
	if err != nil {
		return nil, err
	}
	if err := svc.loadRelations(ctx, pagos); err != nil {
		return nil, err
	}
	return pagos, nil
}

func (svc *service) GetByID(ctx context.Context, id int64) (PagoDocente, error) {
	p, err := svc.repo.GetPago(ctx, id)
	if err != nil {
		return PagoDocente{}, err
	}
	pagos := []PagoDocente{p}
	if err := svc.loadRelations(ctx, pagos); err != nil {
		return PagoDocente{}, err
	}
	return pagos[0], nil
}

// Update replaces the editable fields of p and recomputes its amounts.
func (svc *service) Update(ctx context.Context, p PagoDocente, in PagoInput) (PagoDocente, error) {
	d, c, err := svc.references(ctx, in)
	if err != nil {
		return PagoDocente{}, err
	}
	in.apply(&p, d, c, svc.conf)
	p.UpdatedAt = time.Now().UTC()
	if p, err = svc.repo.UpdatePago(ctx, p); err != nil {
		return PagoDocente{}, err
	}
	return withRelations(p, d, c), nil
}

func (svc *service) Transition(ctx context.Context, p PagoDocente, in TransitionInput) (PagoDocente, error) {
	estado, err := Workflow.Apply(ctx, p.Estado, core.CleanString(in.Evento, true /* lower */))
	if err != nil {
		return PagoDocente{}, err
	}
	p.Estado = estado
	if obs := core.CleanString(in.Observaciones); obs != "" {
		p.Observaciones = obs
	}
	p.UpdatedAt = time.Now().UTC()
	if p, err = svc.repo.UpdatePago(ctx, p); err != nil {
		return PagoDocente{}, err
	}
	p.Eventos = Workflow.AvailableEvents(p.Estado)
	return p, nil
}

func (svc *service) Delete(ctx context.Context, id int64, exec ...core.DBExecutor) error {
	return svc.repo.SoftDeletePago(ctx, id, time.Now().UTC(), exec...)
}

func (svc *service) FindLinkCandidates(ctx context.Context, q LinkQuery, exec ...core.DBExecutor) ([]PagoDocente, error) {
	pagos, err := svc.repo.FindPagos(ctx, q.DocenteID, q.CursoID, core.CleanUpper(q.Periodo), exec...)
	if err != nil {
		return nil, err
	}
	if q.Mes == 0 || q.Anio == 0 {
		return pagos, nil
	}
	candidates := make([]PagoDocente, 0, len(pagos))
	for _, p := range pagos {
		if p.TaughtIn(q.Mes, q.Anio) {
			candidates = append(candidates, p)
		}
	}
	return candidates, nil
}

func (svc *service) ApplyLink(ctx context.Context, p PagoDocente, l Link, exec ...core.DBExecutor) (PagoDocente, error) {
	l.apply(&p)
	if p.Estado == EstadoPendiente {
		estado, err := Workflow.Apply(ctx, p.Estado, EventoTramitar)
		if err != nil {
			return PagoDocente{}, err
		}
		p.Estado = estado
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdatePago(ctx, p, exec...)
}

func (svc *service) ClearLink(ctx context.Context, numeroExpediente string, exec ...core.DBExecutor) error {
	if numeroExpediente == "" {
		return nil
	}
	_, err := svc.repo.ClearNumeroExpediente(ctx, numeroExpediente, exec...)
	return err
}

func (svc *service) references(ctx context.Context, in PagoInput) (docente.Docente, curso.Curso, error) {
	d, err := svc.docentes.GetByID(ctx, in.DocenteID)
	if err != nil {
		return docente.Docente{}, curso.Curso{}, errors.Wrap(err, "finding docente")
	}
	c, err := svc.cursos.GetByID(ctx, in.CursoID)
	if err != nil {
		return docente.Docente{}, curso.Curso{}, errors.Wrap(err, "finding curso")
	}
	return d, c, nil
}

// loadRelations fills the docente and curso summaries of pagos in place.
func (svc *service) loadRelations(ctx context.Context, pagos []PagoDocente) error {
	if len(pagos) == 0 {
		return nil
	}
	docenteIDs := make([]int64, 0, len(pagos))
	cursoIDs := make([]int64, 0, len(pagos))
	for _, p := range pagos {
		docenteIDs = append(docenteIDs, p.DocenteID)
		cursoIDs = append(cursoIDs, p.CursoID)
	}
	docentes, err := svc.docentes.GetByIDs(ctx, docenteIDs...)
	if err != nil {
		return errors.Wrap(err, "loading docentes")
	}
	cursos, err := svc.cursos.GetByIDs(ctx, cursoIDs...)
	if err != nil {
		return errors.Wrap(err, "loading cursos")
	}
	for i, p := range pagos {
		pagos[i] = withRelations(p, docentes[p.DocenteID], cursos[p.CursoID])
	}
	return nil
}

func withRelations(p PagoDocente, d docente.Docente, c curso.Curso) PagoDocente {
	if d.ID != 0 {
		p.Docente = d.Summary()
	}
	if c.ID != 0 {
		p.Curso = c.Summary()
	}
	p.Eventos = Workflow.AvailableEvents(p.Estado)
	return p
}
