package expediente

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
)

var (
	// errors
	ErrNotFound     = core.NewNotFoundError("expediente")
	ErrNumeroExists = errors.New("ya existe un expediente con este número")

	OrderingFields = map[string]string{
		"numero_expediente": "numero_expediente",
		"fecha_ingreso":     "fecha_ingreso",
		"remitente":         "remitente",
		"tipo_asunto":       "tipo_asunto",
		"created_at":        "created_at",
	}
	DefaultOrdering = []core.DBOrdering{
		{Field: "fecha_ingreso", Ascending: false},
		{Field: "id", Ascending: false},
	}
)

type (
	Repository interface {
		NumeroExists(ctx context.Context, numero string, excludedID int64, exec ...core.DBExecutor) (bool, error)
		CreateExpediente(ctx context.Context, e Expediente, exec ...core.DBExecutor) (Expediente, error)
		// QueryExpedientes returns a page of expedientes and the total count matching filter.
		// QueryFilter.Search matches the expediente number, sender and subject.
		QueryExpedientes(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Expediente, int, error)
		GetExpediente(ctx context.Context, id int64, exec ...core.DBExecutor) (Expediente, error)
		UpdateExpediente(ctx context.Context, e Expediente, exec ...core.DBExecutor) (Expediente, error)
		SoftDeleteExpediente(ctx context.Context, id int64, at time.Time, exec ...core.DBExecutor) error
		// ClearPagoLinks drops the reference to pagoID from every expediente and returns how many changed.
		ClearPagoLinks(ctx context.Context, pagoID int64, at time.Time, exec ...core.DBExecutor) (int, error)
		ClearDevolucionLinks(ctx context.Context, devolucionID int64, at time.Time, exec ...core.DBExecutor) (int, error)
	}

	// PagoLinker is the part of pago.Service used to link expedientes.
	PagoLinker interface {
		FindLinkCandidates(ctx context.Context, q pago.LinkQuery, exec ...core.DBExecutor) ([]pago.PagoDocente, error)
		ApplyLink(ctx context.Context, p pago.PagoDocente, l pago.Link, exec ...core.DBExecutor) (pago.PagoDocente, error)
		ClearLink(ctx context.Context, numeroExpediente string, exec ...core.DBExecutor) error
		Delete(ctx context.Context, id int64, exec ...core.DBExecutor) error
	}

	// DevolucionLinker is the part of devolucion.Service used to link expedientes.
	DevolucionLinker interface {
		FindLinkCandidate(ctx context.Context, dni string, programaID int64, exec ...core.DBExecutor) (devolucion.Devolucion, bool, error)
		ApplyLink(ctx context.Context, d devolucion.Devolucion, l devolucion.Link, exec ...core.DBExecutor) (devolucion.Devolucion, error)
		ClearLink(ctx context.Context, numeroExpediente string, exec ...core.DBExecutor) error
		Delete(ctx context.Context, id int64, exec ...core.DBExecutor) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, numero string, excludedID int64) error
		// Create registers the expediente and links it to its payment or refund, if one matches.
		Create(ctx context.Context, in ExpedienteInput) (Expediente, error)
		Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error)
		QueryAll(ctx context.Context, filter *QueryFilter) ([]Expediente, error)
		GetByID(ctx context.Context, id int64) (Expediente, error)
		// Update replaces the editable fields and recomputes the link.
		Update(ctx context.Context, e Expediente, in ExpedienteInput) (Expediente, error)
		// Relink recomputes the link of an unchanged expediente (eg. after its payment was registered).
		Relink(ctx context.Context, e Expediente) (Expediente, error)
		// SetArchivo records the stored attachment and returns the previous path, if any.
		SetArchivo(ctx context.Context, e Expediente, path, nombre string) (Expediente, string, error)
		// Delete soft-deletes the expediente and unlinks its payment or refund.
		Delete(ctx context.Context, e Expediente) error
		// DeletePago soft-deletes the payment and unlinks the expedientes that pointed at it.
		DeletePago(ctx context.Context, pagoID int64) error
		// DeleteDevolucion soft-deletes the refund and unlinks the expedientes that pointed at it.
		DeleteDevolucion(ctx context.Context, devolucionID int64) error
	}

	service struct {
		repo         Repository
		tx           core.Transactor
		pagos        PagoLinker
		devoluciones DevolucionLinker
		log          core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, tx core.Transactor, pagos PagoLinker, devoluciones DevolucionLinker, log core.Logger) Service {
	return &service{repo: repo, tx: tx, pagos: pagos, devoluciones: devoluciones, log: log}
}

func (svc *service) CheckUniqueness(ctx context.Context, numero string, excludedID int64) error {
	exists, err := svc.repo.NumeroExists(ctx, numero, excludedID)
	if err != nil {
		return errors.Wrap(err, "checking numero uniqueness")
	}
	if exists {
		return core.NewValidationError(ErrNumeroExists, core.FieldError{Field: "numero_expediente", Error: ErrNumeroExists.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, in ExpedienteInput) (Expediente, error) {
	now := time.Now().UTC()
	e := Expediente{CreatedAt: now, UpdatedAt: now}
	in.apply(&e)

	err := svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.link(ctx, &e, exec); err != nil {
			return err
		}
		var err error
		e, err = svc.repo.CreateExpediente(ctx, e, exec)
		return err
	})
	if err != nil {
		return Expediente{}, err
	}
	return e, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, page core.PageRequest, ordering []core.DBOrdering) (core.Page, error) {
	ordering = core.CleanOrdering(ordering, OrderingFields, DefaultOrdering...)
	exps, total, err := svc.repo.QueryExpedientes(ctx, filter, page, ordering)
	if err != nil {
		return core.Page{}, err
	}
	return core.NewPage(exps, page, total), nil
}

func (svc *service) QueryAll(ctx context.Context, filter *QueryFilter) ([]Expediente, error) {
	exps, _, err := svc.repo.QueryExpedientes(ctx, filter, core.All, DefaultOrdering)
	return exps, err
}

func (svc *service) GetByID(ctx context.Context, id int64) (Expediente, error) {
	return svc.repo.GetExpediente(ctx, id)
}

func (svc *service) Update(ctx context.Context, e Expediente, in ExpedienteInput) (Expediente, error) {
	prevNumero := e.NumeroExpediente
	in.apply(&e)
	e.UpdatedAt = time.Now().UTC()

	err := svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.unlink(ctx, prevNumero, exec); err != nil {
			return err
		}
		if err := svc.link(ctx, &e, exec); err != nil {
			return err
		}
		var err error
		e, err = svc.repo.UpdateExpediente(ctx, e, exec)
		return err
	})
	if err != nil {
		return Expediente{}, err
	}
	return e, nil
}

func (svc *service) Relink(ctx context.Context, e Expediente) (Expediente, error) {
	e.UpdatedAt = time.Now().UTC()
	err := svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.unlink(ctx, e.NumeroExpediente, exec); err != nil {
			return err
		}
		if err := svc.link(ctx, &e, exec); err != nil {
			return err
		}
		var err error
		e, err = svc.repo.UpdateExpediente(ctx, e, exec)
		return err
	})
	if err != nil {
		return Expediente{}, err
	}
	return e, nil
}

func (svc *service) SetArchivo(ctx context.Context, e Expediente, path, nombre string) (Expediente, string, error) {
	prev := e.ArchivoPath
	e.ArchivoPath = path
	e.ArchivoNombre = nombre
	e.UpdatedAt = time.Now().UTC()
	e, err := svc.repo.UpdateExpediente(ctx, e)
	if err != nil {
		return Expediente{}, "", err
	}
	return e, prev, nil
}

func (svc *service) Delete(ctx context.Context, e Expediente) error {
	return svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.unlink(ctx, e.NumeroExpediente, exec); err != nil {
			return err
		}
		return svc.repo.SoftDeleteExpediente(ctx, e.ID, time.Now().UTC(), exec)
	})
}

func (svc *service) DeletePago(ctx context.Context, pagoID int64) error {
	return svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.pagos.Delete(ctx, pagoID, exec); err != nil {
			return err
		}
		if _, err := svc.repo.ClearPagoLinks(ctx, pagoID, time.Now().UTC(), exec); err != nil {
			return errors.Wrap(err, "unlinking expedientes")
		}
		return nil
	})
}

func (svc *service) DeleteDevolucion(ctx context.Context, devolucionID int64) error {
	return svc.tx.WithinTx(ctx, func(exec core.DBExecutor) error {
		if err := svc.devoluciones.Delete(ctx, devolucionID, exec); err != nil {
			return err
		}
		if _, err := svc.repo.ClearDevolucionLinks(ctx, devolucionID, time.Now().UTC(), exec); err != nil {
			return errors.Wrap(err, "unlinking expedientes")
		}
		return nil
	})
}

// link looks up the payment or refund e refers to and stamps e's number on it.
// e is left unlinked when nothing matches.
func (svc *service) link(ctx context.Context, e *Expediente, exec core.DBExecutor) error {
	e.PagoDocenteID = null.Int64{}
	e.DevolucionID = null.Int64{}

	switch e.TipoAsunto {
	case AsuntoPagoDocente:
		if !e.DocenteID.Valid || !e.CursoID.Valid || e.Periodo == "" {
			return nil
		}
		candidates, err := svc.pagos.FindLinkCandidates(ctx, pago.LinkQuery{
			DocenteID: e.DocenteID.Int64,
			CursoID:   e.CursoID.Int64,
			Periodo:   e.Periodo,
			Mes:       e.Mes.Int,
			Anio:      e.Anio.Int,
		}, exec)
		if err != nil {
			return errors.Wrap(err, "finding pago candidates")
		}
		if len(candidates) == 0 {
			svc.log.Info("expediente " + e.NumeroExpediente + ": no matching pago")
			return nil
		}
		p, err := svc.pagos.ApplyLink(ctx, candidates[0], pago.Link{
			NumeroExpediente: e.NumeroExpediente,
			TipoDocumento:    e.TipoDocumento,
			NumeroDocumento:  e.NumeroDocumento,
			Fecha:            e.FechaIngreso,
		}, exec)
		if err != nil {
			return errors.Wrap(err, "linking pago")
		}
		e.PagoDocenteID = null.Int64From(p.ID)

	case AsuntoDevolucion:
		if e.DNISolicitante == "" {
			return nil
		}
		d, found, err := svc.devoluciones.FindLinkCandidate(ctx, e.DNISolicitante, e.ProgramaID.Int64, exec)
		if err != nil {
			return errors.Wrap(err, "finding devolucion candidate")
		}
		if !found {
			svc.log.Info("expediente " + e.NumeroExpediente + ": no matching devolucion")
			return nil
		}
		d, err = svc.devoluciones.ApplyLink(ctx, d, devolucion.Link{
			NumeroExpediente: e.NumeroExpediente,
			TipoDocumento:    e.TipoDocumento,
			NumeroDocumento:  e.NumeroDocumento,
		}, exec)
		if err != nil {
			return errors.Wrap(err, "linking devolucion")
		}
		e.DevolucionID = null.Int64From(d.ID)
	}
	return nil
}

func (svc *service) unlink(ctx context.Context, numero string, exec core.DBExecutor) error {
	if err := svc.pagos.ClearLink(ctx, numero, exec); err != nil {
		return errors.Wrap(err, "unlinking pagos")
	}
	if err := svc.devoluciones.ClearLink(ctx, numero, exec); err != nil {
		return errors.Wrap(err, "unlinking devoluciones")
	}
	return nil
}
