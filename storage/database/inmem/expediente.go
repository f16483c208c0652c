package inmemdb

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
)

var expedienteColumns = map[string]cmpFunc[expediente.Expediente]{
	"id":                func(a, b expediente.Expediente) int { return cmpInt64(a.ID, b.ID) },
	"numero_expediente": func(a, b expediente.Expediente) int { return cmpString(a.NumeroExpediente, b.NumeroExpediente) },
	"fecha_ingreso":     func(a, b expediente.Expediente) int { return cmpTime(a.FechaIngreso.Time, b.FechaIngreso.Time) },
	"remitente":         func(a, b expediente.Expediente) int { return cmpString(a.Remitente, b.Remitente) },
	"tipo_asunto":       func(a, b expediente.Expediente) int { return cmpString(a.TipoAsunto, b.TipoAsunto) },
	"created_at":        func(a, b expediente.Expediente) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

type expedienteRepository struct {
	db *DB
}

var _ expediente.Repository = (*expedienteRepository)(nil)

func NewExpedienteRepository(db *DB) expediente.Repository {
	return &expedienteRepository{db: db}
}

func (repo *expedienteRepository) NumeroExists(_ context.Context, numero string, excludedID int64, _ ...core.DBExecutor) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, e := range repo.db.expedientes {
		if e.DeletedAt == nil && e.NumeroExpediente == numero && e.ID != excludedID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *expedienteRepository) CreateExpediente(_ context.Context, e expediente.Expediente, _ ...core.DBExecutor) (expediente.Expediente, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	e.ID = repo.db.nextID()
	stored := e
	repo.db.expedientes[e.ID] = &stored
	return e, nil
}

func (repo *expedienteRepository) QueryExpedientes(_ context.Context, filter *expediente.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]expediente.Expediente, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	exps := make([]expediente.Expediente, 0)
	for _, id := range sortedIDs(repo.db.expedientes) {
		e := repo.db.expedientes[id]
		if e.DeletedAt != nil {
			continue
		}
		if filter != nil && !expedienteMatches(*e, filter) {
			continue
		}
		exps = append(exps, *e)
	}
	sortRecords(exps, ordering, expedienteColumns)
	return paginate(exps, page), len(exps), nil
}

func expedienteMatches(e expediente.Expediente, filter *expediente.QueryFilter) bool {
	if !matches(filter.Search, e.NumeroExpediente, e.Remitente, e.Asunto, e.NumeroDocumento) {
		return false
	}
	if filter.TipoAsunto != "" && e.TipoAsunto != filter.TipoAsunto {
		return false
	}
	if filter.Vinculado != nil && e.Vinculado() != *filter.Vinculado {
		return false
	}
	if !filter.FechaDesde.IsZero() && e.FechaIngreso.Before(filter.FechaDesde.Time) {
		return false
	}
	if !filter.FechaHasta.IsZero() && e.FechaIngreso.After(filter.FechaHasta.Time) {
		return false
	}
	return true
}

func (repo *expedienteRepository) GetExpediente(_ context.Context, id int64, _ ...core.DBExecutor) (expediente.Expediente, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if e, ok := repo.db.expedientes[id]; ok && e.DeletedAt == nil {
		return *e, nil
	}
	return expediente.Expediente{}, expediente.ErrNotFound
}

func (repo *expedienteRepository) UpdateExpediente(_ context.Context, e expediente.Expediente, _ ...core.DBExecutor) (expediente.Expediente, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if cur, ok := repo.db.expedientes[e.ID]; !ok || cur.DeletedAt != nil {
		return expediente.Expediente{}, expediente.ErrNotFound
	}
	stored := e
	repo.db.expedientes[e.ID] = &stored
	return e, nil
}

func (repo *expedienteRepository) SoftDeleteExpediente(_ context.Context, id int64, at time.Time, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	e, ok := repo.db.expedientes[id]
	if !ok || e.DeletedAt != nil {
		return expediente.ErrNotFound
	}
	e.DeletedAt = &at
	return nil
}

func (repo *expedienteRepository) ClearPagoLinks(_ context.Context, pagoID int64, at time.Time, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, e := range repo.db.expedientes {
		if e.DeletedAt == nil && e.PagoDocenteID.Valid && e.PagoDocenteID.Int64 == pagoID {
			e.PagoDocenteID = null.Int64{}
			e.UpdatedAt = at
			cnt++
		}
	}
	return cnt, nil
}

func (repo *expedienteRepository) ClearDevolucionLinks(_ context.Context, devolucionID int64, at time.Time, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, e := range repo.db.expedientes {
		if e.DeletedAt == nil && e.DevolucionID.Valid && e.DevolucionID.Int64 == devolucionID {
			e.DevolucionID = null.Int64{}
			e.UpdatedAt = at
			cnt++
		}
	}
	return cnt, nil
}
