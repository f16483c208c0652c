package inmemdb

import (
	"context"
	"time"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
)

var devolucionColumns = map[string]cmpFunc[devolucion.Devolucion]{
	"d.id":               func(a, b devolucion.Devolucion) int { return cmpInt64(a.ID, b.ID) },
	"d.apellidos":        func(a, b devolucion.Devolucion) int { return cmpString(a.Apellidos, b.Apellidos) },
	"d.dni":              func(a, b devolucion.Devolucion) int { return cmpString(a.DNI, b.DNI) },
	"d.monto":            func(a, b devolucion.Devolucion) int { return cmpFloat(a.Monto, b.Monto) },
	"d.estado":           func(a, b devolucion.Devolucion) int { return cmpString(a.Estado, b.Estado) },
	"d.proceso_admision": func(a, b devolucion.Devolucion) int { return cmpString(a.ProcesoAdmision, b.ProcesoAdmision) },
	"d.created_at":       func(a, b devolucion.Devolucion) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

type devolucionRepository struct {
	db *DB
}

var _ devolucion.Repository = (*devolucionRepository)(nil)

func NewDevolucionRepository(db *DB) devolucion.Repository {
	return &devolucionRepository{db: db}
}

// joined fills ProgramaNombre; the read lock must be held.
func (repo *devolucionRepository) joined(d devolucion.Devolucion) devolucion.Devolucion {
	d.Eventos = nil
	d.ProgramaNombre = ""
	if p, ok := repo.db.programas[d.ProgramaID]; ok {
		d.ProgramaNombre = p.Nombre
	}
	return d
}

func (repo *devolucionRepository) CreateDevolucion(_ context.Context, d devolucion.Devolucion, _ ...core.DBExecutor) (devolucion.Devolucion, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	d.ID = repo.db.nextID()
	stored := d
	repo.db.devoluciones[d.ID] = &stored
	return repo.joined(d), nil
}

func (repo *devolucionRepository) filtered(keep func(devolucion.Devolucion) bool) []devolucion.Devolucion {
	devs := make([]devolucion.Devolucion, 0)
	for _, id := range sortedIDs(repo.db.devoluciones) {
		d := repo.db.devoluciones[id]
		if d.DeletedAt == nil && keep(*d) {
			devs = append(devs, repo.joined(*d))
		}
	}
	return devs
}

func (repo *devolucionRepository) QueryDevoluciones(_ context.Context, filter *devolucion.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]devolucion.Devolucion, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	devs := repo.filtered(func(d devolucion.Devolucion) bool {
		if filter == nil {
			return true
		}
		return matches(filter.Search, d.NombreCompleto(), d.DNI, d.NumeroExpediente, d.NumeroResolucion) &&
			(filter.ProgramaID == 0 || d.ProgramaID == filter.ProgramaID) &&
			(filter.Estado == "" || d.Estado == filter.Estado) &&
			(filter.Proceso == "" || d.ProcesoAdmision == filter.Proceso)
	})
	sortRecords(devs, ordering, devolucionColumns)
	return paginate(devs, page), len(devs), nil
}

func (repo *devolucionRepository) GetDevolucion(_ context.Context, id int64, _ ...core.DBExecutor) (devolucion.Devolucion, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if d, ok := repo.db.devoluciones[id]; ok && d.DeletedAt == nil {
		return repo.joined(*d), nil
	}
	return devolucion.Devolucion{}, devolucion.ErrNotFound
}

func (repo *devolucionRepository) FindByDNI(_ context.Context, dni string, programaID int64, estados []string, _ ...core.DBExecutor) ([]devolucion.Devolucion, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	devs := repo.filtered(func(d devolucion.Devolucion) bool {
		if d.DNI != dni || (programaID != 0 && d.ProgramaID != programaID) {
			return false
		}
		if len(estados) == 0 {
			return true
		}
		for _, e := range estados {
			if d.Estado == e {
				return true
			}
		}
		return false
	})
	sortRecords(devs, []core.DBOrdering{
		{Field: "d.created_at", Ascending: false},
		{Field: "d.id", Ascending: false},
	}, devolucionColumns)
	return devs, nil
}

func (repo *devolucionRepository) UpdateDevolucion(_ context.Context, d devolucion.Devolucion, _ ...core.DBExecutor) (devolucion.Devolucion, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if cur, ok := repo.db.devoluciones[d.ID]; !ok || cur.DeletedAt != nil {
		return devolucion.Devolucion{}, devolucion.ErrNotFound
	}
	stored := d
	stored.Eventos = nil
	repo.db.devoluciones[d.ID] = &stored
	return d, nil
}

func (repo *devolucionRepository) ClearNumeroExpediente(_ context.Context, numero string, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	now := time.Now().UTC()
	for _, d := range repo.db.devoluciones {
		if d.DeletedAt == nil && numero != "" && d.NumeroExpediente == numero {
			d.NumeroExpediente = ""
			d.UpdatedAt = now
			cnt++
		}
	}
	return cnt, nil
}

func (repo *devolucionRepository) SoftDeleteDevolucion(_ context.Context, id int64, at time.Time, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	d, ok := repo.db.devoluciones[id]
	if !ok || d.DeletedAt != nil {
		return devolucion.ErrNotFound
	}
	d.DeletedAt = &at
	return nil
}
