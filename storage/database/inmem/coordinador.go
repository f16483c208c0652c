package inmemdb

import (
	"context"
	"time"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/coordinador"
)

var coordinadorColumns = map[string]cmpFunc[coordinador.Coordinador]{
	"id":         func(a, b coordinador.Coordinador) int { return cmpInt64(a.ID, b.ID) },
	"nombres":    func(a, b coordinador.Coordinador) int { return cmpString(a.Nombres, b.Nombres) },
	"apellidos":  func(a, b coordinador.Coordinador) int { return cmpString(a.Apellidos, b.Apellidos) },
	"dni":        func(a, b coordinador.Coordinador) int { return cmpString(a.DNI, b.DNI) },
	"created_at": func(a, b coordinador.Coordinador) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

type coordinadorRepository struct {
	db *DB
}

var _ coordinador.Repository = (*coordinadorRepository)(nil)

func NewCoordinadorRepository(db *DB) coordinador.Repository {
	return &coordinadorRepository{db: db}
}

func (repo *coordinadorRepository) DNIExists(_ context.Context, dni string, excludedID int64, _ ...core.DBExecutor) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, c := range repo.db.coordinadores {
		if c.DeletedAt == nil && c.DNI == dni && c.ID != excludedID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *coordinadorRepository) CreateCoordinador(_ context.Context, c coordinador.Coordinador, _ ...core.DBExecutor) (coordinador.Coordinador, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = repo.db.nextID()
	stored := c
	repo.db.coordinadores[c.ID] = &stored
	return c, nil
}

func (repo *coordinadorRepository) QueryCoordinadores(_ context.Context, filter *coordinador.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]coordinador.Coordinador, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	coords := make([]coordinador.Coordinador, 0)
	for _, id := range sortedIDs(repo.db.coordinadores) {
		c := repo.db.coordinadores[id]
		if c.DeletedAt != nil {
			continue
		}
		if filter != nil {
			if !matches(filter.Search, c.Nombres, c.Apellidos, c.DNI, c.Email) {
				continue
			}
			if filter.ProgramaID != 0 && c.ProgramaID != filter.ProgramaID {
				continue
			}
			if filter.Activo != nil && c.Activo != *filter.Activo {
				continue
			}
		}
		coords = append(coords, *c)
	}
	sortRecords(coords, ordering, coordinadorColumns)
	return paginate(coords, page), len(coords), nil
}

func (repo *coordinadorRepository) GetCoordinador(_ context.Context, id int64, _ ...core.DBExecutor) (coordinador.Coordinador, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.coordinadores[id]; ok && c.DeletedAt == nil {
		return *c, nil
	}
	return coordinador.Coordinador{}, coordinador.ErrNotFound
}

func (repo *coordinadorRepository) UpdateCoordinador(_ context.Context, c coordinador.Coordinador, _ ...core.DBExecutor) (coordinador.Coordinador, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if cur, ok := repo.db.coordinadores[c.ID]; !ok || cur.DeletedAt != nil {
		return coordinador.Coordinador{}, coordinador.ErrNotFound
	}
	stored := c
	repo.db.coordinadores[c.ID] = &stored
	return c, nil
}

func (repo *coordinadorRepository) SoftDeleteCoordinador(_ context.Context, id int64, at time.Time, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c, ok := repo.db.coordinadores[id]
	if !ok || c.DeletedAt != nil {
		return coordinador.ErrNotFound
	}
	c.DeletedAt = &at
	return nil
}
