package inmemdb

import (
	"context"
	"time"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
)

var docenteColumns = map[string]cmpFunc[docente.Docente]{
	"id":               func(a, b docente.Docente) int { return cmpInt64(a.ID, b.ID) },
	"nombres":          func(a, b docente.Docente) int { return cmpString(a.Nombres, b.Nombres) },
	"apellido_paterno": func(a, b docente.Docente) int { return cmpString(a.ApellidoPaterno, b.ApellidoPaterno) },
	"apellido_materno": func(a, b docente.Docente) int { return cmpString(a.ApellidoMaterno, b.ApellidoMaterno) },
	"dni":              func(a, b docente.Docente) int { return cmpString(a.DNI, b.DNI) },
	"tipo_docente":     func(a, b docente.Docente) int { return cmpString(a.TipoDocente, b.TipoDocente) },
	"created_at":       func(a, b docente.Docente) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

type docenteRepository struct {
	db *DB
}

var _ docente.Repository = (*docenteRepository)(nil)

func NewDocenteRepository(db *DB) docente.Repository {
	return &docenteRepository{db: db}
}

func (repo *docenteRepository) DNIExists(_ context.Context, dni string, excludedID int64, _ ...core.DBExecutor) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, d := range repo.db.docentes {
		if d.DeletedAt == nil && d.DNI == dni && d.ID != excludedID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *docenteRepository) CreateDocente(_ context.Context, d docente.Docente, _ ...core.DBExecutor) (docente.Docente, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	d.ID = repo.db.nextID()
	stored := d
	repo.db.docentes[d.ID] = &stored
	return d, nil
}

func (repo *docenteRepository) QueryDocentes(_ context.Context, filter *docente.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]docente.Docente, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	docentes := make([]docente.Docente, 0)
	for _, id := range sortedIDs(repo.db.docentes) {
		d := repo.db.docentes[id]
		if d.DeletedAt != nil {
			continue
		}
		if filter != nil {
			if !matches(filter.Search, d.Nombres, d.ApellidoPaterno, d.ApellidoMaterno, d.DNI, d.Email, d.NombreCompleto()) {
				continue
			}
			if filter.TipoDocente != "" && d.TipoDocente != filter.TipoDocente {
				continue
			}
			if filter.Categoria != "" && d.Categoria != filter.Categoria {
				continue
			}
		}
		docentes = append(docentes, *d)
	}
	sortRecords(docentes, ordering, docenteColumns)
	return paginate(docentes, page), len(docentes), nil
}

func (repo *docenteRepository) GetDocente(_ context.Context, id int64, _ ...core.DBExecutor) (docente.Docente, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if d, ok := repo.db.docentes[id]; ok && d.DeletedAt == nil {
		return *d, nil
	}
	return docente.Docente{}, docente.ErrNotFound
}

func (repo *docenteRepository) GetDocentesByID(_ context.Context, ids []int64, _ ...core.DBExecutor) (map[int64]docente.Docente, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	docentes := make(map[int64]docente.Docente, len(ids))
	for _, id := range ids {
		if d, ok := repo.db.docentes[id]; ok && d.DeletedAt == nil {
			docentes[id] = *d
		}
	}
	return docentes, nil
}

func (repo *docenteRepository) UpdateDocente(_ context.Context, d docente.Docente, _ ...core.DBExecutor) (docente.Docente, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if cur, ok := repo.db.docentes[d.ID]; !ok || cur.DeletedAt != nil {
		return docente.Docente{}, docente.ErrNotFound
	}
	stored := d
	repo.db.docentes[d.ID] = &stored
	return d, nil
}

func (repo *docenteRepository) SoftDeleteDocente(_ context.Context, id int64, at time.Time, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	d, ok := repo.db.docentes[id]
	if !ok || d.DeletedAt != nil {
		return docente.ErrNotFound
	}
	d.DeletedAt = &at
	return nil
}
