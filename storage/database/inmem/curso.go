package inmemdb

import (
	"context"
	"time"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
)

var cursoColumns = map[string]cmpFunc[curso.Curso]{
	"c.id":         func(a, b curso.Curso) int { return cmpInt64(a.ID, b.ID) },
	"c.codigo":     func(a, b curso.Curso) int { return cmpString(a.Codigo, b.Codigo) },
	"c.nombre":     func(a, b curso.Curso) int { return cmpString(a.Nombre, b.Nombre) },
	"c.creditos":   func(a, b curso.Curso) int { return cmpInt64(int64(a.Creditos), int64(b.Creditos)) },
	"s.numero":     func(a, b curso.Curso) int { return cmpInt64(int64(a.SemestreNumero), int64(b.SemestreNumero)) },
	"c.created_at": func(a, b curso.Curso) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

type cursoRepository struct {
	db *DB
}

var _ curso.Repository = (*cursoRepository)(nil)

func NewCursoRepository(db *DB) curso.Repository {
	return &cursoRepository{db: db}
}

// joined fills the semestre/programa columns; the read lock must be held.
func (repo *cursoRepository) joined(c curso.Curso) curso.Curso {
	if s, ok := repo.db.semestres[c.SemestreID]; ok {
		c.SemestreNumero = s.Numero
		c.ProgramaID = s.ProgramaID
		if p, ok := repo.db.programas[s.ProgramaID]; ok {
			c.ProgramaNombre = p.Nombre
		}
	}
	return c
}

func (repo *cursoRepository) CodigoExists(_ context.Context, codigo string, excludedID int64, _ ...core.DBExecutor) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, c := range repo.db.cursos {
		if c.DeletedAt == nil && c.Codigo == codigo && c.ID != excludedID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *cursoRepository) CreateCurso(_ context.Context, c curso.Curso, _ ...core.DBExecutor) (curso.Curso, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c.ID = repo.db.nextID()
	stored := c
	repo.db.cursos[c.ID] = &stored
	return c, nil
}

func (repo *cursoRepository) QueryCursos(_ context.Context, filter *curso.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]curso.Curso, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	cursos := make([]curso.Curso, 0)
	for _, id := range sortedIDs(repo.db.cursos) {
		if repo.db.cursos[id].DeletedAt != nil {
			continue
		}
		c := repo.joined(*repo.db.cursos[id])
		if filter != nil {
			if !matches(filter.Search, c.Codigo, c.Nombre) {
				continue
			}
			if filter.SemestreID != 0 && c.SemestreID != filter.SemestreID {
				continue
			}
			if filter.ProgramaID != 0 && c.ProgramaID != filter.ProgramaID {
				continue
			}
		}
		cursos = append(cursos, c)
	}
	sortRecords(cursos, ordering, cursoColumns)
	return paginate(cursos, page), len(cursos), nil
}

func (repo *cursoRepository) GetCurso(_ context.Context, id int64, _ ...core.DBExecutor) (curso.Curso, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.cursos[id]; ok && c.DeletedAt == nil {
		return repo.joined(*c), nil
	}
	return curso.Curso{}, curso.ErrNotFound
}

func (repo *cursoRepository) GetCursosByID(_ context.Context, ids []int64, _ ...core.DBExecutor) (map[int64]curso.Curso, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	cursos := make(map[int64]curso.Curso, len(ids))
	for _, id := range ids {
		if c, ok := repo.db.cursos[id]; ok && c.DeletedAt == nil {
			cursos[id] = repo.joined(*c)
		}
	}
	return cursos, nil
}

func (repo *cursoRepository) UpdateCurso(_ context.Context, c curso.Curso, _ ...core.DBExecutor) (curso.Curso, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if cur, ok := repo.db.cursos[c.ID]; !ok || cur.DeletedAt != nil {
		return curso.Curso{}, curso.ErrNotFound
	}
	stored := c
	repo.db.cursos[c.ID] = &stored
	return c, nil
}

func (repo *cursoRepository) SoftDeleteCurso(_ context.Context, id int64, at time.Time, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	c, ok := repo.db.cursos[id]
	if !ok || c.DeletedAt != nil {
		return curso.ErrNotFound
	}
	c.DeletedAt = &at
	return nil
}
