package inmemdb

import (
	"context"
	"time"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
)

var programaColumns = map[string]cmpFunc[programa.Programa]{
	"id":         func(a, b programa.Programa) int { return cmpInt64(a.ID, b.ID) },
	"nombre":     func(a, b programa.Programa) int { return cmpString(a.Nombre, b.Nombre) },
	"codigo":     func(a, b programa.Programa) int { return cmpString(a.Codigo, b.Codigo) },
	"grado":      func(a, b programa.Programa) int { return cmpString(a.Grado, b.Grado) },
	"created_at": func(a, b programa.Programa) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

type programaRepository struct {
	db *DB
}

var _ programa.Repository = (*programaRepository)(nil)

func NewProgramaRepository(db *DB) programa.Repository {
	return &programaRepository{db: db}
}

func (repo *programaRepository) CodigoExists(_ context.Context, codigo string, excludedID int64, _ ...core.DBExecutor) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, p := range repo.db.programas {
		if p.DeletedAt == nil && p.Codigo == codigo && p.ID != excludedID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *programaRepository) CreatePrograma(_ context.Context, p programa.Programa, _ ...core.DBExecutor) (programa.Programa, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = repo.db.nextID()
	stored := p
	repo.db.programas[p.ID] = &stored
	return p, nil
}

func (repo *programaRepository) QueryProgramas(_ context.Context, filter *programa.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]programa.Programa, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	programas := make([]programa.Programa, 0)
	for _, id := range sortedIDs(repo.db.programas) {
		p := repo.db.programas[id]
		if p.DeletedAt != nil {
			continue
		}
		if filter != nil {
			if !matches(filter.Search, p.Nombre, p.Codigo, p.Mencion) {
				continue
			}
			if filter.Grado != "" && p.Grado != filter.Grado {
				continue
			}
			if filter.Activo != nil && p.Activo != *filter.Activo {
				continue
			}
		}
		programas = append(programas, *p)
	}
	sortRecords(programas, ordering, programaColumns)
	return paginate(programas, page), len(programas), nil
}

func (repo *programaRepository) GetPrograma(_ context.Context, id int64, _ ...core.DBExecutor) (programa.Programa, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.programas[id]; ok && p.DeletedAt == nil {
		return *p, nil
	}
	return programa.Programa{}, programa.ErrNotFound
}

func (repo *programaRepository) UpdatePrograma(_ context.Context, p programa.Programa, _ ...core.DBExecutor) (programa.Programa, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if cur, ok := repo.db.programas[p.ID]; !ok || cur.DeletedAt != nil {
		return programa.Programa{}, programa.ErrNotFound
	}
	stored := p
	repo.db.programas[p.ID] = &stored
	return p, nil
}

func (repo *programaRepository) SoftDeletePrograma(_ context.Context, id int64, at time.Time, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.programas[id]
	if !ok || p.DeletedAt != nil {
		return programa.ErrNotFound
	}
	p.DeletedAt = &at
	return nil
}

func (repo *programaRepository) SemestreExists(_ context.Context, programaID int64, numero int, excludedID int64, _ ...core.DBExecutor) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, s := range repo.db.semestres {
		if s.DeletedAt == nil && s.ProgramaID == programaID && s.Numero == numero && s.ID != excludedID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *programaRepository) CreateSemestre(_ context.Context, s programa.Semestre, _ ...core.DBExecutor) (programa.Semestre, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s.ID = repo.db.nextID()
	stored := s
	repo.db.semestres[s.ID] = &stored
	return s, nil
}

func (repo *programaRepository) QuerySemestres(_ context.Context, programaID int64, _ ...core.DBExecutor) ([]programa.Semestre, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	semestres := make([]programa.Semestre, 0)
	for _, id := range sortedIDs(repo.db.semestres) {
		s := repo.db.semestres[id]
		if s.DeletedAt == nil && s.ProgramaID == programaID {
			semestres = append(semestres, *s)
		}
	}
	sortRecords(semestres, []core.DBOrdering{{Field: "numero", Ascending: true}}, map[string]cmpFunc[programa.Semestre]{
		"numero": func(a, b programa.Semestre) int { return cmpInt64(int64(a.Numero), int64(b.Numero)) },
	})
	return semestres, nil
}

func (repo *programaRepository) GetSemestre(_ context.Context, id int64, _ ...core.DBExecutor) (programa.Semestre, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.semestres[id]; ok && s.DeletedAt == nil {
		return *s, nil
	}
	return programa.Semestre{}, programa.ErrSemestreNotFound
}

func (repo *programaRepository) UpdateSemestre(_ context.Context, s programa.Semestre, _ ...core.DBExecutor) (programa.Semestre, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if cur, ok := repo.db.semestres[s.ID]; !ok || cur.DeletedAt != nil {
		return programa.Semestre{}, programa.ErrSemestreNotFound
	}
	stored := s
	repo.db.semestres[s.ID] = &stored
	return s, nil
}

func (repo *programaRepository) SoftDeleteSemestre(_ context.Context, id int64, at time.Time, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s, ok := repo.db.semestres[id]
	if !ok || s.DeletedAt != nil {
		return programa.ErrSemestreNotFound
	}
	s.DeletedAt = &at
	return nil
}
