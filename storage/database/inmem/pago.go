package inmemdb

import (
	"context"
	"time"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
)

// pagoRecord carries the docente columns pagos are searched and ordered on.
type pagoRecord struct {
	pago.PagoDocente
	docenteApellido string
}

var pagoColumns = map[string]cmpFunc[pagoRecord]{
	"p.id":               func(a, b pagoRecord) int { return cmpInt64(a.ID, b.ID) },
	"p.periodo":          func(a, b pagoRecord) int { return cmpString(a.Periodo, b.Periodo) },
	"p.estado":           func(a, b pagoRecord) int { return cmpString(a.Estado, b.Estado) },
	"p.importe_neto":     func(a, b pagoRecord) int { return cmpFloat(a.ImporteNeto, b.ImporteNeto) },
	"d.apellido_paterno": func(a, b pagoRecord) int { return cmpString(a.docenteApellido, b.docenteApellido) },
	"p.created_at":       func(a, b pagoRecord) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
}

var pagoNewestFirst = []core.DBOrdering{
	{Field: "p.created_at", Ascending: false},
	{Field: "p.id", Ascending: false},
}

type pagoRepository struct {
	db *DB
}

var _ pago.Repository = (*pagoRepository)(nil)

func NewPagoRepository(db *DB) pago.Repository {
	return &pagoRepository{db: db}
}

func copyPago(p pago.PagoDocente) pago.PagoDocente {
	p.FechasEnsenanza = append([]core.Date(nil), p.FechasEnsenanza...)
	p.Docente = nil
	p.Curso = nil
	p.Eventos = nil
	return p
}

func (repo *pagoRepository) ExistsForPeriodo(_ context.Context, docenteID, cursoID int64, periodo string, excludedID int64, _ ...core.DBExecutor) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, p := range repo.db.pagos {
		if p.DeletedAt == nil && p.ID != excludedID &&
			p.DocenteID == docenteID && p.CursoID == cursoID && p.Periodo == periodo {
			return true, nil
		}
	}
	return false, nil
}

func (repo *pagoRepository) CreatePago(_ context.Context, p pago.PagoDocente, _ ...core.DBExecutor) (pago.PagoDocente, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = repo.db.nextID()
	stored := copyPago(p)
	repo.db.pagos[p.ID] = &stored
	return p, nil
}

// records returns the non-deleted pagos accepted by keep, joined with their docente. The read lock must be held.
func (repo *pagoRepository) records(keep func(pagoRecord) bool) []pagoRecord {
	recs := make([]pagoRecord, 0)
	for _, id := range sortedIDs(repo.db.pagos) {
		p := repo.db.pagos[id]
		if p.DeletedAt != nil {
			continue
		}
		rec := pagoRecord{PagoDocente: copyPago(*p)}
		if d, ok := repo.db.docentes[p.DocenteID]; ok {
			rec.docenteApellido = d.ApellidoPaterno
		}
		if keep(rec) {
			recs = append(recs, rec)
		}
	}
	return recs
}

func (repo *pagoRepository) QueryPagos(_ context.Context, filter *pago.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]pago.PagoDocente, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	recs := repo.records(func(rec pagoRecord) bool {
		if filter == nil {
			return true
		}
		var nombre, dni string
		if d, ok := repo.db.docentes[rec.DocenteID]; ok {
			nombre = d.Nombres + " " + d.ApellidoPaterno + " " + d.ApellidoMaterno
			dni = d.DNI
		}
		if !matches(filter.Search, nombre, dni, rec.NumeroExpediente, rec.NumeroInforme, rec.NumeroOficio, rec.NumeroResolucion) {
			return false
		}
		return (filter.DocenteID == 0 || rec.DocenteID == filter.DocenteID) &&
			(filter.CursoID == 0 || rec.CursoID == filter.CursoID) &&
			(filter.Periodo == "" || rec.Periodo == filter.Periodo) &&
			(filter.Estado == "" || rec.Estado == filter.Estado)
	})
	sortRecords(recs, ordering, pagoColumns)
	total := len(recs)
	return pagosOf(paginate(recs, page)), total, nil
}

func pagosOf(recs []pagoRecord) []pago.PagoDocente {
	pagos := make([]pago.PagoDocente, len(recs))
	for i, rec := range recs {
		pagos[i] = rec.PagoDocente
	}
	return pagos
}

func (repo *pagoRepository) GetPago(_ context.Context, id int64, _ ...core.DBExecutor) (pago.PagoDocente, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.pagos[id]; ok && p.DeletedAt == nil {
		return copyPago(*p), nil
	}
	return pago.PagoDocente{}, pago.ErrNotFound
}

func (repo *pagoRepository) FindPagos(_ context.Context, docenteID, cursoID int64, periodo string, _ ...core.DBExecutor) ([]pago.PagoDocente, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	recs := repo.records(func(rec pagoRecord) bool {
		return rec.DocenteID == docenteID && rec.CursoID == cursoID && rec.Periodo == periodo &&
			rec.Estado != pago.EstadoAnulado
	})
	sortRecords(recs, pagoNewestFirst, pagoColumns)
	return pagosOf(recs), nil
}

func (repo *pagoRepository) UpdatePago(_ context.Context, p pago.PagoDocente, _ ...core.DBExecutor) (pago.PagoDocente, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if cur, ok := repo.db.pagos[p.ID]; !ok || cur.DeletedAt != nil {
		return pago.PagoDocente{}, pago.ErrNotFound
	}
	stored := copyPago(p)
	repo.db.pagos[p.ID] = &stored
	return p, nil
}

func (repo *pagoRepository) ClearNumeroExpediente(_ context.Context, numero string, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	now := time.Now().UTC()
	for _, p := range repo.db.pagos {
		if p.DeletedAt == nil && numero != "" && p.NumeroExpediente == numero {
			p.NumeroExpediente = ""
			p.UpdatedAt = now
			cnt++
		}
	}
	return cnt, nil
}

func (repo *pagoRepository) SoftDeletePago(_ context.Context, id int64, at time.Time, _ ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p, ok := repo.db.pagos[id]
	if !ok || p.DeletedAt != nil {
		return pago.ErrNotFound
	}
	p.DeletedAt = &at
	return nil
}
