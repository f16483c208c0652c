// Package inmemdb implements the domain repositories in memory (tests and local demos).
package inmemdb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/coordinador"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/curso"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/devolucion"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/docente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/expediente"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/pago"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/programa"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/user"
)

// DB holds every table behind a single lock, so reads can join across tables.
type DB struct {
	mu  sync.RWMutex
	seq int64

	users         map[string]*user.User
	docentes      map[int64]*docente.Docente
	programas     map[int64]*programa.Programa
	semestres     map[int64]*programa.Semestre
	cursos        map[int64]*curso.Curso
	coordinadores map[int64]*coordinador.Coordinador
	pagos         map[int64]*pago.PagoDocente
	devoluciones  map[int64]*devolucion.Devolucion
	expedientes   map[int64]*expediente.Expediente
}

func Open() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		docentes:      make(map[int64]*docente.Docente),
		programas:     make(map[int64]*programa.Programa),
		semestres:     make(map[int64]*programa.Semestre),
		cursos:        make(map[int64]*curso.Curso),
		coordinadores: make(map[int64]*coordinador.Coordinador),
		pagos:         make(map[int64]*pago.PagoDocente),
		devoluciones:  make(map[int64]*devolucion.Devolucion),
		expedientes:   make(map[int64]*expediente.Expediente),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}

type transactor struct{}

// NewTransactor returns a Transactor running fn directly; the in-memory store has no rollback.
func NewTransactor() core.Transactor {
	return transactor{}
}

func (transactor) WithinTx(_ context.Context, fn func(exec core.DBExecutor) error) error {
	return fn(nil)
}

// cmpFunc compares two records on one column: negative when a sorts first.
type cmpFunc[T any] func(a, b T) int

func sortRecords[T any](recs []T, ordering []core.DBOrdering, cols map[string]cmpFunc[T]) {
	sort.SliceStable(recs, func(i, j int) bool {
		for _, ord := range ordering {
			cmp, ok := cols[ord.Field]
			if !ok {
				continue
			}
			c := cmp(recs[i], recs[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func paginate[T any](recs []T, pr core.PageRequest) []T {
	start, end := core.Paginate(len(recs), pr)
	return recs[start:end]
}

func cmpString(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// matches reports whether any of fields contains term, case-insensitively.
func matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// sortedIDs returns the keys of recs in insertion order.
func sortedIDs[T any](recs map[int64]*T) []int64 {
	ids := make([]int64, 0, len(recs))
	for id := range recs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
