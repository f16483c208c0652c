package core

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx.
	DBExecutor interface {
		sqlx.ExtContext
	}

	// Transactor runs fn inside a single database transaction.
	// The transaction is rolled back if fn returns an error (or panics) and committed otherwise.
	Transactor interface {
		WithinTx(ctx context.Context, fn func(exec DBExecutor) error) error
	}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// CleanOrdering keeps the orderings whose field is in `allowed` (query field -> column).
// It falls back to `def` when nothing is left.
func CleanOrdering(ordering []DBOrdering, allowed map[string]string, def ...DBOrdering) []DBOrdering {
	cleaned := make([]DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := allowed[strings.ToLower(ord.Field)]; ok {
			cleaned = append(cleaned, DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	if len(cleaned) == 0 {
		return def
	}
	return cleaned
}

// OrderByClause renders orderings as a SQL ORDER BY expression (without the keywords).
func OrderByClause(ordering []DBOrdering) string {
	parts := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		parts = append(parts, ord.String())
	}
	return strings.Join(parts, ", ")
}
