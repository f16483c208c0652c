package database

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

type transactor struct {
	db *sqlx.DB
}

var _ core.Transactor = (*transactor)(nil)

func NewTransactor(db *sqlx.DB) core.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(exec core.DBExecutor) error) (err error) {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = errors.Wrapf(err, "rolling back transaction: %v", rbErr)
			}
			return
		}
		err = errors.Wrap(tx.Commit(), "committing transaction")
	}()
	return fn(tx)
}

func pqQuoteIdent(s string) string {
	return pq.QuoteIdentifier(s)
}

func pqEscapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
