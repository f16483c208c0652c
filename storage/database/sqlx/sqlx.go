// Package sqlxrepos implements the domain repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
)

type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps "no rows" to the entity's not found error.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// where accumulates AND-ed conditions written with `?` placeholders.
type where struct {
	conds []string
	args  []interface{}
}

func (w *where) add(cond string, args ...interface{}) {
	w.conds = append(w.conds, "("+cond+")")
	w.args = append(w.args, args...)
}

// search adds an ILIKE match of term on any of cols.
func (w *where) search(term string, cols ...string) {
	if term == "" {
		return
	}
	val := "%" + term + "%"
	parts := make([]string, 0, len(cols))
	args := make([]interface{}, 0, len(cols))
	for _, col := range cols {
		parts = append(parts, col+" ILIKE ?")
		args = append(args, val)
	}
	w.add(strings.Join(parts, " OR "), args...)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// pageClause renders ORDER BY / LIMIT / OFFSET.
func pageClause(ordering []core.DBOrdering, page core.PageRequest) string {
	var b strings.Builder
	if len(ordering) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(core.OrderByClause(ordering))
	}
	if !page.IsAll() {
		fmt.Fprintf(&b, " LIMIT %d OFFSET %d", page.Limit(), page.Offset())
	}
	return b.String()
}

// queryPage runs the count and the page query of `from` (FROM/JOIN clauses) filtered by w.
func queryPage(ctx context.Context, exec core.DBExecutor, dest interface{}, cols, from string, w *where, ordering []core.DBOrdering, page core.PageRequest) (int, error) {
	var total int
	countQ := sqlx.Rebind(sqlx.DOLLAR, "SELECT COUNT(*) FROM "+from+w.String())
	if err := sqlx.GetContext(ctx, exec, &total, countQ, w.args...); err != nil {
		return 0, errors.Wrap(err, "counting rows")
	}
	if total == 0 {
		return 0, nil
	}
	q := sqlx.Rebind(sqlx.DOLLAR, "SELECT "+cols+" FROM "+from+w.String()+pageClause(ordering, page))
	if err := sqlx.SelectContext(ctx, exec, dest, q, w.args...); err != nil {
		return 0, errors.Wrap(err, "selecting rows")
	}
	return total, nil
}

// exists runs SELECT EXISTS over `from` filtered by w.
func exists(ctx context.Context, exec core.DBExecutor, from string, w *where) (bool, error) {
	var ok bool
	q := sqlx.Rebind(sqlx.DOLLAR, "SELECT EXISTS (SELECT 1 FROM "+from+w.String()+")")
	err := sqlx.GetContext(ctx, exec, &ok, q, w.args...)
	return ok, err
}

// softDelete stamps deleted_at on a live row of table.
func softDelete(ctx context.Context, exec core.DBExecutor, table string, id int64, at time.Time, notFound error) error {
	res, err := exec.ExecContext(ctx, "UPDATE "+table+" SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL", at.UTC(), id)
	if err != nil {
		return errors.Wrapf(err, "deleting %s", table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "deleting %s", table)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// clearNumeroExpediente unsets numero_expediente on the live rows of table carrying numero.
func clearNumeroExpediente(ctx context.Context, exec core.DBExecutor, table, numero string) (int, error) {
	res, err := exec.ExecContext(ctx,
		"UPDATE "+table+" SET numero_expediente = NULL, updated_at = $1 WHERE numero_expediente = $2 AND deleted_at IS NULL",
		time.Now().UTC(), numero)
	if err != nil {
		return 0, errors.Wrapf(err, "clearing %s numero_expediente", table)
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrapf(err, "clearing %s numero_expediente", table)
}

// insertReturningID runs an INSERT ... RETURNING id with named parameters.
func insertReturningID(ctx context.Context, exec core.DBExecutor, query string, arg interface{}) (int64, error) {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return 0, err
	}
	var id int64
	err = sqlx.GetContext(ctx, exec, &id, sqlx.Rebind(sqlx.DOLLAR, q), args...)
	return id, err
}

// updateNamed runs an UPDATE with named parameters and reports notFound when no row matched.
func updateNamed(ctx context.Context, exec core.DBExecutor, query string, arg interface{}, notFound error) error {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	res, err := exec.ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, q), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func nullDate(d core.Date) null.Time {
	return null.NewTime(d.Time, !d.IsZero())
}

func dateFrom(t null.Time) core.Date {
	if !t.Valid {
		return core.Date{}
	}
	return core.NewDate(t.Time.Year(), t.Time.Month(), t.Time.Day())
}

func nullTimePtr(t *time.Time) null.Time {
	if t == nil {
		return null.Time{}
	}
	return null.TimeFrom(t.UTC())
}
