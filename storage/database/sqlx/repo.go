package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core"
)

// where accumulates AND-ed conditions with postgres placeholders.
type where struct {
	conds []string
	args  []interface{}
}

// add appends cond, replacing each "?" with the next positional placeholder.
func (w *where) add(cond string, args ...interface{}) {
	for _, arg := range args {
		w.args = append(w.args, arg)
		cond = strings.Replace(cond, "?", "$"+strconv.Itoa(len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func like(s string) string {
	return "%" + s + "%"
}

func orderBy(ordering []core.DBOrdering, fallback string) string {
	return " ORDER BY " + core.OrderBy(ordering, fallback)
}

// trapNoRowsErr maps "no rows" to the resource's not-found error.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// validIDs drops anything that is not a UUID; such IDs can't exist and would fail the query.
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}

func deleteByID(ctx context.Context, db *sqlx.DB, tableName string, ids []string) (int, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("DELETE FROM "+tableName+" WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := db.ExecContext(ctx, db.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrapf(err, "deleting from %s", tableName)
	}
	cnt, err := res.RowsAffected()
	return int(cnt), errors.Wrap(err, "counting deleted rows")
}
