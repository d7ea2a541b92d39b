package sqlxrepos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/storage/database"
)

// repository holds what all sqlx repositories share.
type repository struct {
	exec core.DBExecutor
}

func (repo repository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 && svcExec[0] != nil {
		return svcExec[0]
	}
	return repo.exec
}

// where collects AND-ed conditions using "?" placeholders.
type where struct {
	clauses []string
	args    []interface{}
}

func (w *where) add(clause string, args ...interface{}) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// orderBy returns the ORDER BY clause of the orderings whose fields are allowed (field -> column).
// Unknown fields are ignored; defaultOrder is used when nothing is left.
func orderBy(ordering []core.DBOrdering, allowed map[string]string, defaultOrder string) string {
	list := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := allowed[ord.Field]; ok {
			list = append(list, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(list) == 0 {
		return " ORDER BY " + defaultOrder
	}
	return " ORDER BY " + strings.Join(list, ", ")
}

// validIDs drops the ids that are not uuids; they cannot match any row.
func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}

// deleteByID deletes the rows of table with the given ids.
func deleteByID(ctx context.Context, exec core.DBExecutor, table string, ids []string) (int, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("DELETE FROM "+table+" WHERE id IN (?)", ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := exec.ExecContext(ctx, exec.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(database.MapError(err), "deleting from "+table)
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted rows")
	}
	return int(cnt), nil
}

// exists runs a "SELECT EXISTS(...)" query.
func exists(ctx context.Context, exec core.DBExecutor, q string, args ...interface{}) (bool, error) {
	var found bool
	if err := sqlx.GetContext(ctx, exec, &found, exec.Rebind(q), args...); err != nil {
		return false, err
	}
	return found, nil
}
