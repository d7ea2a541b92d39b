package database

import (
	"database/sql"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

// postgres error codes: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	uniqueViolation     = pq.ErrorCode("23505")
	foreignKeyViolation = pq.ErrorCode("23503")
	invalidTextRepr     = pq.ErrorCode("22P02")
)

// MapError maps driver errors to the app errors:
// unique violations to core.ErrConflict & foreign key violations to core.ErrReference.
// Other errors are returned as they are.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		switch pqErr.Code {
		case uniqueViolation:
			return errors.Wrap(core.ErrConflict, pqErr.Constraint)
		case foreignKeyViolation:
			return errors.Wrap(core.ErrReference, pqErr.Constraint)
		}
	}
	return err
}

// MapNotFound is like MapError, but also maps "no rows" & malformed ids to notFound.
func MapNotFound(err error, notFound error) error {
	if err == nil {
		return nil
	}
	cause := errors.Cause(err)
	if cause == sql.ErrNoRows {
		return notFound
	}
	if pqErr, ok := cause.(*pq.Error); ok && pqErr.Code == invalidTextRepr {
		return notFound
	}
	return MapError(err)
}
