package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

type transactor struct {
	db core.DB
}

var _ core.Transactor = (*transactor)(nil) // interface compliance check

func NewTransactor(db core.DB) *transactor {
	return &transactor{db: db}
}

// WithinTx begins a transaction, hands it to fn, then commits it, or rolls it back if fn fails.
func (t *transactor) WithinTx(ctx context.Context, fn func(exec core.DBExecutor) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rolling back transaction: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}
