package converters

import (
	"context"
	"database/sql"
	"errors"

	"github.com/darianmavgo/mktransfer/converters/common"

	"github.com/rs/zerolog"
)

// Execer opens transactions. *sql.DB and *sql.Conn both satisfy it.
type Execer interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Loader applies a batch plan inside one transaction.
type Loader struct {
	db      Execer
	dialect common.Dialect
	logger  zerolog.Logger
}

// NewLoader creates a Loader rendering binary literals for dialect.
func NewLoader(db Execer, dialect common.Dialect, logger zerolog.Logger) *Loader {
	return &Loader{db: db, dialect: dialect, logger: logger}
}

// Statements renders the INSERT statements of plan. A row whose length
// differs from the column list is skipped and logged. Column names must be
// plain identifiers.
func (l *Loader) Statements(plan *common.BatchPlan) ([]string, error) {
	if len(plan.Statements) > 0 {
		return plan.Statements, nil
	}
	if len(plan.Columns) == 0 {
		return nil, nil
	}
	if err := common.ValidateColumns(plan.Columns); err != nil {
		return nil, err
	}

	stmts := make([]string, 0, len(plan.Rows))
	for i, row := range plan.Rows {
		if len(row) != len(plan.Columns) {
			l.logger.Warn().
				Str("table", plan.Table).
				Int("row", i+1).
				Int("values", len(row)).
				Int("columns", len(plan.Columns)).
				Msg("skipping ragged row")
			continue
		}
		stmt, err := common.GenInsertSQL(plan.Table, plan.Columns, row, l.dialect)
		if err != nil {
			return nil, common.Encodingf("row %d: %v", i+1, err)
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// Load executes every statement of plan in a single transaction and returns
// the number of rows affected. Any failure rolls the whole batch back and
// reports zero rows.
func (l *Loader) Load(ctx context.Context, plan *common.BatchPlan) (int, error) {
	stmts, err := l.Statements(plan)
	if err != nil {
		return 0, err
	}
	if len(stmts) == 0 {
		l.logger.Debug().Str("table", plan.Table).Msg("nothing to load")
		return 0, nil
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, common.Connectivity(err, "failed to begin transaction")
	}

	total := 0
	reported := true
	for i, stmt := range stmts {
		res, err := tx.ExecContext(ctx, stmt)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				l.logger.Error().Err(rbErr).Str("table", plan.Table).Msg("rollback failed")
			}
			return 0, common.Transaction(err, "statement %d failed", i+1)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += int(n)
		} else {
			reported = false
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, common.Transaction(err, "failed to commit transaction")
	}

	if !reported {
		total = len(stmts)
	}
	l.logger.Debug().
		Str("table", plan.Table).
		Int("statements", len(stmts)).
		Int("rows", total).
		Msg("batch committed")
	return total, nil
}
