package txmanager

import (
	"context"
	"database/sql"

	"github.com/m04kA/SMC-FieldService/pkg/dbmetrics"
)

// SQLBeginner адаптирует *sql.DB к TxBeginner, когда метрики выключены
type SQLBeginner struct {
	DB *sql.DB
}

func (b SQLBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	tx, err := b.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tx, nil
}
