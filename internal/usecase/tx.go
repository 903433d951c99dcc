package usecase

import (
	"context"

	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
)

// runInTx выполняет fn в транзакции PostgreSQL. Транзакция доступна репозиториям через tr.TxFromCtx.
// При ошибке fn происходит Rollback.
func runInTx(ctx context.Context, db transaction.Transactional, fn func(ctx context.Context) error) (err error) {
	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, db)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()

	pgxTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		return e.ErrTransactionNotFound
	}

	if err = fn(tr.WithTx(ctx, pgxTx)); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
