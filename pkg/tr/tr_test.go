package tr

import (
	"context"
	"testing"

	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTxFromCtx_Missing(t *testing.T) {
	_, err := TxFromCtx(context.Background())
	assert.ErrorIs(t, err, e.ErrTransactionNotFound)
}

func TestExecutor(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	assert.Same(t, pool, Executor(ctx, pool))

	pool.ExpectBegin()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	txCtx := WithTx(ctx, tx)
	got, err := TxFromCtx(txCtx)
	require.NoError(t, err)
	assert.Equal(t, tx, got)
	assert.Equal(t, tx, Executor(txCtx, pool))
}
