package pgdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/tr"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOutboxRepo(t *testing.T) (*OutboxEventRepo, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewOutboxEventRepo(mock, converter.NewOutboxEventConverter()), mock
}

func TestOutboxEventRepo_CreateNotifies(t *testing.T) {
	repo, mock := newOutboxRepo(t)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := mock.Begin(ctx)
	require.NoError(t, err)

	now := time.Now()
	event := &usecase.OutboxEvent{
		EventID:   "0b7c5f9e-0000-4000-8000-000000000001",
		EventType: usecase.ProductCreated,
		ProductID: 5,
		Payload:   []byte(`{}`),
		Status:    usecase.Pending,
		CreatedAt: now,
	}

	mock.ExpectQuery(`INSERT INTO outbox_events`).
		WithArgs(event.EventID, "product.created", int64(5), []byte(`{}`), "pending", now).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now))
	mock.ExpectExec(`NOTIFY outbox_pending`).
		WillReturnResult(pgxmock.NewResult("NOTIFY", 0))

	created, err := repo.Create(tr.WithTx(ctx, tx), event)
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, usecase.ProductCreated, created.EventType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxEventRepo_GetAndMarkAsProcessing(t *testing.T) {
	repo, mock := newOutboxRepo(t)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WithArgs("processing", "pending", 10, float64(300)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "event_id", "event_type", "product_id", "payload", "status", "attempts", "created_at", "processed_at",
		}).
			AddRow(int64(1), "e1", "product.updated", int64(7), []byte(`{"a":1}`), "processing", 1, now, (*time.Time)(nil)).
			AddRow(int64(2), "e2", "product.deleted", int64(8), []byte(`{}`), "processing", 2, now, (*time.Time)(nil)))
	mock.ExpectCommit()

	events, err := repo.GetAndMarkAsProcessing(context.Background(), 10, 5*time.Minute)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, usecase.ProductUpdated, events[0].EventType)
	assert.Equal(t, usecase.Processing, events[1].Status)
	assert.Equal(t, 2, events[1].Attempts)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxEventRepo_GetAndMarkAsProcessingRollsBack(t *testing.T) {
	repo, mock := newOutboxRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WithArgs(string(usecase.Processing), string(usecase.Pending), 10, float64(60)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	_, err := repo.GetAndMarkAsProcessing(context.Background(), 10, time.Minute)
	assert.ErrorContains(t, err, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxEventRepo_StatusTransitions(t *testing.T) {
	repo, mock := newOutboxRepo(t)

	mock.ExpectExec(`SET status = \$1, processed_at = NOW\(\)`).
		WithArgs("processed", int64(1), "processing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`SET status = \$1, processing_started_at = NULL`).
		WithArgs("pending", int64(2), "processing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.MarkAsProcessed(context.Background(), 1))
	require.NoError(t, repo.ReturnToPending(context.Background(), 2))
	require.NoError(t, mock.ExpectationsWereMet())
}
