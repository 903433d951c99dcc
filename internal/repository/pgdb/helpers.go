package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/onlinestore/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Pool - методы пула, которые нужны репозиториям. Его реализуют *pgxpool.Pool и pgxmock.
type Pool interface {
	tr.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// postgresDuplicate сообщает о нарушении уникального индекса.
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// constraintName возвращает имя нарушенного ограничения.
func constraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
