package pgdb

import (
	"context"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

const userColumns = `id, email, password_hash, name, role, google_uid, created_at, updated_at`

// UserRepo хранит пользователей в PostgreSQL.
type UserRepo struct {
	pool Pool
	conv converter.UserConverter
}

func NewUserRepo(pool Pool, conv converter.UserConverter) *UserRepo {
	return &UserRepo{pool: pool, conv: conv}
}

// Create добавляет пользователя. Занятый email возвращает e.ErrEmailTaken.
func (u *UserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	model := u.conv.ToModel(user)
	query := `
		INSERT INTO users (id, email, password_hash, name, role, google_uid)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns

	created, err := scanUser(u.pool.QueryRow(ctx, query,
		model.ID, model.Email, model.PasswordHash, model.Name, model.Role, model.GoogleUID,
	))
	if err != nil {
		if postgresDuplicate(err) && constraintName(err) != "users_google_uid_key" {
			return nil, e.ErrEmailTaken
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(created), nil
}

func (u *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return u.getBy(ctx, "id", id)
}

func (u *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return u.getBy(ctx, "email", email)
}

func (u *UserRepo) GetByGoogleUID(ctx context.Context, uid string) (*domain.User, error) {
	return u.getBy(ctx, "google_uid", uid)
}

// LinkGoogleUID привязывает Google-аккаунт к существующему пользователю.
func (u *UserRepo) LinkGoogleUID(ctx context.Context, id string, uid string) error {
	tag, err := u.pool.Exec(ctx,
		`UPDATE users SET google_uid = $2, updated_at = NOW() WHERE id = $1`, id, uid)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if tag.RowsAffected() == 0 {
		return e.ErrUserNotFound
	}

	return nil
}

// getBy ищет пользователя по одной колонке. column задаётся только константами пакета.
func (u *UserRepo) getBy(ctx context.Context, column string, value string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = $1`

	model, err := scanUser(u.pool.QueryRow(ctx, query, value))
	if err != nil {
		if noRows(err) {
			return nil, e.ErrUserNotFound
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return u.conv.ToEntity(model), nil
}

func scanUser(row pgx.Row) (*converter.UserModel, error) {
	var m converter.UserModel
	if err := row.Scan(
		&m.ID, &m.Email, &m.PasswordHash, &m.Name, &m.Role, &m.GoogleUID, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &m, nil
}
