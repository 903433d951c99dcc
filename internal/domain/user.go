package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User описывает покупателя или администратора магазина
type User struct {
	ID           string // uuid
	Email        string
	PasswordHash *string // nil для аккаунтов, созданных через Google
	Name         string
	Role         string
	GoogleUID    *string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

func NewUser(id, email, name string) *User {
	return &User{
		ID:    id,
		Email: email,
		Name:  name,
		Role:  RoleUser,
	}
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasPassword сообщает, можно ли войти по паролю.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
