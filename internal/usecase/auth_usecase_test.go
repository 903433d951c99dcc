package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo(users ...domain.User) *memUserRepo {
	r := &memUserRepo{users: map[string]domain.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, e.ErrEmailTaken
		}
	}
	r.users[user.ID] = *user
	return user, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, e.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *memUserRepo) GetByGoogleUID(_ context.Context, uid string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.GoogleUID != nil && *u.GoogleUID == uid })
}

func (r *memUserRepo) LinkGoogleUID(_ context.Context, id string, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return e.ErrUserNotFound
	}
	u.GoogleUID = &uid
	r.users[id] = u
	return nil
}

func (r *memUserRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, e.ErrUserNotFound
}

// fakeTokens выдаёт токены вида "token:<userID>".
type fakeTokens struct{}

func (fakeTokens) Issue(userID string) (string, error) { return "token:" + userID, nil }

func (fakeTokens) Parse(token string) (string, error) {
	id, ok := strings.CutPrefix(token, "token:")
	if !ok {
		return "", errors.New("malformed token")
	}
	return id, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (fakeHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type fakeGoogle struct {
	identity *GoogleIdentity
	err      error
}

func (g *fakeGoogle) Verify(context.Context, string) (*GoogleIdentity, error) {
	return g.identity, g.err
}

func newAuthUC(repo *memUserRepo, google GoogleVerifier) *AuthUseCase {
	return NewAuthUC(repo, fakeTokens{}, fakeHasher{}, google, nopLogger{})
}

func TestAuthUseCase_RegisterAndLogin(t *testing.T) {
	repo := newMemUserRepo()
	uc := newAuthUC(repo, nil)
	ctx := context.Background()

	res, err := uc.Register(ctx, NewRegisterReq("  Ann@Example.com ", "secret1", " Ann "))
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", res.User.Email)
	assert.Equal(t, "Ann", res.User.Name)
	assert.Equal(t, domain.RoleUser, res.User.Role)
	assert.Equal(t, "token:"+res.User.ID, res.Token)

	login, err := uc.Login(ctx, NewLoginReq("ANN@example.com", "secret1"))
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	_, err = uc.Login(ctx, NewLoginReq("ann@example.com", "wrong"))
	assert.ErrorIs(t, err, e.ErrInvalidCredentials)

	_, err = uc.Login(ctx, NewLoginReq("nobody@example.com", "secret1"))
	assert.ErrorIs(t, err, e.ErrInvalidCredentials)
}

func TestAuthUseCase_RegisterValidation(t *testing.T) {
	taken := domain.NewUser("u1", "taken@example.com", "Taken")
	uc := newAuthUC(newMemUserRepo(*taken), nil)

	tests := []struct {
		name string
		req  *RegisterReq
		want error
	}{
		{"bad email", NewRegisterReq("not-an-email", "secret1", "A"), e.ErrInvalidEmail},
		{"short password", NewRegisterReq("a@b.co", "12345", "A"), e.ErrPasswordTooShort},
		{"empty name", NewRegisterReq("a@b.co", "secret1", "  "), e.ErrNameRequired},
		{"duplicate email", NewRegisterReq("Taken@example.com", "secret1", "A"), e.ErrEmailTaken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthUseCase_LoginGoogleOnlyAccount(t *testing.T) {
	uid := "g-1"
	user := domain.NewUser("u1", "g@example.com", "G")
	user.GoogleUID = &uid
	uc := newAuthUC(newMemUserRepo(*user), nil)

	_, err := uc.Login(context.Background(), NewLoginReq("g@example.com", "secret1"))
	assert.ErrorIs(t, err, e.ErrGoogleAccount)

	_, err = uc.Login(context.Background(), NewLoginReq("", ""))
	assert.ErrorIs(t, err, e.ErrCredentialsRequired)
}

func TestAuthUseCase_GoogleLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		uc := newAuthUC(newMemUserRepo(), nil)
		_, err := uc.GoogleLogin(ctx, "id-token")
		assert.ErrorIs(t, err, e.ErrGoogleAuthNotConfigured)

		_, err = uc.GoogleLogin(ctx, " ")
		assert.ErrorIs(t, err, e.ErrIDTokenRequired)
	})

	t.Run("invalid token", func(t *testing.T) {
		uc := newAuthUC(newMemUserRepo(), &fakeGoogle{err: errors.New("audience mismatch")})
		_, err := uc.GoogleLogin(ctx, "id-token")
		assert.ErrorIs(t, err, e.ErrGoogleTokenInvalid)
	})

	t.Run("creates new user", func(t *testing.T) {
		repo := newMemUserRepo()
		uc := newAuthUC(repo, &fakeGoogle{identity: &GoogleIdentity{UID: "g-1", Email: "New.User@example.com"}})

		res, err := uc.GoogleLogin(ctx, "id-token")
		require.NoError(t, err)
		assert.Equal(t, "new.user", res.User.Name)
		assert.False(t, res.User.HasPassword())
		require.NotNil(t, res.User.GoogleUID)
		assert.Equal(t, "g-1", *res.User.GoogleUID)

		again, err := uc.GoogleLogin(ctx, "id-token")
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, again.User.ID)
		assert.Len(t, repo.users, 1)
	})

	t.Run("links existing email", func(t *testing.T) {
		hash := "hashed:secret1"
		existing := domain.NewUser("u1", "ann@example.com", "Ann")
		existing.PasswordHash = &hash
		repo := newMemUserRepo(*existing)
		uc := newAuthUC(repo, &fakeGoogle{identity: &GoogleIdentity{UID: "g-2", Email: "ann@example.com", Name: "Ann G"}})

		res, err := uc.GoogleLogin(ctx, "id-token")
		require.NoError(t, err)
		assert.Equal(t, "u1", res.User.ID)
		assert.Equal(t, "Ann", res.User.Name)

		stored, err := repo.GetByID(ctx, "u1")
		require.NoError(t, err)
		require.NotNil(t, stored.GoogleUID)
		assert.Equal(t, "g-2", *stored.GoogleUID)
		assert.True(t, stored.HasPassword())
	})
}

func TestAuthUseCase_Authenticate(t *testing.T) {
	user := domain.NewUser("u1", "ann@example.com", "Ann")
	uc := newAuthUC(newMemUserRepo(*user), nil)
	ctx := context.Background()

	got, err := uc.Authenticate(ctx, "token:u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	_, err = uc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, e.ErrInvalidToken)

	_, err = uc.Authenticate(ctx, "token:ghost")
	assert.ErrorIs(t, err, e.ErrUnauthorized)

	_, err = uc.Me(ctx, "ghost")
	assert.ErrorIs(t, err, e.ErrUserNotFound)
}
