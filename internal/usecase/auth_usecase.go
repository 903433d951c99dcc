package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	"github.com/google/uuid"
)

const minPasswordLength = 6

var emailRegexp = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthUseCase - регистрация, вход по паролю и через Google, проверка токенов.
type AuthUseCase struct {
	userRepo UserRepository
	tokens   TokenManager
	hasher   PasswordHasher
	google   GoogleVerifier // nil, если вход через Google выключен
	logger   logger.Logger
}

func NewAuthUC(
	userRepo UserRepository,
	tokens TokenManager,
	hasher PasswordHasher,
	google GoogleVerifier,
	logger logger.Logger,
) *AuthUseCase {
	return &AuthUseCase{
		userRepo: userRepo,
		tokens:   tokens,
		hasher:   hasher,
		google:   google,
		logger:   logger,
	}
}

func (a *AuthUseCase) Register(ctx context.Context, req *RegisterReq) (*AuthRes, error) {
	const op = "AuthUseCase.Register"

	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	switch {
	case !emailRegexp.MatchString(email):
		return nil, e.Wrap(op, e.ErrInvalidEmail)
	case len(req.Password) < minPasswordLength:
		return nil, e.Wrap(op, e.ErrPasswordTooShort)
	case name == "":
		return nil, e.Wrap(op, e.ErrNameRequired)
	}

	_, err := a.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, e.Wrap(op, e.ErrEmailTaken)
	}
	if !errors.Is(err, e.ErrUserNotFound) {
		return nil, e.Wrap(op, err)
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	user := domain.NewUser(uuid.NewString(), email, name)
	user.PasswordHash = &hash

	created, err := a.userRepo.Create(ctx, user)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.logger.Infof("user registered: id=%s", created.ID)
	return a.issue(op, created)
}

func (a *AuthUseCase) Login(ctx context.Context, req *LoginReq) (*AuthRes, error) {
	const op = "AuthUseCase.Login"

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, e.Wrap(op, e.ErrCredentialsRequired)
	}

	user, err := a.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Wrap(op, err)
	}

	if !user.HasPassword() {
		return nil, e.Wrap(op, e.ErrGoogleAccount)
	}

	if err := a.hasher.Compare(*user.PasswordHash, req.Password); err != nil {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	return a.issue(op, user)
}

// GoogleLogin обменивает Google ID token на токен приложения.
// Пользователь ищется по Google UID, затем по email (с привязкой UID), иначе создаётся.
func (a *AuthUseCase) GoogleLogin(ctx context.Context, idToken string) (*AuthRes, error) {
	const op = "AuthUseCase.GoogleLogin"

	if strings.TrimSpace(idToken) == "" {
		return nil, e.Wrap(op, e.ErrIDTokenRequired)
	}

	if a.google == nil {
		return nil, e.Wrap(op, e.ErrGoogleAuthNotConfigured)
	}

	identity, err := a.google.Verify(ctx, idToken)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrGoogleTokenInvalid, err))
	}

	email := normalizeEmail(identity.Email)
	if identity.UID == "" || email == "" {
		return nil, e.Wrap(op, e.ErrGoogleTokenInvalid)
	}

	user, err := a.userRepo.GetByGoogleUID(ctx, identity.UID)
	if err == nil {
		return a.issue(op, user)
	}
	if !errors.Is(err, e.ErrUserNotFound) {
		return nil, e.Wrap(op, err)
	}

	user, err = a.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := a.userRepo.LinkGoogleUID(ctx, user.ID, identity.UID); err != nil {
			return nil, e.Wrap(op, err)
		}
		user.GoogleUID = &identity.UID
		a.logger.Infof("google account linked: user=%s", user.ID)
	case errors.Is(err, e.ErrUserNotFound):
		name := strings.TrimSpace(identity.Name)
		if name == "" {
			name = strings.Split(email, "@")[0]
		}

		newUser := domain.NewUser(uuid.NewString(), email, name)
		newUser.GoogleUID = &identity.UID

		user, err = a.userRepo.Create(ctx, newUser)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		a.logger.Infof("user registered via google: id=%s", user.ID)
	default:
		return nil, e.Wrap(op, err)
	}

	return a.issue(op, user)
}

func (a *AuthUseCase) Me(ctx context.Context, userID string) (*domain.User, error) {
	const op = "AuthUseCase.Me"

	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return user, nil
}

// Authenticate проверяет bearer-токен и возвращает его владельца.
func (a *AuthUseCase) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	const op = "AuthUseCase.Authenticate"

	userID, err := a.tokens.Parse(token)
	if err != nil {
		return nil, e.Wrap(op, fmt.Errorf("%w: %v", e.ErrInvalidToken, err))
	}

	user, err := a.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			return nil, e.Wrap(op, e.ErrUnauthorized)
		}
		return nil, e.Wrap(op, err)
	}

	return user, nil
}

func (a *AuthUseCase) issue(op string, user *domain.User) (*AuthRes, error) {
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewAuthRes(token, user), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
