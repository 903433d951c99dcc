package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey struct{}

var userKey ctxKey

// withUser кладёт аутентифицированного пользователя в контекст запроса.
func withUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func userFromCtx(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok && user != nil
}

// requestLogger пишет строку на каждый запрос.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			format := "%s %s %d %dB %s req_id=%s"
			args := []any{r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start), middleware.GetReqID(r.Context())}
			if status >= http.StatusInternalServerError {
				log.Warnf(format, args...)
				return
			}
			log.Infof(format, args...)
		})
	}
}

// Authenticator проверяет заголовок Authorization: Bearer <jwt>.
type Authenticator struct {
	authUC usecase.AuthUC
	logger logger.Logger
}

func NewAuthenticator(authUC usecase.AuthUC, logger logger.Logger) *Authenticator {
	return &Authenticator{authUC: authUC, logger: logger}
}

func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			WriteError(w, e.ErrUnauthorized)
			return
		}

		user, err := a.authUC.Authenticate(r.Context(), token)
		if err != nil {
			a.logger.Debugf("authentication failed: %v", err)
			WriteError(w, e.ErrUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// RequireAdmin пропускает только администраторов. Ставится после RequireUser.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userFromCtx(r.Context())
		if !ok {
			WriteError(w, e.ErrUnauthorized)
			return
		}
		if !user.IsAdmin() {
			WriteError(w, e.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
