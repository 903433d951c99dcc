package http

import (
	"net/http"

	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
)

type AuthHandler struct {
	authUsecase usecase.AuthUC
	logger      logger.Logger
}

func NewAuthHandler(authUsecase usecase.AuthUC, logger logger.Logger) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, logger: logger}
}

// register
//
//	@Summary	Регистрация
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		RegisterRequest	true	"Данные пользователя"
//	@Success	201		{object}	AuthResponse
//	@Failure	400		{object}	ErrorResponse
//	@Router		/auth/register [post]
func (a *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.register"

	var body RegisterRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(a.logger, w, op, err)
		return
	}

	res, err := a.authUsecase.Register(r.Context(), usecase.NewRegisterReq(body.Email, body.Password, body.Name))
	if err != nil {
		respondError(a.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, &AuthResponse{
		Message: "registered",
		Token:   res.Token,
		User:    toUserResponse(res.User),
	})
}

// login
//
//	@Summary	Вход по email и паролю
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		LoginRequest	true	"Учётные данные"
//	@Success	200		{object}	AuthResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auth/login [post]
func (a *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.login"

	var body LoginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(a.logger, w, op, err)
		return
	}

	res, err := a.authUsecase.Login(r.Context(), usecase.NewLoginReq(body.Email, body.Password))
	if err != nil {
		respondError(a.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &AuthResponse{
		Message: "logged in",
		Token:   res.Token,
		User:    toUserResponse(res.User),
	})
}

// googleLogin
//
//	@Summary	Вход через Google
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		GoogleLoginRequest	true	"Google ID token"
//	@Success	200		{object}	AuthResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/auth/google [post]
func (a *AuthHandler) googleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.googleLogin"

	var body GoogleLoginRequest
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(a.logger, w, op, err)
		return
	}

	res, err := a.authUsecase.GoogleLogin(r.Context(), body.IDToken)
	if err != nil {
		respondError(a.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &AuthResponse{
		Message: "logged in with google",
		Token:   res.Token,
		User:    toUserResponse(res.User),
	})
}

// me
//
//	@Summary	Текущий пользователь
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	MeResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/auth/me [get]
func (a *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	const op = "AuthHandler.me"

	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := a.authUsecase.Me(r.Context(), userID)
	if err != nil {
		respondError(a.logger, w, op, err)
		return
	}

	WriteSuccess(w, http.StatusOK, &MeResponse{User: toUserResponse(user)})
}
