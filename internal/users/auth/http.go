// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lifequest/internal/platform/device"
	"github.com/taibuivan/lifequest/internal/platform/middleware"
	requestutil "github.com/taibuivan/lifequest/internal/platform/request"
	"github.com/taibuivan/lifequest/internal/platform/respond"
	"github.com/taibuivan/lifequest/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the /auth HTTP endpoints.
//
// # Scope
//
// Everything here is public except logout-all. Tokens travel in JSON bodies,
// never in cookies.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register   : Creates an account (201).
//   - POST /login      : Password sign-in.
//   - POST /refresh    : Rotates a refresh token.
//   - POST /logout     : Revokes one refresh token (204).
//   - POST /logout-all : Revokes every session of the caller (204, auth).
//   - POST /google     : Google sign-in or sign-up.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)
	router.Post("/google", handler.googleLogin)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(handler.authService))
		protected.Post("/logout-all", handler.logoutAll)
	})

	return router
}

// # Request Payloads

type credentialsRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	DeviceInfo   string `json:"device_info,omitempty"`
}

type googleRequest struct {
	IDToken    string `json:"id_token"`
	DeviceInfo string `json:"device_info,omitempty"`
}

/*
Register handles the creation of a new account.

POST /api/v1/auth/register

Request:
  - Body: credentialsRequest (Email, Password, DeviceInfo)

Response:
  - 201: TokenPair with is_new_user=true
  - 400: Validation failure (shape or password policy)
  - 409: ACCOUNT_EXISTS
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, maxEmailLength).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		Client:   clientOf(request, input.DeviceInfo),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, pair)
}

/*
Login authenticates with email and password.

POST /api/v1/auth/login

Response:
  - 200: TokenPair
  - 401: INVALID_CREDENTIALS
  - 429: RATE_LIMITED after repeated failures
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
		Client:   clientOf(request, input.DeviceInfo),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
Refresh rotates a refresh token.

POST /api/v1/auth/refresh

Response:
  - 200: TokenPair; the presented refresh token is no longer valid
  - 401: INVALID_TOKEN
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := (&validate.Validator{}).Required(FieldRefreshToken, input.RefreshToken).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), input.RefreshToken, clientOf(request, input.DeviceInfo))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

// logout revokes one refresh token. Unknown tokens still answer 204.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := (&validate.Validator{}).Required(FieldRefreshToken, input.RefreshToken).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), input.RefreshToken); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.LogoutAll(request.Context(), accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
GoogleLogin signs in with a Google ID token.

POST /api/v1/auth/google

Response:
  - 200: TokenPair; is_new_user reports whether an account was created
  - 401: OAUTH_ERROR or INVALID_CREDENTIALS
*/
func (handler *Handler) googleLogin(writer http.ResponseWriter, request *http.Request) {
	var input googleRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := (&validate.Validator{}).Required(FieldIDToken, input.IDToken).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.GoogleLogin(request.Context(), input.IDToken, clientOf(request, input.DeviceInfo))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

// clientOf prefers an explicit device_info over the User-Agent descriptor.
func clientOf(request *http.Request, deviceInfo string) Client {
	client := requestutil.Client(request, device.Truncate(deviceInfo))
	return Client{DeviceInfo: client.DeviceInfo, IPAddress: client.IPAddress}
}
