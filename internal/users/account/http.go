// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lifequest/internal/platform/middleware"
	requestutil "github.com/taibuivan/lifequest/internal/platform/request"
	"github.com/taibuivan/lifequest/internal/platform/respond"
	"github.com/taibuivan/lifequest/internal/platform/validate"
)

// Handler implements the HTTP layer for the signed-in account.
type Handler struct {
	accountService *Service
	resolver       middleware.PrincipalResolver
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, resolver middleware.PrincipalResolver) *Handler {
	return &Handler{accountService: service, resolver: resolver}
}

// Routes returns a [chi.Router] configured with the account endpoints.
// Every route requires an access token.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth(handler.resolver))

	router.Get("/me", handler.getMe)
	router.Get("/me/sessions", handler.listSessions)
	router.Delete("/me/sessions/{id}", handler.revokeSession)

	return router
}

/*
GET /api/v1/users/me.

Description: Retrieves the account behind the access token.

Response:
  - 200: View
  - 401: Missing or invalid token
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	view, err := handler.accountService.GetCurrent(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, view)
}

// # Session Endpoints

/*
GET /api/v1/users/me/sessions.

Description: Enumerates the devices currently signed in to the account.

Response:
  - 200: []SessionView
  - 401: Missing or invalid token
*/
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.accountService.ListSessions(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, sessions)
}

/*
DELETE /api/v1/users/me/sessions/{id}.

Description: Signs out one device identified by its session ID.

Request:
  - id: string (Session UUID)

Response:
  - 204: No Content
  - 400: Malformed ID
  - 401: Missing or invalid token
  - 404: Session not found (or owned by another account)
*/
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID := requestutil.Param(request, "id")

	validator := &validate.Validator{}
	validator.UUID("id", sessionID)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.RevokeSession(request.Context(), accountID, sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
