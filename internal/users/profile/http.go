// Copyright (c) 2026 LifeQuest. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/lifequest/internal/platform/middleware"
	requestutil "github.com/taibuivan/lifequest/internal/platform/request"
	"github.com/taibuivan/lifequest/internal/platform/respond"
	"github.com/taibuivan/lifequest/internal/platform/validate"
	"github.com/taibuivan/lifequest/pkg/textnorm"
)

// Handler implements the /profiles HTTP endpoints.
type Handler struct {
	profileService *Service
	resolver       middleware.PrincipalResolver
}

// NewHandler constructs a new [Handler]. resolver authenticates the /me and onboarding routes.
func NewHandler(service *Service, resolver middleware.PrincipalResolver) *Handler {
	return &Handler{profileService: service, resolver: resolver}
}

// Routes returns a [chi.Router] configured with profile routes.
//
// # Endpoints
//   - GET   /archetypes  : Active archetypes (public).
//   - GET   /life-modes  : Active life modes (public).
//   - GET   /life-areas  : Active life areas (public).
//   - GET   /me          : Caller's profile (auth).
//   - PATCH /me          : Partial update, identity lock enforced (auth).
//   - POST  /onboarding  : Completes onboarding (201, auth).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/archetypes", handler.listArchetypes)
	router.Get("/life-modes", handler.listLifeModes)
	router.Get("/life-areas", handler.listLifeAreas)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth(handler.resolver))
		protected.Get("/me", handler.getProfile)
		protected.Patch("/me", handler.updateProfile)
		protected.Post("/onboarding", handler.completeOnboarding)
	})

	return router
}

// # Request Payloads

type updateRequest struct {
	PlayerName  *string `json:"player_name"`
	ArchetypeID *string `json:"archetype_id"`
	LifeModeID  *string `json:"life_mode_id"`
	AvatarURL   *string `json:"avatar_url"`
	Bio         *string `json:"bio"`
	Timezone    *string `json:"timezone"`
}

type onboardingRequest struct {
	PlayerName  string   `json:"player_name"`
	ArchetypeID string   `json:"archetype_id"`
	LifeModeID  string   `json:"life_mode_id"`
	LifeAreaIDs []string `json:"life_area_ids"`
	AvatarURL   *string  `json:"avatar_url"`
	Bio         *string  `json:"bio"`
	Timezone    string   `json:"timezone"`
}

// # Catalog Handlers

func (handler *Handler) listArchetypes(writer http.ResponseWriter, request *http.Request) {
	archetypes, err := handler.profileService.ListArchetypes(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, archetypes)
}

func (handler *Handler) listLifeModes(writer http.ResponseWriter, request *http.Request) {
	lifeModes, err := handler.profileService.ListLifeModes(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lifeModes)
}

func (handler *Handler) listLifeAreas(writer http.ResponseWriter, request *http.Request) {
	lifeAreas, err := handler.profileService.ListLifeAreas(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, lifeAreas)
}

// # Profile Handlers

func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.profileService.GetProfile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

/*
UpdateProfile applies a partial profile update.

PATCH /api/v1/profiles/me

Response:
  - 200: Profile
  - 400: Validation failure
  - 403: IDENTITY_LOCKED
  - 404: Profile not found
  - 409: Player name already taken
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if input.PlayerName != nil {
		validatePlayerName(validator, *input.PlayerName)
	}
	if input.ArchetypeID != nil {
		validator.UUID(FieldArchetypeID, *input.ArchetypeID)
	}
	if input.LifeModeID != nil {
		validator.UUID(FieldLifeModeID, *input.LifeModeID)
	}
	validatePresentation(validator, input.AvatarURL, input.Bio)
	if input.Timezone != nil {
		validator.Timezone(FieldTimezone, *input.Timezone)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.profileService.UpdateProfile(request.Context(), accountID, UpdateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

/*
CompleteOnboarding creates the caller's profile and locks its identity.

POST /api/v1/profiles/onboarding

Response:
  - 201: OnboardingResult
  - 400: Validation failure (shape or unknown catalog IDs)
  - 409: Onboarding already completed, or player name taken
*/
func (handler *Handler) completeOnboarding(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input onboardingRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validatePlayerName(validator, input.PlayerName)
	validator.UUID(FieldArchetypeID, input.ArchetypeID).
		UUID(FieldLifeModeID, input.LifeModeID).
		Custom(FieldLifeAreaIDs, len(input.LifeAreaIDs) < MinLifeAreas || len(input.LifeAreaIDs) > MaxLifeAreas,
			fmt.Sprintf("Select between %d and %d life areas", MinLifeAreas, MaxLifeAreas)).
		Distinct(FieldLifeAreaIDs, input.LifeAreaIDs)
	for _, id := range input.LifeAreaIDs {
		validator.UUID(FieldLifeAreaIDs, id)
	}
	validatePresentation(validator, input.AvatarURL, input.Bio)
	if input.Timezone != "" {
		validator.Timezone(FieldTimezone, input.Timezone)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.profileService.CompleteOnboarding(request.Context(), accountID, OnboardingInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, result)
}

// # Validation

func validatePlayerName(validator *validate.Validator, name string) {
	length := textnorm.Length(name)
	validator.Custom(FieldPlayerName, length < PlayerNameMinLength || length > PlayerNameMaxLength,
		fmt.Sprintf("Must be between %d and %d characters", PlayerNameMinLength, PlayerNameMaxLength))
}

// validatePresentation checks avatar and bio; an empty value means "clear".
func validatePresentation(validator *validate.Validator, avatarURL, bio *string) {
	if avatarURL != nil && *avatarURL != "" {
		validator.URL(FieldAvatarURL, *avatarURL).MaxLen(FieldAvatarURL, *avatarURL, AvatarURLMaxLength)
	}
	if bio != nil {
		validator.MaxLen(FieldBio, *bio, BioMaxLength)
	}
}
