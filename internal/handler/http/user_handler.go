package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/users-api/internal/user"
)

type CreateUserRequest struct {
	Name      string `json:"name" validate:"required"`
	Telephone string `json:"telephone" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	Name      string  `json:"name" validate:"required"`
	Telephone string  `json:"telephone" validate:"required,max=9"`
	Email     string  `json:"email" validate:"required,email"`
	Password  *string `json:"password,omitempty"`
}

// ListUsersQuery holds the optional substring filters of GET /users.
type ListUsersQuery struct {
	Name      string `json:"name" validate:"omitempty,max=255"`
	Email     string `json:"email" validate:"omitempty,max=255"`
	Telephone string `json:"telephone" validate:"omitempty,max=255"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Telephone string    `json:"telephone"`
	Email     string    `json:"email"`
}

func newUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Telephone: u.Telephone,
		Email:     u.Email,
	}
}

type UserHandler struct {
	service  user.Service
	validate *validator.Validate
}

func NewUserHandler(service user.Service) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: newValidator(),
	}
}

func (h *UserHandler) RegisterRoutes(router chi.Router) {
	router.Get("/users", h.handleListUsers)
	router.Post("/users", h.handleCreateUser)
	router.Get("/users/{id}", h.handleGetUserByID)
	router.Put("/users/{id}", h.handleUpdateUser)
	router.Delete("/users/{id}", h.handleDeleteUser)
}

func (h *UserHandler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := ListUsersQuery{
		Name:      strings.TrimSpace(q.Get("name")),
		Email:     strings.TrimSpace(q.Get("email")),
		Telephone: strings.TrimSpace(q.Get("telephone")),
	}

	if err := h.validate.Struct(query); err != nil {
		writeValidationError(w, err)
		return
	}

	users, err := h.service.ListUsers(r.Context(), user.Filter{
		Name:      query.Name,
		Email:     query.Email,
		Telephone: query.Telephone,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	responsePayload := make([]UserResponse, 0, len(users))
	for i := range users {
		responsePayload = append(responsePayload, newUserResponse(&users[i]))
	}

	respondWithJSON(w, http.StatusOK, responsePayload)
}

func (h *UserHandler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var requestPayload CreateUserRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		writeValidationError(w, err)
		return
	}

	domainUser := user.User{
		Name:      requestPayload.Name,
		Telephone: requestPayload.Telephone,
		Email:     requestPayload.Email,
		Password:  requestPayload.Password,
	}

	createdUser, err := h.service.CreateUser(r.Context(), &domainUser)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create user via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to create user"))
		return
	}

	respondWithJSON(w, http.StatusCreated, newUserResponse(createdUser))
}

func (h *UserHandler) handleGetUserByID(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	foundUser, err := h.service.GetUserByID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to get user by id via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to get user"))
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(foundUser))
}

func (h *UserHandler) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	var requestPayload UpdateUserRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Warn().Err(err).Msg("Failed to decode user")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		writeValidationError(w, err)
		return
	}

	domainUser := user.User{
		ID:        userID,
		Name:      requestPayload.Name,
		Telephone: requestPayload.Telephone,
		Email:     requestPayload.Email,
	}

	if requestPayload.Password != nil {
		domainUser.Password = *requestPayload.Password
	}

	updatedUser, err := h.service.UpdateUser(r.Context(), &domainUser)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to update user via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to update user"))
		return
	}

	respondWithJSON(w, http.StatusOK, newUserResponse(updatedUser))
}

func (h *UserHandler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteUser(r.Context(), userID); err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to delete user via service")
		respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, "Failed to delete user"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseUserID reads the {id} path parameter, answering 400 when it is not a UUID.
func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	userID, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("user_id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}
	return userID, true
}
