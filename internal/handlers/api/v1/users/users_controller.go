// file: internal/handlers/api/v1/users/users_controller.go
package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"kudospot/internal/middleware"
	"kudospot/internal/response"
	"kudospot/internal/services"
)

// maxAvatarUploadBytes bounds the multipart form held in memory.
const maxAvatarUploadBytes = 10 << 20

// UserController handles profile and directory endpoints.
type UserController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewUserController creates a new user controller
func NewUserController(serviceCollection *services.ServiceCollection, logger *zap.Logger, responseBuilder *response.Builder) *UserController {
	return &UserController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

func (c *UserController) getUserID(r *http.Request) int64 {
	if authCtx := middleware.GetAuthContext(r.Context()); authCtx != nil {
		return authCtx.UserID
	}
	return 0
}

// GetMe handles the caller's own profile
func (c *UserController) GetMe(w http.ResponseWriter, r *http.Request) {
	userID := c.getUserID(r)
	if userID == 0 {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	user, err := c.serviceCollection.UserService.GetUserByID(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

// UpdateMe handles profile edits
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID := c.getUserID(r)
	if userID == 0 {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.UserID = userID

	user, err := c.serviceCollection.UserService.UpdateProfile(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

// UploadAvatar handles replacing the caller's avatar image
func (c *UserController) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID := c.getUserID(r)
	if userID == 0 {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	if err := r.ParseMultipartForm(maxAvatarUploadBytes); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid multipart form", err))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("missing avatar file", err))
		return
	}
	defer file.Close()

	user, err := c.serviceCollection.UserService.UploadAvatar(r.Context(), &services.UploadAvatarRequest{
		UserID:   userID,
		File:     file,
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

// GetUser handles viewing another user's profile
func (c *UserController) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user id", err))
		return
	}

	user, err := c.serviceCollection.UserService.GetUserByID(r.Context(), id)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}

// ListUsers handles the user directory for recipient pickers
func (c *UserController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.serviceCollection.UserService.ListUsers(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, users)
}

// RecomputeProgression handles the progression repair endpoint
func (c *UserController) RecomputeProgression(w http.ResponseWriter, r *http.Request) {
	userID := c.getUserID(r)
	if userID == 0 {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	user, err := c.serviceCollection.UserService.RecomputeProgression(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, user)
}
