// file: internal/handlers/api/v1/kudos/kudos_controller.go
package kudos

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"kudospot/internal/middleware"
	"kudospot/internal/response"
	"kudospot/internal/services"
)

// KudoController handles the recognition API: sending kudos, the feed,
// the like toggle, stats and the leaderboard.
type KudoController struct {
	serviceCollection *services.ServiceCollection
	responseBuilder   *response.Builder
	logger            *zap.Logger
}

// NewKudoController creates a new kudo controller
func NewKudoController(serviceCollection *services.ServiceCollection, logger *zap.Logger, responseBuilder *response.Builder) *KudoController {
	return &KudoController{
		serviceCollection: serviceCollection,
		responseBuilder:   responseBuilder,
		logger:            logger,
	}
}

// getUserID resolves the authenticated caller, zero when anonymous.
func (c *KudoController) getUserID(r *http.Request) int64 {
	if authCtx := middleware.GetAuthContext(r.Context()); authCtx != nil {
		return authCtx.UserID
	}
	return 0
}

// CreateKudo handles sending a kudo
func (c *KudoController) CreateKudo(w http.ResponseWriter, r *http.Request) {
	userID := c.getUserID(r)
	if userID == 0 {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	var req services.CreateKudoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	// The sender is always the authenticated caller.
	req.FromUserID = userID

	kudo, err := c.serviceCollection.KudoService.CreateKudo(r.Context(), &req)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteCreated(w, r, kudo)
}

// ListKudos handles the global feed, newest first
func (c *KudoController) ListKudos(w http.ResponseWriter, r *http.Request) {
	kudos, err := c.serviceCollection.KudoService.ListKudos(r.Context())
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, kudos)
}

// ListMine handles the caller's sent and received kudos
func (c *KudoController) ListMine(w http.ResponseWriter, r *http.Request) {
	userID := c.getUserID(r)
	if userID == 0 {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	kudos, err := c.serviceCollection.KudoService.ListUserKudos(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, kudos)
}

// ToggleLike handles flipping the caller's like on a kudo
func (c *KudoController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID := c.getUserID(r)
	if userID == 0 {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	kudoID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || kudoID <= 0 {
		c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid kudo id", err))
		return
	}

	kudo, err := c.serviceCollection.KudoService.ToggleLike(r.Context(), kudoID, userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, kudo)
}

// GetStats handles the caller's kudo statistics
func (c *KudoController) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := c.getUserID(r)
	if userID == 0 {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	// A user may inspect another user's stats via ?user_id=.
	if param := r.URL.Query().Get("user_id"); param != "" {
		parsed, err := strconv.ParseInt(param, 10, 64)
		if err != nil || parsed <= 0 {
			c.responseBuilder.WriteError(w, r, services.NewValidationError("invalid user_id", err))
			return
		}
		userID = parsed
	}

	stats, err := c.serviceCollection.KudoService.GetStats(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, stats)
}

// GetLeaderboard handles the ranked top-N views
func (c *KudoController) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	userID := c.getUserID(r)
	if userID == 0 {
		c.responseBuilder.WriteError(w, r, services.NewUnauthorizedError("user not authenticated"))
		return
	}

	board, err := c.serviceCollection.LeaderboardService.GetLeaderboard(r.Context(), userID)
	if err != nil {
		c.responseBuilder.WriteError(w, r, err)
		return
	}

	c.responseBuilder.WriteSuccess(w, r, board)
}
