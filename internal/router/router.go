// file: internal/router/router.go
package router

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"kudospot/internal/handlers/api/v1/auth"
	"kudospot/internal/handlers/api/v1/kudos"
	"kudospot/internal/handlers/api/v1/users"
	"kudospot/internal/middleware"
	"kudospot/internal/response"
	"kudospot/internal/services"
)

// SetupRouter wires all HTTP routes and the middleware chain.
func SetupRouter(sc *services.ServiceCollection, responseBuilder *response.Builder, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	authController := auth.NewAuthController(sc, logger, responseBuilder)
	kudoController := kudos.NewKudoController(sc, logger, responseBuilder)
	userController := users.NewUserController(sc, logger, responseBuilder)

	requireAuth := middleware.RequireAuth(sc.Config.Auth.JWTSecret, logger)
	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/register", authController.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authController.Login)
	mux.HandleFunc("GET /api/v1/health", healthHandler(sc, responseBuilder))

	// Kudos
	mux.Handle("GET /api/v1/kudos", protected(kudoController.ListKudos))
	mux.Handle("POST /api/v1/kudos", protected(kudoController.CreateKudo))
	mux.Handle("GET /api/v1/kudos/mine", protected(kudoController.ListMine))
	mux.Handle("POST /api/v1/kudos/{id}/like", protected(kudoController.ToggleLike))
	mux.Handle("GET /api/v1/kudos/stats", protected(kudoController.GetStats))
	mux.Handle("GET /api/v1/kudos/leaderboard", protected(kudoController.GetLeaderboard))

	// Users
	mux.Handle("GET /api/v1/users", protected(userController.ListUsers))
	mux.Handle("GET /api/v1/users/me", protected(userController.GetMe))
	mux.Handle("PUT /api/v1/users/me", protected(userController.UpdateMe))
	mux.Handle("POST /api/v1/users/me/avatar", protected(userController.UploadAvatar))
	mux.Handle("POST /api/v1/users/me/progression", protected(userController.RecomputeProgression))
	mux.Handle("GET /api/v1/users/{id}", protected(userController.GetUser))

	// Outermost first: correlation IDs, recovery, headers, CORS, then
	// access logging closest to the handlers.
	return middleware.Chain(mux,
		middleware.RequestID(logger),
		middleware.RecoverPanic(logger),
		middleware.SecureHeaders,
		middleware.CORS(sc.Config.Server.CORSOrigins),
		middleware.Logging(),
	)
}

// healthHandler reports database, cache and pool health.
func healthHandler(sc *services.ServiceCollection, rb *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbStatus := sc.DBManager.Health(r.Context())

		cacheStatus := "healthy"
		if err := sc.Cache.Health(r.Context()); err != nil {
			cacheStatus = "unhealthy"
		}

		payload := map[string]interface{}{
			"status":    dbStatus.Status,
			"timestamp": time.Now().UTC(),
			"database":  dbStatus,
			"cache":     cacheStatus,
		}

		code := http.StatusOK
		if dbStatus.Status == "unhealthy" || cacheStatus == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		rb.WriteJSON(w, r, &response.APIResponse{Success: code == http.StatusOK, Data: payload}, code)
	}
}
