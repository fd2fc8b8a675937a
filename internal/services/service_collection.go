// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"kudospot/internal/cache"
	"kudospot/internal/config"
	"kudospot/internal/database"
	"kudospot/internal/events"
	"kudospot/internal/repositories"
	"kudospot/internal/utils"
)

// ServiceCollection wires all services with their dependencies.
type ServiceCollection struct {
	// Core services
	AuthService        AuthService        `json:"-"`
	KudoService        KudoService        `json:"-"`
	LeaderboardService LeaderboardService `json:"-"`
	UserService        UserService        `json:"-"`

	// Infrastructure components
	Repositories *repositories.Collection `json:"-"`
	Cache        cache.Cache              `json:"-"`
	EventBus     events.EventBus          `json:"-"`
	Avatars      utils.AvatarStorage      `json:"-"`
	Logger       *zap.Logger              `json:"-"`
	Config       *config.Config           `json:"-"`
	DBManager    *database.Manager        `json:"-"`
}

// NewServiceCollection builds the full service graph in dependency
// order: infrastructure, repositories, then services.
func NewServiceCollection(
	dbManager *database.Manager,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sc := &ServiceCollection{
		DBManager: dbManager,
		Config:    cfg,
		Logger:    logger,
	}

	if err := sc.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	if err := sc.initializeRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}
	sc.initializeServices()

	logger.Info("Service collection initialized")
	return sc, nil
}

// ===============================
// INITIALIZATION
// ===============================

func (sc *ServiceCollection) initializeInfrastructure() error {
	cacheInstance, err := cache.NewCache(&sc.Config.Cache, sc.Logger)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	sc.Cache = cacheInstance

	sc.EventBus = events.NewInMemoryBus(sc.Logger)

	// Avatar uploads are optional; without credentials the endpoint
	// reports the feature as unavailable.
	if sc.Config.Cloudinary.CloudName != "" {
		avatars, err := utils.NewCloudinaryStorage(sc.Config.Cloudinary, sc.Logger)
		if err != nil {
			return fmt.Errorf("avatar storage: %w", err)
		}
		sc.Avatars = avatars
	} else {
		sc.Logger.Warn("Avatar storage disabled, cloudinary not configured")
	}

	return nil
}

func (sc *ServiceCollection) initializeRepositories() error {
	repos, err := repositories.NewCollection(sc.DBManager, sc.Logger)
	if err != nil {
		return fmt.Errorf("repositories: %w", err)
	}
	sc.Repositories = repos
	return nil
}

func (sc *ServiceCollection) initializeServices() {
	txRunner := NewManagerTxRunner(sc.DBManager)

	kudoCfg := DefaultKudoConfig()
	kudoCfg.StatsTTL = sc.Config.Cache.StatsTTL

	sc.AuthService = NewAuthService(sc.Repositories.User, sc.Config.Auth, sc.Logger)
	sc.KudoService = NewKudoService(
		sc.Repositories.Kudo,
		sc.Repositories.User,
		txRunner,
		sc.Cache,
		sc.EventBus,
		sc.Logger,
		kudoCfg,
	)
	sc.LeaderboardService = NewLeaderboardService(
		sc.Repositories.Kudo,
		sc.Cache,
		sc.Logger,
		sc.Config.Leaderboard,
		sc.Config.Cache.LeaderboardTTL,
	)
	sc.UserService = NewUserService(
		sc.Repositories.User,
		sc.Repositories.Kudo,
		txRunner,
		sc.Cache,
		sc.Avatars,
		sc.Logger,
	)
}

// ===============================
// LIFECYCLE
// ===============================

// HealthCheck verifies the collection's critical dependencies.
func (sc *ServiceCollection) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if status := sc.DBManager.Health(ctx); status.Status == database.StatusUnhealthy {
		return fmt.Errorf("database unhealthy: %v", status.Checks)
	}
	if err := sc.Cache.Health(ctx); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}

// Shutdown releases infrastructure resources, draining in-flight event
// handlers first.
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	var firstErr error
	if err := sc.EventBus.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("event bus: %w", err)
	}
	if err := sc.Cache.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("cache: %w", err)
	}
	return firstErr
}
