// file: internal/repositories/collection.go
package repositories

import (
	"fmt"

	"kudospot/internal/database"

	"go.uber.org/zap"
)

// Collection bundles all repositories for dependency injection into the
// service layer.
type Collection struct {
	User UserRepository
	Kudo KudoRepository

	db     *database.Manager
	logger *zap.Logger
}

// NewCollection creates the repository collection.
func NewCollection(db *database.Manager, logger *zap.Logger) (*Collection, error) {
	if db == nil {
		return nil, fmt.Errorf("database manager is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Collection{
		User:   NewUserRepository(db, logger),
		Kudo:   NewKudoRepository(db, logger),
		db:     db,
		logger: logger,
	}, nil
}

// Manager returns the shared database manager, used by services that
// coordinate multi-repository transactions.
func (c *Collection) Manager() *database.Manager {
	return c.db
}
