// file: internal/database/database.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"kudospot/internal/config"

	"go.uber.org/zap"
)

var (
	manager *Manager
	mu      sync.RWMutex
)

// InitDB initializes the global database manager and runs migrations.
func InitDB(cfg *config.Config, logger *zap.Logger) error {
	mu.Lock()
	defer mu.Unlock()

	if manager != nil {
		return fmt.Errorf("database already initialized")
	}

	m, err := NewManager(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	migrationsPath := determineMigrationsPath(cfg.Database.MigrationsPath)
	if migrationsPath != "" {
		if err := m.Migrate(migrationsPath); err != nil {
			m.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	} else {
		logger.Warn("Migrations directory not found, skipping migrations",
			zap.String("configured_path", cfg.Database.MigrationsPath))
	}

	manager = m
	return nil
}

// determineMigrationsPath resolves the migrations directory relative to
// the working directory, returning "" when it does not exist.
func determineMigrationsPath(configPath string) string {
	candidates := []string{configPath, "migrations", filepath.Join("..", "..", "migrations")}
	for _, p := range candidates {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			abs, err := filepath.Abs(p)
			if err == nil {
				return abs
			}
			return p
		}
	}
	return ""
}

// GetDB returns the global database manager, or nil before InitDB.
func GetDB() *Manager {
	mu.RLock()
	defer mu.RUnlock()
	return manager
}

// Close shuts down the global database manager.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if manager == nil {
		return nil
	}
	err := manager.Close()
	manager = nil
	return err
}

// Health checks the health of the global database manager.
func Health(ctx context.Context) *HealthStatus {
	m := GetDB()
	if m == nil {
		return &HealthStatus{
			Status: StatusUnhealthy,
			Errors: []string{"database not initialized"},
		}
	}
	return m.Health(ctx)
}

// ExecuteTransaction runs fn inside a transaction, rolling back on error
// or panic.
func ExecuteTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	m := GetDB()
	if m == nil {
		return fmt.Errorf("database not initialized")
	}
	return ExecuteTransactionOn(ctx, m, fn)
}

// ExecuteTransactionOn runs fn inside a transaction on the given manager.
func ExecuteTransactionOn(ctx context.Context, m *Manager, fn func(*sql.Tx) error) error {
	tx, err := m.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WaitForConnection blocks until the database answers a ping or the
// timeout elapses.
func WaitForConnection(ctx context.Context, timeout time.Duration) error {
	m := GetDB()
	if m == nil {
		return fmt.Errorf("database not initialized")
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := m.DB().PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
	return fmt.Errorf("database connection not ready within %s", timeout)
}
