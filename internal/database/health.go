// file: internal/database/health.go
package database

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the result of one round of database health checks.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Latency   time.Duration          `json:"latency"`
	Checks    map[string]CheckResult `json:"checks"`
	Pool      PoolStatus             `json:"pool"`
	Errors    []string               `json:"errors,omitempty"`
}

// CheckResult is the outcome of a single health check.
type CheckResult struct {
	Status   string        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// PoolStatus reports connection pool utilization.
type PoolStatus struct {
	OpenConnections int `json:"open_connections"`
	InUse           int `json:"in_use"`
	Idle            int `json:"idle"`
	MaxOpen         int `json:"max_open"`
}

// HealthChecker runs connectivity and table-access checks against the
// kudospot schema.
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger
}

// NewHealthChecker creates a health checker bound to a manager.
func NewHealthChecker(manager *Manager, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{
		manager: manager,
		logger:  logger,
	}
}

// Check runs all health checks and aggregates the result.
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Timestamp: start,
		Checks:    make(map[string]CheckResult),
	}

	hc.runCheck(ctx, status, "connectivity", hc.checkConnectivity)
	hc.runCheck(ctx, status, "table_access", hc.checkTableAccess)
	hc.checkConnectionPool(status)

	status.Latency = time.Since(start)
	status.Status = hc.determineOverallStatus(status)

	if status.Status != StatusHealthy {
		hc.logger.Warn("Database health degraded",
			zap.String("status", status.Status),
			zap.Strings("errors", status.Errors),
		)
	}
	return status
}

func (hc *HealthChecker) runCheck(ctx context.Context, status *HealthStatus, name string, fn func(context.Context) error) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	err := fn(checkCtx)
	result := CheckResult{
		Status:   StatusHealthy,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		status.Errors = append(status.Errors, fmt.Sprintf("%s: %v", name, err))
	}
	status.Checks[name] = result
}

func (hc *HealthChecker) checkConnectivity(ctx context.Context) error {
	var one int
	if err := hc.manager.DB().QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("ping query failed: %w", err)
	}
	return nil
}

// checkTableAccess verifies the core tables the engine depends on are
// reachable.
func (hc *HealthChecker) checkTableAccess(ctx context.Context) error {
	for _, table := range []string{"users", "kudos", "badges", "kudo_likes"} {
		query := fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", table)
		rows, err := hc.manager.DB().QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("table %s not accessible: %w", table, err)
		}
		rows.Close()
	}
	return nil
}

func (hc *HealthChecker) checkConnectionPool(status *HealthStatus) {
	stats := hc.manager.Stats()
	status.Pool = PoolStatus{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpen:         stats.MaxOpenConnections,
	}

	if stats.MaxOpenConnections > 0 {
		utilization := float64(stats.InUse) / float64(stats.MaxOpenConnections)
		if utilization > 0.9 {
			status.Errors = append(status.Errors,
				fmt.Sprintf("connection pool near capacity: %d/%d in use", stats.InUse, stats.MaxOpenConnections))
		}
	}
}

func (hc *HealthChecker) determineOverallStatus(status *HealthStatus) string {
	if conn, ok := status.Checks["connectivity"]; ok && conn.Status != StatusHealthy {
		return StatusUnhealthy
	}
	if len(status.Errors) > 0 {
		return StatusDegraded
	}
	return StatusHealthy
}
