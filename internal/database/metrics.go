// file: internal/database/metrics.go
package database

import (
	"database/sql"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Metrics accumulates query counters for the database manager.
type Metrics struct {
	db     *sql.DB
	logger *zap.Logger

	mu             sync.RWMutex
	startTime      time.Time
	totalQueries   int64
	failedQueries  int64
	totalDuration  time.Duration
	slowestQuery   time.Duration
	queriesByType  map[string]int64
	failuresByType map[string]int64
}

// MetricsSnapshot is a point-in-time copy of the metrics.
type MetricsSnapshot struct {
	Uptime          time.Duration    `json:"uptime"`
	TotalQueries    int64            `json:"total_queries"`
	FailedQueries   int64            `json:"failed_queries"`
	AverageDuration time.Duration    `json:"average_duration"`
	SlowestQuery    time.Duration    `json:"slowest_query"`
	QueriesByType   map[string]int64 `json:"queries_by_type"`
	FailuresByType  map[string]int64 `json:"failures_by_type"`
	Pool            PoolStatus       `json:"pool"`
}

// NewMetrics creates a metrics collector for the given pool.
func NewMetrics(db *sql.DB, logger *zap.Logger) *Metrics {
	return &Metrics{
		db:             db,
		logger:         logger,
		startTime:      time.Now(),
		queriesByType:  make(map[string]int64),
		failuresByType: make(map[string]int64),
	}
}

// RecordQuery records the outcome of a single query.
func (m *Metrics) RecordQuery(queryType string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalQueries++
	m.totalDuration += duration
	m.queriesByType[queryType]++

	if duration > m.slowestQuery {
		m.slowestQuery = duration
	}
	if err != nil && err != sql.ErrNoRows {
		m.failedQueries++
		m.failuresByType[queryType]++
	}
}

// Snapshot returns a copy of the current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var avg time.Duration
	if m.totalQueries > 0 {
		avg = m.totalDuration / time.Duration(m.totalQueries)
	}

	byType := make(map[string]int64, len(m.queriesByType))
	for k, v := range m.queriesByType {
		byType[k] = v
	}
	failures := make(map[string]int64, len(m.failuresByType))
	for k, v := range m.failuresByType {
		failures[k] = v
	}

	stats := m.db.Stats()
	return &MetricsSnapshot{
		Uptime:          time.Since(m.startTime),
		TotalQueries:    m.totalQueries,
		FailedQueries:   m.failedQueries,
		AverageDuration: avg,
		SlowestQuery:    m.slowestQuery,
		QueriesByType:   byType,
		FailuresByType:  failures,
		Pool: PoolStatus{
			OpenConnections: stats.OpenConnections,
			InUse:           stats.InUse,
			Idle:            stats.Idle,
			MaxOpen:         stats.MaxOpenConnections,
		},
	}
}

// Reset clears all counters. Used by tests.
func (m *Metrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.startTime = time.Now()
	m.totalQueries = 0
	m.failedQueries = 0
	m.totalDuration = 0
	m.slowestQuery = 0
	m.queriesByType = make(map[string]int64)
	m.failuresByType = make(map[string]int64)
}
