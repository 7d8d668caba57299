package stubs

import (
	"context"
	"sync"
	"time"

	"reportbot/internal/models"
)

// MemoryStore is an in-memory implementation of the Storage interface,
// used for tests and for running without a ClickHouse instance.
type MemoryStore struct {
	mu      sync.RWMutex
	records []models.ReportRecord
}

// NewMemoryStore creates an empty in-memory report archive
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make([]models.ReportRecord, 0),
	}
}

// Initialize is a no-op for the in-memory archive
func (m *MemoryStore) Initialize(ctx context.Context) error {
	return nil
}

// SaveReport archives a submitted report
func (m *MemoryStore) SaveReport(ctx context.Context, record models.ReportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, record)
	return nil
}

// Stats returns aggregate counts over the archive
func (m *MemoryStore) Stats(ctx context.Context) (models.ReportStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := models.ReportStats{
		BySeverity: make(map[string]uint64),
		ByCategory: make(map[string]uint64),
	}

	cutoff := time.Now().Add(-24 * time.Hour)
	for _, r := range m.records {
		stats.Total++
		if r.SubmittedAt.After(cutoff) {
			stats.Last24h++
		}
		stats.BySeverity[r.Severity]++
		stats.ByCategory[r.Category]++
	}

	return stats, nil
}

// Records returns a copy of the archived reports, for tests
func (m *MemoryStore) Records() []models.ReportRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ReportRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Close is a no-op for the in-memory archive
func (m *MemoryStore) Close() error {
	return nil
}
