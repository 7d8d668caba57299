package stubs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportbot/internal/models"
)

func TestMemoryStore_SaveAndStats(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stats.Total)

	now := time.Now()
	require.NoError(t, store.SaveReport(ctx, models.ReportRecord{
		UserID: 1, Category: "Swap", Severity: "Critical", SubmittedAt: now,
	}))
	require.NoError(t, store.SaveReport(ctx, models.ReportRecord{
		UserID: 2, Category: "Swap", Severity: "Low", SubmittedAt: now.Add(-48 * time.Hour),
	}))

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stats.Total)
	assert.Equal(t, uint64(1), stats.Last24h)
	assert.Equal(t, uint64(1), stats.BySeverity["Critical"])
	assert.Equal(t, uint64(2), stats.ByCategory["Swap"])

	records := store.Records()
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].UserID)
}

func TestMemoryStore_ConcurrentSaves(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = store.SaveReport(ctx, models.ReportRecord{UserID: id, SubmittedAt: time.Now()})
		}(int64(i))
	}
	wg.Wait()

	assert.Len(t, store.Records(), 20)
}
