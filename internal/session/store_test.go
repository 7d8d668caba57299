package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportbot/internal/models"
)

func TestGetReturnsFreshIdleSession(t *testing.T) {
	store := NewMemoryStore(15 * time.Second)

	sess := store.Get(42)
	require.NotNil(t, sess)
	assert.Equal(t, StepIdle, sess.Step)
	assert.Empty(t, sess.Wallet)

	// A fresh session is not stored until Put
	sess.Wallet = "0x1234"
	again := store.Get(42)
	assert.Empty(t, again.Wallet)
}

func TestPutStoresAndGetReturnsSame(t *testing.T) {
	store := NewMemoryStore(15 * time.Second)

	sess := store.Get(42)
	sess.Step = StepAwaitingTx
	sess.Category = models.CategoryBridge
	sess.Wallet = "0x1234567890abcdef1234567890abcdef12345678"
	store.Put(42, sess)

	got := store.Get(42)
	assert.Equal(t, StepAwaitingTx, got.Step)
	assert.Equal(t, models.CategoryBridge, got.Category)
	assert.Equal(t, sess.Wallet, got.Wallet)
	assert.False(t, got.LastActivity.IsZero())
}

func TestResetDropsSessionAndCooldown(t *testing.T) {
	store := NewMemoryStore(time.Minute)

	sess := store.Get(42)
	sess.Step = StepAwaitingWallet
	store.Put(42, sess)
	require.True(t, store.Allow(42))

	store.Reset(42)

	assert.Equal(t, StepIdle, store.Get(42).Step)
	// Cooldown record is gone too, so the next message is accepted
	assert.True(t, store.Allow(42))
}

func TestCooldown(t *testing.T) {
	store := NewMemoryStore(15 * time.Second)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }

	require.True(t, store.Allow(42))

	// Inside the window: rejected
	now = base.Add(10 * time.Second)
	assert.False(t, store.Allow(42))

	// The rejection must not have advanced the timestamp: 16s after the
	// accepted message the user is allowed again, even though only 6s
	// passed since the rejected one.
	now = base.Add(16 * time.Second)
	assert.True(t, store.Allow(42))

	// Different users never interfere
	now = base.Add(17 * time.Second)
	assert.True(t, store.Allow(43))
}

func TestSweepIdle(t *testing.T) {
	store := NewMemoryStore(15 * time.Second)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := base
	store.now = func() time.Time { return now }

	stale := store.Get(1)
	stale.Step = StepAwaitingWallet
	store.Put(1, stale)

	now = base.Add(40 * time.Minute)
	fresh := store.Get(2)
	fresh.Step = StepAwaitingTx
	store.Put(2, fresh)

	removed := store.SweepIdle(30 * time.Minute)
	assert.Equal(t, 1, removed)
	assert.Equal(t, StepIdle, store.Get(1).Step)
	assert.Equal(t, StepAwaitingTx, store.Get(2).Step)
}

func TestConcurrentPutAndSweep(t *testing.T) {
	store := NewMemoryStore(0)

	// Re-Put the session pointer Get returned, the way handlers do,
	// while sweepers scan LastActivity concurrently.
	stop := make(chan struct{})
	var sweepers sync.WaitGroup
	for i := 0; i < 4; i++ {
		sweepers.Add(1)
		go func() {
			defer sweepers.Done()
			for {
				select {
				case <-stop:
					return
				default:
					store.SweepIdle(time.Hour)
				}
			}
		}()
	}

	var writers sync.WaitGroup
	for i := int64(0); i < 20; i++ {
		writers.Add(1)
		go func(userID int64) {
			defer writers.Done()
			for j := 0; j < 100; j++ {
				sess := store.Get(userID)
				sess.Step = StepAwaitingWallet
				store.Put(userID, sess)
			}
		}(i)
	}
	writers.Wait()
	close(stop)
	sweepers.Wait()

	for i := int64(0); i < 20; i++ {
		assert.Equal(t, StepAwaitingWallet, store.Get(i).Step)
	}
}

func TestConcurrentAccessIsIsolatedPerUser(t *testing.T) {
	store := NewMemoryStore(0)

	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			sess := store.Get(userID)
			sess.Step = StepAwaitingDescription
			sess.Description = "user"
			store.Put(userID, sess)
			store.Allow(userID)
		}(i)
	}
	wg.Wait()

	for i := int64(0); i < 50; i++ {
		assert.Equal(t, StepAwaitingDescription, store.Get(i).Step)
	}
}
