package cache

import (
	"context"
	"sync"
	"time"

	"github.com/johnquangdev/meeting-insights/internal/domain/entities"
)

// MemoryStore is the in-process fallback for deployments without Redis. It
// provides the same run-lock and roster-cache behavior within one process.
type MemoryStore struct {
	mu        sync.RWMutex
	locks     map[string]time.Time
	rosters   map[string]rosterItem
	lockTTL   time.Duration
	rosterTTL time.Duration
}

type rosterItem struct {
	roster     []entities.ParticipantRecord
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(lockTTL, rosterTTL time.Duration) *MemoryStore {
	store := &MemoryStore{
		locks:     make(map[string]time.Time),
		rosters:   make(map[string]rosterItem),
		lockTTL:   lockTTL,
		rosterTTL: rosterTTL,
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired()

	return store
}

// AcquireRunLock takes the per-meeting lock unless a live one exists.
func (ms *MemoryStore) AcquireRunLock(_ context.Context, meetingID string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if expiry, exists := ms.locks[meetingID]; exists && time.Now().Before(expiry) {
		return false, nil
	}
	ms.locks[meetingID] = time.Now().Add(ms.lockTTL)
	return true, nil
}

// ReleaseRunLock frees the per-meeting lock.
func (ms *MemoryStore) ReleaseRunLock(_ context.Context, meetingID string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.locks, meetingID)
	return nil
}

// GetRoster returns a cached roster lookup, if present and not expired.
func (ms *MemoryStore) GetRoster(_ context.Context, key string) ([]entities.ParticipantRecord, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.rosters[key]
	if !exists || time.Now().After(item.expireTime) {
		return nil, false
	}
	return item.roster, true
}

// SetRoster caches a roster lookup.
func (ms *MemoryStore) SetRoster(_ context.Context, key string, roster []entities.ParticipantRecord) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.rosters[key] = rosterItem{
		roster:     roster,
		expireTime: time.Now().Add(ms.rosterTTL),
	}
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		ms.mu.Lock()
		now := time.Now()
		for key, expiry := range ms.locks {
			if now.After(expiry) {
				delete(ms.locks, key)
			}
		}
		for key, item := range ms.rosters {
			if now.After(item.expireTime) {
				delete(ms.rosters, key)
			}
		}
		ms.mu.Unlock()
	}
}
