package store

import (
	"context"
	"slices"
	"sync"

	"github.com/upwatch/uplink/internal/auth"
)

// MemoryStore is an in-memory implementation of [Store].
//
// MemoryStore provides thread-safe storage keyed by record id. It backs
// the package tests and the runnable example; production deployments
// implement [Store] against their own persistence instead.
type MemoryStore struct {
	mu       sync.RWMutex
	websites map[string]Website
	monitors map[string]Monitor
}

// NewMemoryStore creates an empty [MemoryStore].
//
// The store is immediately ready for use. No cleanup is required when done.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		websites: make(map[string]Website),
		monitors: make(map[string]Monitor),
	}
}

// PutWebsite inserts or replaces a website, keyed by ID.
func (m *MemoryStore) PutWebsite(w Website) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.websites[w.ID] = w
}

// PutMonitor inserts or replaces a monitor, keyed by ID.
func (m *MemoryStore) PutMonitor(mon Monitor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.monitors[mon.ID] = mon
}

// WebsitesForPrincipal implements [Store].
//
// The returned slice is a copy; modifications do not affect the store.
// Order is not guaranteed.
func (m *MemoryStore) WebsitesForPrincipal(_ context.Context, domain auth.Domain, principalID string) ([]Website, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Website, 0)
	for _, w := range m.websites {
		switch domain {
		case auth.DomainUser:
			if w.OwnerID == principalID {
				results = append(results, w)
			}
		case auth.DomainContributor:
			if slices.Contains(w.ContributorIDs, principalID) {
				results = append(results, w)
			}
		case auth.DomainOperator:
			// operators see every website
			results = append(results, w)
		}
	}
	return results, nil
}

// MonitorsForWebsites implements [Store].
func (m *MemoryStore) MonitorsForWebsites(_ context.Context, websiteIDs []string) ([]Monitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Monitor, 0)
	for _, mon := range m.monitors {
		if slices.Contains(websiteIDs, mon.WebsiteID) {
			results = append(results, mon)
		}
	}
	return results, nil
}

// MonitorByID implements [Store].
func (m *MemoryStore) MonitorByID(_ context.Context, id string) (Monitor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mon, ok := m.monitors[id]
	if !ok {
		return Monitor{}, ErrNotFound
	}
	return mon, nil
}
