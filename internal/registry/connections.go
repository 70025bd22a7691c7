package registry

import (
	"sync"

	"github.com/upwatch/uplink/internal/auth"
)

// Connections maps authenticated principals to their live connection ids.
//
// Each credential domain has its own table, so the same id string can be a
// user in one domain and a contributor in another without collision.
// Registration is last-write-wins: a second authentication for the same
// principal silently replaces the previous connection mapping. The evicted
// connection stays open but unmapped until its own disconnect.
type Connections struct {
	mu       sync.RWMutex
	byDomain map[auth.Domain]map[string]string // principalID -> connectionID
}

// NewConnections creates an empty [Connections] registry.
func NewConnections() *Connections {
	return &Connections{
		byDomain: map[auth.Domain]map[string]string{
			auth.DomainUser:        {},
			auth.DomainContributor: {},
			auth.DomainOperator:    {},
		},
	}
}

// Register records connID as the live connection for (domain, principalID),
// overwriting any prior mapping. Always succeeds.
func (c *Connections) Register(domain auth.Domain, principalID, connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.byDomain[domain]
	if !ok {
		m = make(map[string]string)
		c.byDomain[domain] = m
	}
	m[principalID] = connID
}

// UnregisterConnection removes every mapping, in any domain, whose value is
// connID. Mappings that have since been overwritten by a newer connection
// for the same principal are left alone. Idempotent.
func (c *Connections) UnregisterConnection(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, m := range c.byDomain {
		for principalID, id := range m {
			if id == connID {
				delete(m, principalID)
			}
		}
	}
}

// Lookup returns the live connection id for (domain, principalID), if any.
func (c *Connections) Lookup(domain auth.Domain, principalID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byDomain[domain][principalID]
	return id, ok
}
