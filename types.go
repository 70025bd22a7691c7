package uplink

import (
	"github.com/upwatch/uplink/internal/auth"
	"github.com/upwatch/uplink/internal/hub"
	"github.com/upwatch/uplink/internal/store"
)

// Domain identifies one of the three credential domains.
type Domain = auth.Domain

// The three credential domains tokens are verified against, in precedence
// order.
const (
	DomainUser        = auth.DomainUser
	DomainContributor = auth.DomainContributor
	DomainOperator    = auth.DomainOperator
)

// Secrets holds the per-domain HMAC verification secrets.
type Secrets = auth.Secrets

// Identity is a resolved principal.
type Identity = auth.Identity

// Store is the read interface UpLink consumes for dashboard snapshots and
// alert website resolution. Implement it over the platform's persistence
// layer and pass it to [WithStore].
type Store = store.Store

// Website and Monitor are the records crossing the [Store] seam.
type (
	Website = store.Website
	Monitor = store.Monitor
)

// ErrNotFound is returned by [Store.MonitorByID] for unknown monitors.
var ErrNotFound = store.ErrNotFound

// MemoryStore is an in-memory [Store] for tests and demos.
type MemoryStore = store.MemoryStore

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return store.NewMemoryStore()
}

// Conn is the connection surface passed to custom event handlers.
type Conn = hub.Conn

// EventHandler processes one custom protocol event; see
// [Gateway.RegisterEvent].
type EventHandler = hub.EventHandler
