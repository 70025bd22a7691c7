package store

import (
	"context"
	"errors"

	"github.com/upwatch/uplink/internal/auth"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Website is a monitored site owned by an end user and optionally worked
// on by contributors.
type Website struct {
	// ID is the opaque website identifier.
	ID string `json:"id"`

	// Name is the website's display name.
	Name string `json:"name"`

	// URL is the website's root URL.
	URL string `json:"url"`

	// OwnerID is the end user (user domain) owning the website.
	OwnerID string `json:"ownerId"`

	// ContributorIDs are the contributors assigned to check this website.
	ContributorIDs []string `json:"contributorIds,omitempty"`
}

// Monitor is a single uptime check target belonging to a website.
type Monitor struct {
	// ID is the opaque monitor identifier.
	ID string `json:"id"`

	// WebsiteID is the owning website.
	WebsiteID string `json:"websiteId"`

	// Name is the monitor's display name.
	Name string `json:"name"`

	// URL is the probed URL.
	URL string `json:"url"`

	// Status is the last known health state, "up" or "down".
	Status string `json:"status"`

	// Uptime is the historical uptime percentage (0-100).
	Uptime float64 `json:"uptime"`
}

// Monitor status values.
const (
	StatusUp   = "up"
	StatusDown = "down"
)

// Store is the read interface the realtime core consumes.
//
// Implementations must be safe for concurrent use; every dashboard request
// and alert fan-out may call into the store from its own goroutine.
type Store interface {
	// WebsitesForPrincipal returns the websites visible to a principal:
	// owned websites for the user domain, assigned websites for the
	// contributor domain, and all websites for the operator domain.
	// An unknown principal yields an empty slice, not an error.
	WebsitesForPrincipal(ctx context.Context, domain auth.Domain, principalID string) ([]Website, error)

	// MonitorsForWebsites returns all monitors belonging to any of the
	// given websites.
	MonitorsForWebsites(ctx context.Context, websiteIDs []string) ([]Monitor, error)

	// MonitorByID returns a single monitor, or [ErrNotFound].
	MonitorByID(ctx context.Context, id string) (Monitor, error)
}
