// Package snapshot assembles on-demand dashboard summaries.
//
// This package is internal to UpLink. A snapshot is a consistent read-only
// view of one principal's websites and monitors plus aggregate stats,
// recomputed from the data store on every request. Nothing is cached, so
// staleness is bounded only by store read latency.
package snapshot

import (
	"context"
	"errors"
	"fmt"

	"github.com/upwatch/uplink/internal/auth"
	"github.com/upwatch/uplink/internal/store"
)

// ErrUnauthenticated indicates a dashboard was requested without a
// resolved principal.
var ErrUnauthenticated = errors.New("authentication required")

// Stats aggregates monitor health for one principal's dashboard.
type Stats struct {
	// TotalMonitors is the number of monitors across all visible websites.
	TotalMonitors int `json:"totalMonitors"`

	// MonitorsUp counts monitors whose last known status is up.
	MonitorsUp int `json:"monitorsUp"`

	// MonitorsDown counts monitors whose last known status is down.
	MonitorsDown int `json:"monitorsDown"`

	// AverageUptime is the mean uptime percentage across monitors.
	// Zero when there are no monitors.
	AverageUptime float64 `json:"averageUptime"`
}

// Snapshot is the dashboard payload for one principal.
//
// Websites and Monitors are always non-nil so the wire representation is
// an empty array, never null.
type Snapshot struct {
	Websites []store.Website `json:"websites"`
	Monitors []store.Monitor `json:"monitors"`
	Stats    Stats           `json:"stats"`
}

// Build assembles the dashboard snapshot for (domain, principalID).
//
// Returns [ErrUnauthenticated] when principalID is empty. A principal with
// zero visible websites gets a zero-valued snapshot, not an error: an
// empty or not-yet-provisioned account is a valid state, and treating it
// as missing would leak account existence.
func Build(ctx context.Context, st store.Store, domain auth.Domain, principalID string) (Snapshot, error) {
	if principalID == "" {
		return Snapshot{}, ErrUnauthenticated
	}

	websites, err := st.WebsitesForPrincipal(ctx, domain, principalID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load websites: %w", err)
	}

	empty := Snapshot{
		Websites: []store.Website{},
		Monitors: []store.Monitor{},
	}
	if len(websites) == 0 {
		return empty, nil
	}

	ids := make([]string, len(websites))
	for i, w := range websites {
		ids[i] = w.ID
	}

	monitors, err := st.MonitorsForWebsites(ctx, ids)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load monitors: %w", err)
	}
	if monitors == nil {
		monitors = []store.Monitor{}
	}

	return Snapshot{
		Websites: websites,
		Monitors: monitors,
		Stats:    computeStats(monitors),
	}, nil
}

// computeStats derives aggregate counts and mean uptime from a monitor
// list. Pure function; the zero monitor list yields zero stats (no
// division by zero).
func computeStats(monitors []store.Monitor) Stats {
	stats := Stats{TotalMonitors: len(monitors)}
	if len(monitors) == 0 {
		return stats
	}

	var uptimeSum float64
	for _, m := range monitors {
		switch m.Status {
		case store.StatusUp:
			stats.MonitorsUp++
		case store.StatusDown:
			stats.MonitorsDown++
		}
		uptimeSum += m.Uptime
	}
	stats.AverageUptime = uptimeSum / float64(len(monitors))
	return stats
}
