package store

import (
	"context"
	"errors"
	"testing"

	"github.com/upwatch/uplink/internal/auth"
)

func seedStore() *MemoryStore {
	s := NewMemoryStore()
	s.PutWebsite(Website{ID: "w-1", Name: "Shop", OwnerID: "u-1", ContributorIDs: []string{"c-1"}})
	s.PutWebsite(Website{ID: "w-2", Name: "Blog", OwnerID: "u-1"})
	s.PutWebsite(Website{ID: "w-3", Name: "Docs", OwnerID: "u-2", ContributorIDs: []string{"c-1", "c-2"}})
	s.PutMonitor(Monitor{ID: "m-1", WebsiteID: "w-1", Status: StatusUp, Uptime: 99.9})
	s.PutMonitor(Monitor{ID: "m-2", WebsiteID: "w-1", Status: StatusDown, Uptime: 80})
	s.PutMonitor(Monitor{ID: "m-3", WebsiteID: "w-3", Status: StatusUp, Uptime: 100})
	return s
}

func TestMemoryStore_WebsitesForPrincipal(t *testing.T) {
	s := seedStore()
	ctx := context.Background()

	tests := []struct {
		name      string
		domain    auth.Domain
		principal string
		wantCount int
	}{
		{"owner sees owned", auth.DomainUser, "u-1", 2},
		{"other owner", auth.DomainUser, "u-2", 1},
		{"unknown owner is empty not error", auth.DomainUser, "u-404", 0},
		{"contributor sees assigned", auth.DomainContributor, "c-1", 2},
		{"contributor single assignment", auth.DomainContributor, "c-2", 1},
		{"operator sees all", auth.DomainOperator, "op-1", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.WebsitesForPrincipal(ctx, tt.domain, tt.principal)
			if err != nil {
				t.Fatalf("WebsitesForPrincipal() error = %v", err)
			}
			if len(got) != tt.wantCount {
				t.Errorf("WebsitesForPrincipal() = %d websites, want %d", len(got), tt.wantCount)
			}
		})
	}
}

func TestMemoryStore_MonitorsForWebsites(t *testing.T) {
	s := seedStore()

	got, err := s.MonitorsForWebsites(context.Background(), []string{"w-1", "w-3"})
	if err != nil {
		t.Fatalf("MonitorsForWebsites() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("MonitorsForWebsites() = %d monitors, want 3", len(got))
	}

	got, err = s.MonitorsForWebsites(context.Background(), nil)
	if err != nil {
		t.Fatalf("MonitorsForWebsites(nil) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("MonitorsForWebsites(nil) = %d monitors, want 0", len(got))
	}
}

func TestMemoryStore_MonitorByID(t *testing.T) {
	s := seedStore()

	mon, err := s.MonitorByID(context.Background(), "m-2")
	if err != nil {
		t.Fatalf("MonitorByID() error = %v", err)
	}
	if mon.WebsiteID != "w-1" {
		t.Errorf("MonitorByID().WebsiteID = %v, want w-1", mon.WebsiteID)
	}

	_, err = s.MonitorByID(context.Background(), "m-404")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("MonitorByID(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	s := NewMemoryStore()

	s.PutMonitor(Monitor{ID: "m-1", WebsiteID: "w-1", Status: StatusUp})
	s.PutMonitor(Monitor{ID: "m-1", WebsiteID: "w-1", Status: StatusDown})

	mon, err := s.MonitorByID(context.Background(), "m-1")
	if err != nil {
		t.Fatalf("MonitorByID() error = %v", err)
	}
	if mon.Status != StatusDown {
		t.Errorf("Status = %v, want down", mon.Status)
	}
}
