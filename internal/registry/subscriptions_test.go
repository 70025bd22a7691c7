package registry

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func sortedSubscribers(s *Subscriptions, kind TopicKind, topicID string) []string {
	ids := s.Subscribers(kind, topicID)
	sort.Strings(ids)
	return ids
}

func TestSubscriptions_SubscribeAndList(t *testing.T) {
	s := NewSubscriptions()

	s.Subscribe(TopicMonitor, "m-1", "conn-a")
	s.Subscribe(TopicMonitor, "m-1", "conn-b")
	s.Subscribe(TopicWebsite, "w-1", "conn-a")

	got := sortedSubscribers(s, TopicMonitor, "m-1")
	want := []string{"conn-a", "conn-b"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Subscribers(monitor, m-1) = %v, want %v", got, want)
	}

	if got := s.Subscribers(TopicWebsite, "w-1"); len(got) != 1 || got[0] != "conn-a" {
		t.Errorf("Subscribers(website, w-1) = %v, want [conn-a]", got)
	}
}

func TestSubscriptions_SubscribeIsIdempotent(t *testing.T) {
	s := NewSubscriptions()

	s.Subscribe(TopicMonitor, "m-1", "conn-a")
	s.Subscribe(TopicMonitor, "m-1", "conn-a")

	if got := s.Subscribers(TopicMonitor, "m-1"); len(got) != 1 {
		t.Errorf("Subscribers() = %v, want exactly one entry", got)
	}
}

func TestSubscriptions_KindsAreIndependent(t *testing.T) {
	s := NewSubscriptions()

	// the same topic id in both kinds must be tracked separately
	s.Subscribe(TopicMonitor, "id-1", "conn-a")
	s.Subscribe(TopicWebsite, "id-1", "conn-b")

	if got := s.Subscribers(TopicMonitor, "id-1"); len(got) != 1 || got[0] != "conn-a" {
		t.Errorf("Subscribers(monitor) = %v, want [conn-a]", got)
	}
	if got := s.Subscribers(TopicWebsite, "id-1"); len(got) != 1 || got[0] != "conn-b" {
		t.Errorf("Subscribers(website) = %v, want [conn-b]", got)
	}
}

func TestSubscriptions_UnsubscribeDeletesEmptyTopic(t *testing.T) {
	s := NewSubscriptions()

	s.Subscribe(TopicMonitor, "m-1", "conn-a")
	s.Subscribe(TopicMonitor, "m-1", "conn-b")

	s.Unsubscribe(TopicMonitor, "m-1", "conn-a")
	if !s.HasTopic(TopicMonitor, "m-1") {
		t.Fatal("topic entry deleted while it still has a subscriber")
	}

	s.Unsubscribe(TopicMonitor, "m-1", "conn-b")
	if s.HasTopic(TopicMonitor, "m-1") {
		t.Error("empty topic entry not deleted")
	}
}

func TestSubscriptions_UnsubscribeUnknownIsNoop(t *testing.T) {
	s := NewSubscriptions()

	s.Unsubscribe(TopicMonitor, "m-1", "conn-a")

	s.Subscribe(TopicMonitor, "m-1", "conn-b")
	s.Unsubscribe(TopicMonitor, "m-1", "never-subscribed")

	if got := s.Subscribers(TopicMonitor, "m-1"); len(got) != 1 {
		t.Errorf("Subscribers() = %v, want [conn-b]", got)
	}
}

func TestSubscriptions_PurgeConnection(t *testing.T) {
	s := NewSubscriptions()

	s.Subscribe(TopicMonitor, "m-1", "conn-a")
	s.Subscribe(TopicMonitor, "m-2", "conn-a")
	s.Subscribe(TopicMonitor, "m-2", "conn-b")
	s.Subscribe(TopicWebsite, "w-1", "conn-a")

	s.PurgeConnection("conn-a")

	// sole-subscriber topics are gone entirely
	if s.HasTopic(TopicMonitor, "m-1") {
		t.Error("topic m-1 still present after purging its only subscriber")
	}
	if s.HasTopic(TopicWebsite, "w-1") {
		t.Error("topic w-1 still present after purging its only subscriber")
	}

	// shared topic keeps the other subscriber
	if got := s.Subscribers(TopicMonitor, "m-2"); len(got) != 1 || got[0] != "conn-b" {
		t.Errorf("Subscribers(monitor, m-2) = %v, want [conn-b]", got)
	}
}

func TestSubscriptions_PurgeUnknownIsNoop(t *testing.T) {
	s := NewSubscriptions()

	s.Subscribe(TopicMonitor, "m-1", "conn-a")
	s.PurgeConnection("never-seen")

	if got := s.Subscribers(TopicMonitor, "m-1"); len(got) != 1 {
		t.Errorf("Subscribers() = %v, want [conn-a]", got)
	}
}

func TestSubscriptions_ConcurrentChurn(t *testing.T) {
	s := NewSubscriptions()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			conn := fmt.Sprintf("conn-%d", n)
			s.Subscribe(TopicMonitor, "m-shared", conn)
			s.Subscribe(TopicWebsite, fmt.Sprintf("w-%d", n), conn)
			s.Subscribers(TopicMonitor, "m-shared")
			s.PurgeConnection(conn)
		}(i)
	}
	wg.Wait()

	if s.HasTopic(TopicMonitor, "m-shared") {
		t.Error("shared topic still present after all subscribers purged")
	}
}
