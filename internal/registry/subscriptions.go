package registry

import "sync"

// TopicKind distinguishes the two independent subscription tables.
type TopicKind string

const (
	// TopicMonitor keys subscriptions by monitor id.
	TopicMonitor TopicKind = "monitor"

	// TopicWebsite keys subscriptions by website id.
	TopicWebsite TopicKind = "website"
)

// Subscriptions is the many-to-many membership of connections in topics.
//
// Membership is a set, not a multiset: subscribing the same connection to
// the same topic twice has no additional effect. A topic entry exists in
// the table if and only if it has at least one subscriber; the last
// unsubscribe (or purge) deletes the entry itself so the table does not
// accumulate empty topics.
type Subscriptions struct {
	mu     sync.RWMutex
	topics map[TopicKind]map[string]map[string]struct{} // topicID -> set of connectionID
}

// NewSubscriptions creates an empty [Subscriptions] index.
func NewSubscriptions() *Subscriptions {
	return &Subscriptions{
		topics: map[TopicKind]map[string]map[string]struct{}{
			TopicMonitor: {},
			TopicWebsite: {},
		},
	}
}

// Subscribe adds connID to the subscriber set for (kind, topicID),
// creating the set if absent. Idempotent.
func (s *Subscriptions) Subscribe(kind TopicKind, topicID, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.topics[kind][topicID]
	if !ok {
		set = make(map[string]struct{})
		s.topics[kind][topicID] = set
	}
	set[connID] = struct{}{}
}

// Unsubscribe removes connID from the subscriber set for (kind, topicID).
// If the set becomes empty the topic entry is deleted. Idempotent.
func (s *Subscriptions) Unsubscribe(kind TopicKind, topicID, connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.topics[kind][topicID]
	if !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(s.topics[kind], topicID)
	}
}

// PurgeConnection removes connID from every topic of both kinds, deleting
// topic entries that become empty. Called once per disconnect.
func (s *Subscriptions) PurgeConnection(connID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for kind, table := range s.topics {
		for topicID, set := range table {
			if _, ok := set[connID]; !ok {
				continue
			}
			delete(set, connID)
			if len(set) == 0 {
				delete(s.topics[kind], topicID)
			}
		}
	}
}

// Subscribers returns a snapshot of the subscriber set for (kind, topicID).
//
// The returned slice is a copy; order is not guaranteed. Empty when the
// topic has no subscribers.
func (s *Subscriptions) Subscribers(kind TopicKind, topicID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	set := s.topics[kind][topicID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// HasTopic reports whether a topic entry currently exists for (kind,
// topicID). Exposed for tests asserting the no-empty-entries invariant.
func (s *Subscriptions) HasTopic(kind TopicKind, topicID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.topics[kind][topicID]
	return ok
}
