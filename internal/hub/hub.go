package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/upwatch/uplink/internal/auth"
	"github.com/upwatch/uplink/internal/registry"
	"github.com/upwatch/uplink/internal/store"
)

// storeTimeout bounds data-store reads made on behalf of a single
// connection (dashboard builds, alert website resolution).
const storeTimeout = 10 * time.Second

// EventHandler processes one custom protocol event.
//
// Handlers run on the receiving connection's read goroutine, so a handler
// blocks only its own connection. The returned value is serialized into a
// "<name>:result" reply; a returned error (or panic) becomes
// "<name>:error".
type EventHandler func(ctx context.Context, conn Conn, data json.RawMessage) (any, error)

// Hub owns every live connection and all shared realtime state.
//
// One Hub serves the whole process. All exported methods are safe for
// concurrent use.
type Hub struct {
	logger   *slog.Logger
	resolver *auth.Resolver
	store    store.Store

	conns *registry.Connections
	subs  *registry.Subscriptions

	mu      sync.RWMutex
	clients map[string]*Client

	// custom-event dispatch table. Looked up at dispatch time, so a
	// registration is instantly visible to connections opened before it.
	handlerMu sync.RWMutex
	handlers  map[string]EventHandler
}

// New creates a [Hub].
//
// The resolver authenticates connections, the store backs dashboard
// snapshots and alert website resolution.
func New(resolver *auth.Resolver, st store.Store, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		logger:   logger,
		resolver: resolver,
		store:    st,
		conns:    registry.NewConnections(),
		subs:     registry.NewSubscriptions(),
		clients:  make(map[string]*Client),
		handlers: make(map[string]EventHandler),
	}
}

// HandleConnection adopts an upgraded websocket connection and runs its
// pumps. Returns the connection id immediately; pump goroutines own the
// connection until disconnect.
func (h *Hub) HandleConnection(conn *websocket.Conn) string {
	client := newClient(h, conn)

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()

	h.logger.Debug("connection opened", "conn", client.id)

	go client.writePump()
	go client.readPump()

	return client.id
}

// unregister removes a disconnected client from every piece of shared
// state. Safe to call more than once for the same client.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()

	h.conns.UnregisterConnection(c.id)
	h.subs.PurgeConnection(c.id)
	c.close()

	h.logger.Debug("connection closed", "conn", c.id)
}

// client returns the live client for a connection id, if any.
func (h *Hub) client(id string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

// ConnectionCount returns the number of currently registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// LookupPrincipal reports the connection id a principal is currently
// registered under, if the principal is online.
func (h *Hub) LookupPrincipal(domain auth.Domain, principalID string) (string, bool) {
	return h.conns.Lookup(domain, principalID)
}

// RegisterEvent installs a custom protocol handler for the given event
// name.
//
// A nil handler is logged and ignored, as is an attempt to shadow one of
// the reserved protocol events. Re-registering an existing name replaces
// the previous handler for all current and future connections; no
// connection-level re-attachment is needed because dispatch consults the
// shared table on every message.
func (h *Hub) RegisterEvent(name string, handler EventHandler) {
	if handler == nil {
		h.logger.Warn("ignoring nil handler registration", "event", name)
		return
	}
	if isReservedEvent(name) {
		h.logger.Warn("ignoring handler registration for reserved event", "event", name)
		return
	}

	h.handlerMu.Lock()
	h.handlers[name] = handler
	h.handlerMu.Unlock()

	h.logger.Info("custom event registered", "event", name)
}

// customHandler looks up a custom handler at dispatch time.
func (h *Hub) customHandler(name string) (EventHandler, bool) {
	h.handlerMu.RLock()
	defer h.handlerMu.RUnlock()
	handler, ok := h.handlers[name]
	return handler, ok
}

// BroadcastMonitorEvent pushes a status-update event to every connection
// currently subscribed to the monitor topic.
//
// Returns the number of connections the payload was handed to. Delivery
// is best-effort: subscription entries whose connection is already gone
// are skipped silently (they are purged by the connection's own
// disconnect, which may lag transport-level death detection).
func (h *Hub) BroadcastMonitorEvent(monitorID string, payload map[string]any) int {
	data := mergePayload(payload, "monitorId", monitorID)
	n := h.fanOut(registry.TopicMonitor, monitorID, eventMonitorStatusUpdate, data)

	h.logger.Debug("monitor event broadcast", "monitor", monitorID, "delivered", n)
	return n
}

// BroadcastAlert pushes an alert to the monitor's subscribers, then
// asynchronously re-tags it with the owning website id and pushes it to
// the website's subscribers.
//
// Returns the monitor-level hand-off count. The website-level fan-out is
// best-effort: if the data store cannot resolve the monitor, the failure
// is logged and the already-completed monitor-level broadcast stands.
func (h *Hub) BroadcastAlert(monitorID string, payload map[string]any) int {
	data := mergePayload(payload, "monitorId", monitorID)
	n := h.fanOut(registry.TopicMonitor, monitorID, eventMonitorAlert, data)

	go h.relayWebsiteAlert(monitorID, payload)

	h.logger.Debug("alert broadcast", "monitor", monitorID, "delivered", n)
	return n
}

// relayWebsiteAlert resolves the monitor's owning website and fans the
// alert out to website subscribers.
func (h *Hub) relayWebsiteAlert(monitorID string, payload map[string]any) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	monitor, err := h.store.MonitorByID(ctx, monitorID)
	if err != nil {
		// transient lookup failure: monitor-level delivery already
		// happened and is not rolled back
		h.logger.Warn("website alert fan-out skipped", "monitor", monitorID, "error", err)
		return
	}

	data := mergePayload(payload, "monitorId", monitorID)
	data["websiteId"] = monitor.WebsiteID

	n := h.fanOut(registry.TopicWebsite, monitor.WebsiteID, eventWebsiteAlert, data)
	h.logger.Debug("website alert broadcast", "website", monitor.WebsiteID, "monitor", monitorID, "delivered", n)
}

// fanOut pushes one event to every live subscriber of a topic, returning
// the hand-off count.
func (h *Hub) fanOut(kind registry.TopicKind, topicID, event string, data map[string]any) int {
	subscribers := h.subs.Subscribers(kind, topicID)
	if len(subscribers) == 0 {
		return 0
	}

	msg, err := encodeEnvelope(event, data)
	if err != nil {
		h.logger.Error("failed to encode broadcast", "event", event, "error", err)
		return 0
	}

	delivered := 0
	for _, connID := range subscribers {
		client, ok := h.client(connID)
		if !ok {
			// stale subscription, connection already gone
			continue
		}
		if client.safeSend(msg) {
			delivered++
		}
	}
	return delivered
}

// mergePayload copies payload and sets one extra key. The copy keeps
// broadcast tagging from mutating the caller's map.
func mergePayload(payload map[string]any, key, value string) map[string]any {
	merged := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		merged[k] = v
	}
	merged[key] = value
	return merged
}

// isReservedEvent reports whether name is part of the built-in protocol.
func isReservedEvent(name string) bool {
	switch name {
	case eventAuthenticate,
		eventSubscribeMonitor, eventUnsubscribeMonitor,
		eventSubscribeWebsite, eventUnsubscribeWebsite,
		eventDashboardUser, eventDashboardContributor, eventDashboardOperator:
		return true
	}
	return false
}
