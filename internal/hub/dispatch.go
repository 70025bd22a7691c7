package hub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/upwatch/uplink/internal/auth"
	"github.com/upwatch/uplink/internal/registry"
	"github.com/upwatch/uplink/internal/snapshot"
)

// dispatch routes one inbound message. Runs on the client's read
// goroutine, so per-connection handling order matches arrival order.
func (h *Hub) dispatch(c *Client, env Envelope) {
	switch env.Event {
	case eventAuthenticate:
		h.handleAuthenticate(c, env.Data)

	case eventSubscribeMonitor:
		h.handleMonitorTopic(c, env, true)
	case eventUnsubscribeMonitor:
		h.handleMonitorTopic(c, env, false)

	case eventSubscribeWebsite:
		h.handleWebsiteTopic(c, env, true)
	case eventUnsubscribeWebsite:
		h.handleWebsiteTopic(c, env, false)

	case eventDashboardUser:
		h.handleDashboard(c, auth.DomainUser)
	case eventDashboardContributor:
		h.handleDashboard(c, auth.DomainContributor)
	case eventDashboardOperator:
		h.handleDashboard(c, auth.DomainOperator)

	default:
		h.dispatchCustom(c, env)
	}
}

// handleAuthenticate resolves the token and records the principal's live
// connection. A failed attempt leaves the connection open and
// unauthenticated, with no registry mutation.
func (h *Hub) handleAuthenticate(c *Client, data json.RawMessage) {
	var payload authPayload
	if data != nil {
		if err := json.Unmarshal(data, &payload); err != nil {
			c.Send(eventAuthError, errorPayload{Error: "malformed authenticate payload"})
			return
		}
	}

	identity, err := h.resolver.Authenticate(payload.Token)
	if err != nil {
		h.logger.Debug("authentication failed", "conn", c.id, "error", err)
		c.Send(eventAuthError, errorPayload{Error: err.Error()})
		return
	}

	c.setIdentity(identity)
	// last-write-wins: a previous connection for this principal is
	// silently evicted from the registry (it stays open until it
	// disconnects itself)
	h.conns.Register(identity.Domain, identity.PrincipalID, c.id)

	h.logger.Info("connection authenticated",
		"conn", c.id,
		"domain", identity.Domain,
		"principal", identity.PrincipalID,
	)

	c.Send(eventAuthSuccess, authSuccessPayload{
		Domain: identity.Domain.String(),
		ID:     identity.PrincipalID,
	})
}

// handleMonitorTopic processes monitor (un)subscribe requests.
func (h *Hub) handleMonitorTopic(c *Client, env Envelope, subscribe bool) {
	var payload monitorTopicPayload
	if env.Data != nil {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.Send(env.Event+":error", errorPayload{Error: "malformed payload"})
			return
		}
	}
	if payload.MonitorID == "" {
		// validation failure: reply per-call, mutate nothing
		c.Send(env.Event+":error", errorPayload{Error: "monitorId is required"})
		return
	}

	var message string
	if subscribe {
		h.subs.Subscribe(registry.TopicMonitor, payload.MonitorID, c.id)
		message = "subscribed to monitor updates"
	} else {
		h.subs.Unsubscribe(registry.TopicMonitor, payload.MonitorID, c.id)
		message = "unsubscribed from monitor updates"
	}

	c.Send(env.Event+":success", monitorTopicPayload{
		MonitorID: payload.MonitorID,
		Message:   message,
	})
}

// handleWebsiteTopic processes website (un)subscribe requests.
func (h *Hub) handleWebsiteTopic(c *Client, env Envelope, subscribe bool) {
	var payload websiteTopicPayload
	if env.Data != nil {
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			c.Send(env.Event+":error", errorPayload{Error: "malformed payload"})
			return
		}
	}
	if payload.WebsiteID == "" {
		c.Send(env.Event+":error", errorPayload{Error: "websiteId is required"})
		return
	}

	var message string
	if subscribe {
		h.subs.Subscribe(registry.TopicWebsite, payload.WebsiteID, c.id)
		message = "subscribed to website updates"
	} else {
		h.subs.Unsubscribe(registry.TopicWebsite, payload.WebsiteID, c.id)
		message = "unsubscribed from website updates"
	}

	c.Send(env.Event+":success", websiteTopicPayload{
		WebsiteID: payload.WebsiteID,
		Message:   message,
	})
}

// handleDashboard builds and returns the snapshot for one domain.
//
// The connection must be authenticated in the requested domain; anything
// else gets the generic error reply so callers cannot distinguish "not
// logged in" from "logged in elsewhere".
func (h *Hub) handleDashboard(c *Client, domain auth.Domain) {
	identity, ok := c.Identity()
	if !ok || identity.Domain != domain {
		c.Send(eventError, errorPayload{Error: "authentication required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	snap, err := snapshot.Build(ctx, h.store, domain, identity.PrincipalID)
	if err != nil {
		h.logger.Error("dashboard build failed",
			"conn", c.id,
			"domain", domain,
			"error", err,
		)
		c.Send(eventError, errorPayload{Error: "failed to build dashboard"})
		return
	}

	c.Send("dashboard:"+domain.String(), snap)
}

// dispatchCustom routes a message to the custom-handler table. Unknown
// events are dropped: replying would let clients probe the handler table.
func (h *Hub) dispatchCustom(c *Client, env Envelope) {
	handler, ok := h.customHandler(env.Event)
	if !ok {
		h.logger.Debug("ignoring unknown event", "conn", c.id, "event", env.Event)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	result, err := invokeHandlerSafe(ctx, handler, c, env.Data)
	if err != nil {
		c.Send(env.Event+":error", errorPayload{Error: err.Error()})
		return
	}

	c.Send(env.Event+":result", result)
}

// invokeHandlerSafe calls a custom handler with panic recovery. A panic
// is surfaced as an ordinary handler error so a misbehaving handler
// cannot take down the connection's read pump.
func invokeHandlerSafe(ctx context.Context, handler EventHandler, c *Client, data json.RawMessage) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, c, data)
}
