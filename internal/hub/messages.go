package hub

import "encoding/json"

// Inbound event names reserved by the protocol. Custom handlers may not
// shadow these.
const (
	eventAuthenticate         = "authenticate"
	eventSubscribeMonitor     = "subscribe:monitor"
	eventUnsubscribeMonitor   = "unsubscribe:monitor"
	eventSubscribeWebsite     = "subscribe:website"
	eventUnsubscribeWebsite   = "unsubscribe:website"
	eventDashboardUser        = "request:dashboard:user"
	eventDashboardContributor = "request:dashboard:contributor"
	eventDashboardOperator    = "request:dashboard:operator"
)

// Outbound event names.
const (
	eventAuthSuccess         = "auth:success"
	eventAuthError           = "auth:error"
	eventError               = "error"
	eventMonitorStatusUpdate = "monitor:status:update"
	eventMonitorAlert        = "monitor:alert"
	eventWebsiteAlert        = "website:alert"
)

// Envelope is the wire format in both directions: a named event with an
// optional JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// encodeEnvelope marshals an outbound envelope with an arbitrary payload.
func encodeEnvelope(event string, data any) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// errorPayload is the body of every *:error reply.
type errorPayload struct {
	Error string `json:"error"`
}

// authPayload is the body of an authenticate request.
type authPayload struct {
	Token string `json:"token"`
}

// authSuccessPayload is the body of an auth:success reply.
type authSuccessPayload struct {
	Domain string `json:"domain"`
	ID     string `json:"id"`
}

// monitorTopicPayload is the body of monitor (un)subscribe requests and
// their acknowledgments.
type monitorTopicPayload struct {
	MonitorID string `json:"monitorId"`
	Message   string `json:"message,omitempty"`
}

// websiteTopicPayload is the body of website (un)subscribe requests and
// their acknowledgments.
type websiteTopicPayload struct {
	WebsiteID string `json:"websiteId"`
	Message   string `json:"message,omitempty"`
}
