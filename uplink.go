package uplink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/upwatch/uplink/internal/auth"
	"github.com/upwatch/uplink/internal/hub"
	"github.com/upwatch/uplink/internal/server"
)

const defaultPort = 4000

// Gateway is the top-level orchestrator for the realtime layer.
//
// A Gateway owns the connection hub and the HTTP server in front of it.
// It is created with [New] and run with [Gateway.Start]; broadcasts and
// custom-event registration are valid from the moment New returns, before
// and after Start.
//
// The typical lifecycle is:
//
//	gw, err := uplink.New(uplink.WithStore(st), uplink.WithSecrets(secrets))
//	if err != nil {
//	    slog.Error("failed to create gateway", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	gw.Start(ctx) // blocks until context cancelled
type Gateway struct {
	port    int
	origins []string
	logger  *slog.Logger
	hub     *hub.Hub
}

// New creates a [Gateway] with the given options.
//
// A data store ([WithStore]) and at least one domain secret
// ([WithSecrets]) are required. Other options have sensible defaults:
// port 4000, same-origin websocket policy, [slog.Default] logging.
func New(opts ...Option) (*Gateway, error) {
	cfg := &gwConfig{
		port:     defaultPort,
		handlers: map[string]EventHandler{},
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.store == nil {
		return nil, errors.New("a data store is required")
	}
	if cfg.secrets == (auth.Secrets{}) {
		return nil, errors.New("at least one domain secret is required")
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	g := &Gateway{
		port:    cfg.port,
		origins: cfg.origins,
		logger:  logger,
		hub:     hub.New(auth.NewResolver(cfg.secrets), cfg.store, logger),
	}

	for name, handler := range cfg.handlers {
		g.hub.RegisterEvent(name, handler)
	}

	return g, nil
}

// Start runs the gateway until the context is cancelled.
//
// Start is a blocking call. The websocket endpoint is served at /ws and
// the scheduler ingest endpoint at /api/events on the configured port.
// Returns nil on graceful shutdown, or an error if the HTTP server fails
// to start.
func (g *Gateway) Start(ctx context.Context) error {
	g.logger.Info("uplink starting", "port", g.port)

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	srv := server.NewServer(g.hub, g.port, g.origins, g.logger)
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	g.logger.Info("gateway listening", "addr", srv.Addr())

	<-ctx.Done()
	g.logger.Info("uplink stopped")
	return nil
}

// BroadcastMonitorEvent fans a status-update event out to every
// connection subscribed to the monitor. Returns the number of connections
// the payload was handed to.
//
// This is the in-process entry point for the external check scheduler;
// POST /api/events is the out-of-process equivalent.
func (g *Gateway) BroadcastMonitorEvent(monitorID string, payload map[string]any) int {
	return g.hub.BroadcastMonitorEvent(monitorID, payload)
}

// BroadcastAlert fans an alert out to the monitor's subscribers and,
// asynchronously, to the subscribers of the monitor's owning website.
// Returns the monitor-level hand-off count.
func (g *Gateway) BroadcastAlert(monitorID string, payload map[string]any) int {
	return g.hub.BroadcastAlert(monitorID, payload)
}

// RegisterEvent installs a custom protocol handler for the given event
// name, visible immediately to all current and future connections.
//
// A nil handler, or a name colliding with a built-in protocol event, is
// logged and ignored. Re-registering a name replaces the previous
// handler.
func (g *Gateway) RegisterEvent(name string, handler EventHandler) {
	g.hub.RegisterEvent(name, handler)
}

// ConnectionCount returns the number of currently connected clients.
func (g *Gateway) ConnectionCount() int {
	return g.hub.ConnectionCount()
}

// IsOnline reports whether a principal currently has a live connection in
// the given domain.
func (g *Gateway) IsOnline(domain Domain, principalID string) bool {
	_, ok := g.hub.LookupPrincipal(domain, principalID)
	return ok
}

// Port returns the configured HTTP port.
func (g *Gateway) Port() int {
	return g.port
}
