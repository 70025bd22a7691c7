// Package uplink provides the real-time event distribution layer for an
// uptime-monitoring platform.
//
// UpLink multiplexes many concurrent websocket connections, authenticates
// each against one of three independent credential domains (end user,
// contributor, operator), maintains per-monitor and per-website
// subscription interest, and fans status-change and alert events out to
// exactly the interested, currently-connected clients. Delivery is
// at-most-once and best-effort: there is no persistence of undelivered
// events and no cross-connection ordering guarantee.
//
// UpLink is designed as an SDK-first library: the surrounding platform
// embeds a [Gateway], hands it a [Store] implementation over its own
// persistence, and drives broadcasts from its check scheduler.
//
// # Quick Start
//
// Create a gateway and start it with graceful shutdown:
//
//	gw, _ := uplink.New(
//	    uplink.WithStore(myStore),
//	    uplink.WithSecrets(uplink.Secrets{User: userSecret, Contributor: contribSecret, Operator: opSecret}),
//	)
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	gw.Start(ctx) // blocks until context is cancelled
//
// Clients connect to ws://host:port/ws and speak a JSON protocol of named
// events: authenticate, subscribe:monitor, subscribe:website,
// request:dashboard:<domain>, and any custom events registered via
// [Gateway.RegisterEvent]. The check scheduler pushes events either
// in-process through [Gateway.BroadcastMonitorEvent] and
// [Gateway.BroadcastAlert], or over HTTP through POST /api/events.
//
// # Configuration
//
// UpLink uses the functional options pattern:
//
//	gw, err := uplink.New(
//	    uplink.WithStore(myStore),
//	    uplink.WithSecrets(secrets),
//	    uplink.WithPort(9090),
//	    uplink.WithAllowedOrigins("https://app.example.com"),
//	    uplink.WithLogger(logger),
//	)
//
// # Architecture
//
// UpLink consists of several internal packages (under internal/):
//
//   - internal/auth: token verification against the three domain secrets
//   - internal/registry: principal connection registry + subscription index
//   - internal/hub: websocket multiplexing and broadcast fan-out
//   - internal/snapshot: on-demand dashboard summaries
//   - internal/store: the data-store seam (interface + in-memory impl)
//   - internal/server: HTTP server (websocket upgrade, event ingest)
//
// The internal packages are not part of the public API and may change
// without notice.
package uplink
