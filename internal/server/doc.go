// Package server provides the HTTP surface of the realtime gateway.
//
// This package is internal to UpLink and handles all HTTP concerns:
//
//   - Websocket endpoint: upgrades "/ws" and hands the connection to the hub
//   - Event ingest: "/api/events" accepts status updates and alerts from
//     the external check scheduler and triggers broadcast fan-out
//   - Health: "/healthz" liveness probe
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests. The ingest endpoint carries no
// authentication of its own; deployments are expected to expose it only on
// the scheduler's network.
//
// Users of the uplink library should not need to interact with this
// package directly. The server is started automatically by
// [uplink.Gateway.Start].
package server
