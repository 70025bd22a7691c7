// Package hub multiplexes websocket connections and fans events out to them.
//
// This package is internal to UpLink and implements the realtime core:
//
//   - [Hub]: owns all live connections, the principal registry, the
//     subscription index and the custom-event dispatch table
//   - [Client]: one websocket connection with read/write pumps
//   - [Conn]: the connection surface exposed to custom event handlers
//
// Every connection gets its own read goroutine, so messages on one
// connection are handled strictly in arrival order while slow handlers on
// another connection (e.g. a dashboard build hitting the data store) never
// stall it. Delivery is at-most-once and best-effort: pushes to a
// disconnected or slow client are dropped, never retried.
//
// Users of the uplink library should not need to interact with this
// package directly. The gateway owns the hub and re-exports its public
// surface.
package hub
