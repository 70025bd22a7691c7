// Package store defines the data-store seam of the realtime core.
//
// The wider monitoring platform persists users, websites, monitors and
// check results elsewhere; the realtime core only reads from that store to
// build dashboard snapshots and to resolve a monitor's owning website
// during alert fan-out. This package defines the read interface and the
// models crossing it:
//
//   - [Store]: the finder operations the core consumes
//   - [Website], [Monitor]: the records those operations return
//   - [MemoryStore]: in-memory implementation for tests and demos
//
// Production deployments implement [Store] against their own persistence
// layer and hand it to the gateway via uplink.WithStore.
package store
