// Package registry holds the shared mutable state of the realtime core.
//
// This package is internal to UpLink and provides the two structures every
// message handler and broadcast touches:
//
//   - [Connections]: maps each authenticated principal to its live
//     connection id, separately per credential domain
//   - [Subscriptions]: many-to-many membership of connections in monitor
//     and website topics
//
// Both structures are plain mutex-guarded maps. Every mutation is a single
// atomic map/set operation with no multi-step invariant, which is what
// permits concurrent subscribe/unsubscribe/broadcast without an external
// lock.
//
// Users of the uplink library should not need to interact with this
// package directly. Both registries are owned by the hub.
package registry
