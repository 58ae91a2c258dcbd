// Package core defines the shared domain model of the room synchronization
// engine: rooms with whole-value shared state, participants with allocated
// actor identities, the bounded per-room tool event log, the Tool /
// Experience boundary, the ToolContext handed to tool handlers, and the
// request-scoped error taxonomy.
//
// Higher layers (the tool gate, registry, broadcaster, watcher and HTTP
// surface) depend on this package; it depends only on logging.
package core
