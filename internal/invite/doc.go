// Package invite persists invitation records and their render lifecycle.
//
// An invite moves through draft, rendering, rendered, and error states. The
// store keeps every transition durable: workers claim drafts atomically, the
// rendering state is written before any external call starts, and stale
// rendering rows are returned to draft when their heartbeat expires.
package invite
