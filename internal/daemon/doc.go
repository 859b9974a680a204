// Package daemon assembles the long-running service: sqlite-backed invite and
// template stores, the render worker pool, push notifications, and the HTTP
// API. A file lock guarantees a single instance per data directory.
package daemon
