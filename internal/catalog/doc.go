// Package catalog stores and serves the invitation template catalog.
//
// Templates live in SQLite and are read through a TTL snapshot cache. A
// refresh failure falls back to the last good snapshot; only a failure with
// nothing cached is reported as unavailable.
package catalog
