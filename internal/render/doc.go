// Package render drives invites through the render lifecycle.
//
// The Orchestrator handles user-facing operations: creating drafts, editing
// them, and queueing renders. The Manager runs a worker pool that claims
// queued invites, calls the render farm and uploader, and persists the
// terminal rendered or error state. The rendering status is written before
// any external call so a crash never leaves the transition unrecorded.
package render
