// Package server exposes the HTTP API: template catalog reads, invite CRUD,
// render requests, music suggestions, render status, and admin seeding. All
// routes except seeding authenticate with bearer tokens and scope results to
// the authenticated user.
package server
