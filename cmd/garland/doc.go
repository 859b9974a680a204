// Package main hosts the Garland CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the render daemon, seeds and inspects the
// template catalog, lists stored invitations, requests music suggestions, and
// scaffolds configuration. It centralizes configuration resolution and store
// access so subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
