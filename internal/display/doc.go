// Package display maps invite render states to presentation decisions shared
// by the HTTP API and the CLI.
package display
