// Package api defines the transport payloads exchanged over the HTTP API and
// the conversions from internal records to those payloads.
package api
