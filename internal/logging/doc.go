// Package logging builds the slog loggers used across Garland.
//
// It offers a console (pretty) handler for interactive use and a JSON handler
// for machine consumption, selected via configuration, plus shared attribute
// helpers and standardized field names so invite IDs, components, and request
// correlation appear consistently in every log line.
package logging
