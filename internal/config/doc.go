// Package config loads, normalizes, and validates Garland configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// daemon and CLI need: data/log directories, the API bind address and tokens,
// external renderer and uploader endpoints, music suggestion credentials, and
// render worker timing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
