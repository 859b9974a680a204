// Package renderer wraps the render farm HTTP API that turns a template
// composition plus field values into a video asset.
package renderer
