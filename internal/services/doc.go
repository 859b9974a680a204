// Package services defines shared utilities consumed by the render workflow
// and the external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp invite IDs, user IDs, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent HTTP codes and invite statuses.
//
// The subpackages hold the HTTP clients for the external collaborators: the
// renderer, the asset uploader, and the music suggestion LLM.
package services
