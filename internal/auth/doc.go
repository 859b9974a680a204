// Package auth resolves API bearer tokens to user identities.
package auth
