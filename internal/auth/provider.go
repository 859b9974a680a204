package auth

import (
	"strings"

	"garland/internal/config"
	"garland/internal/services"
)

// Provider resolves bearer tokens to user identities.
type Provider interface {
	// Authenticate returns the user ID for a bearer token.
	Authenticate(token string) (string, error)
	// IsAdmin reports whether the token grants administrative access.
	IsAdmin(token string) bool
}

// TokenProvider authenticates against the static token table in the config
// file. Tokens map to user IDs; the admin token additionally unlocks the
// administrative endpoints.
type TokenProvider struct {
	tokens     map[string]string
	adminToken string
}

// NewTokenProvider builds a provider from configuration.
func NewTokenProvider(cfg *config.Config) *TokenProvider {
	tokens := make(map[string]string, len(cfg.Auth.Tokens))
	for token, userID := range cfg.Auth.Tokens {
		token = strings.TrimSpace(token)
		userID = strings.TrimSpace(userID)
		if token == "" || userID == "" {
			continue
		}
		tokens[token] = userID
	}
	return &TokenProvider{
		tokens:     tokens,
		adminToken: strings.TrimSpace(cfg.Auth.AdminToken),
	}
}

// Authenticate resolves a token to its user ID.
func (p *TokenProvider) Authenticate(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", services.Wrap(services.ErrNotAuthenticated, "auth", "authenticate", "missing bearer token", nil)
	}
	if userID, ok := p.tokens[token]; ok {
		return userID, nil
	}
	if p.adminToken != "" && token == p.adminToken {
		return "admin", nil
	}
	return "", services.Wrap(services.ErrNotAuthenticated, "auth", "authenticate", "unknown bearer token", nil)
}

// IsAdmin reports whether the token matches the configured admin token.
func (p *TokenProvider) IsAdmin(token string) bool {
	token = strings.TrimSpace(token)
	return p.adminToken != "" && token == p.adminToken
}
