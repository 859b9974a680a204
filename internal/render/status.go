package render

import (
	"context"

	"garland/internal/invite"
)

// StatusSummary is a point-in-time view of the render queue for the status
// endpoint and CLI.
type StatusSummary struct {
	Running      bool                  `json:"running"`
	Counts       map[invite.Status]int `json:"counts"`
	LastInviteID string                `json:"last_invite_id,omitempty"`
	LastError    string                `json:"last_error,omitempty"`
}

// StatusSummary collects queue counts and the manager's last activity.
func (m *Manager) StatusSummary(ctx context.Context) (StatusSummary, error) {
	counts, err := m.store.Stats(ctx)
	if err != nil {
		return StatusSummary{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	summary := StatusSummary{
		Running:      m.running,
		Counts:       counts,
		LastInviteID: m.lastInviteID,
	}
	if m.lastErr != nil {
		summary.LastError = m.lastErr.Error()
	}
	return summary, nil
}
