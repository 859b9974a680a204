package invite

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an invitation.
type Status string

const (
	// StatusDraft is the initial state after submission, awaiting a worker.
	StatusDraft Status = "draft"
	// StatusRendering marks an invite claimed by a render worker.
	StatusRendering Status = "rendering"
	// StatusRendered is the terminal success state; VideoURL is set.
	StatusRendered Status = "rendered"
	// StatusError is the terminal failure state; VideoURL is empty.
	StatusError Status = "error"
)

// ShutdownStopReason is the error message recorded when an in-flight render is
// interrupted by daemon shutdown.
const ShutdownStopReason = "render interrupted by shutdown"

var allStatuses = []Status{
	StatusDraft,
	StatusRendering,
	StatusRendered,
	StatusError,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusRendered || s == StatusError
}

// Invite represents one user's instantiation of a template, persisted in SQLite.
type Invite struct {
	ID              string
	UserID          string
	TemplateID      string
	Values          map[string]string
	MusicChoice     string
	Status          Status
	VideoURL        string
	ErrorMessage    string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	RenderRequested *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastHeartbeat   *time.Time
}

// RenderPending reports whether the invite is a draft waiting for a worker.
func (i *Invite) RenderPending() bool {
	return i.Status == StatusDraft && i.RenderRequested != nil
}

// SetProgress updates all three progress fields together.
func (i *Invite) SetProgress(stage, message string, percent float64) {
	i.ProgressStage = stage
	i.ProgressMessage = message
	i.ProgressPercent = percent
}

// SetRendered marks the invite as successfully rendered at the given URL.
// Clears heartbeat and any stale error message.
func (i *Invite) SetRendered(videoURL string) {
	i.Status = StatusRendered
	i.VideoURL = videoURL
	i.ErrorMessage = ""
	i.LastHeartbeat = nil
	i.SetProgress("Rendered", "Video ready", 100)
}

// SetFailed marks the invite as failed with the given error message.
// VideoURL is cleared so the rendered-iff-URL invariant holds.
func (i *Invite) SetFailed(message string) {
	i.Status = StatusError
	i.VideoURL = ""
	i.ErrorMessage = message
	i.LastHeartbeat = nil
	i.SetProgress("Failed", message, 0)
}
