package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// TemplateField describes one fillable input on a template.
type TemplateField struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Kind         string `json:"kind"`
	DefaultValue string `json:"defaultValue,omitempty"`
	Placeholder  string `json:"placeholder,omitempty"`
	Required     bool   `json:"required"`
}

// Template describes a catalog entry in a transport-friendly format.
type Template struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	ThumbnailURL    string          `json:"thumbnailUrl,omitempty"`
	DurationSeconds int             `json:"durationSeconds"`
	Fields          []TemplateField `json:"fields"`
	Tags            []string        `json:"tags,omitempty"`
	Theme           string          `json:"theme,omitempty"`
}

// DisplayState carries presentation decisions for an invite's status.
type DisplayState struct {
	Label           string  `json:"label"`
	Badge           string  `json:"badge"`
	CanOpen         bool    `json:"canOpen"`
	CanEdit         bool    `json:"canEdit"`
	Detail          string  `json:"detail,omitempty"`
	ProgressStage   string  `json:"progressStage,omitempty"`
	ProgressPercent float64 `json:"progressPercent,omitempty"`
	ProgressMessage string  `json:"progressMessage,omitempty"`
}

// Invite describes an invitation in a transport-friendly format.
type Invite struct {
	ID            string            `json:"id"`
	TemplateID    string            `json:"templateId"`
	TemplateTitle string            `json:"templateTitle,omitempty"`
	Values        map[string]string `json:"values"`
	MusicChoice   string            `json:"musicChoice,omitempty"`
	Status        string            `json:"status"`
	VideoURL      string            `json:"videoUrl,omitempty"`
	ErrorMessage  string            `json:"errorMessage,omitempty"`
	Display       DisplayState      `json:"display"`
	CreatedAt     string            `json:"createdAt,omitempty"`
	UpdatedAt     string            `json:"updatedAt,omitempty"`
}

// TemplateListResponse wraps the catalog for API responses.
type TemplateListResponse struct {
	Templates []Template `json:"templates"`
}

// TemplateResponse wraps a single template.
type TemplateResponse struct {
	Template Template `json:"template"`
}

// InviteListResponse wraps a collection of invites.
type InviteListResponse struct {
	Invites []Invite `json:"invites"`
}

// InviteResponse wraps a single invite.
type InviteResponse struct {
	Invite Invite `json:"invite"`
}

// CreateInviteRequest is the payload for creating a draft.
type CreateInviteRequest struct {
	TemplateID  string            `json:"templateId"`
	Values      map[string]string `json:"values"`
	MusicChoice string            `json:"musicChoice,omitempty"`
}

// UpdateInviteRequest is the payload for editing a draft or failed invite.
type UpdateInviteRequest struct {
	Values      map[string]string `json:"values"`
	MusicChoice string            `json:"musicChoice,omitempty"`
}

// SuggestionsRequest asks for music suggestions for a theme.
type SuggestionsRequest struct {
	Theme      string `json:"theme,omitempty"`
	TemplateID string `json:"templateId,omitempty"`
}

// SuggestionsResponse carries music suggestions.
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// RenderStatus summarizes render queue state.
type RenderStatus struct {
	Running      bool           `json:"running"`
	Counts       map[string]int `json:"counts"`
	LastInviteID string         `json:"lastInviteId,omitempty"`
	LastError    string         `json:"lastError,omitempty"`
}

// StatusResponse aggregates daemon runtime information for API consumers.
type StatusResponse struct {
	Render RenderStatus `json:"render"`
}

// SeedResponse reports the outcome of a catalog seed.
type SeedResponse struct {
	Seeded int `json:"seeded"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
