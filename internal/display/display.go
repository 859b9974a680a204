package display

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"garland/internal/catalog"
	"garland/internal/invite"
)

// BadgeVariant names the visual treatment a status badge should use.
type BadgeVariant string

const (
	BadgeOutline     BadgeVariant = "outline"
	BadgeSecondary   BadgeVariant = "secondary"
	BadgeSuccess     BadgeVariant = "success"
	BadgeDestructive BadgeVariant = "destructive"
)

// State is everything a client needs to present an invite's render status.
type State struct {
	Status          invite.Status
	Label           string
	Badge           BadgeVariant
	CanOpen         bool
	CanEdit         bool
	VideoURL        string
	Detail          string
	ProgressStage   string
	ProgressPercent float64
	ProgressMessage string
	TemplateTitle   string
}

var titleCaser = cases.Title(language.English)

// ForInvite maps an invite (and its template, when still known) to a display
// state. The template may be nil when it has been removed from the catalog;
// editing is disabled in that case.
func ForInvite(inv *invite.Invite, tmpl *catalog.Template) State {
	state := State{
		Status: inv.Status,
		Label:  titleCaser.String(string(inv.Status)),
	}
	if tmpl != nil {
		state.TemplateTitle = tmpl.Title
	}

	switch inv.Status {
	case invite.StatusDraft:
		state.Badge = BadgeOutline
	case invite.StatusRendering:
		state.Badge = BadgeSecondary
		state.ProgressStage = inv.ProgressStage
		state.ProgressPercent = inv.ProgressPercent
		state.ProgressMessage = inv.ProgressMessage
	case invite.StatusRendered:
		state.Badge = BadgeSuccess
		state.VideoURL = inv.VideoURL
		state.CanOpen = inv.VideoURL != ""
	case invite.StatusError:
		state.Badge = BadgeDestructive
		state.Detail = inv.ErrorMessage
	default:
		state.Badge = BadgeSecondary
		state.Label = "Unknown"
	}

	if inv.Status == invite.StatusDraft || inv.Status == invite.StatusError {
		state.CanEdit = tmpl != nil
	}
	return state
}
