package api

import (
	"garland/internal/catalog"
	"garland/internal/display"
	"garland/internal/invite"
	"garland/internal/render"
)

// FromTemplate converts a catalog template to its API representation.
func FromTemplate(tmpl catalog.Template) Template {
	fields := make([]TemplateField, 0, len(tmpl.Fields))
	for _, field := range tmpl.Fields {
		fields = append(fields, TemplateField{
			Name:         field.Name,
			Label:        field.Label,
			Kind:         string(field.Kind),
			DefaultValue: field.DefaultValue,
			Placeholder:  field.Placeholder,
			Required:     field.Required,
		})
	}
	return Template{
		ID:              tmpl.ID,
		Title:           tmpl.Title,
		Description:     tmpl.Description,
		ThumbnailURL:    tmpl.ThumbnailURL,
		DurationSeconds: tmpl.DurationSeconds,
		Fields:          fields,
		Tags:            tmpl.Tags,
		Theme:           tmpl.Theme,
	}
}

// FromTemplates converts a catalog slice into API DTOs.
func FromTemplates(templates []catalog.Template) []Template {
	out := make([]Template, 0, len(templates))
	for _, tmpl := range templates {
		out = append(out, FromTemplate(tmpl))
	}
	return out
}

// FromInvite converts an invite and its (possibly nil) template to the API
// representation, including presentation state.
func FromInvite(inv *invite.Invite, tmpl *catalog.Template) Invite {
	if inv == nil {
		return Invite{}
	}
	state := display.ForInvite(inv, tmpl)

	dto := Invite{
		ID:            inv.ID,
		TemplateID:    inv.TemplateID,
		TemplateTitle: state.TemplateTitle,
		Values:        inv.Values,
		MusicChoice:   inv.MusicChoice,
		Status:        string(inv.Status),
		VideoURL:      inv.VideoURL,
		ErrorMessage:  inv.ErrorMessage,
		Display: DisplayState{
			Label:           state.Label,
			Badge:           string(state.Badge),
			CanOpen:         state.CanOpen,
			CanEdit:         state.CanEdit,
			Detail:          state.Detail,
			ProgressStage:   state.ProgressStage,
			ProgressPercent: state.ProgressPercent,
			ProgressMessage: state.ProgressMessage,
		},
	}
	if !inv.CreatedAt.IsZero() {
		dto.CreatedAt = inv.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !inv.UpdatedAt.IsZero() {
		dto.UpdatedAt = inv.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromStatusSummary converts a render status summary to the API payload.
func FromStatusSummary(summary render.StatusSummary) RenderStatus {
	counts := make(map[string]int, len(summary.Counts))
	for status, count := range summary.Counts {
		counts[string(status)] = count
	}
	return RenderStatus{
		Running:      summary.Running,
		Counts:       counts,
		LastInviteID: summary.LastInviteID,
		LastError:    summary.LastError,
	}
}
