package render

import (
	"context"
	"log/slog"
	"strings"

	"garland/internal/catalog"
	"garland/internal/invite"
	"garland/internal/logging"
	"garland/internal/services"
)

// Orchestrator owns invite lifecycle operations requested by users: creating
// and editing drafts, queueing renders, and reading invites back. Workers pick
// up queued renders through the Manager.
type Orchestrator struct {
	catalog *catalog.Service
	store   *invite.Store
	logger  *slog.Logger
}

// NewOrchestrator wires the orchestrator to its catalog and store.
func NewOrchestrator(catalogSvc *catalog.Service, store *invite.Store, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		catalog: catalogSvc,
		store:   store,
		logger:  logging.NewComponentLogger(logger, "render-orchestrator"),
	}
}

// CreateInvite validates field values against the template and persists a new
// draft for the user.
func (o *Orchestrator) CreateInvite(ctx context.Context, userID, templateID string, values map[string]string, musicChoice string) (*invite.Invite, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, services.Wrap(services.ErrNotAuthenticated, "render", "create", "user identity required", nil)
	}
	tmpl, err := o.catalog.TemplateByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, services.Wrap(services.ErrValidation, "render", "create", "unknown template "+templateID, nil)
	}
	if err := validateValues(tmpl, values, false); err != nil {
		return nil, err
	}

	inv, err := o.store.Create(ctx, userID, templateID, values, musicChoice)
	if err != nil {
		return nil, err
	}
	o.logger.Info("invite created",
		logging.String(logging.FieldInviteID, inv.ID),
		logging.String(logging.FieldTemplateID, templateID),
		logging.String(logging.FieldUserID, userID))
	return inv, nil
}

// UpdateInvite applies new field values to a draft or failed invite. A failed
// invite returns to draft so it can be edited and re-queued.
func (o *Orchestrator) UpdateInvite(ctx context.Context, userID, inviteID string, values map[string]string, musicChoice string) (*invite.Invite, error) {
	inv, err := o.ownedInvite(ctx, userID, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.Status != invite.StatusDraft && inv.Status != invite.StatusError {
		return nil, services.Wrap(services.ErrValidation, "render", "update", "invite is "+string(inv.Status)+" and cannot be edited", nil)
	}
	tmpl, err := o.catalog.TemplateByID(ctx, inv.TemplateID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, services.Wrap(services.ErrValidation, "render", "update", "template "+inv.TemplateID+" no longer available", nil)
	}
	if err := validateValues(tmpl, values, false); err != nil {
		return nil, err
	}

	inv.Values = values
	inv.MusicChoice = musicChoice
	if inv.Status == invite.StatusError {
		inv.Status = invite.StatusDraft
		inv.ErrorMessage = ""
		inv.SetProgress("", "", 0)
	}
	if err := o.store.Update(ctx, inv); err != nil {
		return nil, err
	}
	return o.store.GetByID(ctx, inv.ID)
}

// RequestRender validates the invite is complete and queues it for a worker.
func (o *Orchestrator) RequestRender(ctx context.Context, userID, inviteID string) (*invite.Invite, error) {
	inv, err := o.ownedInvite(ctx, userID, inviteID)
	if err != nil {
		return nil, err
	}
	if inv.Status != invite.StatusDraft && inv.Status != invite.StatusError {
		return nil, services.Wrap(services.ErrValidation, "render", "request", "invite is "+string(inv.Status)+" and cannot be rendered", nil)
	}
	tmpl, err := o.catalog.TemplateByID(ctx, inv.TemplateID)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, services.Wrap(services.ErrValidation, "render", "request", "template "+inv.TemplateID+" no longer available", nil)
	}
	if err := validateValues(tmpl, inv.Values, true); err != nil {
		return nil, err
	}

	queued, err := o.store.RequestRender(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	if !queued {
		// The invite moved out of a requestable state between read and write.
		return nil, services.Wrap(services.ErrValidation, "render", "request", "invite is no longer in a renderable state", nil)
	}
	o.logger.Info("render requested",
		logging.String(logging.FieldInviteID, inv.ID),
		logging.String(logging.FieldTemplateID, inv.TemplateID),
		logging.String(logging.FieldUserID, userID))
	return o.store.GetByID(ctx, inv.ID)
}

// GetInvite returns an invite visible to the user.
func (o *Orchestrator) GetInvite(ctx context.Context, userID, inviteID string) (*invite.Invite, error) {
	return o.ownedInvite(ctx, userID, inviteID)
}

// ListInvites returns the user's invites, newest first.
func (o *Orchestrator) ListInvites(ctx context.Context, userID string) ([]*invite.Invite, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, services.Wrap(services.ErrNotAuthenticated, "render", "list", "user identity required", nil)
	}
	if userID == "admin" {
		return o.store.List(ctx)
	}
	return o.store.ListByUser(ctx, userID)
}

// Template resolves the catalog template backing an invite, which may be nil
// when the template was removed after the invite was created.
func (o *Orchestrator) Template(ctx context.Context, templateID string) (*catalog.Template, error) {
	return o.catalog.TemplateByID(ctx, templateID)
}

// ownedInvite loads an invite and enforces ownership. Invites belonging to
// other users read as not found so IDs cannot be probed.
func (o *Orchestrator) ownedInvite(ctx context.Context, userID, inviteID string) (*invite.Invite, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, services.Wrap(services.ErrNotAuthenticated, "render", "get", "user identity required", nil)
	}
	inv, err := o.store.GetByID(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if inv == nil || (inv.UserID != userID && userID != "admin") {
		return nil, services.Wrap(services.ErrNotFound, "render", "get", "invite "+inviteID+" not found", nil)
	}
	return inv, nil
}
