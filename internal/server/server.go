package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"garland/internal/api"
	"garland/internal/auth"
	"garland/internal/catalog"
	"garland/internal/config"
	"garland/internal/invite"
	"garland/internal/logging"
	"garland/internal/notifications"
	"garland/internal/render"
	"garland/internal/services"
)

// Suggester produces music suggestions for a template theme.
type Suggester interface {
	Configured() bool
	Suggest(ctx context.Context, theme string) ([]string, error)
}

// StatusReporter exposes the render manager's runtime summary.
type StatusReporter interface {
	StatusSummary(ctx context.Context) (render.StatusSummary, error)
}

// Server hosts the HTTP API for templates, invites, and render control.
type Server struct {
	bind         string
	logger       *slog.Logger
	orchestrator *render.Orchestrator
	catalog      *catalog.Service
	catalogStore *catalog.Store
	provider     auth.Provider
	suggester    Suggester
	status       StatusReporter
	notifier     notifications.Service

	listener net.Listener
	server   *http.Server
}

// New assembles the API server. A nil config or empty bind address yields a
// nil server, which every method tolerates.
func New(
	cfg *config.Config,
	orchestrator *render.Orchestrator,
	catalogSvc *catalog.Service,
	catalogStore *catalog.Store,
	provider auth.Provider,
	suggester Suggester,
	status StatusReporter,
	notifier notifications.Service,
	logger *slog.Logger,
) *Server {
	if cfg == nil || orchestrator == nil {
		return nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if notifier == nil {
		notifier = notifications.NewService(cfg)
	}

	srv := &Server{
		bind:         bind,
		logger:       logging.NewComponentLogger(logger, "api"),
		orchestrator: orchestrator,
		catalog:      catalogSvc,
		catalogStore: catalogStore,
		provider:     provider,
		suggester:    suggester,
		status:       status,
		notifier:     notifier,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/templates", srv.withAuth(srv.handleTemplates))
	mux.HandleFunc("/api/templates/", srv.withAuth(srv.handleTemplate))
	mux.HandleFunc("/api/invites", srv.withAuth(srv.handleInvites))
	mux.HandleFunc("/api/invites/", srv.withAuth(srv.handleInvite))
	mux.HandleFunc("/api/music/suggestions", srv.withAuth(srv.handleSuggestions))
	mux.HandleFunc("/api/status", srv.withAuth(srv.handleStatus))
	mux.HandleFunc("/api/admin/seed", srv.handleSeed)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler exposes the routing table for in-process tests.
func (s *Server) Handler() http.Handler {
	if s == nil || s.server == nil {
		return http.NotFoundHandler()
	}
	return s.server.Handler
}

// Start begins serving on the configured bind address. The server shuts down
// when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound listen address once Start has succeeded.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type authedHandler func(w http.ResponseWriter, r *http.Request, userID string)

func (s *Server) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.provider.Authenticate(bearerToken(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := services.WithRequestID(r.Context(), uuid.NewString())
		ctx = services.WithUserID(ctx, userID)
		next(w, r.WithContext(ctx), userID)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request, _ string) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	templates, err := s.catalog.Templates(r.Context())
	if err != nil {
		// A cold catalog degrades to an empty listing rather than failing
		// the whole page.
		if errors.Is(err, services.ErrUnavailable) {
			logging.WithContext(r.Context(), s.logger).Warn("catalog unavailable, serving empty listing", logging.Error(err))
			s.writeJSON(w, http.StatusOK, api.TemplateListResponse{Templates: []api.Template{}})
			return
		}
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.TemplateListResponse{Templates: api.FromTemplates(templates)})
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request, _ string) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/templates/")
	if id == "" || strings.Contains(id, "/") {
		s.writeError(w, r, services.Wrap(services.ErrNotFound, "api", "template", "template not found", nil))
		return
	}
	tmpl, err := s.orchestrator.Template(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if tmpl == nil {
		s.writeError(w, r, services.Wrap(services.ErrNotFound, "api", "template", fmt.Sprintf("template %s not found", id), nil))
		return
	}
	s.writeJSON(w, http.StatusOK, api.TemplateResponse{Template: api.FromTemplate(*tmpl)})
}

func (s *Server) handleInvites(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		invites, err := s.orchestrator.ListInvites(r.Context(), userID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		payload := api.InviteListResponse{Invites: make([]api.Invite, 0, len(invites))}
		for _, inv := range invites {
			payload.Invites = append(payload.Invites, api.FromInvite(inv, s.lookupTemplate(r.Context(), inv)))
		}
		s.writeJSON(w, http.StatusOK, payload)
	case http.MethodPost:
		var req api.CreateInviteRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		inv, err := s.orchestrator.CreateInvite(r.Context(), userID, req.TemplateID, req.Values, req.MusicChoice)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, api.InviteResponse{Invite: api.FromInvite(inv, s.lookupTemplate(r.Context(), inv))})
	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) handleInvite(w http.ResponseWriter, r *http.Request, userID string) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/invites/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" {
		s.writeError(w, r, services.Wrap(services.ErrNotFound, "api", "invite", "invite not found", nil))
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		inv, err := s.orchestrator.GetInvite(r.Context(), userID, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.InviteResponse{Invite: api.FromInvite(inv, s.lookupTemplate(r.Context(), inv))})
	case action == "" && (r.Method == http.MethodPut || r.Method == http.MethodPatch):
		var req api.UpdateInviteRequest
		if err := decodeBody(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		inv, err := s.orchestrator.UpdateInvite(r.Context(), userID, id, req.Values, req.MusicChoice)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.InviteResponse{Invite: api.FromInvite(inv, s.lookupTemplate(r.Context(), inv))})
	case action == "render" && r.Method == http.MethodPost:
		inv, err := s.orchestrator.RequestRender(r.Context(), userID, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusAccepted, api.InviteResponse{Invite: api.FromInvite(inv, s.lookupTemplate(r.Context(), inv))})
	case action != "" && action != "render":
		s.writeError(w, r, services.Wrap(services.ErrNotFound, "api", "invite", "invite not found", nil))
	default:
		s.methodNotAllowed(w)
	}
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request, _ string) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	var req api.SuggestionsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	theme := strings.TrimSpace(req.Theme)
	if theme == "" && strings.TrimSpace(req.TemplateID) != "" {
		tmpl, err := s.orchestrator.Template(r.Context(), strings.TrimSpace(req.TemplateID))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if tmpl == nil {
			s.writeError(w, r, services.Wrap(services.ErrNotFound, "api", "suggestions", fmt.Sprintf("template %s not found", req.TemplateID), nil))
			return
		}
		theme = tmpl.Theme
	}
	if theme == "" {
		s.writeError(w, r, services.Wrap(services.ErrValidation, "api", "suggestions", "theme or templateId is required", nil))
		return
	}
	if s.suggester == nil || !s.suggester.Configured() {
		s.writeError(w, r, services.Wrap(services.ErrUnavailable, "api", "suggestions", "music suggestions are not configured", nil))
		return
	}
	suggestions, err := s.suggester.Suggest(r.Context(), theme)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SuggestionsResponse{Suggestions: suggestions})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request, _ string) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w)
		return
	}
	if s.status == nil {
		s.writeJSON(w, http.StatusOK, api.StatusResponse{Render: api.RenderStatus{Counts: map[string]int{}}})
		return
	}
	summary, err := s.status.StatusSummary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StatusResponse{Render: api.FromStatusSummary(summary)})
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}
	if !s.provider.IsAdmin(bearerToken(r)) {
		s.writeError(w, r, services.Wrap(services.ErrNotAuthenticated, "api", "seed", "admin token required", nil))
		return
	}
	if s.catalogStore == nil {
		s.writeError(w, r, services.Wrap(services.ErrUnavailable, "api", "seed", "catalog store is not attached", nil))
		return
	}
	count, err := catalog.Seed(r.Context(), s.catalogStore)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.catalog != nil {
		s.catalog.Invalidate()
	}
	logger := logging.WithContext(r.Context(), s.logger)
	if err := s.notifier.NotifyCatalogSeeded(r.Context(), count); err != nil {
		logger.Warn("seed notification failed", logging.Error(err))
	}
	logger.Info("catalog seeded", logging.Int("template_count", count))
	s.writeJSON(w, http.StatusOK, api.SeedResponse{Seeded: count})
}

func (s *Server) lookupTemplate(ctx context.Context, inv *invite.Invite) *catalog.Template {
	if inv == nil {
		return nil
	}
	tmpl, err := s.catalog.TemplateByID(ctx, inv.TemplateID)
	if err != nil {
		logging.WithContext(ctx, s.logger).Warn("template lookup failed",
			logging.String(logging.FieldInviteID, inv.ID),
			logging.String(logging.FieldTemplateID, inv.TemplateID),
			logging.Error(err))
		return nil
	}
	return tmpl
}

func decodeBody(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return services.Wrap(services.ErrValidation, "api", "decode", "invalid request body", err)
	}
	return nil
}

func (s *Server) methodNotAllowed(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusMethodNotAllowed, api.ErrorResponse{Error: "method not allowed"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logging.WithContext(r.Context(), s.logger).Error("request failed",
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.Error(err))
	}
	s.writeJSON(w, status, api.ErrorResponse{Error: err.Error(), Kind: services.Kind(err)})
}
