package catalog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"garland/internal/logging"
	"garland/internal/services"
)

// Source supplies the authoritative template list, typically the Store.
type Source interface {
	List(ctx context.Context) ([]Template, error)
}

// Service caches the template catalog with a TTL. Reads within the TTL are
// served from the snapshot. When a refresh fails and a previous snapshot
// exists, the stale snapshot is served instead of the error; only a cold
// failure surfaces as unavailable.
type Service struct {
	source Source
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu          sync.Mutex
	snapshot    []Template
	byID        map[string]int
	fetchedAt   time.Time
	hasSnapshot bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wraps a template source with TTL caching.
func NewService(source Source, ttl time.Duration, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	svc := &Service{
		source: source,
		ttl:    ttl,
		now:    time.Now,
		logger: logging.NewComponentLogger(logger, "catalog"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Templates returns the catalog, refreshing the snapshot when the TTL has
// elapsed.
func (s *Service) Templates(ctx context.Context) ([]Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}
	return cloneAll(s.snapshot), nil
}

// TemplateByID returns one template from the catalog, or nil when no template
// has the given ID.
func (s *Service) TemplateByID(ctx context.Context, id string) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}
	idx, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	tmpl := s.snapshot[idx].Clone()
	return &tmpl, nil
}

// Invalidate expires the snapshot so the next read refetches. The snapshot is
// kept for stale fallback.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchedAt = time.Time{}
}

func (s *Service) refreshLocked(ctx context.Context) error {
	now := s.now()
	if s.hasSnapshot && !s.fetchedAt.IsZero() && now.Sub(s.fetchedAt) < s.ttl {
		return nil
	}

	templates, err := s.source.List(ctx)
	if err != nil {
		if s.hasSnapshot {
			s.logger.Warn("catalog refresh failed, serving stale snapshot",
				logging.String(logging.FieldEventType, "catalog_refresh_failed"),
				logging.Error(err),
				logging.Int("template_count", len(s.snapshot)))
			return nil
		}
		return services.Wrap(services.ErrUnavailable, "catalog", "refresh", "template catalog unavailable", err)
	}

	s.snapshot = templates
	s.byID = make(map[string]int, len(templates))
	for i := range templates {
		s.byID[templates[i].ID] = i
	}
	s.fetchedAt = now
	s.hasSnapshot = true
	return nil
}

func cloneAll(templates []Template) []Template {
	out := make([]Template, len(templates))
	for i := range templates {
		out[i] = templates[i].Clone()
	}
	return out
}
