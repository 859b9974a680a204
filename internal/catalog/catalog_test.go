package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"garland/internal/services"
)

type fakeSource struct {
	templates []Template
	err       error
	calls     int
}

func (f *fakeSource) List(ctx context.Context) ([]Template, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return cloneAll(f.templates), nil
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func testTemplates() []Template {
	return []Template{
		{ID: "floral-garden-wedding", Title: "Floral Garden Wedding", CompositionID: "FloralGardenWedding", Theme: "romantic"},
		{ID: "royal-rajasthani-wedding", Title: "Royal Rajasthani Wedding", CompositionID: "RoyalRajasthaniWedding", Theme: "royal"},
	}
}

func newTestService(source *fakeSource) (*Service, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	svc := NewService(source, 5*time.Minute, nil, WithClock(clock.Now))
	return svc, clock
}

func TestTemplatesServedFromCacheWithinTTL(t *testing.T) {
	source := &fakeSource{templates: testTemplates()}
	svc, clock := newTestService(source)
	ctx := context.Background()

	if _, err := svc.Templates(ctx); err != nil {
		t.Fatalf("Templates returned error: %v", err)
	}
	clock.Advance(4 * time.Minute)
	templates, err := svc.Templates(ctx)
	if err != nil {
		t.Fatalf("Templates returned error: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(templates))
	}
	if source.calls != 1 {
		t.Fatalf("expected 1 source fetch within TTL, got %d", source.calls)
	}
}

func TestTemplatesRefetchAfterTTL(t *testing.T) {
	source := &fakeSource{templates: testTemplates()}
	svc, clock := newTestService(source)
	ctx := context.Background()

	if _, err := svc.Templates(ctx); err != nil {
		t.Fatalf("Templates returned error: %v", err)
	}
	clock.Advance(5*time.Minute + time.Second)
	if _, err := svc.Templates(ctx); err != nil {
		t.Fatalf("Templates returned error: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected refetch after TTL, got %d calls", source.calls)
	}
}

func TestStaleSnapshotServedOnRefreshFailure(t *testing.T) {
	source := &fakeSource{templates: testTemplates()}
	svc, clock := newTestService(source)
	ctx := context.Background()

	if _, err := svc.Templates(ctx); err != nil {
		t.Fatalf("Templates returned error: %v", err)
	}

	source.err = errors.New("database locked")
	clock.Advance(10 * time.Minute)

	templates, err := svc.Templates(ctx)
	if err != nil {
		t.Fatalf("expected stale fallback, got error: %v", err)
	}
	if len(templates) != 2 {
		t.Fatalf("expected stale snapshot with 2 templates, got %d", len(templates))
	}
}

func TestColdFailureIsUnavailable(t *testing.T) {
	source := &fakeSource{err: errors.New("database locked")}
	svc, _ := newTestService(source)

	_, err := svc.Templates(context.Background())
	if err == nil {
		t.Fatal("expected error for cold refresh failure")
	}
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable marker, got %v", err)
	}
}

func TestTemplateByID(t *testing.T) {
	source := &fakeSource{templates: testTemplates()}
	svc, _ := newTestService(source)
	ctx := context.Background()

	tmpl, err := svc.TemplateByID(ctx, "royal-rajasthani-wedding")
	if err != nil {
		t.Fatalf("TemplateByID returned error: %v", err)
	}
	if tmpl == nil || tmpl.Title != "Royal Rajasthani Wedding" {
		t.Fatalf("unexpected template: %#v", tmpl)
	}

	missing, err := svc.TemplateByID(ctx, "no-such-template")
	if err != nil {
		t.Fatalf("TemplateByID returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %#v", missing)
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	source := &fakeSource{templates: testTemplates()}
	svc, _ := newTestService(source)
	ctx := context.Background()

	if _, err := svc.Templates(ctx); err != nil {
		t.Fatalf("Templates returned error: %v", err)
	}
	svc.Invalidate()
	if _, err := svc.Templates(ctx); err != nil {
		t.Fatalf("Templates returned error: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected refetch after invalidate, got %d calls", source.calls)
	}
}

func TestCachedTemplatesAreIsolatedCopies(t *testing.T) {
	source := &fakeSource{templates: testTemplates()}
	svc, _ := newTestService(source)
	ctx := context.Background()

	first, err := svc.Templates(ctx)
	if err != nil {
		t.Fatalf("Templates returned error: %v", err)
	}
	first[0].Title = "mutated"

	second, err := svc.Templates(ctx)
	if err != nil {
		t.Fatalf("Templates returned error: %v", err)
	}
	if second[0].Title == "mutated" {
		t.Fatal("cache snapshot leaked to caller")
	}
}
