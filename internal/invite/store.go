package invite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"garland/internal/config"
	"garland/internal/services"
)

// Store manages invite persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the invite database and applies migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath connects to the database at an explicit location. Used by tests and
// by the catalog store, which shares the same database file.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

//go:embed migrations/*.sql
var schemaFS embed.FS

// migrate brings the invite schema up to date. Each file under migrations/
// is one version, keyed by its base name and applied in lexical order; the
// schema_migrations table records what already ran, so reopening an existing
// database is a no-op.
func (s *Store) migrate(ctx context.Context) error {
	names, err := fs.Glob(schemaFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list schema files: %w", err)
	}
	sort.Strings(names)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}

	applied := make(map[string]bool)
	rows, err := tx.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("load applied versions: %w", err)
	}
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan applied version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate applied versions: %w", err)
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("close applied versions: %w", err)
	}

	for _, name := range names {
		version := strings.TrimSuffix(path.Base(name), ".sql")
		if applied[version] {
			continue
		}
		ddl, err := schemaFS.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read schema file %s: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx, string(ddl)); err != nil {
			return fmt.Errorf("apply schema version %s: %w", version, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record schema version %s: %w", version, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema changes: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Create inserts a new invite with status draft and returns the stored record.
func (s *Store) Create(ctx context.Context, userID, templateID string, values map[string]string, musicChoice string) (*Invite, error) {
	if userID == "" {
		return nil, errors.New("user id required")
	}
	if templateID == "" {
		return nil, errors.New("template id required")
	}
	if values == nil {
		values = map[string]string{}
	}

	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("marshal values: %w", err)
	}

	id := uuid.NewString()
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO invites (
            id, user_id, template_id, values_json, music_choice, status,
            created_at, updated_at, progress_percent
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		userID,
		templateID,
		string(valuesJSON),
		nullableString(musicChoice),
		StatusDraft,
		timestamp,
		timestamp,
		0.0,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "invite-store", "create", "insert invite", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches an invite by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Invite, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id)
	inv, err := scanInvite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "invite-store", "get", "query invite", err)
	}
	return inv, nil
}

// Update persists changes to an existing invite and refreshes UpdatedAt.
func (s *Store) Update(ctx context.Context, inv *Invite) error {
	if inv == nil {
		return errors.New("invite is nil")
	}
	valuesJSON, err := json.Marshal(inv.Values)
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}
	inv.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(
		ctx,
		`UPDATE invites
         SET user_id = ?, template_id = ?, values_json = ?, music_choice = ?,
             status = ?, video_url = ?, error_message = ?,
             progress_stage = ?, progress_percent = ?, progress_message = ?,
             render_requested_at = ?, updated_at = ?, last_heartbeat = ?
         WHERE id = ?`,
		inv.UserID,
		inv.TemplateID,
		string(valuesJSON),
		nullableString(inv.MusicChoice),
		inv.Status,
		nullableString(inv.VideoURL),
		nullableString(inv.ErrorMessage),
		nullableString(inv.ProgressStage),
		inv.ProgressPercent,
		nullableString(inv.ProgressMessage),
		nullableTime(inv.RenderRequested),
		inv.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(inv.LastHeartbeat),
		inv.ID,
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "invite-store", "update", "update invite", err)
	}
	return nil
}

// ListByUser returns a user's invites ordered newest-first by creation time.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]*Invite, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE user_id = ? ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "invite-store", "list", "query by user", err)
	}
	defer rows.Close()
	return collectInvites(rows)
}

// List returns invites filtered by status set (or all invites when no status
// is provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Invite, error) {
	baseQuery := `SELECT ` + inviteColumns + ` FROM invites`
	orderClause := ` ORDER BY created_at`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "invite-store", "list", "query invites", err)
	}
	defer rows.Close()
	return collectInvites(rows)
}

// RequestRender queues a draft or failed invite for rendering. Failed invites
// return to draft with their previous failure cleared. Returns false when the
// invite is not in a requestable state.
func (s *Store) RequestRender(ctx context.Context, id string) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE invites
         SET status = ?, render_requested_at = ?, error_message = NULL,
             video_url = NULL, progress_stage = 'Queued', progress_percent = 0,
             progress_message = NULL, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		StatusDraft,
		now,
		now,
		id,
		StatusDraft,
		StatusError,
	)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "invite-store", "request-render", "queue invite", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "invite-store", "request-render", "rows affected", err)
	}
	return affected > 0, nil
}

// ClaimNextDraft atomically transitions the oldest render-requested draft to
// rendering and returns it. Returns nil when nothing is waiting. The
// transition is persisted before the caller sees the invite, so concurrent
// readers observe the rendering state for the whole render window.
func (s *Store) ClaimNextDraft(ctx context.Context) (*Invite, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "invite-store", "claim", "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(
		ctx,
		`SELECT id FROM invites
         WHERE status = ? AND render_requested_at IS NOT NULL
         ORDER BY render_requested_at LIMIT 1`,
		StatusDraft,
	)
	var id string
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrPersistence, "invite-store", "claim", "select draft", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(
		ctx,
		`UPDATE invites
         SET status = ?, progress_stage = 'Rendering', progress_percent = 0,
             progress_message = 'Render started', error_message = NULL,
             last_heartbeat = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		StatusRendering,
		now,
		now,
		id,
		StatusDraft,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "invite-store", "claim", "mark rendering", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "invite-store", "claim", "rows affected", err)
	}
	if affected == 0 {
		// Another worker won the race inside this poll cycle.
		return nil, nil
	}
	if err := tx.Commit(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, "invite-store", "claim", "commit", err)
	}

	return s.GetByID(ctx, id)
}

// UpdateHeartbeat refreshes the liveness timestamp for an in-flight invite.
func (s *Store) UpdateHeartbeat(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE invites SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now,
		now,
		id,
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "invite-store", "heartbeat", "update heartbeat", err)
	}
	return nil
}

// ReclaimStale returns rendering invites with expired heartbeats back to draft
// so a worker can pick them up again after a crash.
func (s *Store) ReclaimStale(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE invites
         SET status = ?, progress_stage = 'Reclaimed from stale rendering',
             progress_percent = 0, progress_message = NULL,
             last_heartbeat = NULL, updated_at = ?
         WHERE status = ? AND last_heartbeat IS NOT NULL AND last_heartbeat < ?`,
		StatusDraft,
		now,
		StatusRendering,
		cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, services.Wrap(services.ErrPersistence, "invite-store", "reclaim", "reclaim stale invites", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of invites grouped by status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM invites GROUP BY status`)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "invite-store", "stats", "query stats", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Remove deletes an invite by identifier.
func (s *Store) Remove(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invites WHERE id = ?`, id)
	if err != nil {
		return false, services.Wrap(services.ErrPersistence, "invite-store", "remove", "delete invite", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

const inviteColumns = "id, user_id, template_id, values_json, music_choice, status, video_url, error_message, progress_stage, progress_percent, progress_message, render_requested_at, created_at, updated_at, last_heartbeat"

func scanInvite(scanner interface{ Scan(dest ...any) error }) (*Invite, error) {
	var (
		id               string
		userID           string
		templateID       string
		valuesJSON       sql.NullString
		musicChoice      sql.NullString
		statusStr        string
		videoURL         sql.NullString
		errorMessage     sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		renderRaw        sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		lastHeartbeatRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&userID,
		&templateID,
		&valuesJSON,
		&musicChoice,
		&statusStr,
		&videoURL,
		&errorMessage,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&renderRaw,
		&createdRaw,
		&updatedRaw,
		&lastHeartbeatRaw,
	); err != nil {
		return nil, err
	}

	inv := &Invite{
		ID:              id,
		UserID:          userID,
		TemplateID:      templateID,
		Values:          map[string]string{},
		MusicChoice:     musicChoice.String,
		Status:          Status(statusStr),
		VideoURL:        videoURL.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}
	if valuesJSON.Valid && valuesJSON.String != "" {
		if err := json.Unmarshal([]byte(valuesJSON.String), &inv.Values); err != nil {
			return nil, fmt.Errorf("unmarshal values for invite %s: %w", id, err)
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		inv.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		inv.UpdatedAt = updated
	}
	if renderRaw.Valid {
		if requested, err := parseTimeString(renderRaw.String); err == nil {
			inv.RenderRequested = &requested
		}
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			inv.LastHeartbeat = &heartbeat
		}
	}
	return inv, nil
}

func collectInvites(rows *sql.Rows) ([]*Invite, error) {
	var invites []*Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
