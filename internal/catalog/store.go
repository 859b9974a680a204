package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"garland/internal/config"
	"garland/internal/services"
)

//go:embed migrations/0001_templates.sql
var schemaSQL string

// Store persists templates in SQLite. It shares the database file with the
// invite store but owns its own connection and schema.
type Store struct {
	db *sql.DB
}

// OpenStore connects to the catalog tables in the configured database.
func OpenStore(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenStorePath(cfg.DatabasePath())
}

// OpenStorePath connects to the database at an explicit location.
func OpenStorePath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	// Schema statements are idempotent, no version bookkeeping needed yet.
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply catalog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Upsert inserts a template or updates the existing row with the same ID.
func (s *Store) Upsert(ctx context.Context, tmpl Template) error {
	if tmpl.ID == "" {
		return errors.New("template id required")
	}
	if tmpl.CompositionID == "" {
		return errors.New("composition id required")
	}
	for _, field := range tmpl.Fields {
		if !KnownFieldKind(field.Kind) {
			return fmt.Errorf("field %s: unknown kind %q", field.Name, field.Kind)
		}
	}
	fieldsJSON, err := json.Marshal(tmpl.Fields)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	tagsJSON, err := json.Marshal(tmpl.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO templates (
            id, title, description, thumbnail_url, duration_seconds,
            fields_json, composition_id, tags_json, theme, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            description = excluded.description,
            thumbnail_url = excluded.thumbnail_url,
            duration_seconds = excluded.duration_seconds,
            fields_json = excluded.fields_json,
            composition_id = excluded.composition_id,
            tags_json = excluded.tags_json,
            theme = excluded.theme,
            updated_at = excluded.updated_at`,
		tmpl.ID,
		tmpl.Title,
		tmpl.Description,
		tmpl.ThumbnailURL,
		tmpl.DurationSeconds,
		string(fieldsJSON),
		tmpl.CompositionID,
		string(tagsJSON),
		tmpl.Theme,
		now,
		now,
	)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "catalog-store", "upsert", "upsert template", err)
	}
	return nil
}

// List returns all templates ordered by title.
func (s *Store) List(ctx context.Context) ([]Template, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, description, thumbnail_url, duration_seconds,
                fields_json, composition_id, tags_json, theme
         FROM templates ORDER BY title`,
	)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "catalog-store", "list", "query templates", err)
	}
	defer rows.Close()

	var templates []Template
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

// GetByID fetches one template. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id string) (*Template, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, title, description, thumbnail_url, duration_seconds,
                fields_json, composition_id, tags_json, theme
         FROM templates WHERE id = ?`,
		id,
	)
	tmpl, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "catalog-store", "get", "query template", err)
	}
	return &tmpl, nil
}

// Count returns the number of stored templates.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM templates`).Scan(&count); err != nil {
		return 0, services.Wrap(services.ErrPersistence, "catalog-store", "count", "count templates", err)
	}
	return count, nil
}

func scanTemplate(scanner interface{ Scan(dest ...any) error }) (Template, error) {
	var (
		tmpl       Template
		descr      sql.NullString
		thumbnail  sql.NullString
		fieldsJSON sql.NullString
		tagsJSON   sql.NullString
		theme      sql.NullString
	)
	if err := scanner.Scan(
		&tmpl.ID,
		&tmpl.Title,
		&descr,
		&thumbnail,
		&tmpl.DurationSeconds,
		&fieldsJSON,
		&tmpl.CompositionID,
		&tagsJSON,
		&theme,
	); err != nil {
		return Template{}, err
	}
	tmpl.Description = descr.String
	tmpl.ThumbnailURL = thumbnail.String
	tmpl.Theme = theme.String
	if fieldsJSON.Valid && fieldsJSON.String != "" {
		if err := json.Unmarshal([]byte(fieldsJSON.String), &tmpl.Fields); err != nil {
			return Template{}, fmt.Errorf("unmarshal fields for template %s: %w", tmpl.ID, err)
		}
	}
	if tagsJSON.Valid && tagsJSON.String != "" {
		if err := json.Unmarshal([]byte(tagsJSON.String), &tmpl.Tags); err != nil {
			return Template{}, fmt.Errorf("unmarshal tags for template %s: %w", tmpl.ID, err)
		}
	}
	return tmpl, nil
}
