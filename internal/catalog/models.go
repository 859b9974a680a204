package catalog

import "strings"

// FieldKind identifies the input widget a template field expects.
type FieldKind string

const (
	// FieldText is a single-line text input.
	FieldText FieldKind = "text"
	// FieldTextarea is a multi-line text input.
	FieldTextarea FieldKind = "textarea"
	// FieldDate is a calendar date input.
	FieldDate FieldKind = "date"
	// FieldMusic is a music track selection, backed by LLM suggestions.
	FieldMusic FieldKind = "music"
)

var fieldKinds = map[FieldKind]struct{}{
	FieldText:     {},
	FieldTextarea: {},
	FieldDate:     {},
	FieldMusic:    {},
}

// KnownFieldKind reports whether kind is one of the supported input kinds.
func KnownFieldKind(kind FieldKind) bool {
	_, ok := fieldKinds[kind]
	return ok
}

// Field describes one fillable input on a template.
type Field struct {
	Name         string    `json:"name"`
	Label        string    `json:"label"`
	Kind         FieldKind `json:"kind"`
	DefaultValue string    `json:"default_value,omitempty"`
	Placeholder  string    `json:"placeholder,omitempty"`
	Required     bool      `json:"required,omitempty"`
}

// Template describes one renderable invitation design.
type Template struct {
	ID              string
	Title           string
	Description     string
	ThumbnailURL    string
	DurationSeconds int
	Fields          []Field
	CompositionID   string
	Tags            []string
	Theme           string
}

// Field returns the named field definition, or nil when the template has no
// such field.
func (t *Template) Field(name string) *Field {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i]
		}
	}
	return nil
}

// FieldNames returns the template's field names in declaration order.
func (t *Template) FieldNames() []string {
	names := make([]string, len(t.Fields))
	for i, field := range t.Fields {
		names[i] = field.Name
	}
	return names
}

// Clone returns a deep copy so cached templates cannot be mutated by callers.
func (t Template) Clone() Template {
	cp := t
	cp.Fields = make([]Field, len(t.Fields))
	copy(cp.Fields, t.Fields)
	cp.Tags = make([]string, len(t.Tags))
	copy(cp.Tags, t.Tags)
	return cp
}

// Slug converts a template title into a stable lowercase identifier.
func Slug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
