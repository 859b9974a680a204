package render

import (
	"fmt"
	"sort"
	"strings"

	"garland/internal/catalog"
	"garland/internal/services"
)

// validateValues checks submitted field values against the template's field
// definitions. requireComplete additionally enforces required fields, which
// only matters when queueing a render; drafts may be partial.
func validateValues(tmpl *catalog.Template, values map[string]string, requireComplete bool) error {
	var unknown []string
	for name := range values {
		if tmpl.Field(name) == nil {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		message := fmt.Sprintf("unknown fields: %s (template accepts: %s)",
			strings.Join(unknown, ", "), strings.Join(tmpl.FieldNames(), ", "))
		return services.Wrap(services.ErrValidation, "render", "validate", message, nil)
	}

	if !requireComplete {
		return nil
	}

	var missing []string
	for _, field := range tmpl.Fields {
		if !field.Required {
			continue
		}
		if field.Kind == catalog.FieldMusic {
			// Music rides in its own column, not the values map.
			continue
		}
		if strings.TrimSpace(values[field.Name]) == "" {
			missing = append(missing, field.Name)
		}
	}
	if len(missing) > 0 {
		message := fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))
		return services.Wrap(services.ErrValidation, "render", "validate", message, nil)
	}
	return nil
}
