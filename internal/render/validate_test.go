package render

import (
	"errors"
	"strings"
	"testing"

	"garland/internal/catalog"
	"garland/internal/services"
)

func weddingTemplate() *catalog.Template {
	return &catalog.Template{
		ID: "t1",
		Fields: []catalog.Field{
			{Name: "brideName", Kind: catalog.FieldText, Required: true},
			{Name: "groomName", Kind: catalog.FieldText, Required: true},
			{Name: "venue", Kind: catalog.FieldText},
			{Name: "music", Kind: catalog.FieldMusic, Required: true},
		},
	}
}

func TestValidateValues(t *testing.T) {
	tests := []struct {
		name            string
		values          map[string]string
		requireComplete bool
		wantErr         bool
		wantInMessage   string
	}{
		{
			name:   "partial draft ok",
			values: map[string]string{"brideName": "Aanya"},
		},
		{
			name:          "unknown field rejected",
			values:        map[string]string{"hashtag": "#wed"},
			wantErr:       true,
			wantInMessage: "hashtag",
		},
		{
			name:          "unknown field error lists accepted names",
			values:        map[string]string{"hashtag": "#wed"},
			wantErr:       true,
			wantInMessage: "template accepts: brideName, groomName, venue, music",
		},
		{
			name:            "complete values pass",
			values:          map[string]string{"brideName": "Aanya", "groomName": "Dev"},
			requireComplete: true,
		},
		{
			name:            "missing required named",
			values:          map[string]string{"venue": "Udaipur"},
			requireComplete: true,
			wantErr:         true,
			wantInMessage:   "brideName, groomName",
		},
		{
			name:            "blank counts as missing",
			values:          map[string]string{"brideName": "  ", "groomName": "Dev"},
			requireComplete: true,
			wantErr:         true,
			wantInMessage:   "brideName",
		},
		{
			name:            "empty map incomplete",
			values:          map[string]string{},
			requireComplete: true,
			wantErr:         true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateValues(weddingTemplate(), tc.values, tc.requireComplete)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation marker, got %v", err)
			}
			if tc.wantInMessage != "" && !strings.Contains(err.Error(), tc.wantInMessage) {
				t.Fatalf("expected %q in message, got %v", tc.wantInMessage, err)
			}
		})
	}
}
