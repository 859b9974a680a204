package main

import (
	"strings"
	"testing"
)

func TestRenderTableAlignsNumericColumns(t *testing.T) {
	out := renderTable(
		[]column{col("Status"), numericCol("Count")},
		[][]string{
			{"draft", "3"},
			{"rendered", "12"},
		},
	)

	upper := strings.ToUpper(out)
	for _, want := range []string{"STATUS", "COUNT", "DRAFT", "12"} {
		if !strings.Contains(upper, want) {
			t.Fatalf("expected table to contain %q, got:\n%s", want, out)
		}
	}
	// Right alignment pads the narrow count with a leading space.
	if !strings.Contains(out, "  3 ") {
		t.Fatalf("expected right-aligned count column, got:\n%s", out)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]column{col("ID"), col("Detail")},
		[][]string{{"inv-1"}},
	)
	if !strings.Contains(out, "inv-1") {
		t.Fatalf("expected row cell, got:\n%s", out)
	}
	if strings.Contains(out, "<nil>") {
		t.Fatalf("expected missing cells to render empty, got:\n%s", out)
	}
}

func TestRenderTableWithoutColumnsIsEmpty(t *testing.T) {
	if out := renderTable(nil, [][]string{{"x"}}); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}
