// Copyright 2025 SAP SE
// SPDX-License-Identifier: Apache-2.0

package hypervisorstats

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestRawRecord_Number(t *testing.T) {
	r := RawRecord{
		"float":   float64(1.5),
		"int":     3,
		"int64":   int64(4),
		"number":  json.Number("7"),
		"invalid": json.Number("x"),
		"string":  "5",
		"nil":     nil,
	}
	tests := []struct {
		key      string
		expected float64
	}{
		{"float", 1.5},
		{"int", 3},
		{"int64", 4},
		{"number", 7},
		{"invalid", 0},
		{"string", 0},
		{"nil", 0},
		{"missing", 0},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := r.Number(tt.key); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestRawRecord_String(t *testing.T) {
	r := RawRecord{"name": "az1", "id": 1.0}
	if got := r.String("name"); got != "az1" {
		t.Errorf("expected az1, got %q", got)
	}
	if got := r.String("id"); got != "" {
		t.Errorf("expected empty string for number, got %q", got)
	}
	if got := r.String("missing"); got != "" {
		t.Errorf("expected empty string for missing key, got %q", got)
	}
}

func TestRawRecord_Strings(t *testing.T) {
	r := RawRecord{
		"any":    []any{"a", 1.0, "b"},
		"typed":  []string{"c"},
		"scalar": "d",
	}
	if got := r.Strings("any"); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", got)
	}
	if got := r.Strings("typed"); !slices.Equal(got, []string{"c"}) {
		t.Errorf("expected [c], got %v", got)
	}
	if got := r.Strings("scalar"); got != nil {
		t.Errorf("expected nil for scalar, got %v", got)
	}
	if got := r.Strings("missing"); got != nil {
		t.Errorf("expected nil for missing key, got %v", got)
	}
}

func TestRawRecord_Identifier(t *testing.T) {
	r := RawRecord{
		"float":  float64(42),
		"frac":   1.5,
		"int":    7,
		"string": "uuid",
		"number": json.Number("9"),
	}
	tests := map[string]string{
		"float":   "42",
		"frac":    "1.5",
		"int":     "7",
		"string":  "uuid",
		"number":  "9",
		"missing": "",
	}
	for key, expected := range tests {
		if got := r.Identifier(key); got != expected {
			t.Errorf("%s: expected %q, got %q", key, expected, got)
		}
	}
}
