package main

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/zulandar/taskyard/internal/models"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b ,,c ")
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("splitList = %v, want %v", got, want)
	}
	if got := splitList(""); got != nil {
		t.Errorf("splitList(\"\") = %v, want nil", got)
	}
}

func TestParseDateFlag(t *testing.T) {
	got, err := parseDateFlag("due", "2026-03-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !got.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", got)
	}

	got, err = parseDateFlag("due", "2026-03-01T10:00:00+02:00")
	if err != nil {
		t.Fatalf("parse rfc3339: %v", err)
	}
	if got.Location() != time.UTC || got.Hour() != 8 {
		t.Errorf("expected 08:00 UTC, got %v", got)
	}

	if got, err := parseDateFlag("due", ""); got != nil || err != nil {
		t.Errorf("empty: got %v, %v", got, err)
	}
	if _, err := parseDateFlag("due", "next week"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestHealthLabel_PlainWhenNotTerminal(t *testing.T) {
	var buf bytes.Buffer
	if got := healthLabel(&buf, models.HealthDelayed); got != "delayed" {
		t.Errorf("got %q, want plain label", got)
	}
	if got := healthLabel(&buf, ""); got != "on-track" {
		t.Errorf("empty status: got %q", got)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatDate(nil); got != "-" {
		t.Errorf("formatDate(nil) = %q", got)
	}
	h := 1.5
	if got := formatHours(&h); got != "1.50h" {
		t.Errorf("formatHours = %q", got)
	}
	if got := orDash(""); got != "-" {
		t.Errorf("orDash = %q", got)
	}
}
