package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/zulandar/taskyard/internal/models"
	"golang.org/x/term"
)

var healthStyles = map[models.HealthStatus]lipgloss.Style{
	models.HealthOnTrack: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	models.HealthAtRisk:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	models.HealthDelayed: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	models.HealthAhead:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// healthLabel renders a health status, coloured when w is a terminal.
func healthLabel(w io.Writer, h models.HealthStatus) string {
	label := string(h)
	if label == "" {
		label = string(models.HealthOnTrack)
	}
	if !isTerminal(w) {
		return label
	}
	style, ok := healthStyles[models.HealthStatus(label)]
	if !ok {
		return label
	}
	return style.Render(label)
}

// truncate shortens s to max runes, marking the cut with "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}

func formatHours(h *float64) string {
	if h == nil {
		return "-"
	}
	return fmt.Sprintf("%.2fh", *h)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// splitList parses a comma-separated flag value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDateFlag accepts YYYY-MM-DD or RFC 3339. Empty yields nil.
func parseDateFlag(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("--%s %q: expected YYYY-MM-DD or RFC 3339", name, raw)
	}
	return &t, nil
}
