package ui

import (
	"fmt"
	"strings"

	"github.com/five82/parkdash/internal/parking"
	"github.com/five82/parkdash/internal/render"
)

// renderHeader renders the status bar: totals, per-status counts, freshness
// of the data and an error banner while the API misbehaves.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	if !m.snapshot.HasData {
		return m.renderConnectingHeader(styles, bg)
	}

	compact := m.width < LayoutCompactWidth
	sep := bg.Spaces(2)

	parts := []string{bg.Render("parkdash", styles.Logo)}
	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	} else {
		parts = append(parts, bg.Render("● LIVE", styles.SuccessText))
	}

	parts = append(parts,
		bg.Render("Stations:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d", len(m.snapshot.Cards)), styles.Text))

	counts := parking.Counts(m.snapshot.Cards)
	for _, status := range parking.Statuses() {
		n := counts[status]
		if n == 0 && compact {
			continue
		}
		label := statusLabel(status)
		if compact {
			label = label[:1]
		}
		style := styles.StatusText(status).Background(bg.Color())
		parts = append(parts, bg.Render(fmt.Sprintf("%s %d", label, n), style))
	}

	if !compact && m.snapshot.Rejected > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("hidden %d", m.snapshot.Rejected), styles.FaintText))
	}

	if !m.snapshot.LastSuccess.IsZero() {
		parts = append(parts,
			bg.Render("Updated", styles.MutedText)+bg.Space()+
				bg.Render(render.FormatTimestamp(m.snapshot.LastSuccess, m.location), styles.Text))
	}

	if m.snapshot.LastError != nil {
		parts = append(parts, m.formatErrorBanner(compact, styles, bg))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
}

// renderConnectingHeader shows the state before the first successful cycle.
func (m Model) renderConnectingHeader(styles Styles, bg BgStyle) string {
	sep := bg.Spaces(2)

	if m.snapshot.LastError != nil {
		parts := []string{
			bg.Render("parkdash", styles.Logo),
			bg.Render("API "+classifyConnectionError(m.snapshot.LastError), styles.DangerText.Bold(true)),
			bg.Render("Retrying...", styles.WarningText.Bold(true)),
		}
		if m.logPath != "" {
			parts = append(parts,
				bg.Render("logs", styles.FaintText)+bg.Space()+
					bg.Render(truncateMiddle(m.logPath, 50), styles.MutedText))
		}
		return styles.Header.Width(m.width).Render(bg.Join(parts, sep))
	}

	return styles.Header.Width(m.width).Render(
		bg.Render("parkdash", styles.Logo) + sep +
			bg.Render("Loading occupancy...", styles.WarningText.Bold(true)),
	)
}

func (m Model) formatErrorBanner(compact bool, styles Styles, bg BgStyle) string {
	label := classifyConnectionError(m.snapshot.LastError)
	if compact {
		return bg.Render(label, styles.DangerText)
	}
	max := m.width / 3
	if max < 20 {
		max = 20
	}
	detail := truncate(m.snapshot.LastError.Error(), max)
	return bg.Render(label, styles.DangerText.Bold(true)) + bg.Space() +
		bg.Render(detail, styles.DangerText)
}

func statusLabel(s parking.Status) string {
	switch s {
	case parking.StatusCritical:
		return "Full"
	case parking.StatusWarning:
		return "Busy"
	case parking.StatusNormal:
		return "Free"
	default:
		return "Stale"
	}
}

// classifyConnectionError returns a short description of the fetch error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "deadline exceeded"), strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	case strings.Contains(msg, "returned status"):
		return "API ERROR"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewLogs:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"d", m.logLevelLabel()},
			{"l", "Cards"},
			{"r", "Refresh"},
			{"?", "More"},
		}
	default:
		ts := "Show time"
		if m.showTimestamp {
			ts = "Hide time"
		}
		commands = []cmd{
			{"r", "Refresh"},
			{"t", ts},
			{"j/k", "Scroll"},
			{"l", "Logs"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	if m.refreshing {
		segments = append(segments, bg.Render("refreshing...", styles.WarningText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, bg.Spaces(2)))
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// truncateMiddle keeps the start and the (longer) end of s.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 5 {
		return string(r[:max])
	}
	endLen := (max - 3) * 2 / 3
	startLen := max - 3 - endLen
	return string(r[:startLen]) + "..." + string(r[len(r)-endLen:])
}
