package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/parkdash/internal/parking"
	"github.com/five82/parkdash/internal/render"
)

// renderCard draws one station: a colored badge with the percentage and
// occupied / capacity, then the name and optionally the update time.
func (m Model) renderCard(c parking.Card, styles Styles) string {
	inner := CardWidth - 2

	badge := styles.BadgeStyle(c.Status).Width(inner)
	lines := []string{
		badge.Render(render.PercentLabel(c)),
		badge.Bold(false).Render(render.CapacityLabel(c)),
		styles.Text.Bold(true).Width(inner).Render(truncate(c.Name, inner)),
	}
	if m.showTimestamp && !c.Updated.IsZero() {
		lines = append(lines, styles.MutedText.Width(inner).Render(render.FormatTimestamp(c.Updated, m.location)))
	}
	return styles.Card.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderCards flows all cards into rows of as many columns as fit.
func (m Model) renderCards() string {
	styles := m.theme.Styles()
	if len(m.snapshot.Cards) == 0 {
		msg := "No stations reported recently."
		if !m.snapshot.HasData {
			msg = "Waiting for the first update..."
		}
		return styles.MutedText.Padding(1, 2).Render(msg)
	}

	cols := cardColumns(m.width)
	gap := strings.Repeat(" ", CardGap)

	var rows []string
	for start := 0; start < len(m.snapshot.Cards); start += cols {
		end := min(start+cols, len(m.snapshot.Cards))
		cells := make([]string, 0, 2*(end-start))
		for i, c := range m.snapshot.Cards[start:end] {
			if i > 0 {
				cells = append(cells, gap)
			}
			cells = append(cells, m.renderCard(c, styles))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}
