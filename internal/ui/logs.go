package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/parkdash/internal/logtail"
)

type logLinesMsg []string

type logErrorMsg struct{ err error }

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logLinesMsg(lines)
	}
}

func (m Model) refreshLogs() tea.Cmd {
	if m.logPath == "" {
		return nil
	}
	return readLogsCmd(m.logPath)
}

func (m Model) logLevelLabel() string {
	if m.logMinLevel <= zerolog.DebugLevel {
		return "Hide debug"
	}
	return "Show debug"
}

// renderLogs colors each kept line by its level.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	if m.logPath == "" {
		return styles.MutedText.Padding(1, 2).Render("Logging to stderr; no log file to show.")
	}
	if m.logErr != nil {
		return styles.DangerText.Padding(1, 2).Render("Cannot read log: " + m.logErr.Error())
	}

	lines := logtail.Filter(m.logLines, m.logMinLevel)
	if len(lines) == 0 {
		return styles.MutedText.Padding(1, 2).Render("No log lines yet: " + m.logPath)
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
		}
		line = truncate(line, max(m.width, 1))
		switch lvl := logtail.Level(line); {
		case lvl == zerolog.NoLevel:
			b.WriteString(styles.Text.Render(line))
		case lvl >= zerolog.ErrorLevel:
			b.WriteString(styles.DangerText.Render(line))
		case lvl == zerolog.WarnLevel:
			b.WriteString(styles.WarningText.Render(line))
		case lvl == zerolog.DebugLevel || lvl == zerolog.TraceLevel:
			b.WriteString(styles.FaintText.Render(line))
		default:
			b.WriteString(styles.Text.Render(line))
		}
	}
	return b.String()
}
