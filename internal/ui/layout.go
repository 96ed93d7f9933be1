package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header abbreviates.
	LayoutCompactWidth = 100

	// CardWidth is the outer width of one station card, border included.
	CardWidth = 30

	// CardGap is the blank space between card columns.
	CardGap = 1
)

// Log display limits.
const (
	// LogTailLines is the number of log lines read for the log view.
	LogTailLines = 500
)

// DefaultUIInterval is how often the model re-reads the store.
const DefaultUIInterval = time.Second

// cardColumns returns how many cards fit side by side in width.
func cardColumns(width int) int {
	if width <= CardWidth {
		return 1
	}
	return (width + CardGap) / (CardWidth + CardGap)
}
