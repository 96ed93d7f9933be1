package parking

import (
	"slices"
	"strings"
	"time"
)

// Status is the visual classification of a station card.
type Status string

const (
	StatusCritical Status = "critical"
	StatusWarning  Status = "warning"
	StatusNormal   Status = "normal"
	StatusStale    Status = "stale"
)

// Statuses lists every classification in display priority order.
func Statuses() []Status {
	return []Status{StatusCritical, StatusWarning, StatusNormal, StatusStale}
}

// Record is one station's occupancy snapshot as delivered by the API.
type Record struct {
	Code      string
	Name      string
	Occupied  int
	Capacity  int
	UpdatedAt string
}

// Card is a record after filtering and classification, ready to render.
type Card struct {
	Record
	Updated    time.Time
	Percentage int
	// Known is false when capacity is not positive and no percentage exists.
	Known  bool
	Status Status
}

// Thresholds configure classification.
type Thresholds struct {
	Critical   int
	Warning    int
	StaleAfter time.Duration
}

// DefaultThresholds are 80% red, 50% orange and gray after 15 minutes.
func DefaultThresholds() Thresholds {
	return Thresholds{Critical: 80, Warning: 50, StaleAfter: 15 * time.Minute}
}

// Percentage returns floor(occupied/capacity*100) computed exactly in
// integers. ok is false for a non-positive capacity.
func Percentage(occupied, capacity int) (pct int, ok bool) {
	if capacity <= 0 {
		return 0, false
	}
	n := int64(occupied) * 100
	d := int64(capacity)
	q := n / d
	if n%d != 0 && n < 0 {
		q--
	}
	return int(q), true
}

// Classify maps an update time and occupancy to a status. Stale wins over any
// percentage, and a record without a usable capacity is stale as well.
func Classify(updated time.Time, occupied, capacity int, now time.Time, th Thresholds) Status {
	if updated.Before(now.Add(-th.StaleAfter)) {
		return StatusStale
	}
	pct, ok := Percentage(occupied, capacity)
	switch {
	case !ok:
		return StatusStale
	case pct >= th.Critical:
		return StatusCritical
	case pct >= th.Warning:
		return StatusWarning
	default:
		return StatusNormal
	}
}

// SortByName orders cards by name using plain byte-wise comparison. The sort
// is stable so equal names keep fetch order.
func SortByName(cards []Card) {
	slices.SortStableFunc(cards, func(a, b Card) int {
		return strings.Compare(a.Name, b.Name)
	})
}
