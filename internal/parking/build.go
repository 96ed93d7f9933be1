package parking

import (
	"time"
)

// RejectReason explains why a record was left off the dashboard.
type RejectReason string

const (
	RejectUnparseable RejectReason = "unparseable timestamp"
	RejectExpired     RejectReason = "older than freshness horizon"
)

// Rejected is a record excluded from a cycle.
type Rejected struct {
	Record Record
	Reason RejectReason
	Err    error
}

// Options control a Build pass.
type Options struct {
	Thresholds Thresholds
	// FreshnessMonths is the horizon in calendar months; zero means one.
	FreshnessMonths int
	// Location reads timestamps that carry no offset; nil means time.Local.
	Location *time.Location
}

// FreshnessCutoff returns the oldest update time still shown.
func FreshnessCutoff(now time.Time, months int) time.Time {
	if months <= 0 {
		months = 1
	}
	return now.AddDate(0, -months, 0)
}

// Fresh is a record whose timestamp parsed and lies inside the horizon.
type Fresh struct {
	Record
	Updated time.Time
}

// FilterFresh keeps records updated within the freshness horizon, in input
// order. Records with an unparseable timestamp or one older than the horizon
// are returned as rejected.
func FilterFresh(records []Record, now time.Time, opts Options) ([]Fresh, []Rejected) {
	cutoff := FreshnessCutoff(now, opts.FreshnessMonths)

	fresh := make([]Fresh, 0, len(records))
	var rejected []Rejected
	for _, rec := range records {
		updated, err := ParseTimestamp(rec.UpdatedAt, opts.Location)
		if err != nil {
			rejected = append(rejected, Rejected{Record: rec, Reason: RejectUnparseable, Err: err})
			continue
		}
		if updated.Before(cutoff) {
			rejected = append(rejected, Rejected{Record: rec, Reason: RejectExpired})
			continue
		}
		fresh = append(fresh, Fresh{Record: rec, Updated: updated})
	}
	return fresh, rejected
}

// Build filters, classifies and sorts one fetch worth of records. Rejected
// records never fail the cycle.
func Build(records []Record, now time.Time, opts Options) ([]Card, []Rejected) {
	fresh, rejected := FilterFresh(records, now, opts)

	cards := make([]Card, 0, len(fresh))
	for _, f := range fresh {
		pct, known := Percentage(f.Occupied, f.Capacity)
		cards = append(cards, Card{
			Record:     f.Record,
			Updated:    f.Updated,
			Percentage: pct,
			Known:      known,
			Status:     Classify(f.Updated, f.Occupied, f.Capacity, now, opts.Thresholds),
		})
	}
	SortByName(cards)
	return cards, rejected
}

// Counts tallies cards per status.
func Counts(cards []Card) map[Status]int {
	counts := make(map[Status]int, 4)
	for _, s := range Statuses() {
		counts[s] = 0
	}
	for _, c := range cards {
		counts[c.Status]++
	}
	return counts
}
