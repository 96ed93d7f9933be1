// Package parking turns raw station records into classified dashboard cards.
//
// Build is the whole per-cycle pipeline: parse each record's update time,
// drop records that cannot be parsed or are older than the freshness horizon,
// classify the rest and sort them by name. It is pure; callers pass the clock.
//
// Classification:
//
//	updated before now-StaleAfter  -> stale
//	capacity <= 0                  -> stale (percentage unknown)
//	floor(occupied/capacity*100) >= Critical -> critical
//	                             >= Warning  -> warning
//	otherwise                                -> normal
package parking
