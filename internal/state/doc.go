// Package state owns the parkdash display state.
//
// # Overview
//
// The Store is the single display surface shared by the scheduler (writer)
// and the terminal dashboard and HTTP server (readers). Every poll cycle
// produces a complete set of cards and markup that replaces the previous
// snapshot wholesale; nothing is merged across cycles.
//
//	Scheduler cycle:                 Readers:
//	┌──────────────────┐            ┌──────────────────┐
//	│ seq := Begin()   │            │                  │
//	│ FetchLatest()    │            │                  │
//	│ parking.Build()  │            │                  │
//	│ render.Markup()  │            │                  │
//	│ Commit(seq, ...) │───────────→│ Snapshot()       │
//	│  or Fail(seq)    │  (mutex)   │  draw / serve    │
//	└──────────────────┘            └──────────────────┘
//
// # Last Write Wins
//
// Cycles can overlap when a manual refresh races the timer. Begin hands out a
// monotonically increasing sequence number and Commit or Fail only apply when
// their sequence is the most recently started one. A slow, superseded cycle can
// therefore never overwrite the display with older data.
//
// # Failure Semantics
//
//	// Success: replace cards and markup, clear the error
//	store.Commit(seq, cards, markup, rejected)
//
//	// Failure: keep the last successful cards and markup, record the error
//	store.Fail(seq, err)
//
// Two consecutive failures mark the snapshot offline.
//
// # Copying
//
// Snapshot returns copies of the card slice and error, so readers can hold a
// snapshot while the next cycle commits. The zero Store is ready to use.
package state
