package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/parkdash/internal/parking"
)

// Snapshot represents the latest rendered cycle available to display surfaces.
type Snapshot struct {
	Cards               []parking.Card
	Markup              string
	HasData             bool
	Cycle               uint64 // sequence of the cycle that produced Cards
	LastUpdated         time.Time
	LastSuccess         time.Time
	LastError           error
	ConsecutiveFailures int
	Rejected            int // records excluded in the last successful cycle
}

// IsOffline returns true when the API has been unreachable for multiple polls.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store owns the display state. Cycles register with Begin and only the most
// recently started cycle may replace the snapshot.
type Store struct {
	mu       sync.RWMutex
	started  uint64
	snapshot Snapshot
}

// Begin registers a new cycle and returns its sequence number.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
	return s.started
}

// Commit replaces the snapshot wholesale with the result of cycle seq. It
// reports false and changes nothing when a newer cycle has started since.
func (s *Store) Commit(seq uint64, cards []parking.Card, markup string, rejected int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.started {
		return false
	}
	now := time.Now()
	s.snapshot = Snapshot{
		Cards:       cloneCards(cards),
		Markup:      markup,
		HasData:     true,
		Cycle:       seq,
		LastUpdated: now,
		LastSuccess: now,
		Rejected:    rejected,
	}
	return true
}

// Fail records a failed cycle. The previous cards and markup are kept so the
// last successful render stays visible.
func (s *Store) Fail(seq uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.started {
		return false
	}
	s.snapshot.LastError = err
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures++
	return true
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Cards = cloneCards(s.snapshot.Cards)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneCards(cards []parking.Card) []parking.Card {
	if len(cards) == 0 {
		return nil
	}
	dup := make([]parking.Card, len(cards))
	copy(dup, cards)
	return dup
}
