package dashboard

import (
	"sync"

	"github.com/verte-zerg/mcdash/internal/model"
)

// Sequencer tags fetches per resource so that only the most recently issued
// fetch of a resource may apply its response.
type Sequencer struct {
	mu     sync.Mutex
	latest map[model.Resource]uint64
}

// NewSequencer returns an empty Sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{latest: map[model.Resource]uint64{}}
}

// Next issues a new sequence number for r, superseding every earlier one.
func (s *Sequencer) Next(r model.Resource) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest[r]++
	return s.latest[r]
}

// Current reports whether seq is still the latest issued for r.
func (s *Sequencer) Current(r model.Resource, seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return seq != 0 && s.latest[r] == seq
}
