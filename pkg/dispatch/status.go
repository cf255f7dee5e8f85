package dispatch

import (
	"sync"

	"smartmeter/pkg/types"
)

// StatusCache holds the latest decoded telegram and load states for the
// status API. It is an explicitly passed object, not process-wide shared
// state: the dispatch loop writes it, everything else only reads.
type StatusCache struct {
	mu         sync.RWMutex
	latest     *types.Telegram
	loadStates map[string]bool
}

func NewStatusCache() *StatusCache {
	return &StatusCache{}
}

func (s *StatusCache) Update(t *types.Telegram, loadStates map[string]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = t
	s.loadStates = loadStates
}

// Latest returns the newest telegram and load states, or nil before the
// first telegram arrived.
func (s *StatusCache) Latest() (*types.Telegram, map[string]bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.loadStates
}
