package sequence

import "sync"

// frameSlot is the coalescing handshake for frame loads: a single-value
// overwrite cell fused with the in-flight token. Fusing them matters; if the
// cell and the token were separate, a request could land in the cell after the
// holder's last drain but before the token release, and nobody would load it.
type frameSlot struct {
	mu      sync.Mutex
	idx     int
	full    bool
	loading bool
}

// Begin claims the in-flight token, returning true when the caller should load
// idx itself. When a load is already in flight the request is stored instead,
// overwriting any held value so only the most recent request survives.
func (s *frameSlot) Begin(idx int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		s.idx = idx
		s.full = true
		return false
	}
	s.loading = true
	return true
}

// Finish either hands the token holder the next coalesced request, keeping the
// token held, or releases the token when no request is waiting. The second
// return is false once released.
func (s *frameSlot) Finish() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		s.full = false
		return s.idx, true
	}
	s.loading = false
	return 0, false
}

// Abort releases the token without draining. A coalesced request stays in the
// cell for the next Begin caller to claim.
func (s *frameSlot) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
}
