package cachevault

import "sync"

// accountant tracks cumulative stored bytes against the namespace quota.
// The running total is optimistic between recomputes: commit on write,
// release on remove, reset on clear; recompute (backend-driven) is the
// authoritative correction.
type accountant struct {
	mu   sync.Mutex
	used int64
	max  int64
}

func newAccountant(max int64) *accountant {
	return &accountant{max: max}
}

// wouldFit reports whether adding delta bytes stays within quota.
// Admission happens before any persistence side effect: a rejected write
// leaves stored state unchanged.
func (a *accountant) wouldFit(delta int64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used+delta <= a.max
}

func (a *accountant) commit(delta int64) {
	a.mu.Lock()
	a.used += delta
	if a.used < 0 {
		a.used = 0
	}
	a.mu.Unlock()
}

func (a *accountant) release(n int64) {
	a.commit(-n)
}

func (a *accountant) reset() {
	a.mu.Lock()
	a.used = 0
	a.mu.Unlock()
}

func (a *accountant) setUsed(n int64) {
	a.mu.Lock()
	a.used = n
	a.mu.Unlock()
}

func (a *accountant) snapshot() (used, max int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used, a.max
}
