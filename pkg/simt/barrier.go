package simt

import "sync"

// barrier is a reusable rendezvous for the lanes of one subgroup. Lanes that
// finish the kernel leave the barrier so the remaining lanes can still make
// progress, mirroring how hardware masks out inactive lanes.
type barrier struct {
	mu      sync.Mutex
	cond    sync.Cond
	parties int
	arrived int
	gen     uint64
	active  []bool
}

func (b *barrier) init(n int) {
	b.cond.L = &b.mu
	b.parties = n
	b.active = make([]bool, n)
	for i := range b.active {
		b.active[i] = true
	}
}

// wait blocks until every active lane has arrived.
//
// Between two consecutive waits no lane can leave (all active lanes are
// inside the collective), so the active mask may be read without locking
// during that window.
func (b *barrier) wait() {
	b.mu.Lock()
	gen := b.gen
	b.arrived++
	if b.arrived == b.parties {
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
	} else {
		for gen == b.gen {
			b.cond.Wait()
		}
	}
	b.mu.Unlock()
}

// leave removes a retired lane from the rendezvous, releasing the current
// generation if the departing lane was the last one outstanding.
func (b *barrier) leave(lane int) {
	b.mu.Lock()
	b.active[lane] = false
	b.parties--
	if b.parties > 0 && b.arrived == b.parties {
		b.arrived = 0
		b.gen++
		b.cond.Broadcast()
	}
	b.mu.Unlock()
}
