package mhw

import (
	"fmt"
	"sync"
)

// Barrier is a reusable rendezvous for a fixed number of goroutines.
// Wait blocks until all of them arrive, then releases them together.
// Exactly one caller per rendezvous, the last arrival, gets true back;
// the trainers use that bool to elect a reporter for one-off work such
// as logging an aggregate and resetting it.
type Barrier struct {
	mu    sync.Mutex
	cond  *sync.Cond
	size  int
	count int
	gen   int
}

func NewBarrier(size int) *Barrier {
	if size <= 0 {
		panic(fmt.Sprintf("barrier size (%d) must be positive", size))
	}
	b := &Barrier{size: size}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Wait blocks the caller until size goroutines have called Wait in the
// current generation.  It returns true in the goroutine that arrived
// last and false in all others.
func (b *Barrier) Wait() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	gen := b.gen
	b.count++
	if b.count == b.size {
		b.count = 0
		b.gen++
		b.cond.Broadcast()
		return true
	}
	for gen == b.gen {
		b.cond.Wait()
	}
	return false
}
