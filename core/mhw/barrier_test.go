package mhw

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestBarrierElectsOnePerGeneration(t *testing.T) {
	const trainers = 8
	const generations = 50

	b := NewBarrier(trainers)
	elected := make([]int64, generations)

	var wg sync.WaitGroup
	for i := 0; i < trainers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for g := 0; g < generations; g++ {
				if b.Wait() {
					atomic.AddInt64(&elected[g], 1)
				}
			}
		}()
	}
	wg.Wait()

	for g, n := range elected {
		if n != 1 {
			t.Errorf("Expecting 1 elected caller in generation %d, got %d",
				g, n)
		}
	}
}

func TestBarrierSizeOne(t *testing.T) {
	b := NewBarrier(1)
	for i := 0; i < 3; i++ {
		if !b.Wait() {
			t.Errorf("Expecting the only caller to be elected")
		}
	}
}

func TestBarrierPanicsOnBadSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("Expecting panic on non-positive size")
		}
	}()
	NewBarrier(0)
}
