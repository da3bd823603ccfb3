package ps

import (
	"reflect"
	"sync"
	"testing"

	"github.com/wangkuiyi/file/inmemfs"
	"github.com/wangkuiyi/walklda/core/mhw"
	"github.com/wangkuiyi/walklda/core/row"
)

const (
	testingK = 4
	testingV = 3
)

func TestStoreRowLayout(t *testing.T) {
	s := NewStore(testingK, testingV)
	s.ConfigureRows([]int32{1, 100, 2}, mhw.LoadFactor)

	if _, ok := s.rows[1].r.(row.Dense); !ok {
		t.Errorf("Expecting a dense row for the high-frequency word")
	}
	if _, ok := s.rows[0].r.(row.Sparse); !ok {
		t.Errorf("Expecting a sparse row for the long-tail word")
	}
	// 2*LoadFactor == testingK sits at the threshold and stays sparse.
	if _, ok := s.rows[2].r.(row.Sparse); !ok {
		t.Errorf("Expecting a sparse row at the load factor threshold")
	}
	if _, ok := s.summary.r.(row.Dense); !ok {
		t.Errorf("Expecting a dense summary row")
	}
}

func TestStoreAddAndGet(t *testing.T) {
	s := NewStore(testingK, testingV)
	s.AddToServer(mhw.WordTopicTable, 0, 2, 3)
	s.AddToServer(mhw.WordTopicTable, 0, 2, -1)
	s.AddToServer(mhw.SummaryTable, 0, 1, 5)

	if got := s.GetRow(mhw.WordTopicTable, 0).At(2); got != 2 {
		t.Errorf("Expecting count 2, got %d", got)
	}
	if got := s.GetRow(mhw.SummaryTable, 0).At(1); got != 5 {
		t.Errorf("Expecting count 5, got %d", got)
	}
}

func TestStoreConcurrentDeltas(t *testing.T) {
	const writers = 8
	const deltas = 1000

	s := NewStore(testingK, testingV)
	s.ConfigureRows([]int32{100, 0, 0}, mhw.LoadFactor)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			topic := int32(id % testingK)
			for j := 0; j < deltas; j++ {
				s.AddToServer(mhw.WordTopicTable, 0, topic, 1)
				s.AddToServer(mhw.SummaryTable, 0, topic, 1)
				// Interleave reads with the writes of other goroutines.
				s.GetRow(mhw.WordTopicTable, 0).At(int(topic))
			}
		}(i)
	}
	wg.Wait()

	var wordTotal, summaryTotal int64
	for k := 0; k < testingK; k++ {
		wordTotal += s.GetRow(mhw.WordTopicTable, 0).At(k)
		summaryTotal += s.GetRow(mhw.SummaryTable, 0).At(k)
	}
	if wordTotal != writers*deltas || summaryTotal != writers*deltas {
		t.Errorf("Expecting %d accumulated deltas, got word=%d summary=%d",
			writers*deltas, wordTotal, summaryTotal)
	}
}

func TestStoreRequestTracking(t *testing.T) {
	s := NewStore(testingK, testingV)
	s.RequestRow(mhw.WordTopicTable, 1)
	s.RequestTable(mhw.SummaryTable)

	if !s.isRequested(1) || s.isRequested(0) {
		t.Errorf("Expecting only row 1 to be requested")
	}
	if !s.isSummaryRequested() {
		t.Errorf("Expecting the summary table to be requested")
	}

	s.ResetRequests()
	if s.isRequested(1) || s.isSummaryRequested() {
		t.Errorf("Expecting no requests after a reset")
	}
}

func TestStoreSaveLoad(t *testing.T) {
	inmemfs.Format()

	s := NewStore(testingK, testingV)
	s.ConfigureRows([]int32{0, 100, 0}, mhw.LoadFactor)
	s.AddToServer(mhw.WordTopicTable, 0, 3, 2)
	s.AddToServer(mhw.WordTopicTable, 1, 0, 7)
	s.AddToServer(mhw.SummaryTable, 0, 3, 2)
	s.AddToServer(mhw.SummaryTable, 0, 0, 7)

	name := "inmem:/checkpoint/model"
	if e := s.Save(name); e != nil {
		t.Fatalf("Save: %v", e)
	}
	l, e := Load(name)
	if e != nil {
		t.Fatalf("Load: %v", e)
	}

	if l.numTopics != testingK || len(l.rows) != testingV {
		t.Errorf("Expecting a %dx%d store, got %dx%d",
			testingK, testingV, l.numTopics, len(l.rows))
	}
	for w := int32(0); int(w) < testingV; w++ {
		if !reflect.DeepEqual(s.rows[w].r, l.rows[w].r) {
			t.Errorf("Expecting row %d = %v, got %v",
				w, s.rows[w].r, l.rows[w].r)
		}
	}
	if !reflect.DeepEqual(s.summary.r, l.summary.r) {
		t.Errorf("Expecting summary %v, got %v", s.summary.r, l.summary.r)
	}
}
