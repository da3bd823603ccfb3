// Package ps is an in-process parameter server.  It owns the
// authoritative word-topic rows and the summary row, lets many trainer
// goroutines read them and apply count deltas concurrently, and tracks
// which rows the current slice declared through the prefetch
// interface.  Replication and network transport are somebody else's
// problem: a distributed deployment would put a real server behind the
// same mhw.Model and mhw.Requester interfaces.
package ps

import (
	"encoding/gob"
	"fmt"
	"log"
	"sync"

	file "github.com/wangkuiyi/file"
	"github.com/wangkuiyi/walklda/core/mhw"
	"github.com/wangkuiyi/walklda/core/row"
)

// lockedRow wraps a row with a read-write lock, so that samplers can
// read counts while other trainers apply deltas to the same word.
type lockedRow struct {
	mu sync.RWMutex
	r  row.Row
}

func (l *lockedRow) At(topic int) int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.r.At(topic)
}

func (l *lockedRow) Inc(topic, count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Inc(topic, count)
}

func (l *lockedRow) Dec(topic, count int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Dec(topic, count)
}

func (l *lockedRow) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.r.Len()
}

func (l *lockedRow) ForEach(p func(topic int, count int64) error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.r.ForEach(p)
}

func (l *lockedRow) Clone() row.Row {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.r.Clone()
}

// Store implements mhw.Model and mhw.Requester over in-memory rows.
type Store struct {
	numTopics int
	rows      []*lockedRow
	summary   *lockedRow

	// strict makes GetRow fail loudly on rows that were not declared
	// through RequestRow/RequestTable since the last ResetRequests.
	// It catches ParamLoader bugs in tests and small runs.
	strict           bool
	requestMu        sync.Mutex
	requested        map[int32]bool
	summaryRequested bool
}

func NewStore(numTopics, numVocabs int) *Store {
	s := &Store{
		numTopics: numTopics,
		rows:      make([]*lockedRow, numVocabs),
		summary:   &lockedRow{r: row.NewDense(numTopics)},
		requested: make(map[int32]bool),
	}
	for w := range s.rows {
		s.rows[w] = &lockedRow{r: row.NewSparse()}
	}
	return s
}

// ConfigureRows chooses each word's storage layout from its term
// frequency: words whose rows are expected to be mostly non-zero get
// dense rows, the rest stay sparse.
func (s *Store) ConfigureRows(tf []int32, loadFactor int) {
	for w, freq := range tf {
		if int(freq)*loadFactor > s.numTopics {
			s.rows[w] = &lockedRow{r: row.NewDense(s.numTopics)}
		}
	}
}

func (s *Store) SetStrict(strict bool) {
	s.strict = strict
}

func (s *Store) GetRow(table, key int32) row.Row {
	switch table {
	case mhw.WordTopicTable:
		if s.strict && !s.isRequested(key) {
			log.Fatalf("Row %d of the word-topic table was not requested "+
				"for the current slice", key)
		}
		return s.rows[key]
	case mhw.SummaryTable:
		if s.strict && !s.isSummaryRequested() {
			log.Fatalf("The summary table was not requested")
		}
		return s.summary
	}
	log.Fatalf("GetRow: unknown table %d", table)
	return nil
}

func (s *Store) AddToServer(table, key, field int32, delta int64) {
	r := s.GetRow(table, key)
	if delta > 0 {
		r.Inc(int(field), int(delta))
	} else if delta < 0 {
		r.Dec(int(field), int(-delta))
	}
}

func (s *Store) RequestRow(table, key int32) {
	if table != mhw.WordTopicTable {
		log.Fatalf("RequestRow: unknown table %d", table)
	}
	s.requestMu.Lock()
	defer s.requestMu.Unlock()
	s.requested[key] = true
}

func (s *Store) RequestTable(table int32) {
	if table != mhw.SummaryTable {
		log.Fatalf("RequestTable: unknown table %d", table)
	}
	s.requestMu.Lock()
	defer s.requestMu.Unlock()
	s.summaryRequested = true
}

// ResetRequests forgets the previous slice's declarations.  The next
// ParamLoader pass re-declares what the coming slice needs.
func (s *Store) ResetRequests() {
	s.requestMu.Lock()
	defer s.requestMu.Unlock()
	s.requested = make(map[int32]bool)
	s.summaryRequested = false
}

func (s *Store) isRequested(key int32) bool {
	s.requestMu.Lock()
	defer s.requestMu.Unlock()
	return s.requested[key]
}

func (s *Store) isSummaryRequested() bool {
	s.requestMu.Lock()
	defer s.requestMu.Unlock()
	return s.summaryRequested
}

// storeState is the gob image of a Store.
type storeState struct {
	NumTopics int
	Summary   row.Dense
	Rows      []row.Row
}

// Save checkpoints the store.  It must not run concurrently with
// training.
func (s *Store) Save(filename string) error {
	f, e := file.Create(filename)
	if e != nil {
		return fmt.Errorf("Cannot create %s: %v", filename, e)
	}
	defer f.Close()

	state := storeState{
		NumTopics: s.numTopics,
		Summary:   s.summary.r.(row.Dense),
		Rows:      make([]row.Row, len(s.rows)),
	}
	for w := range s.rows {
		state.Rows[w] = s.rows[w].r
	}
	if e := gob.NewEncoder(f).Encode(state); e != nil {
		return fmt.Errorf("Failed encoding to %s: %v", filename, e)
	}
	return nil
}

// Load restores a checkpointed store.
func Load(filename string) (*Store, error) {
	f, e := file.Open(filename)
	if e != nil {
		return nil, fmt.Errorf("Cannot open %s: %v", filename, e)
	}
	defer f.Close()

	var state storeState
	if e := gob.NewDecoder(f).Decode(&state); e != nil {
		return nil, fmt.Errorf("Failed decoding %s: %v", filename, e)
	}

	s := NewStore(state.NumTopics, len(state.Rows))
	s.summary = &lockedRow{r: state.Summary}
	for w, r := range state.Rows {
		if r != nil {
			s.rows[w] = &lockedRow{r: r}
		}
	}
	return s, nil
}
