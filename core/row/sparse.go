package row

import (
	"encoding/gob"
	"fmt"
	"math"
)

// Sparse represents a row using a Go map.  Word-topic rows of long-tail
// words are sparse: most words concentrate their occurrences in a few
// topics, so the map holds far fewer than K entries.
type Sparse map[int32]int32

func init() {
	gob.Register(Sparse{})
}

func NewSparse() Sparse {
	return make(Sparse)
}

func (s Sparse) Clear() {
	for k := range s {
		delete(s, k)
	}
}

// Add merges another sparse row into s.  It is used by the parameter
// server to fold a batch of deltas into the authoritative row.
func (s Sparse) Add(o Sparse) {
	for k, v := range o {
		s[k] += v
		if s[k] == 0 {
			delete(s, k)
		}
	}
}

func (s Sparse) Equal(o Sparse) bool {
	if len(s) != len(o) {
		return false
	}
	for k, v := range s {
		if v2, ok := o[k]; !ok || v2 != v {
			return false
		}
	}
	return true
}

func (s Sparse) Len() int {
	return len(s)
}

func (s Sparse) At(topic int) int64 {
	return int64(s[int32(topic)])
}

func (s Sparse) Inc(topic, count int) {
	if count <= 0 {
		panic(fmt.Sprintf("Inc(topic=%d, count=%d): count must > 0",
			topic, count))
	}
	if count > int(math.MaxInt32) {
		panic(fmt.Sprintf("count (%d) larger than MaxInt32", count))
	}
	t := int32(topic)
	if s[t] >= math.MaxInt32-int32(count) {
		panic(fmt.Sprintf("s[%d] = %d overflow", topic, s[t]))
	}
	s[t] += int32(count)
}

func (s Sparse) Dec(topic, count int) {
	if count <= 0 {
		panic(fmt.Sprintf("Dec(topic=%d, count=%d): count must > 0",
			topic, count))
	}
	t := int32(topic)
	if s[t] < int32(count) {
		panic(fmt.Sprintf("s[%d] = %d would go negative by %d",
			topic, s[t], count))
	}
	s[t] -= int32(count)
	if s[t] == 0 {
		delete(s, t)
	}
}

func (s Sparse) ForEach(p func(topic int, count int64) error) error {
	for i, v := range s {
		if e := p(int(i), int64(v)); e != nil {
			return e
		}
	}
	return nil
}

func (s Sparse) Clone() Row {
	n := NewSparse()
	for k, v := range s {
		n[k] = v
	}
	return n
}
