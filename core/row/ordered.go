package row

import (
	"fmt"
	"math"
	"sort"
)

// OrderedSparse represents a row using two parallel arrays, Topics and
// Counts, where Counts is kept in descending order.  It represents
// document topic histograms: the sampler's document proposal and the
// document log-likelihood both walk the few heaviest topics first, so
// keeping non-zeros ordered by count pays for the insertion cost.
type OrderedSparse struct {
	Topics []int32
	Counts []int32
}

func NewOrderedSparse() *OrderedSparse {
	return &OrderedSparse{nil, nil}
}

// NewOrderedSparseAndReserve reserves capacity for a known maximum
// number of non-zeros.  For a document topic histogram this maximum is
// min(numTopics, docLength), so reserving avoids re-allocation while
// sampling the document.
func NewOrderedSparseAndReserve(cap int) *OrderedSparse {
	return &OrderedSparse{
		Topics: make([]int32, 0, cap),
		Counts: make([]int32, 0, cap)}
}

// Len makes OrderedSparse compatible with sort.Interface.
func (o *OrderedSparse) Len() int {
	return len(o.Topics)
}

func (o *OrderedSparse) Less(i, j int) bool {
	return o.Counts[i] > o.Counts[j] ||
		(o.Counts[i] == o.Counts[j] &&
			o.Topics[i] < o.Topics[j])
}

func (o *OrderedSparse) Swap(i, j int) {
	o.Topics[i], o.Topics[j] = o.Topics[j], o.Topics[i]
	o.Counts[i], o.Counts[j] = o.Counts[j], o.Counts[i]
}

// Assign clears and recreates an OrderedSparse variable, and makes it
// represent r.
func (o *OrderedSparse) Assign(r Row) *OrderedSparse {
	o.Topics = make([]int32, 0, r.Len())
	o.Counts = make([]int32, 0, r.Len())
	r.ForEach(func(topic int, count int64) error {
		if count != 0 {
			o.Topics = append(o.Topics, int32(topic))
			o.Counts = append(o.Counts, int32(count))
		}
		return nil
	})
	sort.Sort(o)
	return o
}

// String prints an OrderedSparse variable like a slice.
func (o OrderedSparse) String() string {
	out := "[ "
	for i, topic := range o.Topics {
		out += fmt.Sprintf("%d:%d ", topic, o.Counts[i])
	}
	out += "]"
	return out
}

func (o OrderedSparse) At(topic int) int64 {
	for i := range o.Topics {
		if int(o.Topics[i]) == topic {
			return int64(o.Counts[i])
		}
	}
	return 0
}

// Inc increases the count of a topic and restores the descending
// order.  It reallocates Topics and Counts if necessary.
func (o *OrderedSparse) Inc(topic, count int) {
	if topic < 0 {
		panic(fmt.Sprintf("topic (%d) < 0", topic))
	}
	if count <= 0 {
		panic(fmt.Sprintf("count (%d) <= 0", count))
	}
	if count > int(math.MaxInt32) {
		panic(fmt.Sprintf("count (%d) larger than MaxInt32", count))
	}

	t := int32(topic)
	c := int32(count)
	var i int
	for i < len(o.Topics) && o.Topics[i] != t {
		i++
	}
	if i < len(o.Topics) { // found
		if o.Counts[i] >= math.MaxInt32-c {
			panic(fmt.Sprintf("o[%d] = %d overflow", i, o.Counts[i]))
		}
		o.Counts[i] += c
	} else {
		o.Topics = append(o.Topics, t)
		o.Counts = append(o.Counts, c)
	}

	c = o.Counts[i]
	for i > 0 && c > o.Counts[i-1] {
		o.Topics[i], o.Counts[i] = o.Topics[i-1], o.Counts[i-1]
		i--
	}
	o.Topics[i] = t
	o.Counts[i] = c
}

// Dec decreases the count of a topic.  It might reslice Topics and
// Counts to drop a zeroed entry, but it does not reallocate memory.
func (o *OrderedSparse) Dec(topic, count int) {
	if topic < 0 {
		panic(fmt.Sprintf("topic (%d) < 0", topic))
	}
	if count <= 0 {
		panic(fmt.Sprintf("count (%d) <= 0", count))
	}

	t := int32(topic)
	c := int32(count)
	var i int
	for i < len(o.Topics) && o.Topics[i] != t {
		i++
	}
	if i >= len(o.Topics) {
		panic(fmt.Sprintf("topic %d does not exist", t))
	}
	if o.Counts[i] < c {
		panic(fmt.Sprintf("existing count (%d) < delta count (%d)",
			o.Counts[i], c))
	}
	o.Counts[i] -= c

	c = o.Counts[i]
	for i+1 < len(o.Topics) && c < o.Counts[i+1] {
		o.Topics[i], o.Counts[i] = o.Topics[i+1], o.Counts[i+1]
		i++
	}
	o.Topics[i] = t
	o.Counts[i] = c

	if c == 0 {
		o.Topics = o.Topics[:i]
		o.Counts = o.Counts[:i]
	}
}

// ForEach goes over non-zeros in the order of descending count.
func (o *OrderedSparse) ForEach(p func(topic int, count int64) error) error {
	for i := 0; i < len(o.Topics); i++ {
		if e := p(int(o.Topics[i]), int64(o.Counts[i])); e != nil {
			return e
		}
	}
	return nil
}

func (o *OrderedSparse) Clone() Row {
	n := NewOrderedSparse()
	n.Topics = make([]int32, len(o.Topics))
	n.Counts = make([]int32, len(o.Counts))
	copy(n.Topics, o.Topics)
	copy(n.Counts, o.Counts)
	return n
}
