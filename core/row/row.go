// Package row defines the topic-count rows that the trainer reads from
// and writes deltas to.  A row maps topic ids in [0, K) to non-negative
// counts.  The parameter server stores word-topic rows sparse or dense
// depending on the expected number of non-zero topics, and stores the
// global summary row dense; document topic histograms are kept ordered
// by descending count to speed up the sampler's document proposal.
package row

import "sort"

type Row interface {
	At(topic int) int64
	Inc(topic, count int)
	Dec(topic, count int)
	Len() int

	// ForEach accesses non-zero elements one-by-one.  For each element
	// <topic, count>, it calls p(topic, count).  If p returns nil, it
	// goes on to the rest elements; otherwise it stops the traversal
	// and returns the error from p.
	ForEach(p func(topic int, count int64) error) error

	Clone() Row
}

// Cursor iterates the non-zero <topic, count> pairs of a row in
// ascending topic order, regardless of the row's internal layout.  It
// snapshots the set of non-zero topics at creation, so mutating the
// row invalidates the cursor.  Restart rewinds it over the same
// snapshot.
type Cursor struct {
	row    Row
	topics []int32
	pos    int
}

func NewCursor(r Row) *Cursor {
	c := &Cursor{row: r, topics: make([]int32, 0, r.Len())}
	r.ForEach(func(topic int, count int64) error {
		if count != 0 {
			c.topics = append(c.topics, int32(topic))
		}
		return nil
	})
	sort.Slice(c.topics, func(i, j int) bool {
		return c.topics[i] < c.topics[j]
	})
	return c
}

func (c *Cursor) HasNext() bool {
	return c.pos < len(c.topics)
}

func (c *Cursor) Key() int32 {
	return c.topics[c.pos]
}

func (c *Cursor) Value() int64 {
	return c.row.At(int(c.topics[c.pos]))
}

func (c *Cursor) Next() {
	c.pos++
}

func (c *Cursor) Restart() {
	c.pos = 0
}
