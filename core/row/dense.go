package row

import (
	"encoding/gob"
	"fmt"
	"math"
)

// Dense is a plain row represented by a count array.  The global
// summary row is always dense, and word-topic rows of high-frequency
// words are dense as well.  Counts are int64 because the summary row
// accumulates the token count of the whole corpus.
type Dense []int64

func init() {
	gob.Register(Dense{})
}

func NewDense(dim int) Dense {
	return make(Dense, dim)
}

func (d Dense) At(topic int) int64 {
	return d[topic]
}

func (d Dense) Inc(topic, count int) {
	if count < 0 {
		panic(fmt.Sprintf("count (%d) is negative", count))
	}
	if d[topic] >= math.MaxInt64-int64(count) {
		panic(fmt.Sprintf("d[%d] = %d overflow", topic, d[topic]))
	}
	d[topic] += int64(count)
}

func (d Dense) Dec(topic, count int) {
	if count < 0 {
		panic(fmt.Sprintf("count (%d) is negative", count))
	}
	if d[topic] < int64(count) {
		panic(fmt.Sprintf("d[%d] = %d would go negative by %d",
			topic, d[topic], count))
	}
	d[topic] -= int64(count)
}

func (d Dense) Len() int {
	return len(d)
}

func (d Dense) ForEach(p func(topic int, count int64) error) error {
	for i, v := range d {
		if e := p(i, v); e != nil {
			return e
		}
	}
	return nil
}

func (d Dense) Clone() Row {
	n := NewDense(d.Len())
	copy(n, d)
	return n
}
