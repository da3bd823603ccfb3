package mhw

import "github.com/wangkuiyi/walklda/core/row"

// Table ids of the parameter server.
const (
	// WordTopicTable holds one row per word: the topic-count vector
	// of that word, sparse or dense by expected non-zero density.
	WordTopicTable int32 = iota
	// SummaryTable holds a single dense row (key 0) of per-topic
	// total token counts across the whole vocabulary.
	SummaryTable
)

// Model is the trainer's view of the parameter server.  The server
// owns the authoritative rows; the core reads them and writes deltas,
// never replacing a row wholesale.  Implementations must allow
// concurrent readers and delta writers.
type Model interface {
	GetRow(table, key int32) row.Row
	AddToServer(table, key, field int32, delta int64)
}

// Requester is the parameter server's prefetch interface.  A
// ParamLoader declares the rows a slice is about to touch, so the
// server can make them resident before trainers hit them.
type Requester interface {
	RequestRow(table, key int32)
	RequestTable(table int32)
}

// ParamLoader declares to the parameter server which rows a slice
// needs before the training of that slice starts.
type ParamLoader struct {
	req Requester
}

func NewParamLoader(req Requester) *ParamLoader {
	return &ParamLoader{req: req}
}

func (l *ParamLoader) ParseAndRequest(b *IterationBlock) {
	words := b.Data.Meta().Words(b.Slice)
	for _, w := range words {
		l.req.RequestRow(WordTopicTable, w)
	}
	l.req.RequestTable(SummaryTable)
}
