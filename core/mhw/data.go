package mhw

import (
	"sort"

	"github.com/wangkuiyi/walklda/core/row"
)

// Document is an ordered sequence of (word, topic) tokens.  Words are
// sorted in ascending order and immutable once loaded, so the tokens
// covered by a vocabulary slice form one contiguous run; topics mutate
// in place during sampling.  TopicHist mirrors Topics and is the
// document-local histogram the doc proposal and the acceptance ratio
// read.
type Document struct {
	Words     []int32
	Topics    []int32
	TopicHist *row.OrderedSparse
}

func (d *Document) Size() int {
	return len(d.Words)
}

func (d *Document) Word(idx int) int32 {
	return d.Words[idx]
}

func (d *Document) Topic(idx int) int32 {
	return d.Topics[idx]
}

func (d *Document) SetTopic(idx int, topic int32) {
	d.TopicHist.Dec(int(d.Topics[idx]), 1)
	d.TopicHist.Inc(int(topic), 1)
	d.Topics[idx] = topic
}

// GetDocTopicVector fills out with the document's topic counts.
func (d *Document) GetDocTopicVector(out row.Sparse) {
	out.Clear()
	d.TopicHist.ForEach(func(topic int, count int64) error {
		out[int32(topic)] = int32(count)
		return nil
	})
}

// NewDocument creates a document from word ids and initial topics.
// It sorts tokens by word id and builds the topic histogram.
func NewDocument(words, topics []int32) *Document {
	d := &Document{
		Words:     words,
		Topics:    topics,
		TopicHist: row.NewOrderedSparseAndReserve(len(words)),
	}
	sort.Sort(byWord{d})
	for _, t := range d.Topics {
		d.TopicHist.Inc(int(t), 1)
	}
	return d
}

type byWord struct{ d *Document }

func (b byWord) Len() int { return len(b.d.Words) }
func (b byWord) Less(i, j int) bool {
	return b.d.Words[i] < b.d.Words[j]
}
func (b byWord) Swap(i, j int) {
	b.d.Words[i], b.d.Words[j] = b.d.Words[j], b.d.Words[i]
	b.d.Topics[i], b.d.Topics[j] = b.d.Topics[j], b.d.Topics[i]
}

// sliceRange returns the half-open token index range [lo, hi) whose
// words fall in [first, last].  It relies on Words being sorted.
func (d *Document) sliceRange(first, last int32) (int, int) {
	lo := sort.Search(len(d.Words), func(i int) bool {
		return d.Words[i] >= first
	})
	hi := sort.Search(len(d.Words), func(i int) bool {
		return d.Words[i] > last
	})
	return lo, hi
}

// DataBlock is an in-memory batch of documents, trained together and
// subdivided into vocabulary slices described by its LocalVocab.
type DataBlock struct {
	docs []*Document
	meta *LocalVocab
}

func NewDataBlock(docs []*Document) *DataBlock {
	return &DataBlock{docs: docs}
}

func (b *DataBlock) Size() int {
	return len(b.docs)
}

func (b *DataBlock) GetOneDoc(i int) *Document {
	return b.docs[i]
}

func (b *DataBlock) Meta() *LocalVocab {
	return b.meta
}

func (b *DataBlock) SetMeta(v *LocalVocab) {
	b.meta = v
}

// IterationBlock binds a data block to its position in the training
// schedule.  Trainers receive it by value of meaning, not through a
// downcast: all fields the phases need are right here.
type IterationBlock struct {
	Data      *DataBlock
	Iteration int
	Block     int
	Slice     int
}
