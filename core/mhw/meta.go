package mhw

import (
	"fmt"
	"log"
)

// LocalVocab lists the distinct words of one data block in ascending
// order and partitions them into slices, so that only one slice's
// word-topic rows and alias tables must be resident at a time.
type LocalVocab struct {
	words  []int32
	bounds []int // len(bounds) == NumSlice()+1, offsets into words
}

func (v *LocalVocab) NumSlice() int {
	return len(v.bounds) - 1
}

// Words returns the ascending word ids of a slice.
func (v *LocalVocab) Words(slice int) []int32 {
	return v.words[v.bounds[slice]:v.bounds[slice+1]]
}

func (v *LocalVocab) FirstWord(slice int) int32 {
	return v.words[v.bounds[slice]]
}

func (v *LocalVocab) LastWord(slice int) int32 {
	return v.words[v.bounds[slice+1]-1]
}

// Meta holds training-wide metadata derived from the corpus before the
// first iteration: global term frequencies, the per-block local
// vocabularies, and the per-(block, slice) alias arena indices.
type Meta struct {
	cfg     *Config
	tf      []int32
	vocabs  []*LocalVocab
	indices [][]*AliasIndex
}

func NewMeta(cfg *Config) *Meta {
	return &Meta{
		cfg: cfg,
		tf:  make([]int32, cfg.NumVocabs),
	}
}

func (m *Meta) Tf(word int32) int32 {
	return m.tf[word]
}

// TfAll exposes the full term frequency vector, indexed by word id.
// Callers must not modify it.
func (m *Meta) TfAll() []int32 {
	return m.tf
}

func (m *Meta) LocalVocab(block int) *LocalVocab {
	return m.vocabs[block]
}

func (m *Meta) AliasIndex(block, slice int) *AliasIndex {
	return m.indices[block][slice]
}

// Init scans all blocks, counts term frequencies, partitions each
// block's vocabulary into numSlice slices of near-equal word count,
// and precomputes the alias arena index of every slice.
func (m *Meta) Init(blocks []*DataBlock, numSlice int) {
	if numSlice <= 0 {
		numSlice = 1
	}
	for _, b := range blocks {
		for i := 0; i < b.Size(); i++ {
			d := b.GetOneDoc(i)
			for _, w := range d.Words {
				m.tf[w]++
			}
		}
	}

	m.vocabs = make([]*LocalVocab, len(blocks))
	m.indices = make([][]*AliasIndex, len(blocks))
	for bi, b := range blocks {
		v := m.buildLocalVocab(b, numSlice)
		m.vocabs[bi] = v
		b.SetMeta(v)

		m.indices[bi] = make([]*AliasIndex, v.NumSlice())
		for s := 0; s < v.NumSlice(); s++ {
			m.indices[bi][s] = m.buildAliasIndex(v.Words(s))
		}
		log.Printf("block %d/%d: %d words, %d slices",
			bi+1, len(blocks), len(v.words), v.NumSlice())
	}
}

// buildLocalVocab collects the distinct words of a block, in ascending
// order, and cuts them into near-equal slices: the first (len mod n)
// slices get one extra word.
func (m *Meta) buildLocalVocab(b *DataBlock, numSlice int) *LocalVocab {
	seen := make([]bool, m.cfg.NumVocabs)
	for i := 0; i < b.Size(); i++ {
		for _, w := range b.GetOneDoc(i).Words {
			seen[w] = true
		}
	}
	words := make([]int32, 0)
	for w, ok := range seen {
		if ok {
			words = append(words, int32(w))
		}
	}
	if len(words) == 0 {
		panic(fmt.Sprintf("data block has no word"))
	}

	if numSlice > len(words) {
		numSlice = len(words)
	}
	bounds := make([]int, numSlice+1)
	size := len(words) / numSlice
	extra := len(words) % numSlice
	for s := 0; s < numSlice; s++ {
		bounds[s+1] = bounds[s] + size
		if s < extra {
			bounds[s+1]++
		}
	}
	return &LocalVocab{words: words, bounds: bounds}
}

func (m *Meta) buildAliasIndex(words []int32) *AliasIndex {
	idx := NewAliasIndex(m.cfg.NumVocabs)
	for _, w := range words {
		capacity := int(m.tf[w])
		dense := capacity*LoadFactor > m.cfg.NumTopics
		if dense || capacity > m.cfg.NumTopics {
			capacity = m.cfg.NumTopics
		}
		idx.Append(w, capacity, dense)
	}
	return idx
}
