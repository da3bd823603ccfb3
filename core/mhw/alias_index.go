package mhw

// AliasIndex partitions the alias arena of one vocabulary slice into
// per-word regions.  It is precomputed once per slice by Meta, before
// any alias table is built.  Regions of different words never overlap,
// and a region is written by exactly one trainer during a build phase,
// so arena writes need no locking.
type AliasIndex struct {
	offsets    []int64 // per word; -1 when the word is not in the slice
	capacities []int32
	dense      []bool
	total      int64
}

func NewAliasIndex(numVocabs int) *AliasIndex {
	idx := &AliasIndex{
		offsets:    make([]int64, numVocabs),
		capacities: make([]int32, numVocabs),
		dense:      make([]bool, numVocabs),
	}
	for i := range idx.offsets {
		idx.offsets[i] = -1
	}
	return idx
}

// Append reserves capacity slots for a word at the end of the arena.
func (idx *AliasIndex) Append(word int32, capacity int, dense bool) {
	idx.offsets[word] = idx.total
	idx.capacities[word] = int32(capacity)
	idx.dense[word] = dense
	idx.total += int64(capacity)
}

// Region returns the arena offset and capacity of a word, and whether
// the word's proposal is stored dense.  ok is false when the word does
// not belong to the indexed slice.
func (idx *AliasIndex) Region(word int32) (offset int64, capacity int32,
	dense bool, ok bool) {

	offset = idx.offsets[word]
	if offset < 0 {
		return 0, 0, false, false
	}
	return offset, idx.capacities[word], idx.dense[word], true
}

// Total is the arena size, in slots, the indexed slice requires.
func (idx *AliasIndex) Total() int64 {
	return idx.total
}
