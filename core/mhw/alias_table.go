package mhw

import (
	"fmt"
	"math/rand"

	"github.com/wangkuiyi/walklda/core/row"
)

// BetaWord is the sentinel word id that makes AliasTable.Build
// construct the shared beta-smoothing table instead of a word table.
const BetaWord int32 = -1

// aliasSlot is one entry of an alias table: a uniform draw picks a
// slot, a biased coin at Height picks between the slot's own Topic and
// its Alias.
type aliasSlot struct {
	Topic  int32
	Alias  int32
	Height float32
}

// BuildScratch holds the buffers one alias builder reuses across Build
// calls: the per-topic masses and the low/high worklists of the Vose
// construction.  Each trainer owns one scratch and passes it
// explicitly; scratches are never shared between goroutines.
type BuildScratch struct {
	topics []int32
	mass   []float64
	low    []int32
	high   []int32
}

func NewBuildScratch() *BuildScratch {
	return &BuildScratch{}
}

func (s *BuildScratch) grow(n int) {
	if cap(s.topics) < n {
		s.topics = make([]int32, 0, n)
		s.mass = make([]float64, 0, n)
		s.low = make([]int32, 0, n)
		s.high = make([]int32, 0, n)
	}
	s.topics = s.topics[:0]
	s.mass = s.mass[:0]
}

// Release drops the buffers.  A later Build re-allocates them, so a
// released scratch stays usable across Init/Build/Clear cycles.
func (s *BuildScratch) Release() {
	s.topics, s.mass, s.low, s.high = nil, nil, nil, nil
}

// AliasTable stores, for every word of the current vocabulary slice, a
// ready-to-sample alias table over the word proposal distribution
// q_w(k) ∝ n_wk + β.  Storage is hybrid: high-frequency words hold a
// K-slot table with β folded into every topic's mass; long-tail words
// hold a table over their non-zero topics only and mix with the shared
// beta table at proposal time.  A third table over the K topics serves
// the asymmetric-alpha prior when enabled.
//
// The arena and the tables are written during the strictly ordered
// build phase and are read-only afterwards, so Propose is safe to call
// concurrently from many trainers.
type AliasTable struct {
	cfg   *Config
	index *AliasIndex
	arena []aliasSlot

	sizes  []int32   // per word: number of built slots
	masses []float64 // per word: count mass of a sparse table

	beta     []aliasSlot
	betaMass float64

	alphas      []float64
	alphaSlots  []aliasSlot
	asyAlphaSum float64
}

func NewAliasTable(cfg *Config) *AliasTable {
	return &AliasTable{
		cfg:    cfg,
		sizes:  make([]int32, cfg.NumVocabs),
		masses: make([]float64, cfg.NumVocabs),
	}
}

// Init binds the index of a new slice and allocates its arena.  It
// must be called by exactly one trainer, before any Build for the
// slice, with no Build or Propose running concurrently.
func (a *AliasTable) Init(index *AliasIndex) {
	a.index = index
	if int64(cap(a.arena)) >= index.Total() {
		a.arena = a.arena[:index.Total()]
	} else {
		a.arena = make([]aliasSlot, index.Total())
	}
}

// Build constructs the alias table of one word, reading the word's
// topic-count row from the model.  With word == BetaWord it builds the
// shared beta table instead.  It fails only when the word has more
// non-zero topics than its arena region can hold, which means the
// index disagrees with the model — a fatal configuration error the
// caller must not tolerate.
func (a *AliasTable) Build(word int32, m Model, scratch *BuildScratch) error {
	K := a.cfg.NumTopics
	if word == BetaWord {
		scratch.grow(K)
		for k := 0; k < K; k++ {
			scratch.topics = append(scratch.topics, int32(k))
			scratch.mass = append(scratch.mass, a.cfg.Beta)
		}
		if cap(a.beta) < K {
			a.beta = make([]aliasSlot, K)
		}
		a.beta = a.beta[:K]
		a.betaMass = a.cfg.Beta * float64(K)
		buildAlias(a.beta, scratch)
		return nil
	}

	offset, capacity, dense, ok := a.index.Region(word)
	if !ok {
		return fmt.Errorf("word %d is not in the current slice", word)
	}

	r := m.GetRow(WordTopicTable, word)
	scratch.grow(K)
	if dense {
		for k := 0; k < K; k++ {
			scratch.topics = append(scratch.topics, int32(k))
			scratch.mass = append(scratch.mass,
				float64(r.At(k))+a.cfg.Beta)
		}
	} else {
		cursor := row.NewCursor(r)
		for cursor.HasNext() {
			scratch.topics = append(scratch.topics, cursor.Key())
			scratch.mass = append(scratch.mass, float64(cursor.Value()))
			cursor.Next()
		}
	}

	n := len(scratch.topics)
	if n > int(capacity) {
		return fmt.Errorf(
			"word %d has %d non-zero topics but an arena region of %d slots",
			word, n, capacity)
	}

	var mass float64
	for _, q := range scratch.mass {
		mass += q
	}
	buildAlias(a.arena[offset:offset+int64(n)], scratch)
	a.sizes[word] = int32(n)
	a.masses[word] = mass
	return nil
}

// buildAlias runs Vose's alias-method construction over
// scratch.topics/scratch.mass into out.  Masses are normalized by
// their mean; entries below the mean pair with entries above it, each
// pairing fixing one slot's height and alias and decrementing the high
// entry's remaining mass by the deficit.  Leftovers, including the
// all-zero case, get the trivial height-1 self-alias slot.
func buildAlias(out []aliasSlot, scratch *BuildScratch) {
	n := len(scratch.topics)
	if n == 0 {
		return
	}

	var sum float64
	for _, q := range scratch.mass {
		sum += q
	}
	if sum <= 0 {
		for i := range out {
			out[i] = aliasSlot{scratch.topics[i], scratch.topics[i], 1}
		}
		return
	}

	norm := scratch.mass
	for i := range norm {
		norm[i] = norm[i] * float64(n) / sum
	}

	low := scratch.low[:0]
	high := scratch.high[:0]
	for i := 0; i < n; i++ {
		if norm[i] < 1 {
			low = append(low, int32(i))
		} else {
			high = append(high, int32(i))
		}
	}

	for len(low) > 0 && len(high) > 0 {
		l := low[len(low)-1]
		low = low[:len(low)-1]
		h := high[len(high)-1]
		high = high[:len(high)-1]

		out[l] = aliasSlot{
			Topic:  scratch.topics[l],
			Alias:  scratch.topics[h],
			Height: float32(norm[l]),
		}
		norm[h] -= 1 - norm[l]
		if norm[h] < 1 {
			low = append(low, h)
		} else {
			high = append(high, h)
		}
	}
	for _, i := range high {
		out[i] = aliasSlot{scratch.topics[i], scratch.topics[i], 1}
	}
	for _, i := range low {
		out[i] = aliasSlot{scratch.topics[i], scratch.topics[i], 1}
	}

	scratch.low = low[:0]
	scratch.high = high[:0]
}

func sampleAlias(slots []aliasSlot, rng *rand.Rand) int32 {
	s := slots[rng.Intn(len(slots))]
	if rng.Float32() < s.Height {
		return s.Topic
	}
	return s.Alias
}

// Propose draws one topic from the word proposal distribution
// q_w(k) ∝ n_wk + β in O(1).  The table must have been built for the
// current slice; concurrent Propose calls are safe once the build
// phase is over.
func (a *AliasTable) Propose(word int32, rng *rand.Rand) int32 {
	offset, _, dense, ok := a.index.Region(word)
	if !ok {
		panic(fmt.Sprintf("Propose(%d): word not in the current slice", word))
	}
	n := int64(a.sizes[word])
	if dense {
		return sampleAlias(a.arena[offset:offset+n], rng)
	}
	mass := a.masses[word]
	if r := rng.Float64() * (mass + a.betaMass); r < mass {
		return sampleAlias(a.arena[offset:offset+n], rng)
	}
	return sampleAlias(a.beta, rng)
}

// InitAsymmetricAlpha reads the summary row and derives one alpha per
// topic, proportional to the topic's global popularity and normalized
// so that the total prior mass stays Config.AlphaSum.  It then builds
// an alias table over the K topics for the doc proposal's prior draw.
// Leader only, after all per-word builds of the slice.
func (a *AliasTable) InitAsymmetricAlpha(m Model) {
	K := a.cfg.NumTopics
	summary := m.GetRow(SummaryTable, 0)

	var total float64
	for k := 0; k < K; k++ {
		total += float64(summary.At(k))
	}

	if cap(a.alphas) < K {
		a.alphas = make([]float64, K)
		a.alphaSlots = make([]aliasSlot, K)
	}
	a.alphas = a.alphas[:K]
	a.alphaSlots = a.alphaSlots[:K]

	scratch := NewBuildScratch()
	scratch.grow(K)
	a.asyAlphaSum = 0
	for k := 0; k < K; k++ {
		alpha := a.cfg.Alpha // uniform fallback for an empty model
		if total > 0 {
			alpha = a.cfg.AlphaSum() * float64(summary.At(k)) / total
		}
		a.alphas[k] = alpha
		a.asyAlphaSum += alpha
		scratch.topics = append(scratch.topics, int32(k))
		scratch.mass = append(scratch.mass, alpha)
	}
	buildAlias(a.alphaSlots, scratch)
}

// ProposeAsymmetricAlpha draws one topic from the asymmetric alpha
// prior.  Valid only after InitAsymmetricAlpha.
func (a *AliasTable) ProposeAsymmetricAlpha(rng *rand.Rand) int32 {
	return sampleAlias(a.alphaSlots, rng)
}

// AlphaAt returns the topic's current alpha value.
func (a *AliasTable) AlphaAt(topic int32) float64 {
	return a.alphas[topic]
}

// AsyAlphaSum returns the total asymmetric alpha mass.
func (a *AliasTable) AsyAlphaSum() float64 {
	return a.asyAlphaSum
}

// Clear releases the arena and the derived tables.  No Build or
// Propose may follow for the bound index; a later Init starts a fresh
// cycle.
func (a *AliasTable) Clear() {
	a.index = nil
	a.arena = nil
	a.beta = nil
	a.alphaSlots = nil
	a.alphas = nil
}
